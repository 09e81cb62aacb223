package convert

import (
	"fmt"
	"strings"
)

// Mods are the difficulty modifiers that move judgement windows.
type Mods struct {
	Hardrock bool
	Easy     bool
}

// ParseMods reads acronyms such as "HR" or "EZ", optionally separated by
// commas or spaces. NM or an empty string means no mods.
func ParseMods(s string) (Mods, error) {
	var mods Mods
	s = strings.ToUpper(strings.NewReplacer(",", "", " ", "", "+", "").Replace(s))
	if len(s)%2 != 0 {
		return mods, fmt.Errorf("mods %q: expected two-letter acronyms", s)
	}
	for i := 0; i < len(s); i += 2 {
		switch s[i : i+2] {
		case "NM":
		case "HR":
			mods.Hardrock = true
		case "EZ":
			mods.Easy = true
		default:
			return mods, fmt.Errorf("mods %q: unknown mod %s", s, s[i:i+2])
		}
	}
	if mods.Hardrock && mods.Easy {
		return mods, fmt.Errorf("mods %q: HR and EZ are exclusive", s)
	}
	return mods, nil
}

// HitWindows are the +- judgement windows around a note, in milliseconds.
type HitWindows struct {
	Perfect float64 `json:"perfect" yaml:"perfect"`
	Great   float64 `json:"great" yaml:"great"`
	Good    float64 `json:"good" yaml:"good"`
	Ok      float64 `json:"ok" yaml:"ok"`
	Meh     float64 `json:"meh" yaml:"meh"`
	Miss    float64 `json:"miss" yaml:"miss"`
}

// Windows derives mania judgement windows from OverallDifficulty.
func Windows(od float64, mods Mods) HitWindows {
	w := HitWindows{
		Perfect: 16,
		Great:   64 - 3*od,
		Good:    97 - 3*od,
		Ok:      127 - 3*od,
		Meh:     151 - 3*od,
		Miss:    188 - 3*od,
	}
	scale := 1.0
	if mods.Hardrock {
		scale = 1 / 1.4
	}
	if mods.Easy {
		scale = 1.4
	}
	if scale != 1 {
		w = HitWindows{
			Perfect: w.Perfect * scale,
			Great:   w.Great * scale,
			Good:    w.Good * scale,
			Ok:      w.Ok * scale,
			Meh:     w.Meh * scale,
			Miss:    w.Miss * scale,
		}
	}
	return w
}
