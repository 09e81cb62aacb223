package dotosu

import (
	"math"
	"strconv"
	"strings"
)

// ---------- [General] / [Metadata] / [Difficulty] ----------

func splitKeyVal(ln []byte) (name, val []byte) {
	colon := skipTo(ln, 0, ':')
	name = ln[:trimRight(ln, 0, colon)]
	if colon == len(ln) {
		return name, nil
	}
	start := skipWhitespace(ln, colon+1)
	return name, ln[start:trimRight(ln, start, len(ln))]
}

func (p *parser) keyValue(ln []byte) error {
	name, v := splitKeyVal(ln)
	k := classifyKey(p.sec, name)
	b := p.b

	switch k {
	case keyAudioFilename:
		b.General.AudioFilename = standardisePath(string(v))
	case keyAudioLeadIn:
		b.General.AudioLeadIn = parseInt(v, 0)
	case keyPreviewTime:
		b.General.PreviewTime = parseInt(v, -1)
	case keyMode:
		mode, err := strconv.Atoi(string(v))
		if err != nil {
			return p.fail(ErrInvalidValue, "mode %q is not an integer", v)
		}
		if mode != ManiaMode {
			return p.fail(ErrUnsupportedMode, "mode %d, only mania (%d) is supported", mode, ManiaMode)
		}
		b.General.Mode = mode

	case keyTitle:
		b.Metadata.Title = string(v)
	case keyTitleUnicode:
		b.Metadata.TitleUnicode = string(v)
	case keyArtist:
		b.Metadata.Artist = string(v)
	case keyArtistUnicode:
		b.Metadata.ArtistUnicode = string(v)
	case keyCreator:
		b.Metadata.Creator = string(v)
	case keyVersion:
		b.Metadata.Version = string(v)
	case keySource:
		b.Metadata.Source = string(v)
	case keyTags:
		b.Metadata.Tags = string(v)
	case keyBeatmapID:
		b.Metadata.BeatmapID = parseInt(v, 0)
	case keyBeatmapSetID:
		b.Metadata.BeatmapSetID = parseInt(v, 0)

	case keyCircleSize:
		cs, ok := parseDecimal(v)
		if !ok {
			return p.fail(ErrInvalidValue, "CircleSize %q is not a number", v)
		}
		if math.Floor(cs) != cs || cs <= 0 {
			return p.fail(ErrInvalidValue, "CircleSize %v is not a positive integer", cs)
		}
		if cs > MaxColumns {
			return p.fail(ErrInvalidValue, "CircleSize %v exceeds %d columns", cs, MaxColumns)
		}
		if p.columnsSet {
			return p.fail(ErrInvalidValue, "redefinition of CircleSize")
		}
		p.columnsSet = true
		b.Difficulty.CircleSize = cs
		b.ColumnCount = int(cs)
	case keySliderMultiplier:
		sv, ok := parseDecimal(v)
		if !ok {
			return p.fail(ErrInvalidValue, "SliderMultiplier %q is not a number", v)
		}
		if sv == 0 {
			return p.fail(ErrInvalidValue, "SliderMultiplier must be nonzero")
		}
		p.velocitySet = true
		b.Difficulty.SliderMultiplier = sv
		b.BaseVelocity = sv
	case keyHPDrainRate:
		b.Difficulty.HPDrainRate = parseFloat(v, 0)
	case keyOverallDifficulty:
		b.Difficulty.OverallDifficulty = parseFloat(v, 0)
	case keyApproachRate:
		b.Difficulty.ApproachRate = parseFloat(v, 0)
	case keySliderTickRate:
		b.Difficulty.SliderTickRate = parseFloat(v, 1)
	}
	return nil
}

// parseDecimal takes the leading run of digits and at most one '.'.
func parseDecimal(v []byte) (float64, bool) {
	end := scanDecimal(v, 0)
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(v[:end]), 64)
	return f, err == nil
}

// ---------- [Events] ----------

func (p *parser) event(ln []byte) {
	parts := splitCSV(string(ln))
	if len(parts) < 3 {
		return
	}
	switch strings.ToLower(parts[0]) {
	case "0", "background":
		p.b.Metadata.BackgroundFile = cleanFilename(parts[2])
	case "2", "break":
		start := parseFloat([]byte(parts[1]), 0) / 1000
		end := parseFloat([]byte(parts[2]), 0) / 1000
		if end < start {
			end = start
		}
		p.b.Breaks = append(p.b.Breaks, BreakPeriod{Start: start, End: end})
	}
}

// ---------- [TimingPoints] ----------

// time,beatLength,meter,sampleSet,sampleIndex,volume,uninherited,effects
func (p *parser) timingPoint(ln []byte) {
	f := p.tuple[:8]
	if scanTuple(ln, 0, f) != len(f) {
		return
	}
	effects := int(f[7])
	p.timing = append(p.timing, rawTimingPoint{
		time:        f[0] / 1000,
		beatLength:  f[1],
		meter:       int(f[2]),
		sampleSet:   int(f[3]),
		sampleIndex: int(f[4]),
		volume:      int(f[5]),
		uninherited: f[6] != 0,
		effects:     effects,
		line:        p.line,
		record:      ln,
	})
}

// ---------- [HitObjects] ----------

// x,y,time,type,hitSound,endTime:hitSample (mania holds)
// x,y,time,type,hitSound,hitSample         (everything else)
func (p *parser) hitObject(ln []byte) {
	f := p.tuple[:6]
	n := scanTuple(ln, 0, f)
	if n < 5 {
		return
	}
	// type is a bit field; combo bits may ride along with the hold bit
	hold := int(f[3])&HoldFlag != 0
	if hold && n < 6 {
		return
	}
	ho := rawHitObject{
		x:      int(f[0]),
		time:   f[2] / 1000,
		hold:   hold,
		line:   p.line,
		record: ln,
	}
	if hold {
		ho.end = f[5] / 1000
	}
	p.objects = append(p.objects, ho)
}

// ---------- helpers ----------

func parseInt(b []byte, def int) int {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseFloat(b []byte, def float64) float64 {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func standardisePath(p string) string {
	p = strings.Trim(p, "\"")
	return strings.ReplaceAll(p, "\\", "/")
}

func cleanFilename(s string) string {
	return standardisePath(strings.TrimSpace(s))
}

func splitCSV(line string) []string {
	var out []string
	var cur strings.Builder
	inQ := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch c {
		case '"':
			inQ = !inQ
			cur.WriteByte(c)
		case ',':
			if inQ {
				cur.WriteByte(c)
			} else {
				out = append(out, strings.TrimSpace(cur.String()))
				cur.Reset()
			}
		default:
			cur.WriteByte(c)
		}
	}
	out = append(out, strings.TrimSpace(cur.String()))
	return out
}
