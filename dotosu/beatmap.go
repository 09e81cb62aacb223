package dotosu

import "math"

const (
	// ManiaMode is the General.Mode value of the column-based variant.
	ManiaMode = 3

	// PlayfieldWidth is the osu!pixel width hit object x coordinates live in.
	PlayfieldWidth = 512

	// HoldFlag is the hit object type bit marking a hold note.
	HoldFlag = 1 << 7

	// MaxColumns bounds CircleSize so the column count fits an int on every
	// platform.
	MaxColumns = math.MaxInt32
)

// ---------- Beatmap model ----------

type Beatmap struct {
	FormatVersion int
	General       General
	Metadata      Metadata
	Difficulty    Difficulty

	ColumnCount  int
	BaseVelocity float64

	Breaks       []BreakPeriod
	TimingPoints []TimingPoint
	HitObjects   []HitObject
}

type General struct {
	AudioFilename string
	AudioLeadIn   int
	PreviewTime   int
	Mode          int
}

type Metadata struct {
	Title, TitleUnicode            string
	Artist, ArtistUnicode          string
	Creator, Version, Source, Tags string
	BeatmapID, BeatmapSetID        int
	BackgroundFile                 string
}

// Difficulty keeps the values as written. CircleSize and SliderMultiplier
// are mirrored into Beatmap.ColumnCount and Beatmap.BaseVelocity.
type Difficulty struct {
	HPDrainRate, CircleSize, OverallDifficulty, ApproachRate float64
	SliderMultiplier, SliderTickRate                         float64
}

// BreakPeriod bounds are in seconds.
type BreakPeriod struct{ Start, End float64 }

// TimingPoint is a resolved timing point. Time is in seconds, BPM and SV are
// resolved against the nearest preceding uninherited point and Position is
// the cumulative scroll distance at Time.
type TimingPoint struct {
	Time        float64
	BeatLength  float64
	Uninherited bool

	BPM      float64
	SV       float64
	Position float64

	Meter       int
	SampleSet   int
	SampleIndex int
	Volume      int
	Kiai        bool
	OmitBarLine bool
}

// Speed is the scroll-space velocity while this point is in effect.
func (tp TimingPoint) Speed() float64 {
	return 100 * tp.SV * (tp.BPM / 60)
}

// PositionAt integrates this point's speed forward to t.
func (tp TimingPoint) PositionAt(t float64) float64 {
	return tp.Position + tp.Speed()*(t-tp.Time)
}

type HitObject struct {
	X      int
	Column int

	Time    float64
	EndTime float64 // zero unless Hold
	Hold    bool

	Position    float64
	EndPosition float64 // zero unless Hold
}

// Duration is zero for taps.
func (h HitObject) Duration() float64 {
	if !h.Hold {
		return 0
	}
	return h.EndTime - h.Time
}
