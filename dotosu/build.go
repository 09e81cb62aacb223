package dotosu

import (
	"cmp"
	"math"
	"slices"
	"sort"
)

func (p *parser) build() error {
	b := p.b
	if !p.columnsSet {
		return &ParseError{File: p.name, Kind: ErrMissingDeclaration, Msg: "CircleSize is unset"}
	}
	if !p.velocitySet {
		return &ParseError{File: p.name, Kind: ErrMissingDeclaration, Msg: "SliderMultiplier is unset"}
	}
	mustf(b.ColumnCount > 0 && b.BaseVelocity != 0, "declarations accepted without validation")

	if err := p.buildTimingPoints(); err != nil {
		return err
	}
	return p.buildHitObjects()
}

// buildTimingPoints resolves inheritance over the records in file order, then
// orders them by time and integrates cumulative scroll position.
func (p *parser) buildTimingPoints() error {
	b := p.b
	tps := make([]TimingPoint, 0, len(p.timing))
	for i, raw := range p.timing {
		if i == 0 && !raw.uninherited {
			return p.recordError(raw.line, raw.record, ErrOrderingViolation, "first timing point must be uninherited")
		}

		tp := TimingPoint{
			Time:        raw.time,
			BeatLength:  raw.beatLength,
			Uninherited: raw.uninherited,
			Meter:       raw.meter,
			SampleSet:   raw.sampleSet,
			SampleIndex: raw.sampleIndex,
			Volume:      raw.volume,
			Kiai:        raw.effects&1 != 0,
			OmitBarLine: raw.effects&8 != 0,
		}
		if raw.uninherited {
			if !(raw.beatLength > 0) {
				return p.recordError(raw.line, raw.record, ErrInvalidValue, "uninherited beat length %v must be positive", raw.beatLength)
			}
			tp.BPM = math.Round(60000 / raw.beatLength)
			tp.SV = b.BaseVelocity
		} else {
			if !(raw.beatLength < 0) {
				return p.recordError(raw.line, raw.record, ErrInvalidValue, "inherited beat length %v must be negative", raw.beatLength)
			}
			tp.BPM = tps[i-1].BPM
			tp.SV = b.BaseVelocity * (100 / -raw.beatLength)
		}
		tps = append(tps, tp)
	}

	slices.SortStableFunc(tps, func(x, y TimingPoint) int {
		return cmp.Compare(x.Time, y.Time)
	})
	for i := 1; i < len(tps); i++ {
		tps[i].Position = tps[i-1].PositionAt(tps[i].Time)
	}
	b.TimingPoints = tps
	return nil
}

// buildHitObjects buckets objects into columns, sorts them and back-fills
// their scroll positions against the timing timeline.
func (p *parser) buildHitObjects() error {
	b := p.b
	slices.SortStableFunc(p.objects, func(x, y rawHitObject) int {
		return cmp.Compare(x.time, y.time)
	})

	b.HitObjects = make([]HitObject, 0, len(p.objects))
	tps := b.TimingPoints
	gov := -1
	for _, raw := range p.objects {
		col, err := Column(raw.x, b.ColumnCount)
		if err != nil {
			return p.recordError(raw.line, raw.record, ErrRangeViolation, "column count %d", b.ColumnCount)
		}
		if raw.hold && raw.end < raw.time {
			return p.recordError(raw.line, raw.record, ErrInvalidValue, "hold ends at %vs before it starts at %vs", raw.end, raw.time)
		}

		for gov+1 < len(tps) && tps[gov+1].Time <= raw.time {
			gov++
		}
		if gov < 0 {
			return p.recordError(raw.line, raw.record, ErrOrderingViolation, "hit object at %vs precedes every timing point", raw.time)
		}

		ho := HitObject{
			X:        raw.x,
			Column:   col,
			Time:     raw.time,
			Hold:     raw.hold,
			Position: tps[gov].PositionAt(raw.time),
		}
		if raw.hold {
			ho.EndTime = raw.end
			ho.EndPosition = tps[governing(tps, raw.end)].PositionAt(raw.end)
		}
		b.HitObjects = append(b.HitObjects, ho)
	}
	return nil
}

func (p *parser) recordError(line int, record []byte, kind error, format string, a ...any) *ParseError {
	e := p.fail(kind, format, a...)
	e.Line = line
	e.Record = string(record)
	return e
}

// governing returns the index of the last timing point at or before t, or -1.
func governing(tps []TimingPoint, t float64) int {
	return sort.Search(len(tps), func(i int) bool { return tps[i].Time > t }) - 1
}

// Governing returns the timing point in effect at t.
func (b *Beatmap) Governing(t float64) (TimingPoint, bool) {
	i := governing(b.TimingPoints, t)
	if i < 0 {
		return TimingPoint{}, false
	}
	return b.TimingPoints[i], true
}

// Column buckets an x coordinate into one of columnCount lanes.
func Column(x, columnCount int) (int, error) {
	if columnCount <= 0 {
		return 0, &ParseError{Kind: ErrRangeViolation, Msg: "column count must be positive"}
	}
	col := int(math.Floor(float64(x) * float64(columnCount) / PlayfieldWidth))
	return min(max(col, 0), columnCount-1), nil
}
