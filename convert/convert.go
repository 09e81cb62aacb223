// Package convert re-expresses a parsed osu!mania beatmap as a flat note list
// on a piecewise-linear scroll timeline.
package convert

import (
	"fmt"
	"runtime"
	"sort"

	"cmania/dotosu"

	"github.com/remeh/sizedwaitgroup"
)

// SpeedSegment holds a constant scroll speed from Time until the next
// segment. Start is the scroll position at Time.
type SpeedSegment struct {
	Time  float64 `json:"time" yaml:"time"`
	Start float64 `json:"start" yaml:"start"`
	Speed float64 `json:"speed" yaml:"speed"`
}

type Note struct {
	Column  int     `json:"column" yaml:"column"`
	Time    float64 `json:"time" yaml:"time"`
	EndTime float64 `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Hold    bool    `json:"hold,omitempty" yaml:"hold,omitempty"`
	Start   float64 `json:"start" yaml:"start"`
	End     float64 `json:"end,omitempty" yaml:"end,omitempty"`
}

type Chart struct {
	ColumnCount int            `json:"column_count" yaml:"column_count"`
	Windows     HitWindows     `json:"hit_windows" yaml:"hit_windows"`
	Notes       []Note         `json:"notes" yaml:"notes"`
	Segments    []SpeedSegment `json:"speed_segments" yaml:"speed_segments"`
}

// FromBeatmap converts a validated beatmap. Notes keep the beatmap's time
// order and Windows are the unmodded ones.
func FromBeatmap(b *dotosu.Beatmap) (*Chart, error) {
	c := &Chart{
		ColumnCount: b.ColumnCount,
		Windows:     Windows(b.Difficulty.OverallDifficulty, Mods{}),
		Segments:    make([]SpeedSegment, 0, len(b.TimingPoints)),
		Notes:       make([]Note, 0, len(b.HitObjects)),
	}

	var prev SpeedSegment
	for i, tp := range b.TimingPoints {
		sm := SpeedSegment{Time: tp.Time, Speed: tp.Speed()}
		if i > 0 {
			sm.Start = prev.Start + prev.Speed*(tp.Time-prev.Time)
		}
		c.Segments = append(c.Segments, sm)
		prev = sm
	}

	seg := -1
	for i, ho := range b.HitObjects {
		for seg+1 < len(c.Segments) && c.Segments[seg+1].Time <= ho.Time {
			seg++
		}
		if seg < 0 {
			return nil, fmt.Errorf("hit object %d at %vs: %w", i, ho.Time, dotosu.ErrOrderingViolation)
		}
		sm := c.Segments[seg]
		n := Note{
			Column: ho.Column,
			Time:   ho.Time,
			Start:  sm.Start + sm.Speed*(ho.Time-sm.Time),
		}
		if ho.Hold {
			n.Hold = true
			n.EndTime = ho.EndTime
			n.End = c.integrate(seg, ho.Time, n.Start, ho.EndTime)
		}
		c.Notes = append(c.Notes, n)
	}
	return c, nil
}

// integrate advances from position pos at time t (inside segment seg) to
// time end, accumulating every segment boundary crossed on the way.
func (c *Chart) integrate(seg int, t, pos, end float64) float64 {
	for seg+1 < len(c.Segments) && c.Segments[seg+1].Time <= end {
		next := c.Segments[seg+1].Time
		pos += c.Segments[seg].Speed * (next - t)
		t = next
		seg++
	}
	return pos + c.Segments[seg].Speed*(end-t)
}

// PositionAt returns the scroll position at t. Times before the first
// segment extrapolate it backwards.
func (c *Chart) PositionAt(t float64) float64 {
	if len(c.Segments) == 0 {
		return 0
	}
	i := sort.Search(len(c.Segments), func(i int) bool { return c.Segments[i].Time > t }) - 1
	sm := c.Segments[max(i, 0)]
	return sm.Start + sm.Speed*(t-sm.Time)
}

// Holds counts notes with an end.
func (c *Chart) Holds() int {
	n := 0
	for _, note := range c.Notes {
		if note.Hold {
			n++
		}
	}
	return n
}

// Result is the outcome of converting one beatmap in FromBeatmaps.
type Result struct {
	Chart *Chart
	Err   error
}

// FromBeatmaps converts charts independently on up to workers goroutines
// (GOMAXPROCS when workers <= 0). Results line up with bms.
func FromBeatmaps(bms []*dotosu.Beatmap, workers int) []Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]Result, len(bms))
	wg := sizedwaitgroup.New(workers)
	for i, bm := range bms {
		wg.Add()
		go func() {
			defer wg.Done()
			c, err := FromBeatmap(bm)
			out[i] = Result{Chart: c, Err: err}
		}()
	}
	wg.Wait()
	return out
}
