package chartdb

import (
	"math"
	"time"

	"cmania/dotosu"
)

// Summarize condenses a parsed beatmap into an index row.
func Summarize(path string, b *dotosu.Beatmap) Chart {
	c := Chart{
		Path:         path,
		BeatmapID:    b.Metadata.BeatmapID,
		BeatmapSetID: b.Metadata.BeatmapSetID,
		Title:        b.Metadata.Title,
		Artist:       b.Metadata.Artist,
		Creator:      b.Metadata.Creator,
		Version:      b.Metadata.Version,
		Columns:      b.ColumnCount,
		Notes:        len(b.HitObjects),
		TimingPoints: len(b.TimingPoints),
	}

	c.MinBPM, c.MaxBPM = math.Inf(1), math.Inf(-1)
	for _, tp := range b.TimingPoints {
		if !tp.Uninherited {
			continue
		}
		c.MinBPM = min(c.MinBPM, tp.BPM)
		c.MaxBPM = max(c.MaxBPM, tp.BPM)
	}
	if len(b.TimingPoints) == 0 {
		c.MinBPM, c.MaxBPM = 0, 0
	}

	if len(b.HitObjects) == 0 {
		return c
	}
	first, last := b.HitObjects[0].Time, 0.0
	for _, ho := range b.HitObjects {
		if ho.Hold {
			c.Holds++
			last = max(last, ho.EndTime)
		} else {
			last = max(last, ho.Time)
		}
	}
	c.Length = time.Duration((last - first) * float64(time.Second))
	return c
}
