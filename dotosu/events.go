package dotosu

import (
	"cmp"
	"slices"
)

type EventKind uint8

const (
	EventTimingPoint EventKind = iota + 1
	EventTap
	EventHoldStart
	EventHoldEnd
)

func (k EventKind) String() string {
	switch k {
	case EventTimingPoint:
		return "TM"
	case EventTap:
		return "CK"
	case EventHoldStart:
		return "HS"
	case EventHoldEnd:
		return "HE"
	}
	return "XX"
}

// Event is one entry of the merged timeline. Index points into
// Beatmap.TimingPoints for timing events and Beatmap.HitObjects otherwise.
type Event struct {
	Kind     EventKind
	Time     float64
	Position float64
	Column   int // -1 for timing points
	Index    int
}

// Events returns every timing point and note edge in time order. At equal
// times a timing point sorts before any other event.
func (b *Beatmap) Events() []Event {
	return b.events(-1)
}

// ColumnEvents is Events restricted to one column, timing points included.
func (b *Beatmap) ColumnEvents(col int) []Event {
	return b.events(col)
}

func (b *Beatmap) events(col int) []Event {
	evs := make([]Event, 0, len(b.TimingPoints)+len(b.HitObjects)*2)
	for i, tp := range b.TimingPoints {
		evs = append(evs, Event{Kind: EventTimingPoint, Time: tp.Time, Position: tp.Position, Column: -1, Index: i})
	}
	for i, ho := range b.HitObjects {
		if col >= 0 && ho.Column != col {
			continue
		}
		if !ho.Hold {
			evs = append(evs, Event{Kind: EventTap, Time: ho.Time, Position: ho.Position, Column: ho.Column, Index: i})
			continue
		}
		evs = append(evs,
			Event{Kind: EventHoldStart, Time: ho.Time, Position: ho.Position, Column: ho.Column, Index: i},
			Event{Kind: EventHoldEnd, Time: ho.EndTime, Position: ho.EndPosition, Column: ho.Column, Index: i},
		)
	}
	slices.SortStableFunc(evs, compareEvents)
	return evs
}

func compareEvents(a, b Event) int {
	if c := cmp.Compare(a.Time, b.Time); c != 0 {
		return c
	}
	at, bt := a.Kind == EventTimingPoint, b.Kind == EventTimingPoint
	switch {
	case at && !bt:
		return -1
	case bt && !at:
		return 1
	}
	return 0
}
