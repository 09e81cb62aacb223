package chartdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cmania/dotosu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndList(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	at := time.UnixMilli(1700000000000)
	charts := []Chart{
		{Path: "sets/2/b.osu", BeatmapSetID: 2, Version: "Hard", Columns: 7, Notes: 900, MinBPM: 170, MaxBPM: 170, Length: 95 * time.Second, IndexedAt: at},
		{Path: "sets/1/a.osu", BeatmapSetID: 1, Version: "Easy", Columns: 4, Notes: 300, Holds: 20, TimingPoints: 3, MinBPM: 120, MaxBPM: 180, Length: 1500 * time.Millisecond, IndexedAt: at},
		{Path: "sets/1/c.osu", BeatmapSetID: 1, Version: "Insane", Columns: 4, Notes: 1200, IndexedAt: at},
	}
	for _, c := range charts {
		require.NoError(t, s.UpsertChart(ctx, c))
	}

	all, err := s.Charts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"sets/1/a.osu", "sets/1/c.osu", "sets/2/b.osu"},
		[]string{all[0].Path, all[1].Path, all[2].Path})
	assert.Equal(t, charts[1], all[0])

	fourK, err := s.Charts(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, fourK, 2)

	none, err := s.Charts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	updated := charts[0]
	updated.Notes = 901
	updated.Title = "renamed"
	require.NoError(t, s.UpsertChart(ctx, updated))
	sevenK, err := s.Charts(ctx, 7)
	require.NoError(t, err)
	require.Len(t, sevenK, 1)
	assert.Equal(t, 901, sevenK[0].Notes)
	assert.Equal(t, "renamed", sevenK[0].Title)
}

func TestUpsertStampsIndexTime(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	before := time.Now().Add(-time.Second)
	require.NoError(t, s.UpsertChart(ctx, Chart{Path: "x.osu", Columns: 4}))
	got, err := s.Charts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IndexedAt.After(before))
}

func TestFailures(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	at := time.UnixMilli(1700000000000)
	require.NoError(t, s.RecordFailure(ctx, Failure{Category: "parse", Ref: "a.osu", Reason: "line 3: invalid value", At: at}))
	require.NoError(t, s.RecordFailure(ctx, Failure{Category: "download", Ref: "12", Reason: "status 404"}))

	fs, err := s.Failures(ctx)
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, Failure{Category: "parse", Ref: "a.osu", Reason: "line 3: invalid value", At: at}, fs[0])
	assert.Equal(t, "download", fs[1].Category)
	assert.False(t, fs[1].At.IsZero())
}

func TestReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.UpsertChart(ctx, Chart{Path: "x.osu", Columns: 5}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Charts(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSummarize(t *testing.T) {
	bm, err := dotosu.Parse([]byte("[Metadata]\nTitle:T\nArtist:A\nCreator:C\nVersion:V\nBeatmapID:5\nBeatmapSetID:9\n" +
		"[Difficulty]\nCircleSize:7\nSliderMultiplier:1.4\n" +
		"[TimingPoints]\n" +
		"0,500,4,0,0,100,1,0\n" +
		"10000,-50,4,0,0,100,0,0\n" +
		"20000,250,4,0,0,100,1,0\n" +
		"[HitObjects]\n" +
		"36,192,1000,1,0,0:0:0:0:\n" +
		"109,192,2000,128,0,61000:0:0:0:\n" +
		"475,192,30000,1,0,0:0:0:0:\n"))
	require.NoError(t, err)

	c := Summarize("sets/9/x.osu", bm)
	assert.Equal(t, Chart{
		Path:         "sets/9/x.osu",
		BeatmapID:    5,
		BeatmapSetID: 9,
		Title:        "T",
		Artist:       "A",
		Creator:      "C",
		Version:      "V",
		Columns:      7,
		Notes:        3,
		Holds:        1,
		TimingPoints: 3,
		MinBPM:       120,
		MaxBPM:       240,
		Length:       time.Minute,
	}, c)
}

func TestSummarizeEmpty(t *testing.T) {
	c := Summarize("empty.osu", &dotosu.Beatmap{ColumnCount: 4})
	assert.Zero(t, c.MinBPM)
	assert.Zero(t, c.MaxBPM)
	assert.Zero(t, c.Length)
	assert.Zero(t, c.Notes)
}
