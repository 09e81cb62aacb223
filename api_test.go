package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"cmania/chartdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOsu(t *testing.T, osz []byte, slowDowns int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var downloads atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("client_id") != "1234" || r.PostForm.Get("client_secret") != "hunter2" {
			http.Error(w, "bad client", http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 86400})
	})
	mux.HandleFunc("GET /api/v2/beatmapsets/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		assert.Equal(t, "camellia ghost", q.Get("q"))
		assert.Equal(t, "3", q.Get("m"))
		assert.Equal(t, "ranked", q.Get("s"))
		switch q.Get("cursor_string") {
		case "":
			json.NewEncoder(w).Encode(SearchResult{
				Total:  2,
				Cursor: "page2",
				Beatmapsets: []Beatmapset{{
					ID:     7,
					Artist: "Someone",
					Title:  "Example",
					Beatmaps: []Beatmap{
						{ID: 1, ModeInt: 3, Version: "4K Hard"},
						{ID: 2, ModeInt: 0, Version: "Insane"},
					},
				}},
			})
		case "page2":
			json.NewEncoder(w).Encode(SearchResult{
				Total:       2,
				Beatmapsets: []Beatmapset{{ID: 9, Artist: "Other", Title: "Second"}},
			})
		default:
			http.Error(w, "bad cursor", http.StatusBadRequest)
		}
	})
	mux.HandleFunc("GET /beatmapsets/{id}/download", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("osu_session")
		if err != nil || c.Value != "abc" {
			http.Error(w, "login required", http.StatusForbidden)
			return
		}
		if r.PathValue("id") != "7" {
			http.NotFound(w, r)
			return
		}
		if downloads.Add(1) <= slowDowns {
			w.Write([]byte("Slow down, play more."))
			return
		}
		w.Header().Set("Content-Type", "application/x-osu-beatmap-archive")
		w.Write(osz)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &downloads
}

func apiConfig(t *testing.T, srv *httptest.Server) *Config {
	cfg := testConfig(t)
	cfg.API = APIConfig{BaseURL: srv.URL, ClientID: 1234, ClientSecret: "hunter2", Session: "abc"}
	cfg.Download.RequestsPerMinute = 60000
	return cfg
}

func TestSearchBeatmapsets(t *testing.T) {
	srv, _ := fakeOsu(t, nil, 0)
	cfg := apiConfig(t, srv)
	ctx := context.Background()

	client, err := NewAPIClient(ctx, cfg.API, NewThrottle(cfg.Download.RequestsPerMinute, 1))
	require.NoError(t, err)

	res, err := client.SearchBeatmapsets(ctx, SearchParams{Query: "camellia ghost", Mode: 3, Status: "ranked"})
	require.NoError(t, err)
	require.Len(t, res.Beatmapsets, 1)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, "page2", res.Cursor)
	mania := res.Beatmapsets[0].ManiaBeatmaps()
	require.Len(t, mania, 1)
	assert.Equal(t, "4K Hard", mania[0].Version)

	_, err = client.SearchBeatmapsets(ctx, SearchParams{Query: "camellia ghost", Mode: 3, Status: "ranked", Cursor: "nope"})
	assert.ErrorContains(t, err, "400")
}

func TestScrapeBeatmapsets(t *testing.T) {
	srv, _ := fakeOsu(t, nil, 0)
	cfg := apiConfig(t, srv)
	ctx := context.Background()

	client, err := NewAPIClient(ctx, cfg.API, NewThrottle(cfg.Download.RequestsPerMinute, 1))
	require.NoError(t, err)
	params := SearchParams{Query: "camellia ghost", Mode: 3, Status: "ranked"}

	one, err := client.ScrapeBeatmapsets(ctx, params, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)

	all, err := client.ScrapeBeatmapsets(ctx, params, 5)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 9, all[1].ID)

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, "search", []string{"-pages", "3", "camellia", "ghost"}, &out))
	assert.Contains(t, out.String(), "Someone - Example")
	assert.Contains(t, out.String(), "Other - Second")
}

func TestNewAPIClientRejectsBadCredentials(t *testing.T) {
	srv, _ := fakeOsu(t, nil, 0)
	cfg := apiConfig(t, srv)
	throttle := NewThrottle(60, 1)

	cfg.API.ClientSecret = "wrong"
	_, err := NewAPIClient(context.Background(), cfg.API, throttle)
	assert.ErrorContains(t, err, "status 401")

	cfg.API.ClientID = 0
	_, err = NewAPIClient(context.Background(), cfg.API, throttle)
	assert.ErrorContains(t, err, "client_id")
}

func TestDownloadSets(t *testing.T) {
	osz := makeOsz(t, map[string]string{
		"Someone - Example (mapper) [4K Hard].osu": testChart,
		"nested/old.osu":                           testChart,
		"audio.mp3":                                "ID3",
	})
	srv, downloads := fakeOsu(t, osz, 1)
	cfg := apiConfig(t, srv)

	store, err := chartdb.Open(cfg.Paths.Database)
	require.NoError(t, err)
	defer store.Close()

	d, err := NewDownloader(cfg, NewThrottle(cfg.Download.RequestsPerMinute, cfg.Download.Workers), store)
	require.NoError(t, err)
	d.backoff = time.Millisecond

	ctx := context.Background()
	d.DownloadSets(ctx, []int{7, 8})

	written, err := filepath.Glob(filepath.Join(cfg.Paths.SetsDir, "7", "*.osu"))
	require.NoError(t, err)
	require.Len(t, written, 1)
	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, testChart, string(data))
	assert.EqualValues(t, 2, downloads.Load())

	failures, err := store.Failures(ctx)
	require.NoError(t, err)
	var cats []string
	for _, f := range failures {
		cats = append(cats, f.Category+":"+f.Ref)
	}
	assert.ElementsMatch(t, []string{"broken_files:7/nested/old.osu", "download:8"}, cats)

	// already on disk
	d.DownloadSets(ctx, []int{7})
	assert.EqualValues(t, 2, downloads.Load())
}

func TestDownloadSetCancelled(t *testing.T) {
	srv, _ := fakeOsu(t, nil, 100)
	cfg := apiConfig(t, srv)
	d, err := NewDownloader(cfg, NewThrottle(cfg.Download.RequestsPerMinute, 1), nil)
	require.NoError(t, err)
	d.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = d.DownloadSet(ctx, 7, t.TempDir())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
