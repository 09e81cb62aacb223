package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/levigross/grequests"
)

// Beatmap is the part of an osu! API beatmap the search listing needs.
type Beatmap struct {
	ID               int     `json:"id"`
	BeatmapsetID     int     `json:"beatmapset_id"`
	Bpm              float64 `json:"bpm"`
	Cs               float64 `json:"cs"`
	DifficultyRating float64 `json:"difficulty_rating"`
	Mode             string  `json:"mode"`
	ModeInt          int     `json:"mode_int"`
	Status           string  `json:"status"`
	TotalLength      int     `json:"total_length"`
	Version          string  `json:"version"`
}

// Beatmapset represents detailed information about a beatmapset.
type Beatmapset struct {
	Artist        string       `json:"artist"`
	ArtistUnicode string       `json:"artist_unicode"`
	Availability  Availability `json:"availability"`
	Bpm           float64      `json:"bpm"`
	Creator       string       `json:"creator"`
	ID            int          `json:"id"`
	RankedDate    *time.Time   `json:"ranked_date"`
	Source        string       `json:"source"`
	Status        string       `json:"status"`
	Tags          string       `json:"tags"`
	Title         string       `json:"title"`
	TitleUnicode  string       `json:"title_unicode"`
	Beatmaps      []Beatmap    `json:"beatmaps"`
}

// Availability represents availability settings of a beatmap.
type Availability struct {
	DownloadDisabled bool    `json:"download_disabled"`
	MoreInformation  *string `json:"more_information"`
}

// ManiaBeatmaps returns the set's mania difficulties.
func (s Beatmapset) ManiaBeatmaps() []Beatmap {
	var out []Beatmap
	for _, b := range s.Beatmaps {
		if b.ModeInt == 3 {
			out = append(out, b)
		}
	}
	return out
}

// SearchParams is the query string of /api/v2/beatmapsets/search.
type SearchParams struct {
	Query  string `url:"q,omitempty"`
	Mode   int    `url:"m"`
	Status string `url:"s,omitempty"`
	Cursor string `url:"cursor_string,omitempty"`
}

type SearchResult struct {
	Beatmapsets []Beatmapset `json:"beatmapsets"`
	Cursor      string       `json:"cursor_string"`
	Total       int          `json:"total"`
}

type APIClient struct {
	cfg      APIConfig
	token    *TokenResponse
	throttle *Throttle
}

func NewAPIClient(ctx context.Context, cfg APIConfig, throttle *Throttle) (*APIClient, error) {
	tok, err := fetchToken(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &APIClient{cfg: cfg, token: tok, throttle: throttle}, nil
}

// SearchBeatmapsets fetches one page of search results.
func (c *APIClient) SearchBeatmapsets(ctx context.Context, params SearchParams) (*SearchResult, error) {
	values, err := query.Values(params)
	if err != nil {
		return nil, fmt.Errorf("encode search params: %w", err)
	}

	done, err := c.throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	resp, err := grequests.Get(c.cfg.BaseURL+"/api/v2/beatmapsets/search?"+values.Encode(), &grequests.RequestOptions{
		Headers: map[string]string{
			"Accept":        "application/json",
			"Authorization": c.token.Authorization(),
		},
		RequestTimeout: 2 * time.Minute,
		Context:        ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Close()

	if !resp.Ok {
		return nil, fmt.Errorf("received non-200 response: %d %s", resp.StatusCode, resp.String())
	}

	var result SearchResult
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// ScrapeBeatmapsets follows the search cursor for at most pages pages. Sets
// gathered before a failing page are returned with the error.
func (c *APIClient) ScrapeBeatmapsets(ctx context.Context, params SearchParams, pages int) ([]Beatmapset, error) {
	var out []Beatmapset
	for page := range pages {
		res, err := c.SearchBeatmapsets(ctx, params)
		if err != nil {
			return out, fmt.Errorf("page %d: %w", page+1, err)
		}
		out = append(out, res.Beatmapsets...)
		slog.Debug("search page", "page", page+1, "sets", len(res.Beatmapsets), "total", res.Total)
		if res.Cursor == "" {
			break
		}
		params.Cursor = res.Cursor
	}
	return out, nil
}
