package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cmania/chartdb"

	"github.com/dustin/go-humanize"
	"github.com/levigross/grequests"
	"github.com/remeh/sizedwaitgroup"
	"golang.org/x/net/publicsuffix"
)

var errSlowDown = errors.New("rate limited by osu!")

const maxDownloadAttempts = 5

type Downloader struct {
	cfg      *Config
	client   *http.Client
	throttle *Throttle
	store    *chartdb.Store
	backoff  time.Duration
}

// NewDownloader prepares a client carrying the osu_session cookie. store may
// be nil, in which case failures are only logged.
func NewDownloader(cfg *Config, throttle *Throttle, store *chartdb.Store) (*Downloader, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if cfg.API.Session != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: "osu_session", Value: cfg.API.Session}})
	}
	return &Downloader{
		cfg:      cfg,
		client:   &http.Client{Jar: jar, Timeout: 10 * time.Minute},
		throttle: throttle,
		store:    store,
		backoff:  time.Minute,
	}, nil
}

// DownloadSets fetches each set into sets_dir/<id>/, skipping sets that
// already have .osu files there.
func (d *Downloader) DownloadSets(ctx context.Context, ids []int) {
	wg := sizedwaitgroup.New(d.cfg.Download.Workers)
	for _, id := range ids {
		dir := filepath.Join(d.cfg.Paths.SetsDir, strconv.Itoa(id))
		if matches, _ := filepath.Glob(filepath.Join(dir, "*.osu")); len(matches) > 0 {
			slog.Info("already downloaded", "set", id)
			continue
		}
		Run(&wg, func() {
			n, err := d.DownloadSet(ctx, id, dir)
			if err != nil {
				Fail(ctx, d.store, "download", strconv.Itoa(id), err)
				return
			}
			slog.Info("downloaded", "set", id, "charts", n)
		})
	}
	wg.Wait()
}

// DownloadSet fetches one .osz and writes its .osu members into dir.
func (d *Downloader) DownloadSet(ctx context.Context, id int, dir string) (int, error) {
	data, err := d.downloadBytes(ctx, id)
	if err != nil {
		return 0, err
	}
	files, skipped, err := ReadOsz(data)
	if err != nil {
		return 0, err
	}
	for _, name := range skipped {
		Fail(ctx, d.store, "broken_files", fmt.Sprintf("%d/%s", id, name), errors.New("nested .osu member"))
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no .osu files found in set %d", id)
	}

	if err := os.MkdirAll(dir, 0o777); err != nil {
		return 0, err
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(dir, name), contents, 0o666); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

func (d *Downloader) downloadBytes(ctx context.Context, id int) ([]byte, error) {
	var lastErr error
	for attempt := range maxDownloadAttempts {
		if attempt > 0 {
			wait := d.backoff * time.Duration(attempt)
			slog.Warn("retrying download", "set", id, "in", wait, "err", lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		data, err := d.tryDownload(ctx, id)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("download set %d: %w", id, lastErr)
}

func (d *Downloader) tryDownload(ctx context.Context, id int) ([]byte, error) {
	done, err := d.throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	slog.Debug("downloading set", "set", id)
	resp, err := grequests.Get(fmt.Sprintf("%s/beatmapsets/%d/download", d.cfg.API.BaseURL, id), &grequests.RequestOptions{
		Headers: map[string]string{
			"Accept":  "application/x-osu-beatmap-archive,*/*;q=0.8",
			"Referer": fmt.Sprintf("%s/beatmapsets/%d", d.cfg.API.BaseURL, id),
		},
		HTTPClient: d.client,
		Context:    ctx,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	body := resp.Bytes()
	if resp.StatusCode == http.StatusTooManyRequests || bytes.Contains(body, []byte("Slow down, play more.")) {
		return nil, errSlowDown
	}
	if !resp.Ok {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	slog.Debug("downloaded set", "set", id, "size", humanize.Bytes(uint64(len(body))))
	return body, nil
}
