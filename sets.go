package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cmania/dotosu"

	"github.com/remeh/sizedwaitgroup"
)

// ParsedChart is one .osu file of a set, parsed or failed.
type ParsedChart struct {
	Path    string
	Size    int
	Beatmap *dotosu.Beatmap
	Err     error
}

// OpenSet parses every .osu file under dir on up to workers goroutines.
// Per-file failures are reported in the results; the error is only for an
// unreadable directory.
func OpenSet(dir string, workers int) ([]ParsedChart, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var paths []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("walk set", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".osu") {
			paths = append(paths, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Strings(paths)

	charts := make([]ParsedChart, len(paths))
	wg := sizedwaitgroup.New(max(workers, 1))
	for i, p := range paths {
		Run(&wg, func() {
			src, err := os.ReadFile(p)
			if err != nil {
				charts[i] = ParsedChart{Path: p, Err: &dotosu.ParseError{File: p, Kind: dotosu.ErrIOFailure, Cause: err}}
				return
			}
			bm, err := dotosu.ParseNamed(p, src)
			charts[i] = ParsedChart{Path: p, Size: len(src), Beatmap: bm, Err: err}
		})
	}
	wg.Wait()
	return charts, nil
}

// ParseSetFiles parses in-memory .osu files, keyed by name, in name order.
func ParseSetFiles(files map[string][]byte, workers int) []ParsedChart {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	charts := make([]ParsedChart, len(names))
	wg := sizedwaitgroup.New(max(workers, 1))
	for i, name := range names {
		Run(&wg, func() {
			src := files[name]
			bm, err := dotosu.ParseNamed(name, src)
			charts[i] = ParsedChart{Path: name, Size: len(src), Beatmap: bm, Err: err}
		})
	}
	wg.Wait()
	return charts
}

// FirstFailure summarises a set's failures the way callers log them, or
// returns nil when every chart parsed.
func FirstFailure(charts []ParsedChart) error {
	var first *ParsedChart
	ok := 0
	for i := range charts {
		if charts[i].Err == nil {
			ok++
		} else if first == nil {
			first = &charts[i]
		}
	}
	if first == nil {
		return nil
	}
	return fmt.Errorf("decoded %d/%d .osu files; first failure %s: %w", ok, len(charts), first.Path, first.Err)
}

// ReadOsz extracts the top-level .osu members of an .osz archive. Members
// that are directories or sit in subdirectories are returned in skipped.
func ReadOsz(data []byte) (files map[string][]byte, skipped []string, err error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("open osz: %w", err)
	}

	files = make(map[string][]byte)
	for _, file := range zr.File {
		if !strings.EqualFold(filepath.Ext(file.Name), ".osu") {
			continue
		}
		if file.FileInfo().IsDir() || strings.ContainsAny(file.Name, `/\`) {
			skipped = append(skipped, file.Name)
			continue
		}
		contents, err := readZipFile(file)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", file.Name, err)
		}
		files[file.Name] = contents
	}
	return files, skipped, nil
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
