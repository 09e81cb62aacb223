package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"cmania/chartdb"
	"cmania/convert"
	"cmania/dotosu"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

const usage = `usage: cmania [-config FILE] [-v] COMMAND [ARGS]

commands:
  parse FILE.osu...              parse charts and log a summary
  convert [-format F] [-mods M] [-o OUT] FILE.osu
                                 export the scroll-space chart (yaml|json)
  set DIR                        parse every .osu file of a set directory
  osz FILE.osz                   parse the charts inside a set archive
  index DIR...                   parse sets into the chart index
  list [-columns N]              list indexed charts
  failures                       list recorded failures
  search [-pages N] QUERY        search ranked mania sets
  download SETID...              download sets into sets_dir
`

func main() {
	configPath := flag.String("config", "cmania.ini", "config file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level := cfg.Log.SlogLevel()
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, flag.Arg(0), flag.Args()[1:], os.Stdout); err != nil {
		slog.Error(flag.Arg(0), "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config, cmd string, args []string, stdout io.Writer) error {
	switch cmd {
	case "parse":
		return cmdParse(args)
	case "convert":
		return cmdConvert(args, stdout)
	case "set":
		return cmdSet(cfg, args)
	case "osz":
		return cmdOsz(cfg, args)
	case "index":
		return cmdIndex(ctx, cfg, args)
	case "list":
		return cmdList(ctx, cfg, args, stdout)
	case "failures":
		return cmdFailures(ctx, cfg, stdout)
	case "search":
		return cmdSearch(ctx, cfg, args, stdout)
	case "download":
		return cmdDownload(ctx, cfg, args)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func cmdParse(args []string) error {
	if len(args) == 0 {
		return errors.New("parse: no files")
	}
	var failed int
	for _, path := range args {
		bm, err := dotosu.DecodeFile(path)
		if err != nil {
			slog.Error("parse", "err", err)
			failed++
			continue
		}
		logChart(path, 0, bm)
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d charts failed", failed, len(args))
	}
	return nil
}

func cmdConvert(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	format := fs.String("format", "yaml", "yaml or json")
	out := fs.String("o", "", "output file (default stdout)")
	modsFlag := fs.String("mods", "", "judgement window mods (HR, EZ)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mods, err := convert.ParseMods(*modsFlag)
	if err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("convert: expected one .osu file")
	}

	bm, err := dotosu.DecodeFile(fs.Arg(0))
	if err != nil {
		return err
	}
	chart, err := convert.FromBeatmap(bm)
	if err != nil {
		return fmt.Errorf("convert %s: %w", fs.Arg(0), err)
	}
	chart.Windows = convert.Windows(bm.Difficulty.OverallDifficulty, mods)

	w := stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := exportChart(w, chart, *format); err != nil {
		return err
	}
	slog.Debug("converted", "file", fs.Arg(0), "notes", len(chart.Notes), "segments", len(chart.Segments))
	return nil
}

func cmdSet(cfg *Config, args []string) error {
	if len(args) != 1 {
		return errors.New("set: expected one directory")
	}
	charts, err := OpenSet(args[0], cfg.Download.Workers)
	if err != nil {
		return err
	}
	logCharts(charts)
	return FirstFailure(charts)
}

func cmdOsz(cfg *Config, args []string) error {
	if len(args) != 1 {
		return errors.New("osz: expected one archive")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	files, skipped, err := ReadOsz(data)
	if err != nil {
		return err
	}
	for _, name := range skipped {
		slog.Warn("skipped archive member", "name", name)
	}
	slog.Info("archive", "file", args[0], "size", humanize.Bytes(uint64(len(data))), "charts", len(files))
	charts := ParseSetFiles(files, cfg.Download.Workers)
	logCharts(charts)
	return FirstFailure(charts)
}

func cmdIndex(ctx context.Context, cfg *Config, args []string) error {
	if len(args) == 0 {
		return errors.New("index: no set directories")
	}
	store, err := chartdb.Open(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	var indexed, failed int
	for _, dir := range args {
		charts, err := OpenSet(dir, cfg.Download.Workers)
		if err != nil {
			Fail(ctx, store, "set", dir, err)
			failed++
			continue
		}
		for _, c := range charts {
			if c.Err != nil {
				Fail(ctx, store, "parse", c.Path, c.Err)
				failed++
				continue
			}
			if err := store.UpsertChart(ctx, chartdb.Summarize(c.Path, c.Beatmap)); err != nil {
				return err
			}
			indexed++
		}
	}
	slog.Info("indexed", "charts", indexed, "failed", failed)
	return nil
}

func cmdList(ctx context.Context, cfg *Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	columns := fs.Int("columns", 0, "only charts with this many columns")
	if err := fs.Parse(args); err != nil {
		return err
	}
	store, err := chartdb.Open(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	charts, err := store.Charts(ctx, *columns)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SET\tKEYS\tNOTES\tBPM\tLENGTH\tCHART")
	for _, c := range charts {
		fmt.Fprintf(tw, "%d\t%dK\t%d\t%s\t%s\t%s - %s [%s]\n",
			c.BeatmapSetID, c.Columns, c.Notes, bpmRange(c.MinBPM, c.MaxBPM),
			formatLength(c.Length), c.Artist, c.Title, c.Version)
	}
	return tw.Flush()
}

func cmdFailures(ctx context.Context, cfg *Config, stdout io.Writer) error {
	store, err := chartdb.Open(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	failures, err := store.Failures(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tCATEGORY\tREF\tREASON")
	for _, f := range failures {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", humanize.Time(f.At), f.Category, f.Ref, f.Reason)
	}
	return tw.Flush()
}

func cmdSearch(ctx context.Context, cfg *Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	pages := fs.Int("pages", 1, "result pages to follow")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("search: no query")
	}
	throttle := NewThrottle(cfg.Download.RequestsPerMinute, cfg.Download.Workers)
	client, err := NewAPIClient(ctx, cfg.API, throttle)
	if err != nil {
		return err
	}
	sets, err := client.ScrapeBeatmapsets(ctx, SearchParams{
		Query:  strings.Join(fs.Args(), " "),
		Mode:   dotosu.ManiaMode,
		Status: "ranked",
	}, max(*pages, 1))
	if err != nil && len(sets) == 0 {
		return err
	}
	if err != nil {
		slog.Warn("search stopped early", "err", err)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SET\tDIFFS\tSET BPM\tCHART")
	for _, s := range sets {
		fmt.Fprintf(tw, "%d\t%d\t%.0f\t%s - %s (%s)\n", s.ID, len(s.ManiaBeatmaps()), s.Bpm, s.Artist, s.Title, s.Creator)
	}
	return tw.Flush()
}

func cmdDownload(ctx context.Context, cfg *Config, args []string) error {
	if len(args) == 0 {
		return errors.New("download: no set ids")
	}
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("download: bad set id %q", a)
		}
		ids = append(ids, id)
	}

	store, err := chartdb.Open(cfg.Paths.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := NewDownloader(cfg, NewThrottle(cfg.Download.RequestsPerMinute, cfg.Download.Workers), store)
	if err != nil {
		return err
	}
	d.DownloadSets(ctx, ids)
	return ctx.Err()
}

func logCharts(charts []ParsedChart) {
	for _, c := range charts {
		if c.Err != nil {
			slog.Error("parse", "err", c.Err)
			continue
		}
		logChart(c.Path, c.Size, c.Beatmap)
	}
}

func logChart(path string, size int, bm *dotosu.Beatmap) {
	s := chartdb.Summarize(path, bm)
	attrs := []any{
		"file", path,
		"title", s.Title,
		"version", s.Version,
		"columns", s.Columns,
		"notes", s.Notes,
		"holds", s.Holds,
		"timing_points", s.TimingPoints,
		"bpm", bpmRange(s.MinBPM, s.MaxBPM),
		"length", formatLength(s.Length),
	}
	if size > 0 {
		attrs = append(attrs, "size", humanize.Bytes(uint64(size)))
	}
	slog.Info("chart", attrs...)
}

func bpmRange(lo, hi float64) string {
	if lo == hi {
		return strconv.FormatFloat(lo, 'f', -1, 64)
	}
	return fmt.Sprintf("%g-%g", lo, hi)
}

func formatLength(d time.Duration) string {
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}
