package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/use-agent/doccrawl/config"
	"github.com/use-agent/doccrawl/download"
	"github.com/use-agent/doccrawl/extract"
	"github.com/use-agent/doccrawl/runner"
	"github.com/use-agent/doccrawl/scraper"
	"github.com/use-agent/doccrawl/sink"
	"github.com/use-agent/doccrawl/sites"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "doccrawl",
		Short: "Harvests document listings and PDFs from the Department of Expenditure site",
		Long: `doccrawl crawls the configured doe.gov.in pages, extracts their listing
tables and narrative content into CSV exports, and downloads the referenced
PDF documents. One parameterized engine drives every page; see 'doccrawl list'
for the built-in targets.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(runCmd(), listCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [site...]",
		Short: "Crawl the given sites (default: all built-in sites)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			initLogger(cfg.Log)

			reg, err := sites.Load(cfg.SitesFile)
			if err != nil {
				return err
			}
			descs, err := selectSites(reg, args)
			if err != nil {
				return err
			}

			// A single limiter throttles page loads and downloads alike.
			limiter := rate.NewLimiter(rate.Limit(cfg.Rate.RequestsPerSecond), cfg.Rate.Burst)

			ext, err := extract.New(cfg.Fetch.BaseURL)
			if err != nil {
				return err
			}

			session, err := scraper.NewSession(cfg.Browser, cfg.Fetch, limiter)
			if err != nil {
				return err
			}
			// Teardown runs on every exit path, interrupt included.
			defer session.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := runner.New(
				cfg,
				session,
				ext,
				download.New(cfg.Download, limiter),
				sink.New(cfg.Output),
			)
			if err := r.EnsureDirs(); err != nil {
				return err
			}

			summaries := r.Run(ctx, descs)
			printSummaries(summaries)

			if err := ctx.Err(); err != nil {
				slog.Warn("run interrupted", "error", err)
			}
			return nil
		},
	}
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in site descriptors",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			reg, err := sites.Load(cfg.SitesFile)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Slug", "Name", "Entry Path", "Modes"})
			for _, d := range reg.All() {
				t.AppendRow(table.Row{d.Slug, d.Name, d.EntryPath, modes(d)})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}

func selectSites(reg *sites.Registry, slugs []string) ([]sites.Descriptor, error) {
	if len(slugs) == 0 {
		return reg.All(), nil
	}
	descs := make([]sites.Descriptor, 0, len(slugs))
	for _, slug := range slugs {
		d, ok := reg.Get(slug)
		if !ok {
			return nil, fmt.Errorf("unknown site %q (see 'doccrawl list')", slug)
		}
		descs = append(descs, d)
	}
	return descs, nil
}

func modes(d sites.Descriptor) string {
	switch {
	case d.Tabular && d.Narrative:
		return "tabular+narrative"
	case d.Tabular:
		return "tabular"
	default:
		return "narrative"
	}
}

func printSummaries(summaries []runner.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Site", "Records", "Pages", "Assets", "Output"})
	for _, s := range summaries {
		out := s.OutputPath
		if s.Err != nil {
			out = "error: " + s.Err.Error()
		}
		t.AppendRow(table.Row{s.Site, s.Records, s.PagesFetched, s.AssetsLinked, out})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
