//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pgEdge/pgedge-search-server/internal/catalog"
	"github.com/pgEdge/pgedge-search-server/internal/config"
	"github.com/pgEdge/pgedge-search-server/internal/engine"
	"github.com/pgEdge/pgedge-search-server/internal/language"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
	}

	return &cli.App{
		Name:  "pgedge-search",
		Usage: "Query and inspect pgEdge Search Server models from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "query",
				Usage:     "Run a query and print the accepted hits and the result payload",
				ArgsUsage: "<query text>",
				Action:    queryCommand,
				Flags:     []cli.Flag{configFlag},
			},
			{
				Name:   "stats",
				Usage:  "Build the models and print per-language statistics",
				Action: statsCommand,
				Flags: []cli.Flag{
					configFlag,
					&cli.IntFlag{
						Name:  "top",
						Usage: "Also print the N most frequent terms of each language",
					},
				},
			},
			{
				Name:      "detect",
				Usage:     "Print the detected language and stopword overlap of a text",
				ArgsUsage: "<text>",
				Action:    detectCommand,
				Flags:     []cli.Flag{configFlag},
			},
			{
				Name:  "url",
				Usage: "Manage URL overrides in the catalog",
				Subcommands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "Store the URL of a document file name",
						ArgsUsage: "<file name> <url>",
						Action:    urlSetCommand,
						Flags:     []cli.Flag{configFlag},
					},
					{
						Name:   "list",
						Usage:  "Print the URL overrides stored in the catalog",
						Action: urlListCommand,
						Flags:  []cli.Flag{configFlag},
					},
				},
			},
			{
				Name:   "log",
				Usage:  "Print recently logged queries",
				Action: logCommand,
				Flags: []cli.Flag{
					configFlag,
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of queries to print",
						Value: 20,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// openEngine loads the configuration and builds every language model.
func openEngine(c *cli.Context) (*engine.Engine, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := catalog.Open(c.Context, cfg.Catalog, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	eng, err := engine.New(c.Context, engine.Options{
		Config:  cfg,
		Logger:  slog.Default(),
		Catalog: store,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to build search engine: %w", err)
	}
	return eng, nil
}

// openCatalog loads the configuration and opens its catalog.
func openCatalog(c *cli.Context) (catalog.Store, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Catalog.Provider == config.CatalogNone {
		return nil, fmt.Errorf("no catalog is configured")
	}
	return catalog.Open(c.Context, cfg.Catalog, slog.Default())
}

func queryCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("query text is required")
	}

	eng, err := openEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	return runQuery(c.Context, c.App.Writer, eng, text)
}

// runQuery prints the accepted hits followed by the JSON payload, or the
// no-results message.
func runQuery(ctx context.Context, w io.Writer, eng *engine.Engine, text string) error {
	start := time.Now()
	q, hits, err := eng.Search(ctx, text)
	if err != nil {
		return err
	}

	candidates, err := eng.Select(q, hits)
	if err != nil {
		return err
	}

	records, err := eng.Results(ctx, q, hits)
	if err != nil {
		return err
	}

	eng.Record(ctx, q, len(records), start)

	fmt.Fprintf(w, "language: %s\n", q.Language)
	fmt.Fprintf(w, "terms: %s\n", strings.Join(q.Terms, " "))
	for i, cand := range candidates {
		fmt.Fprintf(w, "%.4f\t%s\t%s\n", cand.Score, cand.Path, records[i].Title)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, engine.NoResultsMessage)
		return nil
	}

	payload, err := engine.EncodeRecords(records)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, payload)
	return nil
}

func statsCommand(c *cli.Context) error {
	eng, err := openEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tCODE\tMODEL\tDOCUMENTS\tVOCABULARY\tTERMS\tTOPICS")
	for _, info := range eng.Info() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			info.Name, info.Code, info.Model, info.Documents,
			info.Vocabulary, info.Terms, info.Topics)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	top := c.Int("top")
	if top <= 0 {
		return nil
	}
	for _, name := range eng.Languages() {
		lc, err := eng.Context(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "\n%s:\n", name)
		for _, tf := range topTerms(lc.Frequencies(), top) {
			fmt.Fprintf(c.App.Writer, "  %s\t%d\n", tf.term, tf.count)
		}
	}
	return nil
}

type termCount struct {
	term  string
	count int
}

// topTerms returns the n most frequent terms, ties broken alphabetically.
func topTerms(freq map[string]int, n int) []termCount {
	out := make([]termCount, 0, len(freq))
	for t, c := range freq {
		out = append(out, termCount{term: t, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].term < out[j].term
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func detectCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	profiles := make([]*language.Profile, 0, len(cfg.Languages))
	for _, lc := range cfg.Languages {
		p, err := language.NewProfile(lc.Name, lc.Code, language.DefaultOptions())
		if err != nil {
			return err
		}
		profiles = append(profiles, p)
	}

	d := language.NewDetector(profiles, cfg.DefaultLanguage)
	scores := d.Scores(text)

	fmt.Fprintln(c.App.Writer, d.Detect(text))
	for _, p := range profiles {
		fmt.Fprintf(c.App.Writer, "  %s\t%d\n", p.Name(), scores[p.Name()])
	}
	return nil
}

func urlSetCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected a file name and a URL")
	}

	store, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer store.Close()

	name, url := c.Args().Get(0), c.Args().Get(1)
	if err := store.PutURLOverride(c.Context, name, url); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s -> %s\n", name, url)
	return nil
}

func urlListCommand(c *cli.Context) error {
	store, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer store.Close()

	overrides, err := store.URLOverrides(c.Context)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", name, overrides[name])
	}
	return nil
}

func logCommand(c *cli.Context) error {
	store, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.RecentQueries(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(c.App.Writer, "%s\t%s\t%d\t%s\t%s\n",
			e.At.Format("2006-01-02 15:04:05"), e.Language, e.Results, e.Duration, e.Query)
	}
	return nil
}
