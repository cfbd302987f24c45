// transkit — translation index toolkit: discovers locale files across a
// source tree, parses them into a unified key→locale→value index, and
// exposes lookup, search, coverage, create-key, and rename operations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/transkit/transkit/framework"
	"github.com/transkit/transkit/fuzzy"
	"github.com/transkit/transkit/i18n"
	"github.com/transkit/transkit/index"
	"github.com/transkit/transkit/langmeta"
	"github.com/transkit/transkit/namespace"
	"github.com/transkit/transkit/rename"
	"github.com/transkit/transkit/settings"
	"github.com/transkit/transkit/watcher"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Global flags and shared state
// ---------------------------------------------------------------------------

var (
	rootDir string
	verbose bool
	log     zerolog.Logger
)

// resolveRoot turns --root into an absolute path.
func resolveRoot() error {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	rootDir = abs
	return nil
}

// buildIndex creates and initializes the index for the project root.
func buildIndex(ctx context.Context) (*index.Index, error) {
	ix := index.New(rootDir, index.Options{Logger: log})
	if err := ix.Initialize(ctx); err != nil {
		return nil, err
	}
	return ix, nil
}

// newResolver wires the namespace resolver from detected framework and
// configured function names.
func newResolver(ix *index.Index, s settings.Settings) *namespace.Resolver {
	fw := ix.Framework()
	if s.Framework != "" {
		fw = framework.Framework(s.Framework)
	}
	return namespace.NewResolver(fw, s.FunctionNames())
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transkit",
		Short: "Translation index toolkit for i18n resources",
		Long: `transkit — translation index toolkit.

Indexes i18n translation resources (JSON, YAML, TOML, .properties, and
JS/TS object-literal locale files) scattered across a source tree into a
unified key→locale→value map, deriving namespace prefixes from file-path
conventions. The index answers exact and fuzzy key queries, reports
per-locale coverage, inserts new keys into the right files, and renames
keys across declarations and call sites.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()
			if err := resolveRoot(); err != nil {
				return err
			}
			settings.LoadEnvFile(filepath.Join(rootDir, ".env"))
			i18n.Init("")
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&rootDir, "root", "r", ".", "project root to index")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newStatusCmd(),
		newKeysCmd(),
		newGetCmd(),
		newSearchCmd(),
		newMissingCmd(),
		newReportCmd(),
		newCreateCmd(),
		newRenameCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("transkit %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project indexing status",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info().Msg(i18n.T("Indexing translation files..."))
			ix, err := buildIndex(cmd.Context())
			if err != nil {
				return err
			}
			files := ix.Files()
			if len(files) == 0 {
				fmt.Println(i18n.T("No translation files found"))
				return nil
			}
			fmt.Printf(i18n.N("Found %d translation file", "Found %d translation files", len(files))+"\n", len(files))
			fmt.Printf("Project root: %s\n", ix.Root())
			fmt.Printf("Framework:    %s\n", ix.Framework().DisplayName())
			fmt.Printf("Keys:         %d\n", len(ix.GetAllKeys()))
			labels := make([]string, 0)
			for _, loc := range ix.GetAvailableLocales() {
				labels = append(labels, langmeta.Label(loc))
			}
			fmt.Printf("Locales:      %s\n", strings.Join(labels, ", "))
			fmt.Println()
			for _, f := range files {
				fmt.Printf("  %-50s locale=%-8s entries=%d\n", f.Path, f.Locale, len(f.Entries))
			}
			return nil
		},
	}
}

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys [prefix]",
		Short: "List indexed keys, optionally filtered by prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := buildIndex(cmd.Context())
			if err != nil {
				return err
			}
			keys := ix.GetAllKeys()
			if len(args) == 1 {
				keys = ix.FindKeysByPrefix(args[0])
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	var loc string
	var all bool
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Resolve a key to its translation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := buildIndex(cmd.Context())
			if err != nil {
				return err
			}
			key := args[0]
			if all {
				entries := ix.GetAllTranslations(key)
				if len(entries) == 0 {
					return fmt.Errorf(i18n.T("Key not found: %s"), key)
				}
				locales := make([]string, 0, len(entries))
				for l := range entries {
					locales = append(locales, l)
				}
				sort.Strings(locales)
				for _, l := range locales {
					e := entries[l]
					fmt.Printf("%-10s %s  (%s)\n", l, e.Value, e.Path)
				}
				return nil
			}
			s := settings.Load()
			if loc == "" {
				loc = s.DisplayLocale
			}
			e, ok := ix.GetTranslation(key, loc)
			if !ok {
				return fmt.Errorf(i18n.T("Key not found: %s"), key)
			}
			fmt.Printf("%s  [%s, %s:%d]\n", e.Value, e.Locale, e.Path, e.Offset)
			return nil
		},
	}
	cmd.Flags().StringVarP(&loc, "locale", "l", "", "locale to resolve (default: display locale with fallback)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "show every locale's value")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var ns string
	var limit int
	cmd := &cobra.Command{
		Use:   "search [input]",
		Short: "Fuzzy-search keys and translated text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := buildIndex(cmd.Context())
			if err != nil {
				return err
			}
			s := settings.Load()
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			var cands []fuzzy.Candidate
			for _, k := range ix.GetAllKeys() {
				c := fuzzy.Candidate{Key: k}
				if e, ok := ix.GetTranslation(k, s.DisplayLocale); ok {
					c.Value = e.Value
				}
				cands = append(cands, c)
			}
			matches := fuzzy.Rank(input, cands, ns)
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}
			for _, m := range matches {
				if text, ok := ix.Hint(m.Key, s); ok {
					fmt.Printf("%4d  %s\n", m.Score, text)
				} else {
					fmt.Printf("%4d  %s\n", m.Score, m.Key)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&ns, "namespace", "n", "", "namespace to favor in ranking")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results (0 = all)")
	return cmd
}

func newMissingCmd() *cobra.Command {
	var loc string
	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List keys missing from locales",
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := buildIndex(cmd.Context())
			if err != nil {
				return err
			}
			rep := ix.Report()
			for _, cov := range rep.Locales {
				if loc != "" && cov.Locale != loc {
					continue
				}
				if len(cov.Missing) == 0 {
					continue
				}
				fmt.Printf("%s (%d missing):\n", cov.Locale, len(cov.Missing))
				for _, k := range cov.Missing {
					fmt.Printf("  %s\n", k)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&loc, "locale", "l", "", "restrict to one locale")
	return cmd
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Show per-locale coverage statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := buildIndex(cmd.Context())
			if err != nil {
				return err
			}
			rep := ix.Report()
			fmt.Printf("Files: %d   Keys: %d   Reference locale: %s\n\n", rep.Files, rep.Keys, rep.ReferenceLocale)
			for _, cov := range rep.Locales {
				fmt.Printf("  %-10s %4d keys   %5.1f%% coverage   %d missing\n",
					cov.Locale, cov.Translated, cov.Coverage*100, len(cov.Missing))
			}
			if len(rep.Orphaned) > 0 {
				fmt.Printf("\nOrphaned keys (absent from %s):\n", rep.ReferenceLocale)
				for _, k := range rep.Orphaned {
					fmt.Printf("  %s\n", k)
				}
			}
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   "create <key>",
		Short: "Insert a new key into its matching translation files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := buildIndex(cmd.Context())
			if err != nil {
				return err
			}
			results, err := ix.CreateKey(cmd.Context(), args[0], value)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					log.Warn().Err(r.Err).Str("path", r.Path).Msg("insert failed")
					continue
				}
				fmt.Printf("  %s (%s) — caret at offset %d\n", r.Path, r.Locale, r.Offset)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "initial value for the new key")
	return cmd
}

func newRenameCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "rename <old-key> <new-key>",
		Short: "Rename a key across locale files and call sites",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := buildIndex(cmd.Context())
			if err != nil {
				return err
			}
			s := settings.Load()
			eng := rename.New(ix, newResolver(ix, s), s.FunctionNames(), log)

			plan, err := eng.Plan(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			for _, ed := range plan.Edits {
				fmt.Printf("  %-12s %s @%d  %s -> %s\n", ed.Kind, ed.Path, ed.Offset, ed.OldText, ed.NewText)
			}
			for _, p := range plan.Problems {
				log.Warn().Err(p.Err).Str("path", p.Path).Msg("cannot plan edit")
			}
			if dryRun {
				return nil
			}

			res := eng.Apply(cmd.Context(), plan)
			fmt.Printf(i18n.N("Renamed %d site", "Renamed %d sites", res.Applied)+"\n", res.Applied)
			for _, p := range res.Failed {
				log.Warn().Err(p.Err).Str("path", p.Path).Msg("edit not applied")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show planned edits without applying")
	return cmd
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the tree and keep the index current",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ix, err := buildIndex(ctx)
			if err != nil {
				return err
			}
			fmt.Println(i18n.T("Watching for changes (Ctrl+C to stop)"))
			w := watcher.New(ix, watcher.DefaultDebounce, log)
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
