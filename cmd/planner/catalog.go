package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/spell-planner/internal/catalogbuild"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/catalog"
)

var (
	knownLevel int
	buildOut   string
	buildPrint bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and build class spell catalogs",
}

var listClassesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the available classes",
	Args:  cobra.NoArgs,
	RunE:  runListClasses,
}

var classSpellsCmd = &cobra.Command{
	Use:   "spells [class]",
	Short: "List a class's spells with the level each is replaced at",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassSpells,
}

var knownSpellsCmd = &cobra.Command{
	Use:   "known [class]",
	Short: "List the spells a class knows at a level",
	Args:  cobra.ExactArgs(1),
	RunE:  runKnownSpells,
}

var preloadCmd = &cobra.Command{
	Use:   "preload [class...]",
	Short: "Load catalogs and report spell counts",
	RunE:  runPreload,
}

var buildCatalogCmd = &cobra.Command{
	Use:   "build [url]",
	Short: "Convert a spell list web page into a catalog file",
	Long: `build downloads an HTML page with a spell table (name, line, level columns
where name and level cells may hold comma separated lists) and writes the
catalog JSON used by the directory source.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuildCatalog,
}

func init() {
	knownSpellsCmd.Flags().IntVar(&knownLevel, "level", 1, "Character level")
	buildCatalogCmd.Flags().StringVar(&buildOut, "out-dir", "assets", "Directory for the catalog file")
	buildCatalogCmd.Flags().BoolVar(&buildPrint, "print", false, "Print the catalog instead of writing it")

	catalogCmd.AddCommand(listClassesCmd)
	catalogCmd.AddCommand(classSpellsCmd)
	catalogCmd.AddCommand(knownSpellsCmd)
	catalogCmd.AddCommand(preloadCmd)
	catalogCmd.AddCommand(buildCatalogCmd)
}

func runListClasses(_ *cobra.Command, _ []string) error {
	return withApp(func(_ context.Context, a *app) error {
		for _, class := range a.catalog.ListAvailableClasses() {
			fmt.Println(class)
		}
		return nil
	})
}

func runClassSpells(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.catalog.ListSpellsWithReplacement(ctx, &catalog.ListSpellsWithReplacementInput{ClassName: args[0]})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LEVEL\tSPELL\tLINE\tREPLACED AT")
		for _, spell := range out.Spells {
			replacedAt := "-"
			if spell.ReplacedAtLevel != nil {
				replacedAt = fmt.Sprintf("%d", *spell.ReplacedAtLevel)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", spell.Level, spell.Name, spell.Line, replacedAt)
		}
		return w.Flush()
	})
}

func runKnownSpells(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.catalog.ListKnownSpells(ctx, &catalog.ListKnownSpellsInput{
			ClassName: args[0],
			Level:     knownLevel,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LEVEL\tSPELL\tLINE\tQUALITY")
		for _, spell := range out.Spells {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", spell.Level, spell.Name, spell.Line, spell.Quality.Name)
		}
		return w.Flush()
	})
}

func runPreload(_ *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		out, err := a.catalog.Preload(ctx, &catalog.PreloadInput{ClassNames: args})
		if err != nil {
			return err
		}

		classes := make([]string, 0, len(out.SpellCounts))
		for class := range out.SpellCounts {
			classes = append(classes, class)
		}
		sort.Strings(classes)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CLASS\tSPELLS")
		for _, class := range classes {
			fmt.Fprintf(w, "%s\t%d\n", class, out.SpellCounts[class])
		}
		return w.Flush()
	})
}

func runBuildCatalog(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := catalogbuild.Fetch(ctx, &http.Client{Timeout: timeout}, args[0])
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	for _, line := range result.Mismatched {
		fmt.Fprintf(os.Stderr, "warning: name and level counts differ for line %q\n", line)
	}

	if buildPrint {
		return printJSON(os.Stdout, result.Catalog)
	}

	if err := os.MkdirAll(buildOut, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(buildOut, catalogbuild.FileName(result.Catalog.Class))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create catalog file: %w", err)
	}
	defer f.Close()

	if err := printJSON(f, result.Catalog); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	fmt.Printf("wrote %d spells for %s to %s\n", len(result.Catalog.Spells), result.Catalog.Class, path)
	return nil
}
