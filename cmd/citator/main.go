package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/coolbeans/citator/pkg/annotate"
	"github.com/coolbeans/citator/pkg/cite"
	"github.com/coolbeans/citator/pkg/extract"
	"github.com/coolbeans/citator/pkg/pipeline"
	"github.com/coolbeans/citator/pkg/reporters"
	"github.com/coolbeans/citator/pkg/resolve"
	"github.com/coolbeans/citator/pkg/tokenize"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "citator",
		Short: "Legal citation extraction and resolution",
		Long: `Citator finds legal citations in documents and resolves short forms
against their antecedents.

It recognizes:
  - Full case citations with case names, courts, dates, dispositions and
    parallel reporters
  - Statute citations (U.S.C., C.F.R.)
  - Short forms: Id./Ibid., supra, and volume-reporter pincites`,
		Version: version,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(annotateCmd())
	rootCmd.AddCommand(reportersCmd())
	rootCmd.AddCommand(batchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// citationJSON pairs each citation with its type tag, which the concrete
// structs do not carry themselves.
type citationJSON struct {
	Type     cite.Type     `json:"type"`
	Citation cite.Citation `json:"citation"`
}

func wrapCitations(citations []cite.Citation) []citationJSON {
	wrapped := make([]citationJSON, len(citations))
	for i, c := range citations {
		wrapped[i] = citationJSON{Type: c.CitationType(), Citation: c}
	}
	return wrapped
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// readInput returns the document text from --text or from the file argument.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	text, _ := cmd.Flags().GetString("text")
	if text != "" {
		return text, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("provide a file argument or --text")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

func addDocumentFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("text", "t", "", "Inline document text instead of a file")
	cmd.Flags().StringSlice("clean", tokenize.CleanerNames(), "Cleaning steps to apply before tokenizing")
	cmd.Flags().String("reporters-dir", "", "Directory of custom reporter YAML files")
	cmd.Flags().Float64("threshold", resolve.DefaultThreshold, "Fuzzy-match similarity threshold for supra resolution")
}

// buildPipeline assembles the document pipeline from the shared flags. The
// built-in reporter database is preloaded so the confidence scorer can use
// it; a custom directory replaces the lookup entirely.
func buildPipeline(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	steps, _ := cmd.Flags().GetStringSlice("clean")
	dir, _ := cmd.Flags().GetString("reporters-dir")
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	opts := []pipeline.Option{
		pipeline.WithCleaners(steps...),
		pipeline.WithResolver(resolve.New(resolve.WithThreshold(threshold))),
	}

	if _, err := reporters.Preload(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: reporter database unavailable: %v\n", err)
	}
	if dir != "" {
		registry, err := reporters.NewRegistryWithDirectory(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load reporters from %s: %w", dir, err)
		}
		lookup := func(abbreviation string) ([]reporters.Edition, bool) {
			return registry.Find(abbreviation), true
		}
		opts = append(opts, pipeline.WithEngine(extract.New(extract.WithReporterLookup(lookup))))
	}

	return pipeline.New(opts...), nil
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract citations from a document",
		Long: `Extract all citations from a document and print them as JSON.

Example:
  citator extract opinion.txt
  citator extract --text "Smith v. Jones, 500 F.2d 123 (9th Cir. 2020)"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			p, err := buildPipeline(cmd)
			if err != nil {
				return err
			}
			result, err := p.Run(text)
			if err != nil {
				return err
			}
			return printJSON(wrapCitations(result.Citations))
		},
	}
	addDocumentFlags(cmd)
	return cmd
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Extract citations and resolve short forms",
		Long: `Extract all citations and resolve Id., supra, and short-form
citations against their antecedents. Prints citations and resolutions as JSON.

Example:
  citator resolve opinion.txt
  citator resolve --threshold 0.9 opinion.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			p, err := buildPipeline(cmd)
			if err != nil {
				return err
			}
			result, err := p.Run(text)
			if err != nil {
				return err
			}
			return printJSON(struct {
				Citations   []citationJSON       `json:"citations"`
				Resolutions []resolve.Resolution `json:"resolutions"`
			}{wrapCitations(result.Citations), result.Resolutions})
		},
	}
	addDocumentFlags(cmd)
	return cmd
}

func annotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate [file]",
		Short: "Insert markup around citations in a document",
		Long: `Wrap every citation found in the document in markup and print the
annotated text. Offsets refer to the original input, so markup lands on the
source spelling even when cleaning rewrote the text for matching.

Example:
  citator annotate opinion.html
  citator annotate --before '<a class="cite">' --after '</a>' opinion.html
  citator annotate --full-span opinion.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, _ := cmd.Flags().GetString("before")
			after, _ := cmd.Flags().GetString("after")
			fullSpan, _ := cmd.Flags().GetBool("full-span")
			noEscape, _ := cmd.Flags().GetBool("no-escape")

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			p, err := buildPipeline(cmd)
			if err != nil {
				return err
			}
			result, err := p.Run(text)
			if err != nil {
				return err
			}

			var opts []annotate.Option
			if fullSpan {
				opts = append(opts, annotate.WithFullSpans())
			}
			if noEscape {
				opts = append(opts, annotate.WithoutEscaping())
			}
			annotator := annotate.New(before, after, opts...)
			fmt.Print(annotator.Annotate(text, result.Citations))
			return nil
		},
	}
	addDocumentFlags(cmd)
	cmd.Flags().String("before", "<cite>", "Markup inserted before each citation")
	cmd.Flags().String("after", "</cite>", "Markup inserted after each citation")
	cmd.Flags().Bool("full-span", false, "Annotate full spans (case name through parentheticals) when available")
	cmd.Flags().Bool("no-escape", false, "Do not HTML-escape annotated text")
	return cmd
}

func reportersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reporters",
		Short: "Inspect the reporter-abbreviation database",
	}
	cmd.AddCommand(reportersFindCmd())
	cmd.AddCommand(reportersListCmd())
	return cmd
}

func reportersFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <abbreviation>",
		Short: "Look up a reporter abbreviation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			var editions []reporters.Edition
			if dir != "" {
				registry, err := reporters.NewRegistryWithDirectory(dir)
				if err != nil {
					return fmt.Errorf("failed to load reporters from %s: %w", dir, err)
				}
				editions = registry.Find(args[0])
			} else {
				db, err := reporters.Preload()
				if err != nil {
					return fmt.Errorf("failed to load reporter database: %w", err)
				}
				editions = db.Find(args[0])
			}

			if len(editions) == 0 {
				return fmt.Errorf("unknown reporter abbreviation: %s", args[0])
			}
			return printJSON(editions)
		},
	}
	cmd.Flags().String("dir", "", "Directory of custom reporter YAML files")
	return cmd
}

func reportersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known reporter abbreviations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			db, err := reporters.Preload()
			if err != nil {
				return fmt.Errorf("failed to load reporter database: %w", err)
			}
			abbreviations := db.Abbreviations()

			if dir != "" {
				registry, err := reporters.NewRegistryWithDirectory(dir)
				if err != nil {
					return fmt.Errorf("failed to load reporters from %s: %w", dir, err)
				}
				fmt.Printf("Custom reporters loaded from %s: %d\n\n", dir, registry.CustomCount())
			}

			sort.Strings(abbreviations)
			for _, abbreviation := range abbreviations {
				fmt.Println(abbreviation)
			}
			fmt.Printf("\n%d abbreviations\n", len(abbreviations))
			return nil
		},
	}
	cmd.Flags().String("dir", "", "Directory of custom reporter YAML files")
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <files...>",
		Short: "Process documents concurrently",
		Long: `Run the full pipeline over several documents at once. Documents
share no state and run across a bounded worker pool.

Example:
  citator batch opinions/*.txt
  citator batch --workers 8 --format json opinions/*.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")
			formatStr, _ := cmd.Flags().GetString("format")

			p, err := buildPipeline(cmd)
			if err != nil {
				return err
			}
			results, err := p.RunFiles(context.Background(), args, workers)
			if err != nil {
				return err
			}

			if formatStr == "json" {
				output := make(map[string]any, len(results))
				for path, result := range results {
					output[path] = struct {
						Citations   []citationJSON       `json:"citations"`
						Resolutions []resolve.Resolution `json:"resolutions"`
					}{wrapCitations(result.Citations), result.Resolutions}
				}
				return printJSON(output)
			}

			paths := make([]string, 0, len(results))
			for path := range results {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			for _, path := range paths {
				result := results[path]
				resolved := 0
				for _, r := range result.Resolutions {
					if r.Resolved {
						resolved++
					}
				}
				fmt.Printf("%s: %d citations, %d short forms resolved\n", path, len(result.Citations), resolved)
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("clean", tokenize.CleanerNames(), "Cleaning steps to apply before tokenizing")
	cmd.Flags().String("reporters-dir", "", "Directory of custom reporter YAML files")
	cmd.Flags().Float64("threshold", resolve.DefaultThreshold, "Fuzzy-match similarity threshold for supra resolution")
	cmd.Flags().IntP("workers", "w", 0, "Concurrent documents (0 = number of CPUs)")
	cmd.Flags().String("format", "summary", "Output format (summary, json)")
	return cmd
}
