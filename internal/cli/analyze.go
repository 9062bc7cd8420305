package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/pipeline"
)

var (
	outJSON     string
	outText     string
	alpha       float64
	minMentions int
	threshold   float64
	topK        int
	lenient     bool
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <catalogue> <mentions>",
	Short: "Analyze one mention corpus and generate a deviation report",
	Long: `Analyze runs the deviation detection engine on a single corpus:
- Build a smoothed probability model of formula choice per character
- Score every mention by surprisal (-log2 of its modeled probability)
- Rank deviations and flag outliers by threshold and top-K
- Write a structured JSON report and a human-readable text summary

Inputs are a formula catalogue and a mention corpus (JSON, or YAML by
extension). Identical inputs and configuration always produce byte-identical
reports.

Example:
  epea analyze formulae.json homer_analysis.json
  epea analyze formulae.yaml mentions.json --alpha 0.25 --top-k 50
  epea analyze formulae.json mentions.json --llm --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	defaults := model.DefaultConfig()

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", defaults.Output.JSONPath, "output JSON path (empty to skip)")
	analyzeCmd.Flags().StringVar(&outText, "txt", defaults.Output.TextPath, "output text report path (empty to skip)")

	// Engine flags
	analyzeCmd.Flags().Float64Var(&alpha, "alpha", defaults.Engine.Alpha, "additive smoothing pseudo-count (>= 0)")
	analyzeCmd.Flags().IntVar(&minMentions, "min-mentions", defaults.Engine.MinMentions, "minimum mentions before a character's statistics count as confident")
	analyzeCmd.Flags().Float64Var(&threshold, "threshold", defaults.Engine.SurprisalThreshold, "absolute surprisal flag threshold in bits")
	analyzeCmd.Flags().IntVar(&topK, "top-k", defaults.Engine.TopK, "number of top outliers in the detailed report")
	analyzeCmd.Flags().BoolVar(&lenient, "lenient", false, "score uncatalogued formulae against OTHER instead of failing")

	// LLM flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM commentary on top outliers")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, or openai-compatible via EPEA_LLM_BASE_URL)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cataloguePath, mentionsPath := args[0], args[1]

	bindFlags(cmd)
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Catalogue: %s\n", cataloguePath)
		fmt.Fprintf(os.Stderr, "Mentions:  %s\n", mentionsPath)
		fmt.Fprintf(os.Stderr, "Alpha: %g, threshold: %g bits, top-K: %d\n\n", cfg.Engine.Alpha, cfg.Engine.SurprisalThreshold, cfg.Engine.TopK)
	}

	p := pipeline.NewPipeline(cfg)

	report, err := p.Analyze(cataloguePath, mentionsPath)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Scored %d mentions across %d characters\n", report.Totals.Mentions, report.Totals.Characters)
		fmt.Fprintf(os.Stderr, "✓ Flagged %d deviations\n", report.Totals.FlaggedCount)
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, cfg.Output.JSONPath, cfg.Output.TextPath, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	p.RenderCommentary(context.Background(), report, cfg.Output.TextPath, verbose)
	return nil
}

// buildConfig assembles the run configuration: changed flags over EPEA_*
// environment variables over the config file over defaults, then validates
// the merged values.
func buildConfig() (*model.Config, error) {
	cfg := mergedConfig()

	if cfg.Engine.Alpha < 0 {
		return nil, fmt.Errorf("alpha must be >= 0, got %g", cfg.Engine.Alpha)
	}
	if cfg.Engine.TopK < 0 {
		return nil, fmt.Errorf("top-k must be >= 0, got %d", cfg.Engine.TopK)
	}
	cfg.Output.Verbose = verbose

	// Commentary stays gated on the --llm flag; the config file and env only
	// refine the provider once it is enabled.
	if llmEnabled {
		if cfg.LLM.Provider == "" {
			cfg.LLM.Provider = llmProvider
		}
		if cfg.LLM.Model == "" {
			cfg.LLM.Model = llmModel
		}
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("EPEA_LLM_BASE_URL")
		}
		if cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set (or point EPEA_LLM_BASE_URL at an OpenAI-compatible endpoint)")
		}
	} else {
		cfg.LLM.Provider = ""
	}
	return cfg, nil
}
