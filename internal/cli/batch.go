package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/corpus"
	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/pipeline"
	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/worker"
)

var (
	batchCatalogue string
	concurrency    int
	outputDir      string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze every mention corpus in a directory in parallel",
	Long: `Batch processes a directory of mention-corpus files against one
catalogue:
- Every .json/.yaml/.yml file in the directory is analyzed
- Corpora are processed in parallel with a configurable worker count
- The catalogue is parsed once and shared read-only across workers
- Each corpus gets its own JSON report and text summary in the output dir

Per-file outputs are byte-for-byte the same as a single analyze run.

Example:
  epea batch ./books --catalogue formulae.json
  epea batch ./books --catalogue formulae.json --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	defaults := model.DefaultConfig()

	batchCmd.Flags().StringVar(&batchCatalogue, "catalogue", "", "formula catalogue file (required)")
	_ = batchCmd.MarkFlagRequired("catalogue")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./epea-reports", "output directory for reports")

	// Engine flags, same semantics as analyze
	batchCmd.Flags().Float64Var(&alpha, "alpha", defaults.Engine.Alpha, "additive smoothing pseudo-count (>= 0)")
	batchCmd.Flags().IntVar(&minMentions, "min-mentions", defaults.Engine.MinMentions, "minimum mentions before a character's statistics count as confident")
	batchCmd.Flags().Float64Var(&threshold, "threshold", defaults.Engine.SurprisalThreshold, "absolute surprisal flag threshold in bits")
	batchCmd.Flags().IntVar(&topK, "top-k", defaults.Engine.TopK, "number of top outliers in the detailed report")
	batchCmd.Flags().BoolVar(&lenient, "lenient", false, "score uncatalogued formulae against OTHER instead of failing")
}

// batchJob analyzes one mention corpus. Jobs share only the read-only
// catalogue cache, so partitioning by file is safe without locking.
type batchJob struct {
	pipeline     *pipeline.Pipeline
	catalogues   *corpus.CatalogueCache
	catalogue    string
	mentionsPath string
	outputDir    string
}

// batchResult is the outcome of one corpus analysis.
type batchResult struct {
	mentionsPath string
	flagged      int
	mentions     int
	err          error
}

func (r batchResult) Err() error { return r.err }

func (j batchJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return batchResult{mentionsPath: j.mentionsPath, err: err}
	}

	cat, err := j.catalogues.Load(j.catalogue)
	if err != nil {
		return batchResult{mentionsPath: j.mentionsPath, err: err}
	}

	report, err := j.pipeline.AnalyzeWithCatalogue(cat, j.catalogue, j.mentionsPath)
	if err != nil {
		return batchResult{mentionsPath: j.mentionsPath, err: err}
	}

	stem := strings.TrimSuffix(filepath.Base(j.mentionsPath), filepath.Ext(j.mentionsPath))
	jsonPath := filepath.Join(j.outputDir, stem+".deviation.json")
	textPath := filepath.Join(j.outputDir, stem+".deviation.txt")
	if err := j.pipeline.RenderReport(report, jsonPath, textPath, false); err != nil {
		return batchResult{mentionsPath: j.mentionsPath, err: err}
	}

	return batchResult{
		mentionsPath: j.mentionsPath,
		flagged:      report.Totals.FlaggedCount,
		mentions:     report.Totals.Mentions,
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	bindFlags(cmd)
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	// The --concurrency default is NumCPU, not the config-file default, so
	// it only falls back to the merged value when something actually set it.
	if !viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = concurrency
	}
	workers := cfg.Concurrency.Workers

	files, err := listCorpusFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no corpus files (.json/.yaml/.yml) in %s", dir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Epea Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Catalogue:    %s\n", batchCatalogue)
	fmt.Fprintf(os.Stderr, "  Corpora:      %d files in %s\n", len(files), dir)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.NewPipeline(cfg)
	catalogues := corpus.NewCatalogueCache(5 * time.Minute)

	// Parse and validate the catalogue up front: a broken catalogue should
	// abort the batch before any report is written.
	if _, err := catalogues.Load(batchCatalogue); err != nil {
		return fmt.Errorf("load catalogue: %w", err)
	}

	pool := worker.NewPool(workers)
	pool.Start()
	for _, f := range files {
		pool.Submit(batchJob{
			pipeline:     p,
			catalogues:   catalogues,
			catalogue:    batchCatalogue,
			mentionsPath: f,
			outputDir:    outputDir,
		})
	}
	results := pool.Wait()

	failed := 0
	for _, res := range results {
		br := res.(batchResult)
		if br.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", br.mentionsPath, br.err)
			continue
		}
		fmt.Fprintf(os.Stderr, "  ✓ %s: %d mentions, %d flagged\n", br.mentionsPath, br.mentions, br.flagged)
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d succeeded, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d corpora failed", failed, len(results))
	}
	return nil
}

// listCorpusFiles returns the corpus files in dir, sorted for stable
// submission order.
func listCorpusFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
