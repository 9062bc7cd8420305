// Package pipeline orchestrates a full engine run: load inputs, build the
// probability models, score every mention, rank, and render reports. Data
// flows one way; a run either fully succeeds or writes nothing.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/corpus"
	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/llm"
	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/prob"
	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/rank"
	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/score"
)

// Pipeline wires the engine stages together for one configuration.
type Pipeline struct {
	builder   *prob.Builder
	scorer    *score.Scorer
	ranker    *rank.Ranker
	renderer  *Renderer
	annotator *llm.Annotator // nil when commentary is disabled
	config    *model.Config
}

// NewPipeline creates a pipeline from the given configuration.
func NewPipeline(cfg *model.Config) *Pipeline {
	var annotator *llm.Annotator
	if cfg.LLM.Provider != "" {
		a, err := llm.NewAnnotator(cfg.LLM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			annotator = a
		}
	}

	return &Pipeline{
		builder:   prob.NewBuilder(cfg.Engine.Alpha, cfg.Engine.MinMentions),
		scorer:    score.NewScorer(),
		ranker:    rank.NewRanker(cfg.Engine.SurprisalThreshold, cfg.Engine.TopK),
		renderer:  NewRenderer(),
		annotator: annotator,
		config:    cfg,
	}
}

// Analyze loads both input files and runs the engine.
func (p *Pipeline) Analyze(cataloguePath, mentionsPath string) (*model.Report, error) {
	cat, err := corpus.LoadCatalogue(cataloguePath)
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	return p.AnalyzeWithCatalogue(cat, cataloguePath, mentionsPath)
}

// AnalyzeWithCatalogue runs the engine against an already-loaded catalogue.
// Batch mode uses it to share one parsed catalogue across workers.
func (p *Pipeline) AnalyzeWithCatalogue(cat *model.Catalogue, cataloguePath, mentionsPath string) (*model.Report, error) {
	mentions, err := corpus.LoadMentions(mentionsPath)
	if err != nil {
		return nil, fmt.Errorf("load mentions: %w", err)
	}

	warnings, err := corpus.VerifyReferences(cat, mentions, p.config.Engine.Lenient)
	if err != nil {
		return nil, fmt.Errorf("verify references: %w", err)
	}

	profiles, models, err := p.builder.Build(cat, mentions)
	if err != nil {
		return nil, fmt.Errorf("build probability models: %w", err)
	}

	records := make([]model.DeviationRecord, 0, len(mentions))
	for _, m := range mentions {
		pm := models[m.CharacterID]
		kind, probability, bits := p.scorer.Score(pm, m)
		records = append(records, model.DeviationRecord{
			LineNumber:    m.LineNumber,
			CharacterID:   m.CharacterID,
			SurfaceForm:   m.SurfaceForm,
			FormulaText:   m.FormulaText,
			ContextWindow: m.ContextWindow,
			Kind:          kind,
			Probability:   probability,
			SurprisalBits: bits,
			LowConfidence: pm.LowConfidence,
		})
	}

	records = p.ranker.Rank(records)
	summaries, totals := p.ranker.Summarize(profiles, records)

	return &model.Report{
		CataloguePath: cataloguePath,
		MentionsPath:  mentionsPath,
		Config:        p.config.Engine,
		Totals:        totals,
		Characters:    summaries,
		Records:       records,
		Warnings:      warnings,
	}, nil
}

// RenderReport writes the structured JSON report and the human-readable text
// summary to the given paths (either may be empty to skip it).
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, textPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}
	if textPath != "" {
		if err := p.renderer.RenderText(report, textPath); err != nil {
			return fmt.Errorf("render text: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote text report: %s\n", textPath)
		}
	}
	return nil
}

// RenderCommentary generates LLM commentary next to the text report path
// (suffix .llm.md). A commentary failure never fails the run; scoring output
// is already on disk by then.
func (p *Pipeline) RenderCommentary(ctx context.Context, report *model.Report, textPath string, verbose bool) {
	if p.annotator == nil || textPath == "" {
		return
	}
	commentary, err := p.annotator.Annotate(ctx, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: LLM commentary failed: %v\n", err)
		return
	}
	mdPath := strings.TrimSuffix(textPath, ".txt") + ".llm.md"
	if err := os.WriteFile(mdPath, []byte(commentary), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to write commentary: %v\n", err)
		return
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote commentary: %s\n", mdPath)
	}
}
