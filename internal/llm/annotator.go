package llm

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

// Annotator drives a provider to produce commentary on a report's top
// outliers, rate limiting API calls across a batch run.
type Annotator struct {
	provider Provider
	limiter  *rate.Limiter
	config   model.LLMConfig
}

// NewAnnotator builds an annotator from configuration, or returns nil when no
// provider is configured.
func NewAnnotator(cfg model.LLMConfig) (*Annotator, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		p, err := NewOpenAIProvider(cfg)
		if err != nil {
			return nil, err
		}
		rpm := cfg.RequestsPerMinute
		if rpm <= 0 {
			rpm = 20
		}
		return &Annotator{
			provider: p,
			limiter:  rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
			config:   cfg,
		}, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// Annotate generates markdown commentary for the report's top outliers. The
// report is read-only throughout.
func (a *Annotator) Annotate(ctx context.Context, report *model.Report) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := a.provider.Comment(ctx, CommentRequest{
		Report:    report,
		MaxTokens: a.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s commentary: %w", a.provider.Name(), err)
	}

	var b strings.Builder
	b.WriteString("# Deviation commentary (LLM-generated)\n\n")
	b.WriteString("> Generated by " + a.provider.Name() + "/" + resp.Model + ". ")
	b.WriteString("This commentary never affects scoring and is not part of the structured report.\n\n")
	b.WriteString(resp.Commentary)
	b.WriteString("\n")
	return b.String(), nil
}

// BuildPrompt renders the default prompt: the run's headline statistics and
// its top-K outliers, one line each.
func BuildPrompt(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A deviation analysis of a corpus of epic verse scored %d character mentions.\n", report.Totals.Mentions)
	fmt.Fprintf(&b, "Surprisal is -log2 P(formula | character); high values mean the formula choice is unexpected for that character.\n\n")
	fmt.Fprintf(&b, "The %d most surprising mentions:\n", len(report.TopK(report.Config.TopK)))

	for _, rec := range report.TopK(report.Config.TopK) {
		switch rec.Kind {
		case model.KindBare:
			fmt.Fprintf(&b, "- line %d: %s, no formula at all (%.2f bits)\n",
				rec.LineNumber, rec.CharacterID, rec.SurprisalBits)
		case model.KindUnattested:
			fmt.Fprintf(&b, "- line %d: %s with formula %q, never attested for this character (%.2f bits)\n",
				rec.LineNumber, rec.CharacterID, rec.FormulaText, rec.SurprisalBits)
		default:
			fmt.Fprintf(&b, "- line %d: %s with rare formula %q (%.2f bits)\n",
				rec.LineNumber, rec.CharacterID, rec.FormulaText, rec.SurprisalBits)
		}
	}

	b.WriteString("\nFor each listed mention, suggest in one or two sentences what narrative significance " +
		"the deviation might carry (deaths, recognitions, turning points, emotional climaxes). " +
		"Group related mentions where it helps. Do not restate the statistics.\n")
	return b.String()
}
