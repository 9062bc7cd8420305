package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

const rule = "================================================================================"

// Renderer writes reports to disk. Output is a pure function of the report
// struct: no timestamps, no map iteration order (encoding/json sorts map
// keys), so identical runs produce identical bytes.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the structured report.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// RenderText writes the human-readable summary mirroring the structured
// report.
func (r *Renderer) RenderText(report *model.Report, path string) error {
	return os.WriteFile(path, []byte(r.Text(report)), 0o644)
}

// Text renders the report as a string.
func (r *Renderer) Text(report *model.Report) string {
	var b strings.Builder

	b.WriteString(rule + "\n")
	b.WriteString("HOMERIC FORMULA DEVIATION ANALYSIS\n")
	b.WriteString("Detecting Moments Where the Poet Breaks Formulaic Patterns\n")
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Catalogue: %s\n", report.CataloguePath)
	fmt.Fprintf(&b, "Mentions:  %s\n", report.MentionsPath)
	fmt.Fprintf(&b, "Config:    alpha=%g  min_mentions=%d  threshold=%g bits  top_k=%d  lenient=%t\n\n",
		report.Config.Alpha, report.Config.MinMentions, report.Config.SurprisalThreshold,
		report.Config.TopK, report.Config.Lenient)

	r.writeTotals(&b, report)
	r.writeTopMoments(&b, report)
	r.writeCharacters(&b, report)

	if len(report.Warnings) > 0 {
		b.WriteString("\n" + rule + "\n")
		b.WriteString("WARNINGS\n")
		b.WriteString(rule + "\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "  %s\n", w)
		}
	}
	return b.String()
}

func (r *Renderer) writeTotals(b *strings.Builder, report *model.Report) {
	t := report.Totals
	b.WriteString("OVERALL STATISTICS:\n")
	fmt.Fprintf(b, "  Total character mentions analyzed: %d\n", t.Mentions)
	if t.Mentions > 0 {
		fmt.Fprintf(b, "  Formulaic mentions: %d (%.1f%%)\n", t.FormulaicCount, pct(t.FormulaicCount, t.Mentions))
		fmt.Fprintf(b, "  Unattested formulae: %d (%.1f%%)\n", t.UnattestedCount, pct(t.UnattestedCount, t.Mentions))
		fmt.Fprintf(b, "  Bare mentions (no formula): %d (%.1f%%)\n", t.BareCount, pct(t.BareCount, t.Mentions))
		fmt.Fprintf(b, "  Flagged deviations: %d (%.1f%%)\n", t.FlaggedCount, pct(t.FlaggedCount, t.Mentions))
	}
	fmt.Fprintf(b, "  Characters modeled: %d (%d low-confidence)\n", t.Characters, t.LowConfidenceCharacters)
	fmt.Fprintf(b, "  Mean surprisal (confident characters): %.3f bits\n\n", t.MeanSurprisal)
}

func (r *Renderer) writeTopMoments(b *strings.Builder, report *model.Report) {
	top := report.TopK(report.Config.TopK)
	b.WriteString(rule + "\n")
	fmt.Fprintf(b, "HIGH SURPRISAL MOMENTS (Top %d)\n", len(top))
	b.WriteString("These are the moments where formula usage is most unexpected\n")
	b.WriteString(rule + "\n")

	for i, rec := range top {
		fmt.Fprintf(b, "\n%d. Line %d: %s\n", i+1, rec.LineNumber, rec.CharacterID)
		fmt.Fprintf(b, "   Surprisal: %.2f bits\n", rec.SurprisalBits)
		fmt.Fprintf(b, "   Probability: %.2f%%\n", rec.Probability*100)
		switch rec.Kind {
		case model.KindBare:
			b.WriteString("   Type: BARE MENTION (no formula)\n")
		case model.KindUnattested:
			fmt.Fprintf(b, "   Type: UNATTESTED FORMULA\n   Formula used: %s\n", rec.FormulaText)
		default:
			fmt.Fprintf(b, "   Formula used: %s\n", rec.FormulaText)
		}
		if rec.SurfaceForm != "" {
			fmt.Fprintf(b, "   Form: %s\n", rec.SurfaceForm)
		}
		if rec.ContextWindow != "" {
			fmt.Fprintf(b, "   Context: %s\n", rec.ContextWindow)
		}
	}
}

func (r *Renderer) writeCharacters(b *strings.Builder, report *model.Report) {
	b.WriteString("\n" + rule + "\n")
	b.WriteString("DEVIATIONS BY CHARACTER\n")
	b.WriteString(rule + "\n")

	for _, s := range report.Characters {
		fmt.Fprintf(b, "\n%s:\n", s.CharacterID)
		fmt.Fprintf(b, "  Total mentions: %d", s.Mentions)
		if s.LowConfidence {
			b.WriteString(" (low confidence)")
		}
		b.WriteString("\n")
		fmt.Fprintf(b, "  Formulaic: %d, unattested: %d, bare: %d\n", s.FormulaicCount, s.UnattestedCount, s.BareCount)
		fmt.Fprintf(b, "  Mean surprisal: %.3f bits, deviation rate: %.1f%% (P90 %.2f bits)\n",
			s.MeanSurprisal, s.DeviationRate*100, s.P90Surprisal)
		if len(s.TopMoments) > 0 {
			b.WriteString("  Most surprising moments:\n")
			for _, m := range s.TopMoments {
				fmt.Fprintf(b, "    Line %d: surprisal %.2f\n", m.LineNumber, m.SurprisalBits)
			}
		}
	}
}

func pct(part, whole int) float64 {
	return float64(part) / float64(whole) * 100
}
