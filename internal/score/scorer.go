// Package score computes information-theoretic surprisal for character
// mentions against their probability models.
package score

import (
	"math"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

// negZeroClamp absorbs floating noise: a probability of exactly 1.0 must
// yield surprisal exactly 0.0, never a tiny negative.
const negZeroClamp = 1e-9

// Scorer scores single mentions. It holds no state; all inputs arrive with
// each call, so scoring different characters is independent.
type Scorer struct{}

// NewScorer creates a new scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score returns the mention kind, the modeled probability of the observed
// event, and its surprisal in bits.
//
//   - A formula in the character's distribution support is scored directly.
//   - A formula outside the support (unattested for this character) is scored
//     as P(OTHER) * uniform-share: all unseen formulae are treated as equally
//     likely within the OTHER mass. The share changes absolute magnitudes,
//     not relative ranking under the same model, and is held constant for a
//     run for reproducibility.
//   - A mention with no formula at all is scored against the distinguished
//     NONE symbol; plain phrasing is a different phenomenon from an
//     unattested formula and never raises an unknown-formula error.
func (s *Scorer) Score(pm *model.ProbabilityModel, mention model.CharacterMention) (model.MentionKind, float64, float64) {
	var kind model.MentionKind
	var p float64

	switch {
	case !mention.HasFormula():
		kind = model.KindBare
		p = pm.Probability(model.SymbolNone)
	case pm.InSupport(mention.FormulaText):
		kind = model.KindFormulaic
		p = pm.Probability(mention.FormulaText)
	default:
		kind = model.KindUnattested
		p = pm.Probability(model.SymbolOther) / float64(pm.UnseenCount)
	}

	return kind, p, Surprisal(p)
}

// Surprisal is -log2(p), clamped so that p = 1.0 yields exactly 0.0. A zero
// probability (possible only with alpha = 0) maps to the finite sentinel so
// reports stay encodable and ranking stays total.
func Surprisal(p float64) float64 {
	if p <= 0 {
		return model.InfiniteSurprisal
	}
	bits := -math.Log2(p)
	if bits == 0 {
		return 0 // normalize -0.0 from p = 1.0
	}
	if bits < 0 && bits > -negZeroClamp {
		return 0
	}
	return bits
}
