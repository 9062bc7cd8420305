// Package prob builds per-character probability models of formula choice.
//
// Smoothing scheme: the symbol domain for a character is its catalogued
// eligible formulae plus the synthetic OTHER and NONE symbols. Every symbol
// receives the pseudo-count alpha before normalization, so
//
//	P(s) = (count(s) + alpha) / (N + alpha*K)
//
// with N the character's mention count and K the domain size. With alpha > 0
// no symbol has probability exactly zero; most formulae are observed only
// 1-3 times, and an unsmoothed zero would register infinite surprisal when
// the formula turns up elsewhere.
package prob

import (
	"math"
	"sort"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

// massTolerance is the internal-assertion tolerance on total probability mass.
const massTolerance = 1e-6

// Builder tallies mention corpora into profiles and smoothed distributions.
type Builder struct {
	alpha       float64
	minMentions int
}

// NewBuilder creates a builder. alpha must be >= 0; minMentions is the
// threshold below which a character is modeled but marked low-confidence.
func NewBuilder(alpha float64, minMentions int) *Builder {
	if alpha < 0 {
		alpha = 0
	}
	return &Builder{alpha: alpha, minMentions: minMentions}
}

// Build produces one CharacterProfile and one ProbabilityModel per character
// that has at least one mention, keyed by character id. Characters in the
// registry with no mentions are omitted entirely.
func (b *Builder) Build(cat *model.Catalogue, mentions []model.CharacterMention) ([]model.CharacterProfile, map[string]*model.ProbabilityModel, error) {
	byCharacter := make(map[string][]model.CharacterMention)
	for _, m := range mentions {
		if !cat.KnowsCharacter(m.CharacterID) {
			return nil, nil, &model.UnknownCharacterError{CharacterID: m.CharacterID, LineNumber: m.LineNumber}
		}
		byCharacter[m.CharacterID] = append(byCharacter[m.CharacterID], m)
	}

	ids := make([]string, 0, len(byCharacter))
	for id := range byCharacter {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	profiles := make([]model.CharacterProfile, 0, len(ids))
	models := make(map[string]*model.ProbabilityModel, len(ids))

	for _, id := range ids {
		profile := b.tally(cat, id, byCharacter[id])
		pm, err := b.normalize(cat, profile)
		if err != nil {
			return nil, nil, err
		}
		profiles = append(profiles, profile)
		models[id] = pm
	}
	return profiles, models, nil
}

// tally counts formula occurrences for one character. A mention whose formula
// is outside the character's eligible set lands in OtherCount; a mention with
// no formula lands in BareCount.
func (b *Builder) tally(cat *model.Catalogue, id string, mentions []model.CharacterMention) model.CharacterProfile {
	eligible := make(map[string]bool)
	for _, text := range cat.EligibleFormulae(id) {
		eligible[text] = true
	}

	profile := model.CharacterProfile{
		CharacterID:   id,
		TotalMentions: len(mentions),
		FormulaCounts: make(map[string]int),
		LowConfidence: len(mentions) < b.minMentions,
	}
	for _, m := range mentions {
		switch {
		case !m.HasFormula():
			profile.BareCount++
		case eligible[m.FormulaText]:
			profile.FormulaCounts[m.FormulaText]++
		default:
			profile.OtherCount++
		}
	}
	return profile
}

// normalize turns a profile's tallies into a smoothed distribution and
// asserts the total mass.
func (b *Builder) normalize(cat *model.Catalogue, profile model.CharacterProfile) (*model.ProbabilityModel, error) {
	eligible := cat.EligibleFormulae(profile.CharacterID)
	sort.Strings(eligible)

	total := float64(profile.TotalMentions) + b.alpha*float64(len(eligible)+2)
	dist := make(map[string]float64, len(eligible)+2)
	for _, text := range eligible {
		dist[text] = (float64(profile.FormulaCounts[text]) + b.alpha) / total
	}
	dist[model.SymbolOther] = (float64(profile.OtherCount) + b.alpha) / total
	dist[model.SymbolNone] = (float64(profile.BareCount) + b.alpha) / total

	sum := 0.0
	for _, p := range dist {
		if p < 0 {
			return nil, &model.InvalidProbabilityMassError{CharacterID: profile.CharacterID, Sum: p}
		}
		sum += p
	}
	if math.Abs(sum-1.0) > massTolerance {
		return nil, &model.InvalidProbabilityMassError{CharacterID: profile.CharacterID, Sum: sum}
	}

	return &model.ProbabilityModel{
		CharacterID:   profile.CharacterID,
		Distribution:  dist,
		UnseenCount:   unseenCount(cat, eligible),
		LowConfidence: profile.LowConfidence,
	}, nil
}

// unseenCount is the number of catalogued formulae outside the character's
// eligible set. The scorer spreads the OTHER mass uniformly across them; a
// floor of 1 keeps the share defined when the whole catalogue is eligible.
func unseenCount(cat *model.Catalogue, eligible []string) int {
	inSupport := make(map[string]bool, len(eligible))
	for _, text := range eligible {
		inSupport[text] = true
	}
	unseen := make(map[string]bool)
	for _, f := range cat.Formulae {
		if !inSupport[f.Text] {
			unseen[f.Text] = true
		}
	}
	n := len(unseen)
	if n < 1 {
		n = 1
	}
	return n
}
