package model

// Synthetic distribution symbols. OTHER absorbs the smoothing mass reserved
// for formulae never attested for the character; NONE models the plain,
// non-formulaic mention. They are distinct phenomena and never merged.
const (
	SymbolOther = "OTHER"
	SymbolNone  = "NONE"
)

// CharacterProfile holds the raw tallies for one character, built once per
// run and read-only afterward.
type CharacterProfile struct {
	CharacterID   string         `json:"character_id"`
	TotalMentions int            `json:"total_mentions"`
	FormulaCounts map[string]int `json:"formula_counts"`  // formula text -> occurrences for this character
	OtherCount    int            `json:"other_count"`     // mentions with a formula unattested for this character
	BareCount     int            `json:"bare_count"`      // mentions with no formula at all
	LowConfidence bool           `json:"low_confidence"`  // below the configured minimum mention count
}

// UnattestedCount is the number of mentions that did not land on a formula
// in the character's distribution support.
func (p CharacterProfile) UnattestedCount() int {
	return p.OtherCount + p.BareCount
}

// ProbabilityModel is one character's smoothed distribution over its eligible
// formulae plus the OTHER and NONE symbols. Values sum to 1.0 within 1e-6.
type ProbabilityModel struct {
	CharacterID   string             `json:"character_id"`
	Distribution  map[string]float64 `json:"distribution"`
	UnseenCount   int                `json:"unseen_count"` // catalogued formulae outside this character's support; uniform-share denominator
	LowConfidence bool               `json:"low_confidence"`
}

// Probability returns the modeled probability of a symbol, or 0 if the
// symbol is not in the distribution.
func (m *ProbabilityModel) Probability(symbol string) float64 {
	return m.Distribution[symbol]
}

// InSupport reports whether the symbol has an entry in the distribution.
func (m *ProbabilityModel) InSupport(symbol string) bool {
	_, ok := m.Distribution[symbol]
	return ok
}
