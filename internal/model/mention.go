package model

// CharacterMention is one occurrence of a character name in the corpus,
// as produced by the upstream extraction phase.
type CharacterMention struct {
	LineNumber    int    `json:"line_number" yaml:"line_number"`       // Corpus-relative, positive
	CharacterID   string `json:"character_id" yaml:"character_id"`     // Must resolve in the catalogue registry
	SurfaceForm   string `json:"surface_form" yaml:"surface_form"`     // Inflected form observed in the text
	FormulaText   string `json:"formula_text,omitempty" yaml:"formula_text,omitempty"`     // Matched formula, empty if none
	ContextWindow string `json:"context_window,omitempty" yaml:"context_window,omitempty"` // Token span used for matching (diagnostics only)
}

// HasFormula reports whether any catalogued formula was matched at this mention.
func (m CharacterMention) HasFormula() bool {
	return m.FormulaText != ""
}

// MentionKind classifies how a mention relates to the character's formula inventory.
type MentionKind string

const (
	KindFormulaic  MentionKind = "formulaic"  // Formula in the character's distribution support
	KindUnattested MentionKind = "unattested" // Formula never attested for this character (the deviation case)
	KindBare       MentionKind = "bare"       // No formula at all (plain phrasing)
)
