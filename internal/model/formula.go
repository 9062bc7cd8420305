package model

// FormulaCategory classifies the kind of recurring phrase.
type FormulaCategory string

const (
	CategoryEpithet       FormulaCategory = "epithet"        // "swift-footed", "of the glancing helmet"
	CategorySpeechFormula FormulaCategory = "speech-formula" // speech-introduction lines
	CategoryPatronymic    FormulaCategory = "patronymic"     // "son of Peleus"
	CategoryOther         FormulaCategory = "other"
)

// Valid reports whether the category is one of the known values.
func (c FormulaCategory) Valid() bool {
	switch c {
	case CategoryEpithet, CategorySpeechFormula, CategoryPatronymic, CategoryOther:
		return true
	}
	return false
}

// Formula is a catalogued recurring phrase. The catalogue is immutable once
// loaded; curation happens in an external editing step.
type Formula struct {
	Text               string          `json:"text" yaml:"text"` // Canonical, whitespace/diacritic-normalized
	Category           FormulaCategory `json:"category" yaml:"category"`
	EligibleCharacters []string        `json:"eligible_characters,omitempty" yaml:"eligible_characters,omitempty"` // Empty means any character
}

// EligibleFor reports whether the formula may attach to the given character.
func (f Formula) EligibleFor(characterID string) bool {
	if len(f.EligibleCharacters) == 0 {
		return true
	}
	for _, id := range f.EligibleCharacters {
		if id == characterID {
			return true
		}
	}
	return false
}

// Character is an entry in the catalogue's character registry.
type Character struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"` // Display name, e.g. "Hector"
}

// Catalogue is the formula catalogue plus its character registry.
type Catalogue struct {
	Characters []Character `json:"characters" yaml:"characters"`
	Formulae   []Formula   `json:"formulae" yaml:"formulae"`
}

// KnowsCharacter reports whether the registry contains the given id.
func (c *Catalogue) KnowsCharacter(id string) bool {
	for _, ch := range c.Characters {
		if ch.ID == id {
			return true
		}
	}
	return false
}

// KnowsFormula reports whether any catalogued formula has the given text.
func (c *Catalogue) KnowsFormula(text string) bool {
	for _, f := range c.Formulae {
		if f.Text == text {
			return true
		}
	}
	return false
}

// EligibleFormulae returns the distinct texts of all formulae that may
// attach to the given character. The same text may be catalogued under more
// than one category; it is a single distribution symbol either way.
func (c *Catalogue) EligibleFormulae(characterID string) []string {
	seen := make(map[string]bool)
	var texts []string
	for _, f := range c.Formulae {
		if f.EligibleFor(characterID) && !seen[f.Text] {
			seen[f.Text] = true
			texts = append(texts, f.Text)
		}
	}
	return texts
}
