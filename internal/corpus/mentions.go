package corpus

import (
	"fmt"
	"os"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

// mentionsFile matches both the bare-array form and the keyed form emitted by
// the extraction tooling ({"all_mentions": [...]}).
type mentionsFile struct {
	AllMentions []model.CharacterMention `json:"all_mentions" yaml:"all_mentions"`
}

// LoadMentions reads a mention corpus file and validates record shapes and
// corpus ordering. Referential checks against a catalogue are separate, see
// VerifyReferences.
func LoadMentions(path string) ([]model.CharacterMention, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mentions: %w", err)
	}

	var mentions []model.CharacterMention
	if err := unmarshalByExt(path, data, &mentions); err != nil {
		// Fall back to the keyed envelope used by the phase-1 artifacts.
		var mf mentionsFile
		if err2 := unmarshalByExt(path, data, &mf); err2 != nil || mf.AllMentions == nil {
			return nil, fmt.Errorf("parse mentions %s: %w", path, err)
		}
		mentions = mf.AllMentions
	}

	prevLine := 0
	for i, m := range mentions {
		if m.LineNumber <= 0 {
			return nil, &model.ValidationError{File: path, Record: i + 1, Reason: fmt.Sprintf("non-positive line number %d", m.LineNumber)}
		}
		if m.LineNumber < prevLine {
			return nil, &model.ValidationError{File: path, Record: i + 1, Reason: fmt.Sprintf("line number %d breaks non-decreasing corpus order (previous %d)", m.LineNumber, prevLine)}
		}
		if m.CharacterID == "" {
			return nil, &model.ValidationError{File: path, Record: i + 1, Reason: "empty character_id"}
		}
		prevLine = m.LineNumber
	}
	return mentions, nil
}

// VerifyReferences checks every mention against the catalogue. An unknown
// character is always fatal. A formula text absent from the entire catalogue
// is fatal in strict mode; in lenient mode the mention is left to be scored
// against the OTHER bucket and a warning is returned instead.
func VerifyReferences(cat *model.Catalogue, mentions []model.CharacterMention, lenient bool) ([]string, error) {
	var warnings []string
	for _, m := range mentions {
		if !cat.KnowsCharacter(m.CharacterID) {
			return nil, &model.UnknownCharacterError{CharacterID: m.CharacterID, LineNumber: m.LineNumber}
		}
		if m.HasFormula() && !cat.KnowsFormula(m.FormulaText) {
			err := &model.UnknownFormulaError{FormulaText: m.FormulaText, CharacterID: m.CharacterID, LineNumber: m.LineNumber}
			if !lenient {
				return nil, err
			}
			warnings = append(warnings, err.Error()+" (scored against OTHER)")
		}
	}
	return warnings, nil
}
