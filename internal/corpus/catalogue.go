// Package corpus loads and validates the two input artifacts of the engine:
// the formula catalogue and the mention corpus. Both are produced by
// out-of-scope tooling (pattern extraction, manual curation); this package
// only checks their shapes and referential integrity.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

// LoadCatalogue reads a catalogue file (.yaml/.yml parsed as YAML, anything
// else as JSON) and validates it. The returned catalogue is treated as
// immutable for the rest of the run.
func LoadCatalogue(path string) (*model.Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}

	var cat model.Catalogue
	if err := unmarshalByExt(path, data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalogue %s: %w", path, err)
	}

	if err := validateCatalogue(path, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func unmarshalByExt(path string, data []byte, v interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}

func validateCatalogue(path string, cat *model.Catalogue) error {
	if len(cat.Characters) == 0 {
		return &model.ValidationError{File: path, Record: 0, Reason: "catalogue has no character registry"}
	}

	seenIDs := make(map[string]bool, len(cat.Characters))
	for i, ch := range cat.Characters {
		if ch.ID == "" {
			return &model.ValidationError{File: path, Record: i + 1, Reason: "character with empty id"}
		}
		if seenIDs[ch.ID] {
			return &model.ValidationError{File: path, Record: i + 1, Reason: fmt.Sprintf("duplicate character id %q", ch.ID)}
		}
		seenIDs[ch.ID] = true
	}

	// Uniqueness of text is scoped to the category + eligibility pairing.
	seenFormulae := make(map[string]bool, len(cat.Formulae))
	for i, f := range cat.Formulae {
		if f.Text == "" {
			return &model.ValidationError{File: path, Record: i + 1, Reason: "formula with empty text"}
		}
		if f.Category == "" {
			cat.Formulae[i].Category = model.CategoryOther
		} else if !f.Category.Valid() {
			return &model.ValidationError{File: path, Record: i + 1, Reason: fmt.Sprintf("formula %q: unknown category %q", f.Text, f.Category)}
		}
		for _, id := range f.EligibleCharacters {
			if !seenIDs[id] {
				return &model.ValidationError{File: path, Record: i + 1, Reason: fmt.Sprintf("formula %q: eligible character %q not in registry", f.Text, id)}
			}
		}
		key := formulaKey(cat.Formulae[i])
		if seenFormulae[key] {
			return &model.ValidationError{File: path, Record: i + 1, Reason: fmt.Sprintf("duplicate formula %q within category/eligibility pairing", f.Text)}
		}
		seenFormulae[key] = true
	}
	return nil
}

func formulaKey(f model.Formula) string {
	ids := append([]string(nil), f.EligibleCharacters...)
	sort.Strings(ids)
	return string(f.Category) + "\x00" + f.Text + "\x00" + strings.Join(ids, ",")
}
