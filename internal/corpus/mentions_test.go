package corpus

import (
	"errors"
	"strings"
	"testing"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

const mentionsJSON = `[
  {"line_number": 12, "character_id": "hector", "surface_form": "Ἕκτωρ", "formula_text": "of the glancing helmet"},
  {"line_number": 12, "character_id": "achilles", "surface_form": "Ἀχιλλεύς"},
  {"line_number": 40, "character_id": "hector", "surface_form": "Ἕκτορι", "context_window": "and shining Hector answered"}
]`

func TestLoadMentions_BareArray(t *testing.T) {
	path := writeFile(t, "mentions.json", mentionsJSON)

	mentions, err := LoadMentions(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mentions) != 3 {
		t.Fatalf("expected 3 mentions, got %d", len(mentions))
	}
	if !mentions[0].HasFormula() {
		t.Error("first mention should have a formula")
	}
	if mentions[1].HasFormula() {
		t.Error("second mention should be bare")
	}
}

func TestLoadMentions_Envelope(t *testing.T) {
	// The phase-1 artifacts wrap mentions in an all_mentions key.
	path := writeFile(t, "mentions.json", `{"all_mentions": `+mentionsJSON+`}`)

	mentions, err := LoadMentions(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mentions) != 3 {
		t.Errorf("expected 3 mentions, got %d", len(mentions))
	}
}

func TestLoadMentions_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{
			"non-positive line number",
			`[{"line_number": 0, "character_id": "hector"}]`,
			"non-positive",
		},
		{
			"decreasing line order",
			`[{"line_number": 40, "character_id": "hector"}, {"line_number": 12, "character_id": "hector"}]`,
			"non-decreasing",
		},
		{
			"empty character id",
			`[{"line_number": 1, "character_id": ""}]`,
			"character_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "mentions.json", tt.content)
			_, err := LoadMentions(path)
			var vErr *model.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(vErr.Reason, tt.reason) {
				t.Errorf("expected reason containing %q, got %q", tt.reason, vErr.Reason)
			}
		})
	}
}

func TestLoadMentions_EqualLineNumbersAllowed(t *testing.T) {
	// Two characters on the same line is legitimate; ordering is
	// non-decreasing, not strictly increasing.
	path := writeFile(t, "mentions.json",
		`[{"line_number": 12, "character_id": "hector"}, {"line_number": 12, "character_id": "achilles"}]`)
	if _, err := LoadMentions(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestVerifyReferences_UnknownCharacter(t *testing.T) {
	cat := &model.Catalogue{
		Characters: []model.Character{{ID: "hector"}},
		Formulae:   []model.Formula{{Text: "of the glancing helmet", Category: model.CategoryEpithet}},
	}
	mentions := []model.CharacterMention{{LineNumber: 3, CharacterID: "ajax"}}

	_, err := VerifyReferences(cat, mentions, false)
	var ucErr *model.UnknownCharacterError
	if !errors.As(err, &ucErr) {
		t.Fatalf("expected UnknownCharacterError, got %v", err)
	}

	// Unknown characters are fatal even in lenient mode.
	_, err = VerifyReferences(cat, mentions, true)
	if !errors.As(err, &ucErr) {
		t.Fatalf("expected UnknownCharacterError in lenient mode, got %v", err)
	}
}

func TestVerifyReferences_UnknownFormula(t *testing.T) {
	cat := &model.Catalogue{
		Characters: []model.Character{{ID: "hector"}},
		Formulae:   []model.Formula{{Text: "of the glancing helmet", Category: model.CategoryEpithet}},
	}
	mentions := []model.CharacterMention{
		{LineNumber: 3, CharacterID: "hector", FormulaText: "breaker of horses"},
	}

	_, err := VerifyReferences(cat, mentions, false)
	var ufErr *model.UnknownFormulaError
	if !errors.As(err, &ufErr) {
		t.Fatalf("expected UnknownFormulaError in strict mode, got %v", err)
	}

	warnings, err := VerifyReferences(cat, mentions, true)
	if err != nil {
		t.Fatalf("expected no error in lenient mode, got %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if !strings.Contains(warnings[0], "breaker of horses") {
		t.Errorf("warning should identify the formula: %s", warnings[0])
	}
}
