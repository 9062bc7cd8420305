package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

const testCatalogue = `{
  "characters": [
    {"id": "achilles", "name": "Achilles"},
    {"id": "hector", "name": "Hector"}
  ],
  "formulae": [
    {"text": "of the glancing helmet", "category": "epithet", "eligible_characters": ["hector"]},
    {"text": "tamer of horses", "category": "epithet", "eligible_characters": ["hector"]},
    {"text": "swift-footed", "category": "epithet", "eligible_characters": ["achilles"]},
    {"text": "spoke winged words", "category": "speech-formula"}
  ]
}`

const testMentions = `[
  {"line_number": 10, "character_id": "hector", "formula_text": "of the glancing helmet"},
  {"line_number": 22, "character_id": "achilles", "formula_text": "swift-footed"},
  {"line_number": 38, "character_id": "hector", "formula_text": "of the glancing helmet"},
  {"line_number": 51, "character_id": "hector", "formula_text": "tamer of horses"},
  {"line_number": 60, "character_id": "achilles"},
  {"line_number": 77, "character_id": "hector", "formula_text": "swift-footed"},
  {"line_number": 90, "character_id": "achilles", "formula_text": "swift-footed"}
]`

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	catPath := filepath.Join(dir, "catalogue.json")
	mentPath := filepath.Join(dir, "mentions.json")
	if err := os.WriteFile(catPath, []byte(testCatalogue), 0o644); err != nil {
		t.Fatalf("write catalogue: %v", err)
	}
	if err := os.WriteFile(mentPath, []byte(testMentions), 0o644); err != nil {
		t.Fatalf("write mentions: %v", err)
	}
	return catPath, mentPath
}

func TestPipeline_Analyze(t *testing.T) {
	catPath, mentPath := writeInputs(t)
	p := NewPipeline(model.DefaultConfig())

	report, err := p.Analyze(catPath, mentPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if report.Totals.Mentions != 7 {
		t.Errorf("expected 7 mentions, got %d", report.Totals.Mentions)
	}
	if report.Totals.Characters != 2 {
		t.Errorf("expected 2 characters, got %d", report.Totals.Characters)
	}
	// Line 77: hector with a formula attested only for achilles.
	if report.Totals.UnattestedCount != 1 {
		t.Errorf("expected 1 unattested mention, got %d", report.Totals.UnattestedCount)
	}
	if report.Totals.BareCount != 1 {
		t.Errorf("expected 1 bare mention, got %d", report.Totals.BareCount)
	}
	if report.Totals.FormulaicCount != 5 {
		t.Errorf("expected 5 formulaic mentions, got %d", report.Totals.FormulaicCount)
	}

	// Records carry ranks 1..n in order.
	for i, rec := range report.Records {
		if rec.Rank != i+1 {
			t.Errorf("record %d has rank %d", i, rec.Rank)
		}
	}

	// Config is echoed for reproducibility.
	if report.Config.Alpha != 0.5 || report.Config.TopK != 20 {
		t.Errorf("expected default config echoed, got %+v", report.Config)
	}
}

func TestPipeline_Determinism(t *testing.T) {
	catPath, mentPath := writeInputs(t)

	render := func() ([]byte, []byte) {
		p := NewPipeline(model.DefaultConfig())
		report, err := p.Analyze(catPath, mentPath)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		dir := t.TempDir()
		jsonPath := filepath.Join(dir, "out.json")
		textPath := filepath.Join(dir, "out.txt")
		if err := p.RenderReport(report, jsonPath, textPath, false); err != nil {
			t.Fatalf("render: %v", err)
		}
		jsonBytes, err := os.ReadFile(jsonPath)
		if err != nil {
			t.Fatalf("read JSON: %v", err)
		}
		textBytes, err := os.ReadFile(textPath)
		if err != nil {
			t.Fatalf("read text: %v", err)
		}
		return jsonBytes, textBytes
	}

	json1, text1 := render()
	json2, text2 := render()

	if !bytes.Equal(json1, json2) {
		t.Error("JSON reports differ between identical runs")
	}
	if !bytes.Equal(text1, text2) {
		t.Error("text reports differ between identical runs")
	}
}

func TestPipeline_StrictModeRejectsUncataloguedFormula(t *testing.T) {
	dir := t.TempDir()
	catPath := filepath.Join(dir, "catalogue.json")
	mentPath := filepath.Join(dir, "mentions.json")
	if err := os.WriteFile(catPath, []byte(testCatalogue), 0o644); err != nil {
		t.Fatal(err)
	}
	mentions := `[{"line_number": 5, "character_id": "hector", "formula_text": "breaker of horses"}]`
	if err := os.WriteFile(mentPath, []byte(mentions), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(model.DefaultConfig())
	if _, err := p.Analyze(catPath, mentPath); err == nil {
		t.Fatal("expected strict mode to fail on an uncatalogued formula")
	}

	lenientCfg := model.DefaultConfig()
	lenientCfg.Engine.Lenient = true
	p = NewPipeline(lenientCfg)
	report, err := p.Analyze(catPath, mentPath)
	if err != nil {
		t.Fatalf("expected lenient mode to succeed, got %v", err)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(report.Warnings))
	}
	if report.Records[0].Kind != model.KindUnattested {
		t.Errorf("expected the mention to score as unattested, got %s", report.Records[0].Kind)
	}
}

func TestRenderer_Text(t *testing.T) {
	catPath, mentPath := writeInputs(t)
	p := NewPipeline(model.DefaultConfig())
	report, err := p.Analyze(catPath, mentPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	text := NewRenderer().Text(report)

	for _, want := range []string{
		"HOMERIC FORMULA DEVIATION ANALYSIS",
		"OVERALL STATISTICS:",
		"HIGH SURPRISAL MOMENTS",
		"DEVIATIONS BY CHARACTER",
		"hector:",
		"achilles:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestRenderer_JSONTrailingNewline(t *testing.T) {
	catPath, mentPath := writeInputs(t)
	p := NewPipeline(model.DefaultConfig())
	report, err := p.Analyze(catPath, mentPath)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := NewRenderer().RenderJSON(report, path); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		t.Error("JSON report should end with a newline")
	}
}
