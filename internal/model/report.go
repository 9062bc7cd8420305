package model

// InfiniteSurprisal is the finite sentinel recorded when an event has
// probability exactly zero (possible only with alpha = 0). Keeping the value
// finite keeps the JSON report encodable and the ranking total.
const InfiniteSurprisal = 999.0

// DeviationRecord is the engine's per-mention output unit.
type DeviationRecord struct {
	LineNumber    int         `json:"line_number"`
	CharacterID   string      `json:"character_id"`
	SurfaceForm   string      `json:"surface_form,omitempty"`
	FormulaText   string      `json:"formula_text,omitempty"`
	ContextWindow string      `json:"context_window,omitempty"`
	Kind          MentionKind `json:"kind"`
	Probability   float64     `json:"probability"`
	SurprisalBits float64     `json:"surprisal_bits"`
	Rank          int         `json:"rank"` // 1-based, descending surprisal, ties by ascending line number
	IsFlagged     bool        `json:"is_flagged"`
	OverThreshold bool        `json:"over_threshold"` // surprisal >= configured absolute threshold
	InTopK        bool        `json:"in_top_k"`       // within the corpus-wide top-K by rank
	LowConfidence bool        `json:"low_confidence"` // character below the minimum mention count
}

// Moment references one high-surprisal mention in a character summary.
type Moment struct {
	LineNumber    int     `json:"line_number"`
	SurprisalBits float64 `json:"surprisal_bits"`
}

// CharacterSummary aggregates one character's records.
type CharacterSummary struct {
	CharacterID     string   `json:"character_id"`
	Mentions        int      `json:"mentions"`
	FormulaicCount  int      `json:"formulaic_count"`
	UnattestedCount int      `json:"unattested_count"`
	BareCount       int      `json:"bare_count"`
	MeanSurprisal   float64  `json:"mean_surprisal"`
	P90Surprisal    float64  `json:"p90_surprisal"`  // the character's own 90th-percentile threshold
	DeviationRate   float64  `json:"deviation_rate"` // share of mentions strictly above P90Surprisal
	LowConfidence   bool     `json:"low_confidence"`
	TopMoments      []Moment `json:"top_moments,omitempty"` // up to three most surprising mentions
}

// CorpusTotals aggregates the whole run. MeanSurprisal excludes records of
// low-confidence characters.
type CorpusTotals struct {
	Mentions                int     `json:"mentions"`
	Characters              int     `json:"characters"`
	LowConfidenceCharacters int     `json:"low_confidence_characters"`
	FormulaicCount          int     `json:"formulaic_count"`
	UnattestedCount         int     `json:"unattested_count"`
	BareCount               int     `json:"bare_count"`
	FlaggedCount            int     `json:"flagged_count"`
	MeanSurprisal           float64 `json:"mean_surprisal"`
}

// RunConfig echoes the engine configuration into the report so a reader can
// reproduce the run.
type RunConfig struct {
	Alpha              float64 `json:"alpha" yaml:"alpha"`
	MinMentions        int     `json:"min_mentions" yaml:"min_mentions"`
	SurprisalThreshold float64 `json:"surprisal_threshold" yaml:"surprisal_threshold"`
	TopK               int     `json:"top_k" yaml:"top_k"`
	Lenient            bool    `json:"lenient" yaml:"lenient"`
}

// Report is the complete deviation analysis for one mention corpus.
// It carries no timestamps: identical inputs and configuration must produce
// byte-identical reports.
type Report struct {
	CataloguePath string             `json:"catalogue_path"`
	MentionsPath  string             `json:"mentions_path"`
	Config        RunConfig          `json:"config"`
	Totals        CorpusTotals       `json:"totals"`
	Characters    []CharacterSummary `json:"characters"` // sorted by character id
	Records       []DeviationRecord  `json:"records"`    // in rank order
	Warnings      []string           `json:"warnings,omitempty"`
}

// TopK returns the first k records (they are already in rank order).
func (r *Report) TopK(k int) []DeviationRecord {
	if k > len(r.Records) {
		k = len(r.Records)
	}
	return r.Records[:k]
}
