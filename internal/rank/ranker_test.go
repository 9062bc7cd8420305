package rank

import (
	"math"
	"testing"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

func TestRanker_TieBreak(t *testing.T) {
	// Equal surprisal: the smaller line number ranks first.
	r := NewRanker(3.0, 20)
	records := []model.DeviationRecord{
		{LineNumber: 200, CharacterID: "hector", SurprisalBits: 2.5},
		{LineNumber: 100, CharacterID: "hector", SurprisalBits: 2.5},
		{LineNumber: 50, CharacterID: "hector", SurprisalBits: 4.0},
	}

	ranked := r.Rank(records)

	wantLines := []int{50, 100, 200}
	for i, want := range wantLines {
		if ranked[i].LineNumber != want {
			t.Errorf("rank %d: expected line %d, got %d", i+1, want, ranked[i].LineNumber)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("expected rank %d, got %d", i+1, ranked[i].Rank)
		}
	}
}

func TestRanker_FlagPolicy(t *testing.T) {
	// is_flagged = over threshold OR within top-K; both conditions are
	// recorded separately.
	r := NewRanker(3.0, 1)
	records := []model.DeviationRecord{
		{LineNumber: 1, CharacterID: "hector", SurprisalBits: 5.0},
		{LineNumber: 2, CharacterID: "hector", SurprisalBits: 3.5},
		{LineNumber: 3, CharacterID: "hector", SurprisalBits: 1.0},
	}

	ranked := r.Rank(records)

	if !ranked[0].InTopK || !ranked[0].OverThreshold || !ranked[0].IsFlagged {
		t.Errorf("top record should be flagged by both criteria: %+v", ranked[0])
	}
	if ranked[1].InTopK {
		t.Error("second record is outside top-1")
	}
	if !ranked[1].OverThreshold || !ranked[1].IsFlagged {
		t.Errorf("second record should be flagged by threshold: %+v", ranked[1])
	}
	if ranked[2].IsFlagged {
		t.Errorf("third record should not be flagged: %+v", ranked[2])
	}
}

func TestRanker_ThresholdIsInclusive(t *testing.T) {
	r := NewRanker(3.0, 0)
	ranked := r.Rank([]model.DeviationRecord{
		{LineNumber: 1, CharacterID: "hector", SurprisalBits: 3.0},
	})
	if !ranked[0].OverThreshold {
		t.Error("surprisal equal to the threshold should flag")
	}
}

func summarizeFixture() ([]model.CharacterProfile, []model.DeviationRecord) {
	profiles := []model.CharacterProfile{
		{CharacterID: "achilles", TotalMentions: 1, LowConfidence: true},
		{CharacterID: "hector", TotalMentions: 10},
	}

	var records []model.DeviationRecord
	// hector: surprisals 1..10 on lines 1..10
	for i := 1; i <= 10; i++ {
		records = append(records, model.DeviationRecord{
			LineNumber:    i,
			CharacterID:   "hector",
			Kind:          model.KindFormulaic,
			SurprisalBits: float64(i),
		})
	}
	records = append(records, model.DeviationRecord{
		LineNumber:    11,
		CharacterID:   "achilles",
		Kind:          model.KindBare,
		SurprisalBits: 100.0,
		LowConfidence: true,
	})
	return profiles, records
}

func TestRanker_Summarize_DeviationRate(t *testing.T) {
	r := NewRanker(3.0, 5)
	profiles, records := summarizeFixture()
	records = r.Rank(records)

	summaries, _ := r.Summarize(profiles, records)

	var hector *model.CharacterSummary
	for i := range summaries {
		if summaries[i].CharacterID == "hector" {
			hector = &summaries[i]
		}
	}
	if hector == nil {
		t.Fatal("expected a summary for hector")
	}

	// Nearest-rank P90 over 1..10 is 9; only the 10-bit mention is strictly
	// above it.
	if hector.P90Surprisal != 9.0 {
		t.Errorf("expected P90 = 9.0, got %f", hector.P90Surprisal)
	}
	if math.Abs(hector.DeviationRate-0.1) > 1e-9 {
		t.Errorf("expected deviation rate 0.1, got %f", hector.DeviationRate)
	}
	if math.Abs(hector.MeanSurprisal-5.5) > 1e-9 {
		t.Errorf("expected mean surprisal 5.5, got %f", hector.MeanSurprisal)
	}
}

func TestRanker_Summarize_LowConfidenceExcludedFromTotals(t *testing.T) {
	r := NewRanker(3.0, 5)
	profiles, records := summarizeFixture()
	records = r.Rank(records)

	summaries, totals := r.Summarize(profiles, records)

	// achilles (100 bits, low-confidence) must not drag the corpus mean.
	if math.Abs(totals.MeanSurprisal-5.5) > 1e-9 {
		t.Errorf("expected corpus mean 5.5 excluding low-confidence characters, got %f", totals.MeanSurprisal)
	}
	if totals.LowConfidenceCharacters != 1 {
		t.Errorf("expected 1 low-confidence character, got %d", totals.LowConfidenceCharacters)
	}

	// The low-confidence character is still summarized and still ranked.
	found := false
	for _, s := range summaries {
		if s.CharacterID == "achilles" {
			found = true
			if !s.LowConfidence {
				t.Error("achilles summary should carry the low-confidence flag")
			}
		}
	}
	if !found {
		t.Error("expected a summary for achilles")
	}
	if records[0].CharacterID != "achilles" {
		t.Errorf("expected achilles to hold rank 1, got %s", records[0].CharacterID)
	}
}

func TestRanker_Summarize_TopMoments(t *testing.T) {
	r := NewRanker(3.0, 5)
	profiles, records := summarizeFixture()
	records = r.Rank(records)

	summaries, _ := r.Summarize(profiles, records)
	for _, s := range summaries {
		if s.CharacterID != "hector" {
			continue
		}
		if len(s.TopMoments) != 3 {
			t.Fatalf("expected 3 top moments, got %d", len(s.TopMoments))
		}
		wantLines := []int{10, 9, 8}
		for i, m := range s.TopMoments {
			if m.LineNumber != wantLines[i] {
				t.Errorf("top moment %d: expected line %d, got %d", i, wantLines[i], m.LineNumber)
			}
		}
	}
}

func TestRanker_SummarizeSortsByCharacterID(t *testing.T) {
	r := NewRanker(3.0, 5)
	profiles, records := summarizeFixture()
	records = r.Rank(records)

	summaries, _ := r.Summarize(profiles, records)
	for i := 1; i < len(summaries); i++ {
		if summaries[i-1].CharacterID > summaries[i].CharacterID {
			t.Errorf("summaries not sorted: %s before %s", summaries[i-1].CharacterID, summaries[i].CharacterID)
		}
	}
}
