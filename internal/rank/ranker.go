// Package rank orders deviation records, applies the flagging policy, and
// aggregates per-character and corpus-wide statistics.
package rank

import (
	"math"
	"sort"

	"github.com/jar-jar-binks-comits/homeric-formula-deviation/internal/model"
)

// topMoments is how many of a character's most surprising mentions the
// summary lists.
const topMoments = 3

// Ranker applies the corpus-wide ranking and flag policy.
type Ranker struct {
	threshold float64
	topK      int
}

// NewRanker creates a ranker with the absolute surprisal threshold and the
// top-K cutoff. Both flag conditions are recorded separately on each record
// so downstream consumers can choose either criterion.
func NewRanker(threshold float64, topK int) *Ranker {
	return &Ranker{threshold: threshold, topK: topK}
}

// Rank sorts records by descending surprisal, ties broken by ascending line
// number, assigns 1-based ranks, and sets the flag fields. The input slice is
// sorted in place and returned.
func (r *Ranker) Rank(records []model.DeviationRecord) []model.DeviationRecord {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].SurprisalBits != records[j].SurprisalBits {
			return records[i].SurprisalBits > records[j].SurprisalBits
		}
		return records[i].LineNumber < records[j].LineNumber
	})
	for i := range records {
		records[i].Rank = i + 1
		records[i].OverThreshold = records[i].SurprisalBits >= r.threshold
		records[i].InTopK = i < r.topK
		records[i].IsFlagged = records[i].OverThreshold || records[i].InTopK
	}
	return records
}

// Summarize aggregates ranked records into per-character summaries (sorted by
// character id) and corpus totals. Low-confidence characters are summarized
// but excluded from the corpus-wide mean surprisal.
func (r *Ranker) Summarize(profiles []model.CharacterProfile, records []model.DeviationRecord) ([]model.CharacterSummary, model.CorpusTotals) {
	byCharacter := make(map[string][]model.DeviationRecord)
	for _, rec := range records {
		byCharacter[rec.CharacterID] = append(byCharacter[rec.CharacterID], rec)
	}

	summaries := make([]model.CharacterSummary, 0, len(profiles))
	totals := model.CorpusTotals{
		Mentions:   len(records),
		Characters: len(profiles),
	}
	confidentSum := 0.0
	confidentN := 0

	for _, p := range profiles {
		recs := byCharacter[p.CharacterID]
		if len(recs) == 0 {
			continue // no mentions, no summary
		}
		s := summarizeCharacter(p, recs)
		summaries = append(summaries, s)

		totals.FormulaicCount += s.FormulaicCount
		totals.UnattestedCount += s.UnattestedCount
		totals.BareCount += s.BareCount
		if p.LowConfidence {
			totals.LowConfidenceCharacters++
		} else {
			for _, rec := range recs {
				confidentSum += rec.SurprisalBits
			}
			confidentN += len(recs)
		}
	}

	for _, rec := range records {
		if rec.IsFlagged {
			totals.FlaggedCount++
		}
	}
	if confidentN > 0 {
		totals.MeanSurprisal = confidentSum / float64(confidentN)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CharacterID < summaries[j].CharacterID
	})
	return summaries, totals
}

func summarizeCharacter(p model.CharacterProfile, recs []model.DeviationRecord) model.CharacterSummary {
	s := model.CharacterSummary{
		CharacterID:   p.CharacterID,
		Mentions:      len(recs),
		LowConfidence: p.LowConfidence,
	}

	sum := 0.0
	surprisals := make([]float64, 0, len(recs))
	for _, rec := range recs {
		sum += rec.SurprisalBits
		surprisals = append(surprisals, rec.SurprisalBits)
		switch rec.Kind {
		case model.KindFormulaic:
			s.FormulaicCount++
		case model.KindUnattested:
			s.UnattestedCount++
		case model.KindBare:
			s.BareCount++
		}
	}
	s.MeanSurprisal = sum / float64(len(recs))

	// Character-relative deviation: mentions strictly above the character's
	// own 90th-percentile surprisal (nearest-rank).
	s.P90Surprisal = percentile(surprisals, 0.9)
	above := 0
	for _, v := range surprisals {
		if v > s.P90Surprisal {
			above++
		}
	}
	s.DeviationRate = float64(above) / float64(len(recs))

	// Records arrive in rank order, so the first N for this character are its
	// most surprising moments.
	for _, rec := range recs {
		if len(s.TopMoments) == topMoments {
			break
		}
		s.TopMoments = append(s.TopMoments, model.Moment{
			LineNumber:    rec.LineNumber,
			SurprisalBits: rec.SurprisalBits,
		})
	}
	return s
}

// percentile is the nearest-rank percentile over a copy of the values.
func percentile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
