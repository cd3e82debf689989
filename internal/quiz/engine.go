package quiz

import (
	"sort"

	"supplement-quiz-service/internal/domain"
)

// Step classifies what the phase/branch controller decided after an answer.
type Step int

const (
	// StepNextQuestion advances to the next question within the active phase.
	StepNextQuestion Step = iota
	// StepEnterDetail switches from screening to the detail phase.
	StepEnterDetail
	// StepNextSupplement finalizes the current supplement and moves on.
	StepNextSupplement
	// StepCompleted means the catalog is exhausted.
	StepCompleted
)

// maxTopResults caps the candidate list handed to the recommendation backend.
const maxTopResults = 3

// NextCursor computes the cursor that follows the current one after an answer
// has been recorded. screenTotal is the cumulative screening score for the
// active supplement, including the answer just applied; it decides whether the
// detail phase is entered when the last screening question is reached.
func NextCursor(cat domain.Catalog, cur domain.Cursor, screenTotal int) (domain.Cursor, Step) {
	supp := cat.Supplements[cur.SupplementIndex]
	questions := supp.PhaseQuestions(cur.Phase)

	if cur.QuestionIndex+1 < len(questions) {
		cur.QuestionIndex++
		return cur, StepNextQuestion
	}

	// Last question of the active phase. Detail is entered only when the
	// supplement defines detail questions and the cumulative screening score
	// clears its threshold; screening-only supplements finalize directly.
	if cur.Phase == domain.PhaseScreening && len(supp.Detail) > 0 && screenTotal >= supp.Threshold {
		cur.Phase = domain.PhaseDetail
		cur.QuestionIndex = 0
		return cur, StepEnterDetail
	}

	cur.SupplementIndex++
	cur.Phase = domain.PhaseScreening
	cur.QuestionIndex = 0
	if cur.SupplementIndex >= len(cat.Supplements) {
		return cur, StepCompleted
	}
	return cur, StepNextSupplement
}

// Summaries builds one AnswerSummary per catalog supplement, in catalog order.
// Supplements the user never accrued points for appear with zero scores.
func Summaries(cat domain.Catalog, records map[string]domain.ScoreRecord) []domain.AnswerSummary {
	summaries := make([]domain.AnswerSummary, 0, len(cat.Supplements))
	for _, supp := range cat.Supplements {
		record := records[supp.ID]
		total := record.Total()
		summaries = append(summaries, domain.AnswerSummary{
			SupplementID:   supp.ID,
			SupplementName: supp.Name,
			Group:          supp.Group,
			ScreenScore:    record.ScreenScore,
			DetailScore:    record.DetailScore,
			TotalScore:     total,
			Level:          domain.ClassifyTier(total),
		})
	}
	return summaries
}

// TopCandidates picks the supplements worth sending to the recommendation
// backend: tier medium or high, sorted by total score descending (stable, so
// ties keep catalog order), capped at three. When fewer than three qualify it
// falls back to the three highest-scoring supplements regardless of tier so
// the backend always has some candidate payload.
func TopCandidates(summaries []domain.AnswerSummary) []domain.AnswerSummary {
	qualified := make([]domain.AnswerSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.Level == domain.TierMedium || s.Level == domain.TierHigh {
			qualified = append(qualified, s)
		}
	}

	if len(qualified) < maxTopResults {
		qualified = append([]domain.AnswerSummary(nil), summaries...)
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].TotalScore > qualified[j].TotalScore
	})

	if len(qualified) > maxTopResults {
		qualified = qualified[:maxTopResults]
	}
	return qualified
}
