package quiz

import (
	"testing"

	"supplement-quiz-service/internal/domain"
)

func TestScreeningOnlySupplementNeverEntersDetail(t *testing.T) {
	cat := domain.Catalog{
		ID: "cat-1",
		Supplements: []domain.Supplement{
			{
				ID:        "iron",
				Screening: questions(2),
				Threshold: 0, // even a zero threshold cannot open a missing detail phase
			},
			{ID: "zinc", Screening: questions(1)},
		},
	}

	cur := domain.Cursor{Phase: domain.PhaseScreening}
	cur, step := NextCursor(cat, cur, 10)
	if step != StepNextQuestion || cur.QuestionIndex != 1 {
		t.Fatalf("expected advance within screening, got step=%v cursor=%+v", step, cur)
	}

	cur, step = NextCursor(cat, cur, 10)
	if step != StepNextSupplement {
		t.Fatalf("expected finalize despite high score, got step=%v", step)
	}
	if cur.SupplementIndex != 1 || cur.Phase != domain.PhaseScreening || cur.QuestionIndex != 0 {
		t.Fatalf("expected cursor at next supplement screening start, got %+v", cur)
	}
}

func TestDetailEnteredOnlyWhenThresholdCleared(t *testing.T) {
	cat := domain.Catalog{
		ID: "cat-1",
		Supplements: []domain.Supplement{
			{ID: "vitamin-d", Screening: questions(1), Detail: questions(1), Threshold: 2},
			{ID: "magnesium", Screening: questions(1)},
		},
	}

	// Below threshold: finalize straight from screening.
	cur, step := NextCursor(cat, domain.Cursor{}, 1)
	if step != StepNextSupplement || cur.SupplementIndex != 1 {
		t.Fatalf("expected finalize below threshold, got step=%v cursor=%+v", step, cur)
	}

	// At threshold: enter detail with question index reset.
	cur, step = NextCursor(cat, domain.Cursor{}, 2)
	if step != StepEnterDetail {
		t.Fatalf("expected detail entry at threshold, got step=%v", step)
	}
	if cur.Phase != domain.PhaseDetail || cur.QuestionIndex != 0 || cur.SupplementIndex != 0 {
		t.Fatalf("expected detail cursor, got %+v", cur)
	}

	// Last detail question finalizes the supplement.
	cur, step = NextCursor(cat, cur, 2)
	if step != StepNextSupplement || cur.SupplementIndex != 1 {
		t.Fatalf("expected finalize after detail, got step=%v cursor=%+v", step, cur)
	}
}

func TestLastSupplementCompletesQuiz(t *testing.T) {
	cat := domain.Catalog{
		ID:          "cat-1",
		Supplements: []domain.Supplement{{ID: "omega-3", Screening: questions(1)}},
	}
	cur, step := NextCursor(cat, domain.Cursor{}, 0)
	if step != StepCompleted {
		t.Fatalf("expected completion, got step=%v", step)
	}
	if cur.SupplementIndex != 1 {
		t.Fatalf("expected cursor past last supplement, got %+v", cur)
	}
}

func TestClassifyTierFourTierScheme(t *testing.T) {
	// Regression pin: the four-tier scheme (6/3/1) is the one scheme in use,
	// for both display and the submission payload.
	cases := []struct {
		total int
		want  domain.Tier
	}{
		{0, domain.TierNone},
		{1, domain.TierLow},
		{2, domain.TierLow},
		{3, domain.TierMedium},
		{5, domain.TierMedium},
		{6, domain.TierHigh},
		{11, domain.TierHigh},
		{-2, domain.TierNone},
	}
	for _, tc := range cases {
		if got := domain.ClassifyTier(tc.total); got != tc.want {
			t.Fatalf("ClassifyTier(%d) = %s, want %s", tc.total, got, tc.want)
		}
	}
}

func TestSummariesCoverWholeCatalog(t *testing.T) {
	cat := domain.Catalog{
		ID: "cat-1",
		Supplements: []domain.Supplement{
			{ID: "vitamin-d", Name: "Vitamin D", Group: "vitamins", Screening: questions(1)},
			{ID: "magnesium", Name: "Magnesium", Group: "minerals", Screening: questions(1)},
		},
	}
	records := map[string]domain.ScoreRecord{
		"vitamin-d": {ScreenScore: 2, DetailScore: 3},
	}

	summaries := Summaries(cat, records)
	if len(summaries) != 2 {
		t.Fatalf("expected summary per catalog supplement, got %d", len(summaries))
	}
	if summaries[0].TotalScore != 5 || summaries[0].Level != domain.TierMedium {
		t.Fatalf("expected vitamin-d total 5 medium, got %+v", summaries[0])
	}
	if summaries[1].TotalScore != 0 || summaries[1].Level != domain.TierNone {
		t.Fatalf("expected untouched magnesium at zero, got %+v", summaries[1])
	}
}

func TestTopCandidatesFiltersAndSorts(t *testing.T) {
	summaries := []domain.AnswerSummary{
		{SupplementID: "a", TotalScore: 3, Level: domain.TierMedium},
		{SupplementID: "b", TotalScore: 8, Level: domain.TierHigh},
		{SupplementID: "c", TotalScore: 1, Level: domain.TierLow},
		{SupplementID: "d", TotalScore: 6, Level: domain.TierHigh},
		{SupplementID: "e", TotalScore: 3, Level: domain.TierMedium},
	}

	top := TopCandidates(summaries)
	if len(top) != 3 {
		t.Fatalf("expected exactly 3 candidates, got %d", len(top))
	}
	if top[0].SupplementID != "b" || top[1].SupplementID != "d" {
		t.Fatalf("expected b,d leading, got %+v", top)
	}
	// Tie between a and e keeps catalog declaration order (stable sort).
	if top[2].SupplementID != "a" {
		t.Fatalf("expected stable tie-break keeping a before e, got %s", top[2].SupplementID)
	}
}

func TestTopCandidatesFallbackWhenFewQualify(t *testing.T) {
	summaries := []domain.AnswerSummary{
		{SupplementID: "a", TotalScore: 1, Level: domain.TierLow},
		{SupplementID: "b", TotalScore: 4, Level: domain.TierMedium},
		{SupplementID: "c", TotalScore: 0, Level: domain.TierNone},
		{SupplementID: "d", TotalScore: 2, Level: domain.TierLow},
	}

	top := TopCandidates(summaries)
	if len(top) != 3 {
		t.Fatalf("expected fallback to fill 3 slots, got %d", len(top))
	}
	if top[0].SupplementID != "b" || top[1].SupplementID != "d" || top[2].SupplementID != "a" {
		t.Fatalf("expected raw-score fallback order b,d,a got %+v", top)
	}
}

func TestTopCandidatesSmallCatalog(t *testing.T) {
	summaries := []domain.AnswerSummary{
		{SupplementID: "a", TotalScore: 0, Level: domain.TierNone},
		{SupplementID: "b", TotalScore: 1, Level: domain.TierLow},
	}
	top := TopCandidates(summaries)
	if len(top) != 2 {
		t.Fatalf("expected catalog-bounded fallback of 2, got %d", len(top))
	}
	if top[0].SupplementID != "b" {
		t.Fatalf("expected b first, got %+v", top)
	}
}

// questions builds n single-option placeholder questions.
func questions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{
			Prompt:  "placeholder",
			Options: []domain.Option{{Label: "Never", Score: 0}, {Label: "Often", Score: 2}},
		}
	}
	return qs
}
