package quiz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"supplement-quiz-service/internal/domain"
	"supplement-quiz-service/internal/infra/memory"
	"supplement-quiz-service/internal/quiz"
)

func TestThresholdBranchIntoDetail(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	if _, err := service.Start(ctx, "cat-1", "s1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Choose the 2-point screening option; threshold is 2, so detail opens.
	outcome, err := service.SubmitAnswer(ctx, "cat-1", "s1", 2)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Step != quiz.StepEnterDetail {
		t.Fatalf("expected detail entry, got step=%v", outcome.Step)
	}
	if outcome.Question == nil || outcome.Question.Phase != domain.PhaseDetail {
		t.Fatalf("expected detail question view, got %+v", outcome.Question)
	}

	// Choose the 3-point detail option: total 5, classified medium.
	outcome, err = service.SubmitAnswer(ctx, "cat-1", "s1", 2)
	if err != nil {
		t.Fatalf("submit detail: %v", err)
	}
	if outcome.Step != quiz.StepNextSupplement {
		t.Fatalf("expected next supplement, got step=%v", outcome.Step)
	}

	result, err := service.Results(ctx, "cat-1", "s1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	vd := result.Answers[0]
	if vd.ScreenScore != 2 || vd.DetailScore != 3 || vd.TotalScore != 5 {
		t.Fatalf("expected 2+3=5, got %+v", vd)
	}
	if vd.Level != domain.TierMedium {
		t.Fatalf("expected medium tier for total 5, got %s", vd.Level)
	}
}

func TestBelowThresholdFinalizesFromScreening(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	if _, err := service.Start(ctx, "cat-1", "s1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// 1-point screening option stays below threshold 2.
	outcome, err := service.SubmitAnswer(ctx, "cat-1", "s1", 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Step != quiz.StepNextSupplement {
		t.Fatalf("expected direct finalize, got step=%v", outcome.Step)
	}

	result, err := service.Results(ctx, "cat-1", "s1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	vd := result.Answers[0]
	if vd.TotalScore != 1 || vd.Level != domain.TierLow {
		t.Fatalf("expected total 1 low under the four-tier scheme, got %+v", vd)
	}
}

func TestQuizRunsToCompletion(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	if _, err := service.Start(ctx, "cat-1", "s1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// vitamin-d: 2-point screening answer opens detail, then detail answer.
	mustStep(t, service, ctx, 2, quiz.StepEnterDetail)
	mustStep(t, service, ctx, 1, quiz.StepNextSupplement)
	// magnesium: screening only, two questions.
	mustStep(t, service, ctx, 0, quiz.StepNextQuestion)
	outcome, err := service.SubmitAnswer(ctx, "cat-1", "s1", 1)
	if err != nil {
		t.Fatalf("final submit: %v", err)
	}
	if outcome.Step != quiz.StepCompleted || outcome.Result == nil {
		t.Fatalf("expected completion with result, got %+v", outcome)
	}
	if len(outcome.Result.Answers) != 2 {
		t.Fatalf("expected summary for both supplements, got %d", len(outcome.Result.Answers))
	}

	// Further answers are rejected once the catalog is exhausted.
	if _, err := service.SubmitAnswer(ctx, "cat-1", "s1", 0); !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected quiz completed error, got %v", err)
	}
}

func TestRejectsOutOfRangeOption(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	if _, err := service.Start(ctx, "cat-1", "s1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.SubmitAnswer(ctx, "cat-1", "s1", 7); !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("expected option error, got %v", err)
	}
	if _, err := service.SubmitAnswer(ctx, "cat-1", "s1", -1); !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("expected option error for negative index, got %v", err)
	}
}

func TestResetRestoresZeroState(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	if _, err := service.Start(ctx, "cat-1", "s1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.SubmitAnswer(ctx, "cat-1", "s1", 2); err != nil {
		t.Fatalf("submit: %v", err)
	}

	view, err := service.Reset(ctx, "cat-1", "s1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if view.SupplementIndex != 0 || view.Phase != domain.PhaseScreening || view.QuestionIndex != 0 {
		t.Fatalf("expected cursor back at zero state, got %+v", view)
	}

	result, err := service.Results(ctx, "cat-1", "s1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	for _, summary := range result.Answers {
		if summary.TotalScore != 0 {
			t.Fatalf("expected cleared records after reset, got %+v", summary)
		}
	}
}

func TestSubmitRequiresSession(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	if _, err := service.SubmitAnswer(ctx, "cat-1", "ghost", 0); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session error, got %v", err)
	}
}

func TestStartUnknownCatalog(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	if _, err := service.Start(ctx, "cat-missing", "s1"); !errors.Is(err, domain.ErrCatalogNotFound) {
		t.Fatalf("expected catalog error, got %v", err)
	}
}

func mustStep(t *testing.T, service *quiz.Service, ctx context.Context, optionIndex int, want quiz.Step) {
	t.Helper()
	outcome, err := service.SubmitAnswer(ctx, "cat-1", "s1", optionIndex)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if outcome.Step != want {
		t.Fatalf("expected step %v, got %v", want, outcome.Step)
	}
}

func newTestService(t *testing.T) *quiz.Service {
	t.Helper()
	sessions := memory.NewSessionStore()
	catalogs := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(map[string]domain.Catalog{
		"cat-1": sampleCatalog(),
	}), 5*time.Minute)
	return quiz.NewService(sessions, catalogs)
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		ID: "cat-1",
		Supplements: []domain.Supplement{
			{
				ID:    "vitamin-d",
				Name:  "Vitamin D",
				Group: "vitamins",
				Screening: []domain.Question{{
					Prompt: "How much time do you spend outdoors?",
					Options: []domain.Option{
						{Label: "Plenty", Score: 0},
						{Label: "Some", Score: 1},
						{Label: "Almost none", Score: 2},
					},
				}},
				Detail: []domain.Question{{
					Prompt: "Do you feel tired during winter months?",
					Options: []domain.Option{
						{Label: "Rarely", Score: 0},
						{Label: "Sometimes", Score: 1},
						{Label: "Constantly", Score: 3},
					},
				}},
				Threshold: 2,
			},
			{
				ID:    "magnesium",
				Name:  "Magnesium",
				Group: "minerals",
				Screening: []domain.Question{
					{
						Prompt: "Do you get muscle cramps?",
						Options: []domain.Option{
							{Label: "Never", Score: 0},
							{Label: "Weekly", Score: 2},
						},
					},
					{
						Prompt: "How is your sleep?",
						Options: []domain.Option{
							{Label: "Fine", Score: 0},
							{Label: "Restless", Score: 1},
						},
					},
				},
			},
		},
	}
}
