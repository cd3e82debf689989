package domain

import "fmt"

// Phase identifies which question list of a supplement is being answered.
type Phase string

const (
	PhaseScreening Phase = "screening"
	PhaseDetail    Phase = "detail"
)

// Option is one possible answer for a question, carrying its score weight.
type Option struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Question is a single quiz question with an ordered list of options.
type Question struct {
	Subtitle string   `json:"subtitle"`
	Prompt   string   `json:"prompt"`
	Options  []Option `json:"options"`
}

// Supplement defines the screening and detail question sets for one
// supplement category, plus the screening score needed to enter detail.
type Supplement struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Group     string     `json:"group"`
	Screening []Question `json:"screening"`
	Detail    []Question `json:"detail"`
	Threshold int        `json:"threshold"`
}

// PhaseQuestions returns the question list for the given phase.
func (s Supplement) PhaseQuestions(phase Phase) []Question {
	if phase == PhaseDetail {
		return s.Detail
	}
	return s.Screening
}

// Catalog is the ordered, static list of supplements presented during a quiz.
// Loaded once from a backing store and never mutated afterwards.
type Catalog struct {
	ID          string       `json:"id"`
	Supplements []Supplement `json:"supplements"`
}

// Validate checks that the catalog is well-formed: every supplement carries
// at least one screening question and every question at least one option.
// Loaders call this once at load time so the engine never has to guard
// against empty question lists mid-quiz.
func (c Catalog) Validate() error {
	if len(c.Supplements) == 0 {
		return fmt.Errorf("catalog %s: no supplements", c.ID)
	}
	for _, supp := range c.Supplements {
		if len(supp.Screening) == 0 {
			return fmt.Errorf("catalog %s: supplement %s has no screening questions", c.ID, supp.ID)
		}
		for _, q := range append(append([]Question(nil), supp.Screening...), supp.Detail...) {
			if len(q.Options) == 0 {
				return fmt.Errorf("catalog %s: supplement %s question %q has no options", c.ID, supp.ID, q.Prompt)
			}
		}
	}
	return nil
}

// ScoreRecord is the per-supplement running tally for one session.
type ScoreRecord struct {
	ScreenScore int `json:"screenScore"`
	DetailScore int `json:"detailScore"`
}

// Total is the combined score across both phases.
func (r ScoreRecord) Total() int {
	return r.ScreenScore + r.DetailScore
}

// Cursor is the transient position within a quiz: which supplement, which
// phase, which question. SupplementIndex == len(catalog.Supplements) means
// the quiz is complete.
type Cursor struct {
	SupplementIndex int   `json:"supplementIndex"`
	Phase           Phase `json:"phase"`
	QuestionIndex   int   `json:"questionIndex"`
}

// Tier is the discrete priority bucket derived from a supplement's total score.
type Tier string

const (
	TierNone   Tier = "none"
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// ClassifyTier maps a total score to a tier. The four-tier scheme
// (thresholds 6/3/1) is used everywhere: displayed results and the
// submission payload share the same classification.
func ClassifyTier(total int) Tier {
	switch {
	case total >= 6:
		return TierHigh
	case total >= 3:
		return TierMedium
	case total >= 1:
		return TierLow
	default:
		return TierNone
	}
}

// AnswerSummary is the per-supplement row handed to the recommendation
// backend once the catalog is exhausted.
type AnswerSummary struct {
	SupplementID   string `json:"supplement_id"`
	SupplementName string `json:"supplement_name"`
	Group          string `json:"group"`
	ScreenScore    int    `json:"screen_score"`
	DetailScore    int    `json:"detail_score"`
	TotalScore     int    `json:"total_score"`
	Level          Tier   `json:"level"`
}

// QuizResult bundles the full answer summary with the top candidates.
type QuizResult struct {
	Answers    []AnswerSummary `json:"answers"`
	TopResults []AnswerSummary `json:"topResults"`
}
