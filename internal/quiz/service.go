package quiz

import (
	"context"

	"supplement-quiz-service/internal/domain"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// CatalogRepository loads the supplement catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context, catalogID string) (domain.Catalog, error)
}

// Service contains the quiz use cases: start, answer, reset, results.
type Service struct {
	sessions SessionRepository
	catalogs CatalogRepository
}

func NewService(sessions SessionRepository, catalogs CatalogRepository) *Service {
	return &Service{sessions: sessions, catalogs: catalogs}
}

// QuestionView is the client-facing shape of the current question. Option
// score weights stay server-side; clients only see labels and submit the
// index of the one they picked.
type QuestionView struct {
	SupplementID    string       `json:"supplementId"`
	SupplementName  string       `json:"supplementName"`
	Group           string       `json:"group"`
	SupplementIndex int          `json:"supplementIndex"`
	SupplementCount int          `json:"supplementCount"`
	Phase           domain.Phase `json:"phase"`
	QuestionIndex   int          `json:"questionIndex"`
	QuestionCount   int          `json:"questionCount"`
	Subtitle        string       `json:"subtitle"`
	Prompt          string       `json:"prompt"`
	Options         []string     `json:"options"`
}

// Outcome is the result of one submitted answer: either the next question or,
// once the catalog is exhausted, the aggregated quiz result.
type Outcome struct {
	Step     Step
	Question *QuestionView
	Result   *domain.QuizResult
}

// Start creates (or resumes) a session and returns the current question.
// The catalog is preloaded so unknown catalog IDs fail before a session exists.
func (s *Service) Start(ctx context.Context, catalogID, sessionID string) (QuestionView, error) {
	cat, err := s.catalogs.GetCatalog(ctx, catalogID)
	if err != nil {
		return QuestionView{}, err
	}
	session := s.sessions.GetOrCreate(sessionID)
	return questionView(cat, session.Cursor())
}

// SubmitAnswer records the chosen option index for the current question and
// advances the cursor, switching phase or supplement as needed.
func (s *Service) SubmitAnswer(ctx context.Context, catalogID, sessionID string, optionIndex int) (Outcome, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Outcome{}, domain.ErrSessionNotFound
	}
	cat, err := s.catalogs.GetCatalog(ctx, catalogID)
	if err != nil {
		return Outcome{}, err
	}

	advance, err := session.applyAnswer(cat, optionIndex)
	if err != nil {
		return Outcome{}, err
	}

	if advance.Step == StepCompleted {
		result := buildResult(cat, session)
		return Outcome{Step: advance.Step, Result: &result}, nil
	}

	view, err := questionView(cat, advance.Cursor)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Step: advance.Step, Question: &view}, nil
}

// Results aggregates the session's records into the submission payload shape.
// Valid at any point; supplements not yet visited report zero scores.
func (s *Service) Results(ctx context.Context, catalogID, sessionID string) (domain.QuizResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.QuizResult{}, domain.ErrSessionNotFound
	}
	cat, err := s.catalogs.GetCatalog(ctx, catalogID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	return buildResult(cat, session), nil
}

// Reset clears all score records and returns the first question.
func (s *Service) Reset(ctx context.Context, catalogID, sessionID string) (QuestionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return QuestionView{}, domain.ErrSessionNotFound
	}
	cat, err := s.catalogs.GetCatalog(ctx, catalogID)
	if err != nil {
		return QuestionView{}, err
	}
	session.Reset()
	return questionView(cat, session.Cursor())
}

// Leave drops the session; all in-memory scoring state is discarded.
func (s *Service) Leave(sessionID string) {
	s.sessions.Delete(sessionID)
}

func buildResult(cat domain.Catalog, session *Session) domain.QuizResult {
	summaries := Summaries(cat, session.Records())
	return domain.QuizResult{
		Answers:    summaries,
		TopResults: TopCandidates(summaries),
	}
}

func questionView(cat domain.Catalog, cur domain.Cursor) (QuestionView, error) {
	if cur.SupplementIndex >= len(cat.Supplements) {
		return QuestionView{}, domain.ErrQuizCompleted
	}
	supp := cat.Supplements[cur.SupplementIndex]
	questions := supp.PhaseQuestions(cur.Phase)
	if cur.QuestionIndex >= len(questions) {
		return QuestionView{}, domain.ErrQuizCompleted
	}
	question := questions[cur.QuestionIndex]

	labels := make([]string, 0, len(question.Options))
	for _, opt := range question.Options {
		labels = append(labels, opt.Label)
	}
	return QuestionView{
		SupplementID:    supp.ID,
		SupplementName:  supp.Name,
		Group:           supp.Group,
		SupplementIndex: cur.SupplementIndex,
		SupplementCount: len(cat.Supplements),
		Phase:           cur.Phase,
		QuestionIndex:   cur.QuestionIndex,
		QuestionCount:   len(questions),
		Subtitle:        question.Subtitle,
		Prompt:          question.Prompt,
		Options:         labels,
	}, nil
}
