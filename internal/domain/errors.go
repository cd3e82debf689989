package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been started.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrCatalogNotFound indicates the supplement catalog could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrQuizCompleted is returned when an answer arrives after the catalog is exhausted.
	ErrQuizCompleted = errors.New("quiz already completed")
	// ErrOptionNotFound indicates a submitted option index is not declared by the current question.
	ErrOptionNotFound = errors.New("option not found")
)
