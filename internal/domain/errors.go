package domain

import "errors"

var (
	// ErrSessionExpired is returned when a user submits an answer without a live
	// quiz session. This is an expected condition; callers should offer a restart.
	ErrSessionExpired = errors.New("quiz session expired")
	// ErrInvalidAnswerValue indicates an answer code outside the closed 0..3 set.
	// It signals an upstream contract violation, not user behavior.
	ErrInvalidAnswerValue = errors.New("answer value outside valid range")
	// ErrMalformedQuestionData indicates the question bank input could not be built.
	ErrMalformedQuestionData = errors.New("malformed question data")
	// ErrReportNotFound indicates a user has no persisted test results yet.
	ErrReportNotFound = errors.New("test report not found")
)
