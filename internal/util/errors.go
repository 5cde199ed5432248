package util

import "errors"

var (
	ErrSectionNotFound     = errors.New("section not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrInvalidOption       = errors.New("option is not offered by this question")
	ErrNoTextField         = errors.New("question does not accept additional text")
	ErrEmptyPatch          = errors.New("selectedOption or additionalText is required")
	ErrSubmissionsDisabled = errors.New("submission history requires a database")
	ErrSubmissionNotFound  = errors.New("submission not found")
)
