package catalog

import "errors"

var (
	ErrEmptyID           = errors.New("question id is empty")
	ErrDuplicateID       = errors.New("duplicate question id")
	ErrUnknownType       = errors.New("unknown question type")
	ErrMissingOptions    = errors.New("choice question has no options")
	ErrUnexpectedOptions = errors.New("text question must not have options")
	ErrUnknownExpansion  = errors.New("unknown default expansion")
	ErrDuplicateSection  = errors.New("duplicate section")
	ErrSectionNotFound   = errors.New("section not found")
)
