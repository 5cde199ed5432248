package model

import "strings"

type QuestionType string

const (
	LikertScale    QuestionType = "likert-scale"
	MultipleChoice QuestionType = "multiple-choice"
	FreeText       QuestionType = "text"
)

// Valid reports whether t is one of the known answer types.
func (t QuestionType) Valid() bool {
	switch t {
	case LikertScale, MultipleChoice, FreeText:
		return true
	}
	return false
}

// HasOptions reports whether questions of this type are answered by picking an option.
func (t QuestionType) HasOptions() bool {
	return t == LikertScale || t == MultipleChoice
}

// swagger:model Question
type Question struct {
	ID             string       `yaml:"id" json:"id"`
	Title          string       `yaml:"title" json:"title"`
	Type           QuestionType `yaml:"type" json:"type"`
	Options        []string     `yaml:"options,omitempty" json:"options,omitempty"`
	AdditionalInfo bool         `yaml:"additional_info" json:"additionalInfo"`
	Required       bool         `yaml:"required" json:"required"` // advisory only
	Phase          string       `yaml:"phase,omitempty" json:"phase,omitempty"`
}

// HasOption reports whether option is one of the question's choices.
func (q Question) HasOption(option string) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}

// IsComplete applies the type-directed completion predicate to a.
func (q Question) IsComplete(a Answer) bool {
	if q.Type == FreeText {
		return strings.TrimSpace(a.AdditionalText) != ""
	}
	return strings.TrimSpace(a.SelectedOption) != ""
}

// swagger:model Answer
type Answer struct {
	SelectedOption string `json:"selectedOption"`
	AdditionalText string `json:"additionalText"`
}

// IsEmpty reports whether nothing has been chosen or typed yet.
func (a Answer) IsEmpty() bool {
	return a.SelectedOption == "" && a.AdditionalText == ""
}

// AnswerPatch carries a field-independent update. Nil fields keep their value.
type AnswerPatch struct {
	SelectedOption *string `json:"selectedOption,omitempty"`
	AdditionalText *string `json:"additionalText,omitempty"`
}

// Apply returns a with the patch's present fields replaced.
func (p AnswerPatch) Apply(a Answer) Answer {
	if p.SelectedOption != nil {
		a.SelectedOption = *p.SelectedOption
	}
	if p.AdditionalText != nil {
		a.AdditionalText = *p.AdditionalText
	}
	return a
}
