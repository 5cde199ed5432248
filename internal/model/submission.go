package model

import (
	"time"
)

const (
	SubmissionSucceeded = "succeeded"
	SubmissionFailed    = "failed"
)

// AdviceSubmission records one aggregated questionnaire sent to the advice backend.
// swagger:model AdviceSubmission
type AdviceSubmission struct {
	UUIDBase
	UserID         string       `gorm:"size:128;index;not null" json:"userId"`
	AssessmentData JSONDocument `gorm:"type:json" json:"assessmentData"`
	Advice         JSONDocument `gorm:"type:json" json:"advice,omitempty"`
	Status         string       `gorm:"size:20;default:'succeeded'" json:"status"`
	Error          string       `gorm:"type:text" json:"error,omitempty"`
	ReportURL      string       `gorm:"size:255" json:"reportUrl,omitempty"`
	AnsweredCount  int          `json:"answeredCount"`
	SubmittedAt    time.Time    `gorm:"index" json:"submittedAt"`
}

func (AdviceSubmission) TableName() string {
	return "advice_submissions"
}
