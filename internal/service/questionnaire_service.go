package service

import (
	"context"
	"encoding/json"
	"errors"
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/model"
	"growth_assessment/internal/questionnaire"
	"growth_assessment/internal/repository"
	"growth_assessment/internal/util"
	"growth_assessment/pkg/logger"
	"growth_assessment/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SectionSummary struct {
	Key           string `json:"key"`
	Title         string `json:"title"`
	Order         int    `json:"order"`
	QuestionCount int    `json:"questionCount"`
}

type SectionDetail struct {
	Key               string           `json:"key"`
	Title             string           `json:"title"`
	DataKey           string           `json:"dataKey"`
	AdvanceDelayMs    int64            `json:"advanceDelayMs"`
	InitiallyExpanded []string         `json:"initiallyExpanded"`
	Questions         []model.Question `json:"questions"`
}

type SectionPanels struct {
	Key       string                `json:"key"`
	Title     string                `json:"title"`
	Completed int                   `json:"completed"`
	Total     int                   `json:"total"`
	Panels    []questionnaire.Panel `json:"panels"`
}

type SubmitResult struct {
	SubmissionID string
	Advice       json.RawMessage
}

// QuestionnaireService serves catalogs and per-user answers and submits
// completed questionnaires for advice.
type QuestionnaireService struct {
	Registry    *catalog.Registry
	Answers     repository.AnswerRepository
	Submissions *repository.SubmissionRepository
	Storage     *StorageService
	Advice      *AdviceService
}

// NewQuestionnaireService wires the service. submissions and storage may be nil.
func NewQuestionnaireService(
	registry *catalog.Registry,
	answers repository.AnswerRepository,
	submissions *repository.SubmissionRepository,
	storage *StorageService,
	advice *AdviceService,
) *QuestionnaireService {
	return &QuestionnaireService{
		Registry:    registry,
		Answers:     answers,
		Submissions: submissions,
		Storage:     storage,
		Advice:      advice,
	}
}

func (s *QuestionnaireService) Sections() []SectionSummary {
	sections := s.Registry.Sections()
	out := make([]SectionSummary, 0, len(sections))
	for _, sec := range sections {
		out = append(out, SectionSummary{
			Key:           sec.Key,
			Title:         sec.Title,
			Order:         sec.Order,
			QuestionCount: sec.Catalog.Len(),
		})
	}
	return out
}

func (s *QuestionnaireService) Section(key string) (*SectionDetail, error) {
	sec, ok := s.Registry.Section(key)
	if !ok {
		return nil, util.ErrSectionNotFound
	}
	expanded := sec.InitiallyExpanded()
	if expanded == nil {
		expanded = []string{}
	}
	return &SectionDetail{
		Key:               sec.Key,
		Title:             sec.Title,
		DataKey:           sec.DataKey,
		AdvanceDelayMs:    sec.AdvanceDelay.Milliseconds(),
		InitiallyExpanded: expanded,
		Questions:         sec.Catalog.Questions(),
	}, nil
}

func (s *QuestionnaireService) GetAnswers(ctx context.Context, userID string) (map[string]model.Answer, error) {
	return s.Answers.Get(ctx, userID)
}

// UpdateAnswer applies a field-independent patch after checking it against the catalog.
func (s *QuestionnaireService) UpdateAnswer(ctx context.Context, userID, questionID string, p model.AnswerPatch) (model.Answer, error) {
	if p.SelectedOption == nil && p.AdditionalText == nil {
		return model.Answer{}, util.ErrEmptyPatch
	}

	_, q, ok := s.Registry.FindQuestion(questionID)
	if !ok {
		return model.Answer{}, util.ErrQuestionNotFound
	}

	if p.SelectedOption != nil && *p.SelectedOption != "" {
		if !q.Type.HasOptions() || !q.HasOption(*p.SelectedOption) {
			return model.Answer{}, util.ErrInvalidOption
		}
	}
	if p.AdditionalText != nil && q.Type.HasOptions() && !q.AdditionalInfo {
		return model.Answer{}, util.ErrNoTextField
	}

	return s.Answers.Patch(ctx, userID, questionID, p)
}

func (s *QuestionnaireService) ResetAnswers(ctx context.Context, userID string) error {
	return s.Answers.Reset(ctx, userID)
}

// Panels renders a section from the stored answers. A nil expanded set means
// the section's initial expansion.
func (s *QuestionnaireService) Panels(ctx context.Context, userID, key string, expanded map[string]bool) (*SectionPanels, error) {
	sec, ok := s.Registry.Section(key)
	if !ok {
		return nil, util.ErrSectionNotFound
	}
	answers, err := s.Answers.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if expanded == nil {
		expanded = make(map[string]bool)
		for _, id := range sec.InitiallyExpanded() {
			expanded[id] = true
		}
	}

	panels := questionnaire.BuildPanels(sec.Catalog, questionnaire.MapAnswers(answers), func(id string) bool { return expanded[id] })
	completed := 0
	for _, p := range panels {
		if p.Complete {
			completed++
		}
	}

	return &SectionPanels{
		Key:       sec.Key,
		Title:     sec.Title,
		Completed: completed,
		Total:     len(panels),
		Panels:    panels,
	}, nil
}

type archivedReport struct {
	SubmissionID   string          `json:"submissionId"`
	UserID         string          `json:"userId"`
	SubmittedAt    time.Time       `json:"submittedAt"`
	AssessmentData json.RawMessage `json:"assessmentData"`
	Advice         json.RawMessage `json:"advice"`
}

// Submit aggregates every section, asks the backend for advice and records the outcome.
// Upstream failures are returned as *UpstreamError after being recorded.
func (s *QuestionnaireService) Submit(ctx context.Context, userID string) (*SubmitResult, error) {
	answers, err := s.Answers.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := questionnaire.BuildAssessmentData(s.Registry, questionnaire.MapAnswers(answers))
	rawData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	rawUser, err := json.Marshal(userID)
	if err != nil {
		return nil, err
	}

	submission := &model.AdviceSubmission{
		UUIDBase:       model.UUIDBase{ID: model.GenerateUUID()},
		UserID:         userID,
		AssessmentData: model.JSONDocument(rawData),
		AnsweredCount:  data.Answered(),
		SubmittedAt:    time.Now(),
		Status:         model.SubmissionSucceeded,
	}

	advice, adviceErr := s.Advice.GetAdvice(ctx, AdviceRequest{UserID: rawUser, AssessmentData: rawData})
	if adviceErr != nil {
		submission.Status = model.SubmissionFailed
		submission.Error = adviceErr.Error()
	} else {
		submission.Advice = model.JSONDocument(advice)
	}
	monitoring.SubmissionsTotal.WithLabelValues(submission.Status).Inc()

	if adviceErr == nil && s.Storage != nil {
		s.archive(ctx, submission, rawData, advice)
	}

	if s.Submissions != nil {
		if err := s.Submissions.Create(submission); err != nil {
			logger.Log.Error("Failed to record submission",
				zap.String("userId", userID),
				zap.String("submissionId", submission.ID),
				zap.Error(err))
		}
	}

	if adviceErr != nil {
		return nil, adviceErr
	}
	return &SubmitResult{SubmissionID: submission.ID, Advice: advice}, nil
}

func (s *QuestionnaireService) archive(ctx context.Context, sub *model.AdviceSubmission, data, advice json.RawMessage) {
	doc, err := json.Marshal(archivedReport{
		SubmissionID:   sub.ID,
		UserID:         sub.UserID,
		SubmittedAt:    sub.SubmittedAt,
		AssessmentData: data,
		Advice:         advice,
	})
	if err != nil {
		logger.Log.Warn("Failed to encode report", zap.Error(err))
		return
	}

	url, err := s.Storage.PutJSON(ctx, sub.UserID, sub.ID, doc)
	if err != nil {
		logger.Log.Warn("Failed to archive report", zap.String("submissionId", sub.ID), zap.Error(err))
		return
	}
	sub.ReportURL = url
}

func (s *QuestionnaireService) ListSubmissions(userID string, page, limit int) ([]model.AdviceSubmission, int64, error) {
	if s.Submissions == nil {
		return nil, 0, util.ErrSubmissionsDisabled
	}
	return s.Submissions.ListByUser(userID, page, limit)
}

// GetSubmission returns one of the user's submissions.
func (s *QuestionnaireService) GetSubmission(userID, id string) (*model.AdviceSubmission, error) {
	if s.Submissions == nil {
		return nil, util.ErrSubmissionsDisabled
	}
	sub, err := s.Submissions.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && sub.UserID != userID) {
		return nil, util.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
