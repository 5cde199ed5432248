package service

import (
	"context"
	"encoding/json"
	"errors"
	"growth_assessment/internal/catalog"
	"growth_assessment/internal/config"
	"growth_assessment/internal/model"
	"growth_assessment/internal/repository"
	"growth_assessment/internal/util"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func newQuestionnaireService(t *testing.T, backend http.HandlerFunc) (*QuestionnaireService, string) {
	t.Helper()
	reg, err := catalog.Load()
	require.NoError(t, err)

	dir := t.TempDir()
	storage := &StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: dir}}}
	return NewQuestionnaireService(reg, repository.NewMemoryAnswerRepository(), nil, storage, newBackend(t, backend)), dir
}

func TestSectionsInOrder(t *testing.T) {
	svc, _ := newQuestionnaireService(t, nil)

	sections := svc.Sections()
	require.Len(t, sections, 3)
	assert.Equal(t, "service-offering", sections[0].Key)
	assert.Equal(t, 5, sections[1].QuestionCount)

	detail, err := svc.Section("assembling-team")
	require.NoError(t, err)
	assert.Equal(t, int64(300), detail.AdvanceDelayMs)
	assert.Equal(t, []string{"team-structure"}, detail.InitiallyExpanded)

	_, err = svc.Section("nope")
	assert.ErrorIs(t, err, util.ErrSectionNotFound)
}

func TestUpdateAnswerValidation(t *testing.T) {
	svc, _ := newQuestionnaireService(t, nil)
	ctx := context.Background()

	_, err := svc.UpdateAnswer(ctx, "u", "team-structure", model.AnswerPatch{})
	assert.ErrorIs(t, err, util.ErrEmptyPatch)

	_, err = svc.UpdateAnswer(ctx, "u", "missing", model.AnswerPatch{SelectedOption: strp("Agree")})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)

	_, err = svc.UpdateAnswer(ctx, "u", "team-structure", model.AnswerPatch{SelectedOption: strp("Maybe")})
	assert.ErrorIs(t, err, util.ErrInvalidOption)

	_, err = svc.UpdateAnswer(ctx, "u", "industry", model.AnswerPatch{SelectedOption: strp("Software")})
	assert.ErrorIs(t, err, util.ErrInvalidOption)

	_, err = svc.UpdateAnswer(ctx, "u", "team-structure", model.AnswerPatch{SelectedOption: strp("Agree")})
	require.NoError(t, err)
	a, err := svc.UpdateAnswer(ctx, "u", "team-structure", model.AnswerPatch{AdditionalText: strp("growing")})
	require.NoError(t, err)
	assert.Equal(t, model.Answer{SelectedOption: "Agree", AdditionalText: "growing"}, a)
}

func TestPanelsUseInitialExpansionByDefault(t *testing.T) {
	svc, _ := newQuestionnaireService(t, nil)
	ctx := context.Background()

	_, err := svc.UpdateAnswer(ctx, "u", "team-structure", model.AnswerPatch{SelectedOption: strp("Agree")})
	require.NoError(t, err)

	got, err := svc.Panels(ctx, "u", "assembling-team", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Completed)
	assert.Equal(t, 5, got.Total)
	assert.True(t, got.Panels[0].Expanded)
	assert.Nil(t, got.Panels[0].Summary)

	got, err = svc.Panels(ctx, "u", "assembling-team", map[string]bool{})
	require.NoError(t, err)
	require.NotNil(t, got.Panels[0].Summary)
	assert.Equal(t, "Agree", got.Panels[0].Summary.Value)
}

func TestSubmitForwardsAggregateAndArchives(t *testing.T) {
	var received map[string]json.RawMessage
	svc, dir := newQuestionnaireService(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.Write([]byte(`{"advice":"ok"}`))
	})
	ctx := context.Background()

	_, err := svc.UpdateAnswer(ctx, "u1", "industry", model.AnswerPatch{AdditionalText: strp("Fintech")})
	require.NoError(t, err)

	res, err := svc.Submit(ctx, "u1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"advice":"ok"}`, string(res.Advice))
	assert.NotEmpty(t, res.SubmissionID)

	assert.JSONEq(t, `"u1"`, string(received["userId"]))
	var data map[string]map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(received["assessmentData"], &data))
	assert.Equal(t, "Fintech", data["serviceOffering"]["industry"]["text"])
	assert.Contains(t, data, "toolboxSuccess")

	archived := filepath.Join(dir, "reports", "u1", res.SubmissionID+".json")
	raw, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"advice":{"advice":"ok"}`)
}

func TestSubmitReturnsUpstreamError(t *testing.T) {
	svc, dir := newQuestionnaireService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Submit(context.Background(), "u1")
	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))

	_, statErr := os.Stat(filepath.Join(dir, "reports"))
	assert.True(t, os.IsNotExist(statErr), "failed submissions are not archived")
}

func TestListSubmissionsWithoutDatabase(t *testing.T) {
	svc, _ := newQuestionnaireService(t, nil)
	_, _, err := svc.ListSubmissions("u", 1, 10)
	assert.ErrorIs(t, err, util.ErrSubmissionsDisabled)
}
