package controller

import (
	"errors"
	"growth_assessment/internal/model"
	"growth_assessment/internal/questionnaire"
	"growth_assessment/internal/service"
	"growth_assessment/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type QuestionnaireController struct {
	Service *service.QuestionnaireService
}

func NewQuestionnaireController(s *service.QuestionnaireService) *QuestionnaireController {
	return &QuestionnaireController{Service: s}
}

func respondQuestionnaireError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSectionNotFound), errors.Is(err, util.ErrQuestionNotFound), errors.Is(err, util.ErrSubmissionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrInvalidOption), errors.Is(err, util.ErrNoTextField), errors.Is(err, util.ErrEmptyPatch):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrSubmissionsDisabled):
		util.Error(ctx, http.StatusNotImplemented, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 获取问卷分区列表
// @Tags questionnaire
// @Produce json
// @Success 200 {object} util.Response{data=[]service.SectionSummary}
// @Router /sections [get]
func (c *QuestionnaireController) ListSections(ctx *gin.Context) {
	util.Success(ctx, c.Service.Sections())
}

// @Summary 获取分区题目
// @Tags questionnaire
// @Produce json
// @Param key path string true "section key"
// @Success 200 {object} util.Response{data=service.SectionDetail}
// @Failure 404 {object} util.Response
// @Router /sections/{key} [get]
func (c *QuestionnaireController) GetSection(ctx *gin.Context) {
	detail, err := c.Service.Section(ctx.Param("key"))
	if err != nil {
		respondQuestionnaireError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 获取用户答案
// @Tags questionnaire
// @Produce json
// @Param userId path string true "user id"
// @Success 200 {object} util.Response{data=map[string]model.Answer}
// @Security ApiKeyAuth
// @Router /users/{userId}/answers [get]
func (c *QuestionnaireController) GetAnswers(ctx *gin.Context) {
	answers, err := c.Service.GetAnswers(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		respondQuestionnaireError(ctx, err)
		return
	}
	util.Success(ctx, answers)
}

// @Summary 更新单题答案
// @Description Absent fields keep their stored value.
// @Tags questionnaire
// @Accept json
// @Produce json
// @Param userId path string true "user id"
// @Param questionId path string true "question id"
// @Param request body model.AnswerPatch true "patch"
// @Success 200 {object} util.Response{data=model.Answer}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Security ApiKeyAuth
// @Router /users/{userId}/answers/{questionId} [put]
func (c *QuestionnaireController) UpdateAnswer(ctx *gin.Context) {
	var patch model.AnswerPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.Service.UpdateAnswer(ctx.Request.Context(), ctx.Param("userId"), ctx.Param("questionId"), patch)
	if err != nil {
		respondQuestionnaireError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

// @Summary 清空用户答案
// @Tags questionnaire
// @Param userId path string true "user id"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /users/{userId}/answers [delete]
func (c *QuestionnaireController) ResetAnswers(ctx *gin.Context) {
	if err := c.Service.ResetAnswers(ctx.Request.Context(), ctx.Param("userId")); err != nil {
		respondQuestionnaireError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 分区渲染模型
// @Description Panels of a section with completion and summaries. Without expanded the section's initial expansion applies.
// @Tags questionnaire
// @Produce json
// @Param userId path string true "user id"
// @Param key path string true "section key"
// @Param expanded query string false "comma separated expanded question ids"
// @Success 200 {object} util.Response{data=service.SectionPanels}
// @Failure 404 {object} util.Response
// @Security ApiKeyAuth
// @Router /users/{userId}/sections/{key}/panels [get]
func (c *QuestionnaireController) GetPanels(ctx *gin.Context) {
	var expanded map[string]bool
	if raw, ok := ctx.GetQuery("expanded"); ok {
		expanded = questionnaire.ParseExpanded(raw)
	}

	panels, err := c.Service.Panels(ctx.Request.Context(), ctx.Param("userId"), ctx.Param("key"), expanded)
	if err != nil {
		respondQuestionnaireError(ctx, err)
		return
	}
	util.Success(ctx, panels)
}

// @Summary 提交问卷并获取建议
// @Description Aggregates every section into assessmentData and relays the backend advice unchanged.
// @Tags questionnaire
// @Produce json
// @Param userId path string true "user id"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} util.ErrorPayload
// @Failure 503 {object} util.ErrorPayload
// @Security ApiKeyAuth
// @Router /users/{userId}/submit [post]
func (c *QuestionnaireController) Submit(ctx *gin.Context) {
	res, err := c.Service.Submit(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		respondAdviceError(ctx, c.Service.Advice.FailureMode(), err)
		return
	}

	ctx.Header(headerSubmissionID, res.SubmissionID)
	util.RawJSON(ctx, res.Advice)
}

// @Summary 历史提交记录
// @Tags questionnaire
// @Produce json
// @Param userId path string true "user id"
// @Param page query int false "page"
// @Param limit query int false "limit"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Failure 501 {object} util.Response
// @Security ApiKeyAuth
// @Router /users/{userId}/submissions [get]
func (c *QuestionnaireController) ListSubmissions(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	subs, total, err := c.Service.ListSubmissions(ctx.Param("userId"), page, limit)
	if err != nil {
		respondQuestionnaireError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: subs, Total: total, Page: page, Limit: limit})
}

// @Summary 提交记录详情
// @Tags questionnaire
// @Produce json
// @Param userId path string true "user id"
// @Param id path string true "submission id"
// @Success 200 {object} util.Response{data=model.AdviceSubmission}
// @Failure 404 {object} util.Response
// @Failure 501 {object} util.Response
// @Security ApiKeyAuth
// @Router /users/{userId}/submissions/{id} [get]
func (c *QuestionnaireController) GetSubmission(ctx *gin.Context) {
	sub, err := c.Service.GetSubmission(ctx.Param("userId"), ctx.Param("id"))
	if err != nil {
		respondQuestionnaireError(ctx, err)
		return
	}
	util.Success(ctx, sub)
}
