package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"growth_assessment/internal/config"
	"growth_assessment/internal/service"
	"growth_assessment/internal/util"
	"growth_assessment/pkg/logger"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInternal         = "Internal server error"
	msgUpstreamFailed   = "Failed to get AI advice from backend service"
	msgMissingFields    = "Missing required fields"
	msgBodyTooLarge     = "Request body too large"
	headerSubmissionID  = "X-Submission-ID"
	maxGatewayBodyBytes = 4 << 20
)

type AdviceController struct {
	Service *service.AdviceService
}

func NewAdviceController(s *service.AdviceService) *AdviceController {
	return &AdviceController{Service: s}
}

// @Summary 获取个性化建议
// @Description Validates userId and assessmentData and relays them to the advice backend. The backend JSON is returned unchanged.
// @Tags advice
// @Accept json
// @Produce json
// @Param request body service.AdviceRequest true "userId and assessmentData"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} util.ErrorPayload
// @Failure 413 {object} util.ErrorPayload
// @Failure 500 {object} util.ErrorPayload
// @Failure 503 {object} util.ErrorPayload
// @Router /llm-advice [post]
func (c *AdviceController) GetAdvice(ctx *gin.Context) {
	body, ok := c.readBody(ctx)
	if !ok {
		return
	}

	req, err := service.ParseAdviceRequest(body)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			util.GatewayError(ctx, http.StatusBadRequest, msgMissingFields, "")
			return
		}
		respondInternal(ctx, c.Service.FailureMode(), err)
		return
	}

	advice, err := c.Service.GetAdvice(ctx.Request.Context(), req)
	if err != nil {
		respondAdviceError(ctx, c.Service.FailureMode(), err)
		return
	}

	util.RawJSON(ctx, advice)
}

// @Summary 保存用户报告
// @Description Relays an assessmentData object to the backend report endpoint.
// @Tags advice
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "assessmentData"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} util.ErrorPayload
// @Failure 413 {object} util.ErrorPayload
// @Failure 500 {object} util.ErrorPayload
// @Failure 503 {object} util.ErrorPayload
// @Router /save-user-report [post]
func (c *AdviceController) SaveUserReport(ctx *gin.Context) {
	body, ok := c.readBody(ctx)
	if !ok {
		return
	}

	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		respondInternal(ctx, c.Service.FailureMode(), service.ErrMalformedRequest)
		return
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(trimmed, &fields) != nil || len(fields) == 0 {
		util.GatewayError(ctx, http.StatusBadRequest, msgMissingFields, "")
		return
	}

	resp, err := c.Service.SaveUserReport(ctx.Request.Context(), trimmed)
	if err != nil {
		respondAdviceError(ctx, c.Service.FailureMode(), err)
		return
	}

	util.RawJSON(ctx, resp)
}

// readBody reads at most maxGatewayBodyBytes. Oversized bodies get 413.
func (c *AdviceController) readBody(ctx *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxGatewayBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Log.Warn("Gateway body over limit", zap.String("path", ctx.FullPath()), zap.Int64("limit", tooLarge.Limit))
			util.GatewayError(ctx, http.StatusRequestEntityTooLarge, msgBodyTooLarge, "")
			return nil, false
		}
		respondInternal(ctx, c.Service.FailureMode(), err)
		return nil, false
	}
	return body, true
}

// respondAdviceError maps a backend failure to the configured status.
func respondAdviceError(ctx *gin.Context, mode string, err error) {
	var upErr *service.UpstreamError
	if !errors.As(err, &upErr) {
		respondInternal(ctx, mode, err)
		return
	}

	logger.Log.Warn("Advice backend failure", zap.String("path", ctx.FullPath()), zap.Error(err))
	if mode == config.FailureModeInternal {
		util.GatewayError(ctx, http.StatusInternalServerError, msgInternal, upErr.Error())
		return
	}
	util.GatewayError(ctx, http.StatusServiceUnavailable, msgUpstreamFailed, upErr.Error())
}

// respondInternal writes the InternalError payload. Only the "internal" mode
// exposes details.
func respondInternal(ctx *gin.Context, mode string, err error) {
	logger.Log.Error("Advice gateway error", zap.String("path", ctx.FullPath()), zap.Error(err))
	details := ""
	if mode == config.FailureModeInternal {
		details = err.Error()
	}
	util.GatewayError(ctx, http.StatusInternalServerError, msgInternal, details)
}
