package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scribe-backend/internal/http/response"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/services"
)

type FineTuneHandler struct {
	log      *logger.Logger
	finetune services.FineTuneService
	callRecorder
}

func NewFineTuneHandler(log *logger.Logger, finetune services.FineTuneService, calls services.CallLogService) *FineTuneHandler {
	return &FineTuneHandler{
		log:          log.With("handler", "FineTuneHandler"),
		finetune:     finetune,
		callRecorder: callRecorder{calls: calls},
	}
}

// POST /api/fine-tuning/create
func (h *FineTuneHandler) Create(c *gin.Context) {
	var in services.CreateFineTuneInput
	if !bindJSON(c, &in) {
		return
	}
	start := time.Now()
	job, err := h.finetune.Create(c.Request.Context(), in)
	h.record(c, start, gin.H{"examples": len(in.TrainingData), "model": in.Model}, job, err)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"id":         job.ID,
		"status":     job.Status,
		"model":      job.Model,
		"created_at": job.CreatedAt,
	})
}

// GET /api/fine-tuning/jobs
func (h *FineTuneHandler) ListJobs(c *gin.Context) {
	jobs, err := h.finetune.ListJobs(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}

// GET /api/fine-tuning/set-model
func (h *FineTuneHandler) GetActiveModel(c *gin.Context) {
	model, err := h.finetune.ActiveModel(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activeModel": model})
}

// POST /api/fine-tuning/set-model
func (h *FineTuneHandler) SetActiveModel(c *gin.Context) {
	var req struct {
		Model string `json:"model"`
	}
	if !bindJSON(c, &req) {
		return
	}
	model, err := h.finetune.SetActiveModel(c.Request.Context(), req.Model)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.log.Info("Active model changed", "model", model)
	response.RespondOK(c, gin.H{"success": true, "activeModel": model})
}
