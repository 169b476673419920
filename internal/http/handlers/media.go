package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scribe-backend/internal/http/response"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/services"
)

type MediaHandler struct {
	log        *logger.Logger
	images     services.ImageService
	transcribe services.TranscriptionService
	documents  services.DocumentService
	callRecorder
}

func NewMediaHandler(
	log *logger.Logger,
	images services.ImageService,
	transcribe services.TranscriptionService,
	documents services.DocumentService,
	calls services.CallLogService,
) *MediaHandler {
	return &MediaHandler{
		log:          log.With("handler", "MediaHandler"),
		images:       images,
		transcribe:   transcribe,
		documents:    documents,
		callRecorder: callRecorder{calls: calls},
	}
}

// POST /api/generate-image
func (h *MediaHandler) GenerateImage(c *gin.Context) {
	var in services.GenerateImageInput
	if !bindJSON(c, &in) {
		return
	}
	start := time.Now()
	res, err := h.images.Generate(c.Request.Context(), in)
	h.record(c, start, in, res, err)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/audio/transcribe
func (h *MediaHandler) Transcribe(c *gin.Context) {
	audio, err := formUpload(c, "audio")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}
	start := time.Now()
	res, err := h.transcribe.Transcribe(c.Request.Context(), audio)
	var req gin.H
	if audio != nil {
		req = gin.H{"name": audio.Name, "type": audio.ContentType, "size": len(audio.Data)}
	}
	h.record(c, start, req, res, err)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/parse-file
func (h *MediaHandler) ParseFile(c *gin.Context) {
	file, err := formUpload(c, "file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}
	doc, err := h.documents.Parse(c.Request.Context(), file)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, doc)
}
