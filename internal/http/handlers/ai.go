package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scribe-backend/internal/http/response"
	"github.com/yungbote/scribe-backend/internal/modules/scriptgen"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/services"
)

type AIHandler struct {
	log        *logger.Logger
	research   services.ResearchService
	generation services.GenerationService
	assistant  services.AssistantService
	images     services.ImageService
	callRecorder
}

func NewAIHandler(
	log *logger.Logger,
	research services.ResearchService,
	generation services.GenerationService,
	assistant services.AssistantService,
	images services.ImageService,
	calls services.CallLogService,
) *AIHandler {
	return &AIHandler{
		log:          log.With("handler", "AIHandler"),
		research:     research,
		generation:   generation,
		assistant:    assistant,
		images:       images,
		callRecorder: callRecorder{calls: calls},
	}
}

// POST /api/ai/advanced-research
func (h *AIHandler) AdvancedResearch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	in := services.AdvancedResearchInput{
		Topic:              strings.TrimSpace(c.PostForm("topic")),
		Angle:              strings.TrimSpace(c.PostForm("angle")),
		ExampleScriptsText: c.PostForm("exampleScriptsText"),
	}
	if in.Topic == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_topic", errors.New("Topic is required"))
		return
	}
	names := make([]string, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		data, err := readPart(fh)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
			return
		}
		in.Files = append(in.Files, scriptgen.UploadedFile{Name: fh.Filename, Data: data})
		names = append(names, fh.Filename)
	}

	stream, ok := openFrameStream(c, h.log)
	if !ok {
		return
	}
	start := time.Now()
	plan, err := h.research.AdvancedResearch(c.Request.Context(), in, func(ev scriptgen.AgentStreamEvent) {
		stream.Send(ev)
	})
	h.record(c, start, gin.H{"topic": in.Topic, "angle": in.Angle, "files": names}, plan, err)
}

// POST /api/ai/generate-advanced-script
func (h *AIHandler) GenerateAdvancedScript(c *gin.Context) {
	var in services.GenerateAdvancedInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Normalize(); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	stream, ok := openFrameStream(c, h.log)
	if !ok {
		return
	}
	start := time.Now()
	err := h.generation.GenerateAdvancedScript(c.Request.Context(), in, stream.Send)
	h.record(c, start, in, stream.Last(), err)
}

// POST /api/ai/explore-topic
func (h *AIHandler) ExploreTopic(c *gin.Context) {
	var in services.ExploreTopicInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Normalize(); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	stream, ok := openFrameStream(c, h.log)
	if !ok {
		return
	}
	start := time.Now()
	err := h.generation.ExploreTopic(c.Request.Context(), in, stream.Send)
	h.record(c, start, in, stream.Last(), err)
}

// POST /api/ai/explore-topic-agents
func (h *AIHandler) ExploreTopicAgents(c *gin.Context) {
	var in services.ExploreAgentsInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.Normalize(); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	stream, ok := openFrameStream(c, h.log)
	if !ok {
		return
	}
	start := time.Now()
	err := h.generation.ExploreTopicAgents(c.Request.Context(), in, stream.Send)
	h.record(c, start, in, stream.Last(), err)
}

// POST /api/ai/analyze-script
func (h *AIHandler) AnalyzeScript(c *gin.Context) {
	var in services.AnalyzeScriptInput
	if !bindJSON(c, &in) {
		return
	}
	start := time.Now()
	res, err := h.assistant.AnalyzeScript(c.Request.Context(), in)
	h.record(c, start, in, res, err)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

type selectionActionRequest struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

// POST /api/ai/selection-action
func (h *AIHandler) SelectionAction(c *gin.Context) {
	var req selectionActionRequest
	if !bindJSON(c, &req) {
		return
	}
	start := time.Now()
	out, err := h.assistant.SelectionAction(c.Request.Context(), req.Text, req.Action)
	h.record(c, start, req, out, err)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"newText": out})
}

type textRequest struct {
	Text string `json:"text"`
}

// POST /api/ai/enhance-context
func (h *AIHandler) EnhanceContext(c *gin.Context) {
	var req textRequest
	if !bindJSON(c, &req) {
		return
	}
	start := time.Now()
	out, err := h.assistant.EnhanceContext(c.Request.Context(), req.Text)
	h.record(c, start, req, out, err)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enhancedText": out})
}

// POST /api/ai/analyze-typing
//
// Never fails; a bad body gets an empty suggestion list like any other miss.
func (h *AIHandler) AnalyzeTyping(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondOK(c, services.TypingSuggestions{Suggestions: []services.Suggestion{}})
		return
	}
	start := time.Now()
	res := h.assistant.AnalyzeTyping(c.Request.Context(), req.Text)
	h.record(c, start, req, res, nil)
	response.RespondOK(c, res)
}

// POST /api/ai/search-images
func (h *AIHandler) SearchImages(c *gin.Context) {
	var in services.ImageSearchInput
	if !bindJSON(c, &in) {
		return
	}
	start := time.Now()
	res, err := h.images.Search(c.Request.Context(), in)
	h.record(c, start, in, res, err)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
