package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scribe-backend/internal/http/response"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/services"
)

type OpsHandler struct {
	log          *logger.Logger
	connectivity services.ConnectivityService
	youtube      services.YouTubeService
}

func NewOpsHandler(log *logger.Logger, connectivity services.ConnectivityService, youtube services.YouTubeService) *OpsHandler {
	return &OpsHandler{
		log:          log.With("handler", "OpsHandler"),
		connectivity: connectivity,
		youtube:      youtube,
	}
}

// GET /api/test-db
func (h *OpsHandler) TestDB(c *gin.Context) {
	res := h.connectivity.Probe(c.Request.Context())
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, res)
}

// GET /api/youtube/tools
func (h *OpsHandler) YouTubeTools(c *gin.Context) {
	tools, err := h.youtube.Tools(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tools": tools})
}

// POST /api/youtube/search
func (h *OpsHandler) YouTubeSearch(c *gin.Context) {
	var in services.YouTubeSearchInput
	if !bindJSON(c, &in) {
		return
	}
	videos, err := h.youtube.Search(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"videos": videos})
}

// GET /api/youtube/videos/:id
func (h *OpsHandler) YouTubeVideo(c *gin.Context) {
	insights, err := h.youtube.Video(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, insights)
}
