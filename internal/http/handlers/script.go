package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scribe-backend/internal/http/response"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/services"
)

type ScriptHandler struct {
	log     *logger.Logger
	scripts services.ScriptService
}

func NewScriptHandler(log *logger.Logger, scripts services.ScriptService) *ScriptHandler {
	return &ScriptHandler{log: log.With("handler", "ScriptHandler"), scripts: scripts}
}

// GET /api/scripts?limit=&offset=
func (h *ScriptHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	rows, err := h.scripts.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"scripts": rows})
}

// POST /api/scripts
func (h *ScriptHandler) Create(c *gin.Context) {
	var in services.CreateScriptInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.scripts.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"script": row})
}

// GET /api/scripts/:id
func (h *ScriptHandler) Get(c *gin.Context) {
	row, err := h.scripts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"script": row})
}

// PUT /api/scripts/:id
func (h *ScriptHandler) Update(c *gin.Context) {
	var patch services.ScriptPatch
	if !bindJSON(c, &patch) {
		return
	}
	row, err := h.scripts.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"script": row})
}

// DELETE /api/scripts/:id
func (h *ScriptHandler) Delete(c *gin.Context) {
	if err := h.scripts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "message": "Script deleted successfully"})
}

// POST /api/scripts/sync
func (h *ScriptHandler) Sync(c *gin.Context) {
	var req services.SyncRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.scripts.Sync(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/create-test-script
func (h *ScriptHandler) CreateTestScript(c *gin.Context) {
	row, err := h.scripts.CreateTestScript(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success":  true,
		"scriptId": row.ID,
		"message":  "Test script created successfully",
	})
}
