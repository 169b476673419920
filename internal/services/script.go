package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	types "github.com/yungbote/scribe-backend/internal/domain"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/apierr"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

const (
	maxScriptPage = 50

	SyncBatchUpdate = "batch_update"
	SyncSession     = "sync_session"
)

// ScriptPatch is a partial update; nil fields are left untouched.
type ScriptPatch struct {
	ID             string          `json:"id,omitempty"`
	Title          *string         `json:"title,omitempty"`
	Content        json.RawMessage `json:"content,omitempty"`
	Storyline      json.RawMessage `json:"storyline,omitempty"`
	TargetDuration *int            `json:"targetDuration,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

func (p ScriptPatch) updates() map[string]any {
	out := map[string]any{}
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if present(p.Content) {
		out["content"] = datatypes.JSON(p.Content)
	}
	if present(p.Storyline) {
		out["storyline"] = datatypes.JSON(p.Storyline)
	}
	if p.TargetDuration != nil {
		out["target_duration"] = *p.TargetDuration
	}
	if present(p.Metadata) {
		out["metadata"] = datatypes.JSON(p.Metadata)
	}
	return out
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && string(raw) != "null"
}

type CreateScriptInput struct {
	Title          string          `json:"title"`
	Content        json.RawMessage `json:"content"`
	Storyline      json.RawMessage `json:"storyline,omitempty"`
	TargetDuration int             `json:"targetDuration"`
	Prompt         string          `json:"prompt,omitempty"`
	SessionID      string          `json:"sessionId,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

type SessionSyncData struct {
	AgentData json.RawMessage `json:"agentData"`
	Progress  *int            `json:"progress"`
}

// SyncRequest accepts sessionId/agentData/progress either at the top level
// or nested under data.
type SyncRequest struct {
	Operation string           `json:"operation"`
	Scripts   []ScriptPatch    `json:"scripts"`
	SessionID string           `json:"sessionId"`
	Data      *SessionSyncData `json:"data"`
	AgentData json.RawMessage  `json:"agentData"`
	Progress  *int             `json:"progress"`
}

type SyncResult struct {
	Success bool `json:"success"`
	Updated *int `json:"updated,omitempty"`
}

type ScriptService interface {
	List(ctx context.Context, limit, offset int) ([]*types.Script, error)
	Get(ctx context.Context, id string) (*types.Script, error)
	Create(ctx context.Context, in CreateScriptInput) (*types.Script, error)
	Update(ctx context.Context, id string, patch ScriptPatch) (*types.Script, error)
	Delete(ctx context.Context, id string) error
	CreateTestScript(ctx context.Context) (*types.Script, error)
	Sync(ctx context.Context, req SyncRequest) (SyncResult, error)
}

type scriptService struct {
	db       *gorm.DB
	log      *logger.Logger
	scripts  repos.ScriptRepo
	sessions repos.SessionRepo
}

func NewScriptService(db *gorm.DB, log *logger.Logger, scripts repos.ScriptRepo, sessions repos.SessionRepo) ScriptService {
	return &scriptService{
		db:       db,
		log:      log.With("service", "ScriptService"),
		scripts:  scripts,
		sessions: sessions,
	}
}

var errScriptNotFound = apierr.NotFound("script_not_found", "Script not found")

func parseScriptID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, errScriptNotFound
	}
	return parsed, nil
}

func mapScriptErr(err error) error {
	if errors.Is(err, repos.ErrNotFound) {
		return errScriptNotFound
	}
	return err
}

func (s *scriptService) List(ctx context.Context, limit, offset int) ([]*types.Script, error) {
	if limit <= 0 || limit > maxScriptPage {
		limit = maxScriptPage
	}
	if offset < 0 {
		offset = 0
	}
	return s.scripts.List(dbctx.Context{Ctx: ctx}, limit, offset)
}

func (s *scriptService) Get(ctx context.Context, id string) (*types.Script, error) {
	sid, err := parseScriptID(id)
	if err != nil {
		return nil, err
	}
	row, err := s.scripts.GetByID(dbctx.Context{Ctx: ctx}, sid)
	return row, mapScriptErr(err)
}

func (s *scriptService) Create(ctx context.Context, in CreateScriptInput) (*types.Script, error) {
	row := &types.Script{
		Title:          strings.TrimSpace(in.Title),
		TargetDuration: in.TargetDuration,
		Prompt:         in.Prompt,
		SessionID:      in.SessionID,
		Source:         types.ScriptSourceManual,
	}
	if present(in.Content) {
		row.Content = datatypes.JSON(in.Content)
	} else {
		row.Content = datatypes.JSON(`""`)
	}
	if present(in.Storyline) {
		row.Storyline = datatypes.JSON(in.Storyline)
	}
	if present(in.Metadata) {
		row.Metadata = datatypes.JSON(in.Metadata)
	}
	return s.scripts.Create(dbctx.Context{Ctx: ctx}, row)
}

func (s *scriptService) Update(ctx context.Context, id string, patch ScriptPatch) (*types.Script, error) {
	sid, err := parseScriptID(id)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	updates := patch.updates()
	if len(updates) == 0 {
		row, err := s.scripts.GetByID(dbc, sid)
		return row, mapScriptErr(err)
	}
	if err := s.scripts.UpdateFields(dbc, sid, updates); err != nil {
		return nil, mapScriptErr(err)
	}
	row, err := s.scripts.GetByID(dbc, sid)
	return row, mapScriptErr(err)
}

func (s *scriptService) Delete(ctx context.Context, id string) error {
	sid, err := parseScriptID(id)
	if err != nil {
		return err
	}
	return mapScriptErr(s.scripts.Delete(dbctx.Context{Ctx: ctx}, sid))
}

const testScriptTitle = "Test Script for Fine-Tuning"

const testScriptContent = `This is the beginning of a test script. It contains multiple paragraphs that will be used for fine-tuning.

The second paragraph continues the narrative. It provides more context and detail about the subject matter. This helps create a coherent flow of ideas.

In the third paragraph, we expand on the previous concepts. We introduce new elements while maintaining consistency with the established tone and style.

The fourth paragraph brings everything together. It synthesizes the ideas presented earlier and provides a meaningful conclusion to this section.

Finally, the last paragraph offers a reflection on what was discussed. It leaves the reader with something to think about and sets up potential future discussions.`

func (s *scriptService) CreateTestScript(ctx context.Context) (*types.Script, error) {
	content, err := json.Marshal(testScriptContent)
	if err != nil {
		return nil, err
	}
	return s.scripts.Create(dbctx.Context{Ctx: ctx}, &types.Script{
		Title:   testScriptTitle,
		Content: datatypes.JSON(content),
		Source:  types.ScriptSourceTest,
	})
}

func (s *scriptService) Sync(ctx context.Context, req SyncRequest) (SyncResult, error) {
	switch strings.TrimSpace(req.Operation) {
	case SyncBatchUpdate:
		n, err := s.batchUpdate(ctx, req.Scripts)
		if err != nil {
			return SyncResult{}, err
		}
		return SyncResult{Success: true, Updated: &n}, nil
	case SyncSession:
		if err := s.syncSession(ctx, req); err != nil {
			return SyncResult{}, err
		}
		return SyncResult{Success: true}, nil
	}
	return SyncResult{}, apierr.BadRequest("invalid_operation", "Invalid operation")
}

// batchUpdate merges every patch in one transaction. A script that does not
// exist yet is created under the given id.
func (s *scriptService) batchUpdate(ctx context.Context, patches []ScriptPatch) (int, error) {
	ids := make([]uuid.UUID, len(patches))
	for i, p := range patches {
		id, err := uuid.Parse(strings.TrimSpace(p.ID))
		if err != nil {
			return 0, apierr.BadRequest("invalid_script_id", "Invalid script id: "+p.ID)
		}
		ids[i] = id
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for i, p := range patches {
			updates := p.updates()
			var err error
			if len(updates) == 0 {
				_, err = s.scripts.GetByID(dbc, ids[i])
			} else {
				err = s.scripts.UpdateFields(dbc, ids[i], updates)
			}
			if err == nil {
				continue
			}
			if !errors.Is(err, repos.ErrNotFound) {
				return err
			}
			if _, err := s.scripts.Create(dbc, scriptFromPatch(ids[i], p)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(patches), nil
}

func scriptFromPatch(id uuid.UUID, p ScriptPatch) *types.Script {
	row := &types.Script{ID: id, Source: types.ScriptSourceManual, Content: datatypes.JSON(`""`)}
	if p.Title != nil {
		row.Title = *p.Title
	}
	if present(p.Content) {
		row.Content = datatypes.JSON(p.Content)
	}
	if present(p.Storyline) {
		row.Storyline = datatypes.JSON(p.Storyline)
	}
	if p.TargetDuration != nil {
		row.TargetDuration = *p.TargetDuration
	}
	if present(p.Metadata) {
		row.Metadata = datatypes.JSON(p.Metadata)
	}
	return row
}

func (s *scriptService) syncSession(ctx context.Context, req SyncRequest) error {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return apierr.BadRequest("missing_session_id", "Session ID required")
	}
	agentData, progress := req.AgentData, req.Progress
	if req.Data != nil {
		if present(req.Data.AgentData) {
			agentData = req.Data.AgentData
		}
		if req.Data.Progress != nil {
			progress = req.Data.Progress
		}
	}

	dbc := dbctx.Context{Ctx: ctx}
	p := 0
	if progress != nil {
		p = *progress
	} else if existing, err := s.sessions.Get(dbc, sessionID); err == nil {
		p = existing.Progress
	}
	var data datatypes.JSON
	if present(agentData) {
		data = datatypes.JSON(agentData)
	} else if existing, err := s.sessions.Get(dbc, sessionID); err == nil {
		data = existing.AgentData
	}
	return s.sessions.Upsert(dbc, sessionID, data, p)
}
