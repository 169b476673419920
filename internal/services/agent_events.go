package services

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/realtime"
)

type ThoughtType string

const (
	ThoughtReasoning   ThoughtType = "reasoning"
	ThoughtAction      ThoughtType = "action"
	ThoughtObservation ThoughtType = "observation"
	ThoughtDecision    ThoughtType = "decision"
)

const (
	AgentCoordinator      = "Coordinator Agent"
	AgentResearch         = "Research Agent"
	AgentStructure        = "Structure Agent"
	AgentWriting          = "Writing Agent"
	AgentAdvancedResearch = "Advanced Research Agent"
	AgentShowrunner       = "Showrunner Agent"
)

type Thought struct {
	AgentName string      `json:"agentName"`
	Thought   string      `json:"thought"`
	Timestamp int64       `json:"timestamp"`
	Type      ThoughtType `json:"type"`
}

// AgentEventService pushes agent activity to the session stream a client
// opened on /api/ai/agent-stream. Every method is a no-op for an empty session id.
type AgentEventService interface {
	Emit(ctx context.Context, sessionID string, event realtime.SSEEvent, data any)
	Progress(ctx context.Context, sessionID string, percentage int)
	Thought(ctx context.Context, sessionID, agentName string, kind ThoughtType, text string)
	AgentChange(ctx context.Context, sessionID, agentName string)
}

type agentEventService struct {
	log      *logger.Logger
	emitter  SSEEmitter
	sessions repos.SessionRepo
	now      func() time.Time
}

func NewAgentEventService(log *logger.Logger, emitter SSEEmitter, sessions repos.SessionRepo) AgentEventService {
	return &agentEventService{
		log:      log.With("service", "AgentEventService"),
		emitter:  emitter,
		sessions: sessions,
		now:      time.Now,
	}
}

func (s *agentEventService) Emit(ctx context.Context, sessionID string, event realtime.SSEEvent, data any) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, realtime.SSEMessage{Channel: sessionID, Event: event, Data: data})
}

func (s *agentEventService) Progress(ctx context.Context, sessionID string, percentage int) {
	if strings.TrimSpace(sessionID) == "" {
		return
	}
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	s.Emit(ctx, sessionID, realtime.SSEEventProgress, map[string]any{"percentage": percentage})
	if s.sessions == nil {
		return
	}
	if err := s.sessions.SetProgress(dbctx.Context{Ctx: ctx}, sessionID, percentage); err != nil {
		s.log.Warn("persist session progress failed", "session_id", sessionID, "error", err)
	}
}

func (s *agentEventService) Thought(ctx context.Context, sessionID, agentName string, kind ThoughtType, text string) {
	s.Emit(ctx, sessionID, realtime.SSEEventThought, Thought{
		AgentName: agentName,
		Thought:   text,
		Timestamp: s.now().UnixMilli(),
		Type:      kind,
	})
}

func (s *agentEventService) AgentChange(ctx context.Context, sessionID, agentName string) {
	s.Emit(ctx, sessionID, realtime.SSEEventAgentChange, map[string]any{"agentName": agentName})
}

type nopAgentEvents struct{}

func (nopAgentEvents) Emit(context.Context, string, realtime.SSEEvent, any) {}
func (nopAgentEvents) Progress(context.Context, string, int) {}
func (nopAgentEvents) Thought(context.Context, string, string, ThoughtType, string) {}
func (nopAgentEvents) AgentChange(context.Context, string, string) {}
