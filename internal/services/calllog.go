package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	types "github.com/yungbote/scribe-backend/internal/domain"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

const callLogMaxBytes = 64 << 10

// CallLogService keeps one row per AI endpoint invocation. Recording never
// fails the request; problems are logged and swallowed.
type CallLogService interface {
	Record(ctx context.Context, endpoint string, request, response any, callErr error, dur time.Duration)
}

type callLogService struct {
	log  *logger.Logger
	repo repos.APICallLogRepo
}

func NewCallLogService(log *logger.Logger, repo repos.APICallLogRepo) CallLogService {
	return &callLogService{log: log.With("service", "CallLogService"), repo: repo}
}

func (s *callLogService) Record(ctx context.Context, endpoint string, request, response any, callErr error, dur time.Duration) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &types.APICallLog{
		Endpoint:   endpoint,
		Request:    s.encode(endpoint, request),
		Response:   s.encode(endpoint, response),
		DurationMS: dur.Milliseconds(),
		RequestID:  ctxutil.RequestID(ctx),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	// The request context may already be canceled once the stream closes.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.repo.Create(dbctx.Context{Ctx: writeCtx}, entry); err != nil {
		s.log.Warn("record api call failed", "endpoint", endpoint, "error", err)
	}
}

func (s *callLogService) encode(endpoint string, v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Debug("api call payload not serializable", "endpoint", endpoint, "error", err)
		return nil
	}
	if len(b) > callLogMaxBytes {
		b, _ = json.Marshal(map[string]any{"truncated": true, "bytes": len(b)})
	}
	return datatypes.JSON(b)
}
