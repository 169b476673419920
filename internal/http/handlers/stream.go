package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/scribe-backend/internal/http/response"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/realtime"
)

// frameStream writes pipeline frames as bare `data: <json>` SSE events.
type frameStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	log     *logger.Logger
	closed  bool
	last    any
}

// openFrameStream commits the SSE headers. It reports false, after writing a
// JSON error, when the writer cannot flush.
func openFrameStream(c *gin.Context, log *logger.Logger) (*frameStream, bool) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.RespondError(c, http.StatusInternalServerError, "streaming_unsupported", errors.New("Streaming unsupported"))
		return nil, false
	}
	realtime.SetStreamHeaders(c.Writer)
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	flusher.Flush()
	return &frameStream{w: c.Writer, flusher: flusher, log: log}, true
}

// Send is safe for concurrent use. Frames sent after the client went away are dropped.
func (s *frameStream) Send(frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		s.log.Warn("Failed to marshal stream frame", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		s.closed = true
		s.log.Debug("stream client gone", "error", err)
		return
	}
	s.flusher.Flush()
	s.last = frame
}

// Last returns the most recent frame written, for the call log.
func (s *frameStream) Last() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
