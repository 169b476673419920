package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/apierr"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/platform/mcp"
)

type ConnectivityResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// ConnectivityService proves the database accepts a write and serves it back.
type ConnectivityService interface {
	Probe(ctx context.Context) ConnectivityResult
}

type connectivityService struct {
	log    *logger.Logger
	probes repos.ConnectivityProbeRepo
	now    func() time.Time
}

func NewConnectivityService(log *logger.Logger, probes repos.ConnectivityProbeRepo) ConnectivityService {
	return &connectivityService{log: log.With("service", "ConnectivityService"), probes: probes, now: time.Now}
}

func (s *connectivityService) Probe(ctx context.Context) ConnectivityResult {
	dbc := dbctx.Context{Ctx: ctx}
	msg := "connectivity probe " + s.now().UTC().Format(time.RFC3339)
	row, err := s.probes.Create(dbc, msg)
	if err == nil {
		row, err = s.probes.GetByID(dbc, row.ID)
	}
	if err != nil {
		s.log.Error("database probe failed", "error", err)
		return ConnectivityResult{
			Success: false,
			Error:   "Database connection failed",
			Details: err.Error(),
		}
	}
	return ConnectivityResult{Success: true, Message: "Database connection OK", Data: row}
}

const maxYouTubeSearch = 25

type YouTubeSearchInput struct {
	Query         string `json:"query"`
	MaxResults    int    `json:"maxResults"`
	CaptionedOnly bool   `json:"captionedOnly"`
}

type YouTubeToolsClient interface {
	YouTubeSource
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	GetVideoWithCaptions(ctx context.Context, videoID string) (mcp.VideoCaptions, error)
	ExtractSEO(ctx context.Context, videoID string) (json.RawMessage, error)
	AnalyzeComments(ctx context.Context, videoID string, maxComments int) (json.RawMessage, error)
}

const maxVideoComments = 50

// VideoInsights bundles what the lookup panel shows for one video. SEO and
// comments are omitted when their tools fail.
type VideoInsights struct {
	VideoID  string            `json:"videoId"`
	Captions mcp.VideoCaptions `json:"captions"`
	SEO      json.RawMessage   `json:"seo,omitempty"`
	Comments json.RawMessage   `json:"comments,omitempty"`
}

// YouTubeService exposes the MCP server directly for the editor's lookup panel.
type YouTubeService interface {
	Tools(ctx context.Context) ([]mcp.Tool, error)
	Search(ctx context.Context, in YouTubeSearchInput) ([]mcp.Video, error)
	Video(ctx context.Context, videoID string) (*VideoInsights, error)
}

type youTubeService struct {
	log *logger.Logger
	mcp YouTubeToolsClient
}

func NewYouTubeService(log *logger.Logger, client YouTubeToolsClient) YouTubeService {
	return &youTubeService{log: log.With("service", "YouTubeService"), mcp: client}
}

var errYouTubeUnavailable = apierr.New(http.StatusServiceUnavailable, "mcp_not_configured", mcp.ErrNotConfigured)

func (s *youTubeService) ready() error {
	if s.mcp == nil || !s.mcp.Enabled() {
		return errYouTubeUnavailable
	}
	return nil
}

func (s *youTubeService) Tools(ctx context.Context) ([]mcp.Tool, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	tools, err := s.mcp.ListTools(ctx)
	if err != nil {
		return nil, mcpUpstream(err)
	}
	if tools == nil {
		tools = []mcp.Tool{}
	}
	return tools, nil
}

func (s *youTubeService) Search(ctx context.Context, in YouTubeSearchInput) ([]mcp.Video, error) {
	q := strings.TrimSpace(in.Query)
	if q == "" {
		return nil, apierr.BadRequest("missing_query", "Query is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	n := in.MaxResults
	if n <= 0 {
		n = youtubeResultCount
	}
	if n > maxYouTubeSearch {
		n = maxYouTubeSearch
	}
	var (
		videos []mcp.Video
		err    error
	)
	if in.CaptionedOnly {
		videos, err = s.mcp.SearchCaptionedVideos(ctx, q, n)
	} else {
		videos, err = s.mcp.SearchVideos(ctx, q, n)
	}
	if err != nil {
		return nil, mcpUpstream(err)
	}
	if videos == nil {
		videos = []mcp.Video{}
	}
	return videos, nil
}

func (s *youTubeService) Video(ctx context.Context, videoID string) (*VideoInsights, error) {
	id := strings.TrimSpace(videoID)
	if id == "" {
		return nil, apierr.BadRequest("missing_video_id", "Video ID is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	out := &VideoInsights{VideoID: id}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vc, err := s.mcp.GetVideoWithCaptions(gctx, id)
		if err != nil {
			return err
		}
		out.Captions = vc
		return nil
	})
	g.Go(func() error {
		seo, err := s.mcp.ExtractSEO(gctx, id)
		if err != nil {
			s.log.Warn("SEO lookup failed", "video_id", id, "error", err)
			return nil
		}
		out.SEO = seo
		return nil
	})
	g.Go(func() error {
		comments, err := s.mcp.AnalyzeComments(gctx, id, maxVideoComments)
		if err != nil {
			s.log.Warn("comment analysis failed", "video_id", id, "error", err)
			return nil
		}
		out.Comments = comments
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, mcpUpstream(err)
	}
	return out, nil
}

func mcpUpstream(err error) error {
	if errors.Is(err, mcp.ErrNotConfigured) {
		return errYouTubeUnavailable
	}
	return apierr.Upstream("mcp_failed", fmt.Errorf("YouTube lookup failed: %w", err))
}
