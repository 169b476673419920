package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	"github.com/yungbote/scribe-backend/internal/data/repos/testutil"
	types "github.com/yungbote/scribe-backend/internal/domain"
	"github.com/yungbote/scribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/scribe-backend/internal/platform/mcp"
	"github.com/yungbote/scribe-backend/internal/realtime"
)

func TestConnectivityProbe(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewConnectivityService(log, repos.NewConnectivityProbeRepo(db, log))

	res := svc.Probe(context.Background())
	if !res.Success || res.Error != "" {
		t.Fatalf("probe failed: %+v", res)
	}
	row, ok := res.Data.(*types.ConnectivityProbe)
	if !ok || row.Message == "" {
		t.Fatalf("probe should return the stored row, got %T", res.Data)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	_ = sqlDB.Close()
	res = svc.Probe(context.Background())
	if res.Success || res.Details == "" {
		t.Fatalf("probe on a closed db should fail: %+v", res)
	}
}

func TestYouTubeServiceSearch(t *testing.T) {
	yt := &fakeYouTube{enabled: true, videos: []mcp.Video{{ID: "a"}}, captioned: []mcp.Video{{ID: "b"}}}
	svc := NewYouTubeService(testutil.Logger(t), yt)
	ctx := context.Background()

	got, err := svc.Search(ctx, YouTubeSearchInput{Query: "q"})
	if err != nil || len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("Search: %+v err=%v", got, err)
	}
	got, err = svc.Search(ctx, YouTubeSearchInput{Query: "q", CaptionedOnly: true})
	if err != nil || got[0].ID != "b" {
		t.Fatalf("captioned Search: %+v err=%v", got, err)
	}
	_, err = svc.Search(ctx, YouTubeSearchInput{})
	wantAPIError(t, err, http.StatusBadRequest, "Query is required")

	yt.err = errors.New("rpc down")
	_, err = svc.Search(ctx, YouTubeSearchInput{Query: "q"})
	if e, ok := apierrStatus(err); !ok || e != http.StatusBadGateway {
		t.Fatalf("want 502, got %v", err)
	}
}

func TestYouTubeServiceDisabled(t *testing.T) {
	svc := NewYouTubeService(testutil.Logger(t), &fakeYouTube{})
	_, err := svc.Tools(context.Background())
	if s, ok := apierrStatus(err); !ok || s != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %v", err)
	}
	tools, err := NewYouTubeService(testutil.Logger(t), &fakeYouTube{enabled: true}).Tools(context.Background())
	if err != nil || tools == nil || len(tools) != 0 {
		t.Fatalf("want empty tool list, got %v err=%v", tools, err)
	}
}

func TestCallLogRecord(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewAPICallLogRepo(db, log)
	svc := NewCallLogService(log, repo)

	ctx, cancel := context.WithCancel(ctxutil.WithTraceData(context.Background(), &ctxutil.TraceData{RequestID: "req-1"}))
	cancel()
	big := make([]byte, callLogMaxBytes+1)
	svc.Record(ctx, "/api/ai/analyze-script", map[string]any{"script": "x"}, string(big), errors.New("boom"), 1500*time.Millisecond)

	rows, err := repo.ListRecent(testutil.Ctx(), "/api/ai/analyze-script", 5)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListRecent: %d rows err=%v", len(rows), err)
	}
	row := rows[0]
	if row.Error != "boom" || row.DurationMS != 1500 || row.RequestID != "req-1" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if string(row.Request) != `{"script":"x"}` {
		t.Fatalf("request: %s", row.Request)
	}
	if len(row.Response) > 200 {
		t.Fatalf("oversized response should be summarized, got %d bytes", len(row.Response))
	}
}

func TestAgentEventServiceClampsAndPersists(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	sessions := repos.NewSessionRepo(db, log)
	em := &recordingEmitter{}
	svc := NewAgentEventService(log, em, sessions)
	ctx := context.Background()

	svc.Progress(ctx, "s1", 140)
	svc.Thought(ctx, "s1", AgentResearch, ThoughtAction, "looking")
	svc.AgentChange(ctx, "", AgentWriting)

	if len(em.msgs) != 2 {
		t.Fatalf("messages: want=2 got=%d", len(em.msgs))
	}
	if got := em.msgs[0].Data.(map[string]any)["percentage"]; got != 100 {
		t.Fatalf("percentage should clamp to 100, got %v", got)
	}
	th := em.msgs[1].Data.(Thought)
	if em.msgs[1].Event != realtime.SSEEventThought || th.AgentName != AgentResearch || th.Timestamp == 0 {
		t.Fatalf("unexpected thought: %+v", em.msgs[1])
	}
	s, err := sessions.Get(testutil.Ctx(), "s1")
	if err != nil || s.Progress != 100 {
		t.Fatalf("session progress: %+v err=%v", s, err)
	}
}

func TestYouTubeServiceVideo(t *testing.T) {
	yt := &fakeYouTube{
		enabled:  true,
		captions: mcp.VideoCaptions{Video: mcp.Video{ID: "v1"}, FullTranscript: "hello world"},
		seoErr:   errors.New("seo down"),
	}
	svc := NewYouTubeService(testutil.Logger(t), yt)

	got, err := svc.Video(context.Background(), " v1 ")
	if err != nil {
		t.Fatalf("Video: %v", err)
	}
	if got.VideoID != "v1" || got.Captions.FullTranscript != "hello world" {
		t.Fatalf("unexpected insights: %+v", got)
	}
	if got.SEO != nil || string(got.Comments) != `{"analyzed":50}` {
		t.Fatalf("seo should be dropped and comments kept: seo=%s comments=%s", got.SEO, got.Comments)
	}

	_, err = svc.Video(context.Background(), "")
	wantAPIError(t, err, http.StatusBadRequest, "Video ID is required")

	yt.err = errors.New("captions down")
	if _, err := svc.Video(context.Background(), "v1"); err == nil {
		t.Fatalf("captions failure should fail the lookup")
	} else if s, _ := apierrStatus(err); s != http.StatusBadGateway {
		t.Fatalf("want 502, got %v", err)
	}
}
