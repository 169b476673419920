package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(logger.Nop(), Config{BaseURL: srv.URL + "/"})
}

func readRPC(t *testing.T, r *http.Request) rpcRequest {
	t.Helper()
	var req struct {
		Method string         `json:"method"`
		Params map[string]any `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Errorf("decode rpc: %v", err)
	}
	return rpcRequest{Method: req.Method, Params: req.Params}
}

func TestListToolsAcceptsBothEnvelopes(t *testing.T) {
	bodies := []string{
		`{"result":{"tools":[{"name":"search_youtube_videos"},{"name":"extract_youtube_seo"}]}}`,
		`{"tools":[{"name":"search_youtube_videos"},{"name":"extract_youtube_seo"}]}`,
	}
	for _, body := range bodies {
		body := body
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/mcp" {
				t.Errorf("path: got=%s", r.URL.Path)
			}
			if got := readRPC(t, r); got.Method != "tools/list" {
				t.Errorf("method: got=%s", got.Method)
			}
			_, _ = w.Write([]byte(body))
		})
		tools, err := c.ListTools(context.Background())
		if err != nil {
			t.Fatalf("ListTools: %v", err)
		}
		if len(tools) != 2 || tools[0].Name != ToolSearchVideos {
			t.Fatalf("tools: %+v", tools)
		}
	}
}

func TestCallToolSurfacesBodyError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	})
	_, err := c.CallTool(context.Background(), ToolExtractSEO, map[string]any{"videoId": "x"})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("want quota error, got %v", err)
	}
}

func TestSearchVideosShapes(t *testing.T) {
	cases := map[string]string{
		"videos":  `{"result":{"videos":[{"id":"a","title":"A","thumbnail":"t.jpg","channel":"C","views":1200}]}}`,
		"items":   `{"result":{"items":[{"videoId":"a","title":"A","thumbnailUrl":"t.jpg","channelTitle":"C","viewCount":"1200"}]}}`,
		"array":   `{"result":[{"id":"a","title":"A","thumbnail":"t.jpg","channelTitle":"C","viewCount":"1200"}]}`,
		"content": `{"result":{"content":[{"type":"text","text":"{\"videos\":[{\"id\":\"a\",\"title\":\"A\",\"thumbnail\":\"t.jpg\",\"channel\":\"C\",\"viewCount\":1200}]}"}]}}`,
	}
	for name, body := range cases {
		name, body := name, body
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				req := readRPC(t, r)
				params, _ := req.Params.(map[string]any)
				if req.Method != "tools/call" || params["name"] != ToolSearchVideos {
					t.Errorf("rpc: %+v", req)
				}
				_, _ = w.Write([]byte(body))
			})
			videos, err := c.SearchVideos(context.Background(), "rome", 0)
			if err != nil {
				t.Fatalf("SearchVideos: %v", err)
			}
			if len(videos) != 1 {
				t.Fatalf("videos: %+v", videos)
			}
			v := videos[0]
			if v.ID != "a" || v.ThumbnailURL != "t.jpg" || v.ChannelTitle != "C" || v.ViewCount != "1200" {
				t.Fatalf("video: %+v", v)
			}
		})
	}
}

func TestGetVideoWithCaptionsJoinsTranscript(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/youtube_captions/abc" {
			t.Errorf("path: got=%s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"video":{"id":"abc","title":"T"},"captions":[
			{"text":"hello","start":0,"duration":1.5},
			{"text":" world ","start":1.5,"duration":2}
		]}`))
	})
	vc, err := c.GetVideoWithCaptions(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetVideoWithCaptions: %v", err)
	}
	if vc.FullTranscript != "hello world" || vc.TranscriptSeconds() != 3.5 {
		t.Fatalf("captions: transcript=%q seconds=%v", vc.FullTranscript, vc.TranscriptSeconds())
	}
}

func TestDisabledClient(t *testing.T) {
	c := NewClient(logger.Nop(), Config{})
	if c.Enabled() {
		t.Fatal("client without URL should be disabled")
	}
	if _, err := c.ListTools(context.Background()); err != ErrNotConfigured {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}
