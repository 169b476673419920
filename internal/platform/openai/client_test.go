package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, cfg Config, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = time.Millisecond
	}
	c, err := New(logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeOutputText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id": "resp_1",
		"output": []any{
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
	})
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Errorf("decode request: %v", err)
	}
	return body
}

func TestGenerateJSONSendsStrictSchema(t *testing.T) {
	c := newTestClient(t, Config{Model: "gpt-4o"}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path: got=%s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header: got=%q", got)
		}
		body := decodeBody(t, r)
		format, _ := body["text"].(map[string]any)["format"].(map[string]any)
		if format["type"] != "json_schema" || format["name"] != "plan" || format["strict"] != true {
			t.Errorf("format: %#v", format)
		}
		if _, ok := body["temperature"]; ok {
			t.Errorf("temperature should be omitted when unset")
		}
		writeOutputText(w, `{"title":"Rome"}`)
	})

	obj, err := c.GenerateJSON(context.Background(), "sys", "user", "plan", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["title"] != "Rome" {
		t.Fatalf("title: got=%v", obj["title"])
	}
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls int32
	c := newTestClient(t, Config{MaxRetries: 2}, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		writeOutputText(w, "ok")
	})

	text, err := c.GenerateText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "ok" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("want ok after 2 calls, got text=%q calls=%d", text, calls)
	}
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, Config{MaxRetries: 3}, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":{"message":"bad input"}}`, http.StatusBadRequest)
	})

	if _, err := c.GenerateText(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls: want=1 got=%d", calls)
	}
}

func TestCreateRequestsRetryOnlyOnRateLimit(t *testing.T) {
	var calls int32
	c := newTestClient(t, Config{MaxRetries: 3}, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream timeout", http.StatusGatewayTimeout)
	})
	if _, err := c.CreateVectorStore(context.Background(), "vs", []string{"file_1"}); err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("create after 5xx must not be resent: calls=%d", n)
	}

	calls = 0
	c = newTestClient(t, Config{MaxRetries: 3}, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"vs_1","status":"in_progress"}`)
	})
	vs, err := c.CreateVectorStore(context.Background(), "vs", []string{"file_1"})
	if err != nil || vs.ID != "vs_1" {
		t.Fatalf("CreateVectorStore: %+v err=%v", vs, err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("429 should be retried: calls=%d", n)
	}
}

func TestTemperatureFallbackIsLearned(t *testing.T) {
	temp := 0.7
	var calls int32
	c := newTestClient(t, Config{Model: "o3-mini", Temperature: &temp}, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		body := decodeBody(t, r)
		_, hasTemp := body["temperature"]
		if n == 1 {
			if !hasTemp {
				t.Errorf("first call should carry temperature")
			}
			http.Error(w, `{"error":{"message":"Unsupported parameter: 'temperature' is not supported with this model."}}`, http.StatusBadRequest)
			return
		}
		if hasTemp {
			t.Errorf("call %d should omit temperature", n)
		}
		writeOutputText(w, "fine")
	})

	for i := 0; i < 2; i++ {
		if _, err := c.GenerateText(context.Background(), "sys", "user"); err != nil {
			t.Fatalf("GenerateText #%d: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("calls: want=3 got=%d", got)
	}
}

func TestWithModelOverridesRequestModel(t *testing.T) {
	c := newTestClient(t, Config{Model: "gpt-4o"}, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		if body["model"] != "gpt-4o-mini" {
			t.Errorf("model: got=%v", body["model"])
		}
		writeOutputText(w, "ok")
	})
	if _, err := WithModel(c, "gpt-4o-mini").GenerateText(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
}

func TestStreamTextForwardsDeltas(t *testing.T) {
	c := newTestClient(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: response.created\ndata: {\"type\":\"response.created\"}\n\n")
		fmt.Fprint(w, "event: response.output_text.delta\ndata: {\"type\":\"response.output_text.delta\",\"delta\":\"Once \"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"response.output_text.delta\",\"delta\":\"upon\"}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var deltas []string
	full, err := c.StreamText(context.Background(), "sys", "user", func(d string) { deltas = append(deltas, d) })
	if err != nil {
		t.Fatalf("StreamText: %v", err)
	}
	if full != "Once upon" || len(deltas) != 2 {
		t.Fatalf("full=%q deltas=%v", full, deltas)
	}
}

func TestRunWithToolsCollectsCallsAndCitations(t *testing.T) {
	c := newTestClient(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		tools, _ := body["tools"].([]any)
		if len(tools) != 2 {
			t.Errorf("tools: want=2 got=%d", len(tools))
		}
		if body["instructions"] == nil {
			t.Errorf("instructions missing")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"output": [
				{"type":"web_search_call","status":"completed","action":{"type":"search","query":"roman aqueducts"}},
				{"type":"file_search_call","status":"completed","queries":["aqueduct notes"],"results":[{"file_id":"f1","filename":"notes.pdf","score":0.9}]},
				{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{}","annotations":[
					{"type":"url_citation","url":"https://example.com/a","title":"A"},
					{"type":"url_citation","url":"https://example.com/a","title":"A again"}
				]}]}
			]
		}`)
	})

	resp, err := c.RunWithTools(context.Background(), ToolRequest{
		Instructions:   "research",
		Input:          "Topic: aqueducts",
		WebSearch:      true,
		VectorStoreIDs: []string{"vs_1"},
		MaxFileResults: 5,
	})
	if err != nil {
		t.Fatalf("RunWithTools: %v", err)
	}
	if len(resp.Calls) != 2 || resp.Calls[0].Input != "roman aqueducts" || resp.Calls[1].Output != "notes.pdf" {
		t.Fatalf("calls: %+v", resp.Calls)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].URL != "https://example.com/a" {
		t.Fatalf("citations: %+v", resp.Citations)
	}
}

func TestTranscribeSendsMultipart(t *testing.T) {
	c := newTestClient(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("response_format") != "text" {
			t.Errorf("fields: model=%q format=%q", r.FormValue("model"), r.FormValue("response_format"))
		}
		f, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer f.Close()
			if fh.Filename != "clip.webm" {
				t.Errorf("filename: got=%q", fh.Filename)
			}
		}
		_, _ = io.WriteString(w, "hello there\n")
	})

	text, err := c.Transcribe(context.Background(), TranscriptionRequest{FileName: "clip.webm", Audio: strings.NewReader("RIFF....")})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello there" {
		t.Fatalf("text: got=%q", text)
	}
}

func TestGenerateImageDecodesBase64(t *testing.T) {
	c := newTestClient(t, Config{ImageModel: "dall-e-3"}, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		if body["response_format"] != "b64_json" || body["size"] != "1792x1024" {
			t.Errorf("body: %#v", body)
		}
		_, _ = io.WriteString(w, `{"data":[{"b64_json":"aGVsbG8=","revised_prompt":"a brighter hello"}]}`)
	})

	img, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "hello", Size: "1792x1024"})
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if string(img.Bytes) != "hello" || img.RevisedPrompt != "a brighter hello" || img.Base64() != "aGVsbG8=" {
		t.Fatalf("image: %+v", img)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(logger.Nop(), Config{}); err == nil {
		t.Fatal("expected missing key error")
	}
}
