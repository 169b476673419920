package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/yungbote/scribe-backend/internal/data/repos/testutil"
	"github.com/yungbote/scribe-backend/internal/pkg/httpx"
	"github.com/yungbote/scribe-backend/internal/platform/apierr"
)

func wantAPIError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	e, ok := apierr.As(err)
	if !ok {
		t.Fatalf("want api error %d %q, got %v", status, msg, err)
	}
	if e.Status != status || e.Error() != msg {
		t.Fatalf("want %d %q, got %d %q", status, msg, e.Status, e.Error())
	}
}

func apierrStatus(err error) (int, bool) {
	e, ok := apierr.As(err)
	if !ok {
		return 0, false
	}
	return e.Status, true
}

func TestTranscribeValidation(t *testing.T) {
	svc := NewTranscriptionService(testutil.Logger(t), &fakeAI{})
	_, err := svc.Transcribe(context.Background(), nil)
	wantAPIError(t, err, http.StatusBadRequest, "No audio file provided")

	_, err = svc.Transcribe(context.Background(), &Upload{Name: "a.webm", Data: make([]byte, 999)})
	wantAPIError(t, err, http.StatusBadRequest, "Audio file too small")
}

func TestTranscribeReturnsMetadata(t *testing.T) {
	svc := NewTranscriptionService(testutil.Logger(t), &fakeAI{transcript: "hello there"})
	res, err := svc.Transcribe(context.Background(), &Upload{Name: "a.webm", ContentType: "audio/webm", Data: make([]byte, 2048)})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "hello there" || res.Metadata.AudioSize != 2048 || res.Metadata.AudioType != "audio/webm" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Metadata.TranscriptionTime > res.Metadata.ProcessingTime {
		t.Fatalf("transcription time exceeds total: %+v", res.Metadata)
	}
}

func TestTranscribeMapsAudioTooShort(t *testing.T) {
	upstream := &httpx.StatusError{Service: "openai", StatusCode: 400, Body: `{"error":{"code":"audio_too_short"}}`}
	svc := NewTranscriptionService(testutil.Logger(t), &fakeAI{transcribeErr: upstream})
	_, err := svc.Transcribe(context.Background(), &Upload{Data: make([]byte, 4096)})
	wantAPIError(t, err, http.StatusBadRequest, "Audio recording is too short. Please hold the button longer.")
}

func TestParseDocument(t *testing.T) {
	svc := NewDocumentService(testutil.Logger(t))
	ctx := context.Background()

	_, err := svc.Parse(ctx, nil)
	wantAPIError(t, err, http.StatusBadRequest, "No file provided")

	_, err = svc.Parse(ctx, &Upload{Name: "clip.mp4", ContentType: "video/mp4", Data: []byte("x")})
	wantAPIError(t, err, http.StatusBadRequest, "Unsupported file type")

	_, err = svc.Parse(ctx, &Upload{Name: "short.txt", ContentType: "text/plain", Data: []byte("too short")})
	wantAPIError(t, err, http.StatusBadRequest, "File content too short for training")

	body := strings.Repeat("word ", 40)
	doc, err := svc.Parse(ctx, &Upload{Name: "notes.txt", ContentType: "text/plain", Data: []byte(body)})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.FileName != "notes.txt" || doc.WordCount != 40 {
		t.Fatalf("unexpected document: name=%s words=%d", doc.FileName, doc.WordCount)
	}
}
