package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/scribe-backend/internal/pkg/httpx"
	"github.com/yungbote/scribe-backend/internal/platform/apierr"
	"github.com/yungbote/scribe-backend/internal/platform/docparse"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
)

const minAudioBytes = 1000

// Upload is a file received from a multipart form. Nil means the field was absent.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

type TranscriptionMetadata struct {
	AudioSize         int    `json:"audioSize"`
	AudioType         string `json:"audioType"`
	ProcessingTime    int64  `json:"processingTime"`
	TranscriptionTime int64  `json:"transcriptionTime"`
}

type Transcription struct {
	Text     string                `json:"text"`
	Metadata TranscriptionMetadata `json:"metadata"`
}

type TranscriptionService interface {
	Transcribe(ctx context.Context, audio *Upload) (*Transcription, error)
}

type transcriptionService struct {
	log *logger.Logger
	ai  openai.Client
	now func() time.Time
}

func NewTranscriptionService(log *logger.Logger, ai openai.Client) TranscriptionService {
	return &transcriptionService{log: log.With("service", "TranscriptionService"), ai: ai, now: time.Now}
}

func (s *transcriptionService) Transcribe(ctx context.Context, audio *Upload) (*Transcription, error) {
	start := s.now()
	if audio == nil {
		return nil, apierr.BadRequest("missing_audio", "No audio file provided")
	}
	if len(audio.Data) < minAudioBytes {
		return nil, apierr.BadRequest("audio_too_small", "Audio file too small")
	}

	callStart := s.now()
	text, err := s.ai.Transcribe(ctx, openai.TranscriptionRequest{
		FileName: firstNonBlank(audio.Name, "audio.webm"),
		Audio:    bytes.NewReader(audio.Data),
	})
	if err != nil {
		if audioTooShort(err) {
			return nil, apierr.BadRequest("audio_too_short", "Audio recording is too short. Please hold the button longer.")
		}
		s.log.Warn("transcription failed", "bytes", len(audio.Data), "error", err)
		return nil, apierr.Internal("transcription_failed", fmt.Errorf("Failed to transcribe audio: %w", err))
	}
	done := s.now()

	return &Transcription{
		Text: text,
		Metadata: TranscriptionMetadata{
			AudioSize:         len(audio.Data),
			AudioType:         audio.ContentType,
			ProcessingTime:    done.Sub(start).Milliseconds(),
			TranscriptionTime: done.Sub(callStart).Milliseconds(),
		},
	}, nil
}

func audioTooShort(err error) bool {
	var se *httpx.StatusError
	return errors.As(err, &se) && strings.Contains(se.Body, "audio_too_short")
}

type ParsedDocument struct {
	Content   string `json:"content"`
	FileName  string `json:"fileName"`
	WordCount int    `json:"wordCount"`
}

type DocumentService interface {
	Parse(ctx context.Context, file *Upload) (*ParsedDocument, error)
}

type documentService struct {
	log *logger.Logger
}

func NewDocumentService(log *logger.Logger) DocumentService {
	return &documentService{log: log.With("service", "DocumentService")}
}

func (s *documentService) Parse(_ context.Context, file *Upload) (*ParsedDocument, error) {
	if file == nil {
		return nil, apierr.BadRequest("missing_file", "No file provided")
	}
	text, err := docparse.Extract(file.Name, file.ContentType, file.Data)
	switch {
	case err == nil:
	case errors.Is(err, docparse.ErrUnsupported):
		return nil, apierr.BadRequest("unsupported_file_type", "Unsupported file type")
	case errors.Is(err, docparse.ErrTooShort):
		return nil, apierr.BadRequest("content_too_short", "File content too short for training")
	default:
		s.log.Warn("parse file failed", "file", file.Name, "error", err)
		return nil, apierr.Internal("parse_failed", fmt.Errorf("Failed to parse file: %w", err))
	}
	return &ParsedDocument{Content: text, FileName: file.Name, WordCount: docparse.WordCount(text)}, nil
}
