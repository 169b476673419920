package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type TranscriptionRequest struct {
	FileName string
	Audio    io.Reader
	// Language is an optional ISO-639-1 hint.
	Language string
}

// Transcribe sends audio to the transcription endpoint with response_format=text.
func (c *client) Transcribe(ctx context.Context, tr TranscriptionRequest) (string, error) {
	if tr.Audio == nil {
		return "", errors.New("audio reader required")
	}
	name := strings.TrimSpace(tr.FileName)
	if name == "" {
		name = "audio.webm"
	}
	fields := map[string]string{
		"model":           c.cfg.TranscribeModel,
		"response_format": "text",
	}
	if lang := strings.TrimSpace(tr.Language); lang != "" {
		fields["language"] = lang
	}
	payload, contentType, err := multipartBody(fields, "file", name, tr.Audio)
	if err != nil {
		return "", fmt.Errorf("build transcription form: %w", err)
	}
	raw, err := c.doMultipart(ctx, "/v1/audio/transcriptions", payload, contentType)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
