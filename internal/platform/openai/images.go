package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yungbote/scribe-backend/internal/pkg/httpx"
)

type ImageRequest struct {
	Prompt string
	// Size and Quality fall back to OPENAI_IMAGE_SIZE / OPENAI_IMAGE_QUALITY.
	Size    string
	Quality string
}

type ImageGeneration struct {
	Bytes         []byte
	MimeType      string
	RevisedPrompt string
	Size          string
	Quality       string
}

// Base64 returns the image bytes as standard base64.
func (g ImageGeneration) Base64() string {
	return base64.StdEncoding.EncodeToString(g.Bytes)
}

type imagesGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type imagesGenerationResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

func (c *client) GenerateImage(ctx context.Context, ir ImageRequest) (ImageGeneration, error) {
	var out ImageGeneration
	prompt := strings.TrimSpace(ir.Prompt)
	if prompt == "" {
		return out, errors.New("image prompt required")
	}
	if strings.TrimSpace(c.cfg.ImageModel) == "" {
		return out, errors.New("missing OPENAI_IMAGE_MODEL")
	}
	size := firstNonEmpty(ir.Size, c.cfg.ImageSize, "1024x1024")
	quality := firstNonEmpty(ir.Quality, c.cfg.ImageQuality)

	req := imagesGenerationRequest{
		Model:   c.cfg.ImageModel,
		Prompt:  prompt,
		N:       1,
		Size:    size,
		Quality: quality,
	}
	// gpt-image models always return base64 and reject response_format.
	if !strings.HasPrefix(strings.ToLower(c.cfg.ImageModel), "gpt-image-") {
		req.ResponseFormat = "b64_json"
	}

	var resp imagesGenerationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/images/generations", req, &resp); err != nil {
		return out, err
	}
	if len(resp.Data) == 0 {
		return out, errors.New("no image returned")
	}
	item := resp.Data[0]
	out.RevisedPrompt = strings.TrimSpace(item.RevisedPrompt)
	out.Size = size
	out.Quality = quality

	if b64 := strings.TrimSpace(item.B64JSON); b64 != "" {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil || len(raw) == 0 {
			return out, fmt.Errorf("decode image base64: %w", err)
		}
		out.Bytes = raw
		out.MimeType = "image/png"
		return out, nil
	}
	if u := strings.TrimSpace(item.URL); u != "" {
		b, ct, err := c.downloadBytes(ctx, u)
		if err != nil {
			return out, fmt.Errorf("download generated image: %w", err)
		}
		out.Bytes = b
		out.MimeType = firstNonEmpty(strings.TrimSpace(strings.Split(ct, ";")[0]), "image/png")
		return out, nil
	}
	return out, errors.New("image response missing b64_json and url")
}

// downloadBytes fetches a signed asset URL. No Authorization header is sent.
func (c *client) downloadBytes(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", httpx.NewStatusError(serviceName, resp)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return b, resp.Header.Get("Content-Type"), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
