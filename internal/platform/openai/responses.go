package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yungbote/scribe-backend/internal/pkg/httpx"
	"github.com/yungbote/scribe-backend/internal/platform/promptstyle"
)

const responsesPath = "/v1/responses"

type inputMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type responsesRequest struct {
	Model        string         `json:"model"`
	Instructions string         `json:"instructions,omitempty"`
	Input        []inputMessage `json:"input"`
	Tools        []any          `json:"tools,omitempty"`
	Include      []string       `json:"include,omitempty"`
	Text         *textConfig    `json:"text,omitempty"`
	Temperature  *float64       `json:"temperature,omitempty"`
	Stream       bool           `json:"stream,omitempty"`
}

type textConfig struct {
	Format map[string]any `json:"format,omitempty"`
}

type annotation struct {
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

type outputItem struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Status  string `json:"status,omitempty"`
	Role    string `json:"role,omitempty"`
	Content []struct {
		Type        string       `json:"type"`
		Text        string       `json:"text,omitempty"`
		Refusal     string       `json:"refusal,omitempty"`
		Annotations []annotation `json:"annotations,omitempty"`
	} `json:"content,omitempty"`
	// web_search_call
	Action *struct {
		Type  string `json:"type"`
		Query string `json:"query,omitempty"`
	} `json:"action,omitempty"`
	// file_search_call
	Queries []string `json:"queries,omitempty"`
	Results []struct {
		FileID   string  `json:"file_id"`
		Filename string  `json:"filename"`
		Score    float64 `json:"score"`
	} `json:"results,omitempty"`
}

type responsesResponse struct {
	ID     string       `json:"id"`
	Output []outputItem `json:"output"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func extractOutputText(resp responsesResponse) (string, error) {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			switch c.Type {
			case "output_text":
				out.WriteString(c.Text)
			case "refusal":
				return "", fmt.Errorf("model refused: %s", c.Refusal)
			}
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", errors.New("no output_text found in response")
	}
	return out.String(), nil
}

func (c *client) baseRequest(system, user, mode string) responsesRequest {
	return responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: promptstyle.ApplySystem(system, mode)},
			{Role: "user", Content: user},
		},
		Temperature: c.temperatureFor(c.model),
	}
}

// postResponses retries exactly once without temperature if the model rejects it.
func (c *client) postResponses(ctx context.Context, req *responsesRequest) (responsesResponse, error) {
	var resp responsesResponse
	err := c.doJSON(ctx, http.MethodPost, responsesPath, req, &resp)
	if err != nil && req.Temperature != nil && isUnsupportedTemperatureMessage(err.Error()) {
		c.noTemp.add(req.Model)
		req.Temperature = nil
		resp = responsesResponse{}
		err = c.doJSON(ctx, http.MethodPost, responsesPath, req, &resp)
	}
	if err != nil {
		return resp, err
	}
	if resp.Error != nil && resp.Error.Message != "" {
		return resp, fmt.Errorf("openai response error: %s", resp.Error.Message)
	}
	return resp, nil
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}
	req := c.baseRequest(system, user, "json")
	req.Text = &textConfig{Format: map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}}
	return c.generateObject(ctx, &req)
}

func (c *client) GenerateJSONObject(ctx context.Context, system string, user string) (map[string]any, error) {
	req := c.baseRequest(system, user, "json")
	req.Text = &textConfig{Format: map[string]any{"type": "json_object"}}
	return c.generateObject(ctx, &req)
}

func (c *client) generateObject(ctx context.Context, req *responsesRequest) (map[string]any, error) {
	resp, err := c.postResponses(ctx, req)
	if err != nil {
		return nil, err
	}
	text, err := extractOutputText(resp)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return obj, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	req := c.baseRequest(system, user, "text")
	resp, err := c.postResponses(ctx, &req)
	if err != nil {
		return "", err
	}
	return extractOutputText(resp)
}

func (c *client) StreamText(ctx context.Context, system string, user string, onDelta func(delta string)) (string, error) {
	reqBody := c.baseRequest(system, user, "text")
	reqBody.Stream = true

	open := func(body responsesRequest) (*http.Response, error) {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		req, err := c.newRequest(ctx, http.MethodPost, responsesPath, bytes.NewReader(payload), "application/json")
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/event-stream")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		defer resp.Body.Close()
		return nil, httpx.NewStatusError(serviceName, resp)
	}

	resp, err := open(reqBody)
	if err != nil && reqBody.Temperature != nil && isUnsupportedTemperatureMessage(err.Error()) {
		c.noTemp.add(reqBody.Model)
		reqBody.Temperature = nil
		resp, err = open(reqBody)
	}
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	err = streamSSE(resp.Body, func(event string, data string) error {
		data = strings.TrimSpace(data)
		if data == "" || data == "[DONE]" {
			return nil
		}
		var obj struct {
			Type  string          `json:"type"`
			Delta string          `json:"delta"`
			Error json.RawMessage `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &obj); err != nil {
			return nil
		}
		evt := strings.TrimSpace(event)
		if obj.Type != "" {
			evt = obj.Type
		}
		if len(obj.Error) > 0 && string(obj.Error) != "null" {
			return fmt.Errorf("openai stream error: %s", string(obj.Error))
		}
		if strings.HasSuffix(evt, "output_text.delta") && obj.Delta != "" {
			full.WriteString(obj.Delta)
			if onDelta != nil {
				onDelta(obj.Delta)
			}
		}
		return nil
	})
	if err != nil {
		return full.String(), err
	}
	return full.String(), nil
}
