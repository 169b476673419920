package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	ViewCount    string `json:"viewCount,omitempty"`
	Duration     string `json:"duration,omitempty"`
}

// rawVideo absorbs the field spellings different MCP servers use.
type rawVideo struct {
	ID           string          `json:"id"`
	VideoID      string          `json:"videoId"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Thumbnail    string          `json:"thumbnail"`
	ThumbnailURL string          `json:"thumbnailUrl"`
	ChannelTitle string          `json:"channelTitle"`
	Channel      string          `json:"channel"`
	PublishedAt  string          `json:"publishedAt"`
	ViewCount    json.RawMessage `json:"viewCount"`
	Views        json.RawMessage `json:"views"`
	Duration     string          `json:"duration"`
}

func (r rawVideo) video() Video {
	v := Video{
		ID:           firstNonEmpty(r.ID, r.VideoID),
		Title:        r.Title,
		Description:  r.Description,
		ThumbnailURL: firstNonEmpty(r.ThumbnailURL, r.Thumbnail),
		ChannelTitle: firstNonEmpty(r.ChannelTitle, r.Channel),
		PublishedAt:  r.PublishedAt,
		Duration:     r.Duration,
	}
	v.ViewCount = firstNonEmpty(jsonScalar(r.ViewCount), jsonScalar(r.Views))
	return v
}

// jsonScalar renders a JSON string or number as plain text.
func jsonScalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// parseVideos accepts {"videos":[...]}, {"items":[...]} or a bare array.
func parseVideos(raw json.RawMessage) ([]Video, error) {
	var list []rawVideo
	if err := json.Unmarshal(raw, &list); err != nil {
		var wrapped struct {
			Videos []rawVideo `json:"videos"`
			Items  []rawVideo `json:"items"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("unexpected video payload: %w", err)
		}
		list = wrapped.Videos
		if len(list) == 0 {
			list = wrapped.Items
		}
	}
	out := make([]Video, 0, len(list))
	for _, rv := range list {
		out = append(out, rv.video())
	}
	return out, nil
}

func (c *Client) SearchVideos(ctx context.Context, query string, maxResults int) ([]Video, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	raw, err := c.CallTool(ctx, ToolSearchVideos, map[string]any{"query": query, "maxResults": maxResults})
	if err != nil {
		return nil, err
	}
	videos, err := parseVideos(raw)
	if err != nil {
		return nil, err
	}
	if len(videos) > maxResults {
		videos = videos[:maxResults]
	}
	return videos, nil
}

func (c *Client) AnalyzeLandscape(ctx context.Context, topic string, maxVideos int) (json.RawMessage, error) {
	if maxVideos <= 0 {
		maxVideos = 10
	}
	return c.CallTool(ctx, ToolVideoLandscape, map[string]any{"topic": topic, "maxVideos": maxVideos})
}

func (c *Client) ExtractSEO(ctx context.Context, videoID string) (json.RawMessage, error) {
	return c.CallTool(ctx, ToolExtractSEO, map[string]any{"videoId": videoID})
}

func (c *Client) AnalyzeComments(ctx context.Context, videoID string, maxComments int) (json.RawMessage, error) {
	if maxComments <= 0 {
		maxComments = 50
	}
	return c.CallTool(ctx, ToolAnalyzeComments, map[string]any{"videoId": videoID, "maxComments": maxComments})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
