package mcp

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type Caption struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type VideoCaptions struct {
	Video          Video     `json:"video"`
	Captions       []Caption `json:"captions"`
	FullTranscript string    `json:"fullTranscript"`
}

// SearchCaptionedVideos queries the captions endpoint for videos that have transcripts.
func (c *Client) SearchCaptionedVideos(ctx context.Context, query string, maxResults int) ([]Video, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("max_results", strconv.Itoa(maxResults))
	var out struct {
		Videos []rawVideo `json:"videos"`
	}
	if err := c.do(ctx, http.MethodGet, "/youtube_captions?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	videos := make([]Video, 0, len(out.Videos))
	for _, rv := range out.Videos {
		videos = append(videos, rv.video())
	}
	return videos, nil
}

func (c *Client) GetVideoWithCaptions(ctx context.Context, videoID string) (VideoCaptions, error) {
	var out struct {
		Video    rawVideo  `json:"video"`
		Captions []Caption `json:"captions"`
	}
	if err := c.do(ctx, http.MethodGet, "/youtube_captions/"+url.PathEscape(videoID), nil, &out); err != nil {
		return VideoCaptions{}, err
	}
	parts := make([]string, 0, len(out.Captions))
	for _, cp := range out.Captions {
		if t := strings.TrimSpace(cp.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return VideoCaptions{
		Video:          out.Video.video(),
		Captions:       out.Captions,
		FullTranscript: strings.Join(parts, " "),
	}, nil
}

// TranscriptSeconds is the end time of the last caption.
func (vc VideoCaptions) TranscriptSeconds() float64 {
	var end float64
	for _, cp := range vc.Captions {
		if e := cp.Start + cp.Duration; e > end {
			end = e
		}
	}
	return end
}
