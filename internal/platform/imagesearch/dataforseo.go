package imagesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yungbote/scribe-backend/internal/platform/envutil"
)

const (
	dataForSEOPath = "/v3/serp/google/images/live/advanced"
	// United States
	dataForSEOLocation = 2840
)

type DataForSEOConfig struct {
	Login    string
	Password string
	BaseURL  string
	RPS      float64
}

func DataForSEOConfigFromEnv() DataForSEOConfig {
	return DataForSEOConfig{
		Login:    envutil.String("DATAFORSEO_LOGIN", ""),
		Password: envutil.String("DATAFORSEO_PASSWORD", ""),
		BaseURL:  envutil.String("DATAFORSEO_BASE_URL", "https://api.dataforseo.com"),
		RPS:      envutil.Float("DATAFORSEO_RPS", 1),
	}
}

type DataForSEO struct {
	login      string
	password   string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewDataForSEO(cfg DataForSEOConfig) *DataForSEO {
	return &DataForSEO{
		login:      strings.TrimSpace(cfg.Login),
		password:   cfg.Password,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    newLimiter(cfg.RPS),
	}
}

func (d *DataForSEO) Name() string  { return "dataforseo" }
func (d *DataForSEO) Enabled() bool { return d != nil && d.login != "" && d.password != "" }

type dataForSEOTask struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"location_code"`
	LanguageCode string `json:"language_code"`
	Device       string `json:"device"`
	OS           string `json:"os"`
	Depth        int    `json:"depth"`
}

type dataForSEOResponse struct {
	Tasks []struct {
		StatusCode int `json:"status_code"`
		Result     []struct {
			Items []struct {
				Type       string `json:"type"`
				Title      string `json:"title"`
				Subtitle   string `json:"subtitle"`
				SourceURL  string `json:"source_url"`
				EncodedURL string `json:"encoded_url"`
			} `json:"items"`
		} `json:"result"`
	} `json:"tasks"`
}

// Search returns every images_search item, premium ones included; callers filter by budget.
func (d *DataForSEO) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if !d.Enabled() {
		return nil, nil
	}
	if count <= 0 {
		count = 10
	}
	if err := wait(ctx, d.limiter); err != nil {
		return nil, err
	}
	body, err := json.Marshal([]dataForSEOTask{{
		Keyword:      query,
		LocationCode: dataForSEOLocation,
		LanguageCode: "en",
		Device:       "desktop",
		OS:           "windows",
		Depth:        count * 2,
	}})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+dataForSEOPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(d.login, d.password)
	req.Header.Set("Content-Type", "application/json")

	var out dataForSEOResponse
	if err := doJSON(d.httpClient, req, "dataforseo", &out); err != nil {
		return nil, err
	}
	var results []Result
	if len(out.Tasks) == 0 || len(out.Tasks[0].Result) == 0 {
		return results, nil
	}
	for _, item := range out.Tasks[0].Result[0].Items {
		if item.Type != "images_search" {
			continue
		}
		license, cost := ClassifyLicense(item.Subtitle)
		preview := item.EncodedURL
		if preview == "" {
			preview = item.SourceURL
		}
		results = append(results, Result{
			URL:            item.SourceURL,
			PreviewURL:     preview,
			Source:         "dataforseo",
			License:        license,
			Cost:           cost,
			Title:          item.Title,
			RelevanceScore: 0.7,
			SourceWebsite:  item.Subtitle,
		})
	}
	return results, nil
}
