package imagesearch

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yungbote/scribe-backend/internal/platform/envutil"
)

const pexelsMaxPerPage = 80

type PexelsConfig struct {
	APIKey  string
	BaseURL string
	RPS     float64
}

func PexelsConfigFromEnv() PexelsConfig {
	return PexelsConfig{
		APIKey:  envutil.String("PEXELS_API_KEY", ""),
		BaseURL: envutil.String("PEXELS_BASE_URL", "https://api.pexels.com"),
		RPS:     envutil.Float("PEXELS_RPS", 3),
	}
}

type Pexels struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewPexels(cfg PexelsConfig) *Pexels {
	return &Pexels{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    newLimiter(cfg.RPS),
	}
}

func (p *Pexels) Name() string  { return "pexels" }
func (p *Pexels) Enabled() bool { return p != nil && p.apiKey != "" }

type pexelsResponse struct {
	Photos []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		Alt          string `json:"alt"`
		Photographer string `json:"photographer"`
		Src          struct {
			Original string `json:"original"`
			Medium   string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

func (p *Pexels) Search(ctx context.Context, query string, count int) ([]Result, error) {
	if !p.Enabled() {
		return nil, nil
	}
	if count <= 0 {
		count = 10
	}
	if count > pexelsMaxPerPage {
		count = pexelsMaxPerPage
	}
	if err := wait(ctx, p.limiter); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(count))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", p.apiKey)

	var out pexelsResponse
	if err := doJSON(p.httpClient, req, "pexels", &out); err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(out.Photos))
	for _, ph := range out.Photos {
		results = append(results, Result{
			URL:            ph.Src.Original,
			PreviewURL:     ph.Src.Medium,
			Source:         "pexels",
			License:        LicenseCC0,
			Width:          ph.Width,
			Height:         ph.Height,
			Title:          ph.Alt,
			RelevanceScore: 0.8,
			Photographer:   ph.Photographer,
			SourceWebsite:  "pexels.com",
		})
	}
	return results, nil
}
