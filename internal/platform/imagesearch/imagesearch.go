package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/yungbote/scribe-backend/internal/pkg/httpx"
)

const (
	LicenseCC0         = "CC0"
	LicenseLikelyFree  = "likely free"
	LicensePremium     = "premium"
	LicenseUnknown     = "unknown"
	LicenseAIGenerated = "ai-generated"
)

// Result is one candidate image, in the shape the editor consumes.
type Result struct {
	URL            string  `json:"url"`
	PreviewURL     string  `json:"preview_url"`
	Source         string  `json:"source"`
	License        string  `json:"license"`
	Cost           float64 `json:"cost"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevance_score"`
	Photographer   string  `json:"photographer"`
	SourceWebsite  string  `json:"source_website"`
}

type Provider interface {
	Name() string
	// Enabled is false when the provider has no credentials.
	Enabled() bool
	Search(ctx context.Context, query string, count int) ([]Result, error)
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

func doJSON(client *http.Client, req *http.Request, service string, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpx.NewStatusError(service, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}

var (
	freeSources    = []string{"wikimedia", "commons", "flickr", "unsplash", "pexels", "pixabay"}
	premiumSources = []string{"shutterstock", "getty", "istockphoto", "adobestock"}
)

// ClassifyLicense guesses licensing from the hosting site name.
func ClassifyLicense(site string) (license string, cost float64) {
	s := strings.ToLower(site)
	for _, src := range freeSources {
		if strings.Contains(s, src) {
			return LicenseLikelyFree, 0
		}
	}
	for _, src := range premiumSources {
		if strings.Contains(s, src) {
			return LicensePremium, 5
		}
	}
	return LicenseUnknown, 0
}
