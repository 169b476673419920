package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	"github.com/yungbote/scribe-backend/internal/data/repos/testutil"
	"github.com/yungbote/scribe-backend/internal/platform/apierr"
	"github.com/yungbote/scribe-backend/internal/platform/imagesearch"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
)

func stockResults() []imagesearch.Result {
	return []imagesearch.Result{
		{URL: "https://img/free-low", License: imagesearch.LicenseCC0, Cost: 0, RelevanceScore: 0.4},
		{URL: "https://img/premium", License: imagesearch.LicensePremium, Cost: 2, RelevanceScore: 0.95},
		{URL: "https://img/likely", License: imagesearch.LicenseLikelyFree, Cost: 0.1, RelevanceScore: 0.7},
		{URL: "https://img/free-high", License: imagesearch.LicenseCC0, Cost: 0, RelevanceScore: 0.9},
	}
}

func TestImageSearchRequiresQuery(t *testing.T) {
	svc := NewImageService(testutil.Logger(t), &fakeAI{}, nil, nil, nil, nil)
	_, err := svc.Search(context.Background(), ImageSearchInput{Query: "  "})
	e, ok := apierr.As(err)
	if !ok || e.Status != http.StatusBadRequest || e.Error() != "Query is required" {
		t.Fatalf("want 400 Query is required, got %v", err)
	}
}

func TestImageSearchBudgets(t *testing.T) {
	cases := []struct {
		budget string
		want   []string
	}{
		{BudgetFree, []string{"https://img/free-high", "https://img/free-low"}},
		{BudgetMixed, []string{"https://img/free-high", "https://img/likely", "https://img/free-low"}},
		{"", []string{"https://img/free-high", "https://img/likely", "https://img/free-low"}},
		{BudgetPremium, []string{"https://img/premium", "https://img/free-high", "https://img/likely", "https://img/free-low"}},
	}
	for _, tc := range cases {
		t.Run("budget="+tc.budget, func(t *testing.T) {
			p := &fakeProvider{name: "pexels", results: stockResults()}
			svc := NewImageService(testutil.Logger(t), &fakeAI{}, []imagesearch.Provider{p}, nil, nil, nil)
			res, err := svc.Search(context.Background(), ImageSearchInput{Query: "mountains", Budget: tc.budget})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(res.Images) != len(tc.want) {
				t.Fatalf("images: want=%d got=%d", len(tc.want), len(res.Images))
			}
			for i, url := range tc.want {
				if res.Images[i].URL != url {
					t.Fatalf("image %d: want=%s got=%s", i, url, res.Images[i].URL)
				}
			}
		})
	}
}

func TestImageSearchFreeBudgetSkipsPaidProviders(t *testing.T) {
	pexels := &fakeProvider{name: "pexels"}
	seo := &fakeProvider{name: "dataforseo", results: stockResults()}
	svc := NewImageService(testutil.Logger(t), &fakeAI{}, []imagesearch.Provider{pexels, seo}, nil, nil, nil)

	if _, err := svc.Search(context.Background(), ImageSearchInput{Query: "q", Budget: BudgetFree, Count: 50}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if seo.asked != 0 {
		t.Fatalf("dataforseo should not be queried on free budget")
	}
	if pexels.asked != maxPexelsPerSearch {
		t.Fatalf("pexels count: want=%d got=%d", maxPexelsPerSearch, pexels.asked)
	}
}

func TestImageSearchTruncatesAndKeepsTotal(t *testing.T) {
	p := &fakeProvider{name: "pexels", results: stockResults()}
	svc := NewImageService(testutil.Logger(t), &fakeAI{}, []imagesearch.Provider{p}, nil, nil, nil)
	res, err := svc.Search(context.Background(), ImageSearchInput{Query: "q", Count: 2, Budget: BudgetPremium})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Images) != 2 || res.Total != 4 || res.Query != "q" {
		t.Fatalf("unexpected result: images=%d total=%d query=%q", len(res.Images), res.Total, res.Query)
	}
}

func TestImageSearchProviderFailureIsTolerated(t *testing.T) {
	bad := &fakeProvider{name: "dataforseo", err: errors.New("boom")}
	good := &fakeProvider{name: "pexels", results: stockResults()[:1]}
	svc := NewImageService(testutil.Logger(t), &fakeAI{}, []imagesearch.Provider{bad, good}, nil, nil, nil)
	res, err := svc.Search(context.Background(), ImageSearchInput{Query: "q"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("total: want=1 got=%d", res.Total)
	}
}

func TestImageSearchGeneratesFallback(t *testing.T) {
	ai := &fakeAI{image: openai.ImageGeneration{Bytes: []byte("png"), MimeType: "image/png"}}
	p := &fakeProvider{name: "pexels", results: stockResults()[:1]}
	svc := NewImageService(testutil.Logger(t), ai, []imagesearch.Provider{p}, nil, nil, nil)

	res, err := svc.Search(context.Background(), ImageSearchInput{Query: "red fox", Style: "documentary", GenerateIfNeeded: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(ai.imageReq) != 1 {
		t.Fatalf("image generations: want=1 got=%d", len(ai.imageReq))
	}
	if got := ai.imageReq[0].Prompt; got != "red fox, documentary style, high quality, professional photography" {
		t.Fatalf("prompt: %q", got)
	}
	if len(res.Images) != 2 {
		t.Fatalf("images: want=2 got=%d", len(res.Images))
	}
	gen := res.Images[0]
	if gen.License != imagesearch.LicenseAIGenerated || gen.Cost != generatedImageCost || gen.RelevanceScore != 1.0 {
		t.Fatalf("generated image not first or malformed: %+v", gen)
	}
	if !strings.HasPrefix(gen.URL, "data:image/png;base64,") {
		t.Fatalf("want inline data url without a bucket, got %q", gen.URL)
	}
}

func TestImageSearchPersistsSessionSearch(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	searches := repos.NewImageSearchRepo(db, log)
	p := &fakeProvider{name: "pexels", results: stockResults()[:2]}
	svc := NewImageService(log, &fakeAI{}, []imagesearch.Provider{p}, nil, searches, nil)

	if _, err := svc.Search(context.Background(), ImageSearchInput{Query: "q", SessionID: "sess-1"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	rows, err := searches.ListBySession(testutil.Ctx(), "sess-1", 10)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(rows) != 1 || rows[0].Query != "q" || rows[0].ResultsCount != 1 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestGenerateImageAppliesStyleAndSaves(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	images := repos.NewGeneratedImageRepo(db, log)
	ai := &fakeAI{image: openai.ImageGeneration{Bytes: []byte("png"), RevisedPrompt: "revised"}}
	svc := NewImageService(log, ai, nil, nil, nil, images)

	res, err := svc.Generate(context.Background(), GenerateImageInput{Prompt: "a lighthouse", Style: "minimalist", Save: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "a lighthouse, clean, minimal, simple composition, elegant, high quality"
	if ai.imageReq[0].Prompt != want {
		t.Fatalf("enhanced prompt: want=%q got=%q", want, ai.imageReq[0].Prompt)
	}
	if ai.imageReq[0].Size != defaultImageSize || ai.imageReq[0].Quality != defaultImageQuality {
		t.Fatalf("defaults not applied: %+v", ai.imageReq[0])
	}
	if !res.Success || res.RevisedPrompt != "revised" || res.OriginalPrompt != "a lighthouse" || res.ImageID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.URL != "" {
		t.Fatalf("url should be empty without a bucket, got %q", res.URL)
	}
}

func TestGenerateImageRequiresPrompt(t *testing.T) {
	svc := NewImageService(testutil.Logger(t), &fakeAI{}, nil, nil, nil, nil)
	_, err := svc.Generate(context.Background(), GenerateImageInput{})
	if e, ok := apierr.As(err); !ok || e.Status != http.StatusBadRequest {
		t.Fatalf("want 400, got %v", err)
	}
}
