package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	types "github.com/yungbote/scribe-backend/internal/domain"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/apierr"
	"github.com/yungbote/scribe-backend/internal/platform/gcp"
	"github.com/yungbote/scribe-backend/internal/platform/imagesearch"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/platform/openai"
)

const (
	BudgetFree    = "free"
	BudgetMixed   = "mixed"
	BudgetPremium = "premium"

	defaultImageCount   = 10
	maxPexelsPerSearch  = 20
	minResultsBeforeGen = 3
	generatedImageCost  = 0.04
	defaultImageStyle   = "cinematic"
	defaultImageSize    = "1024x1024"
	defaultImageQuality = "standard"
)

var styleModifiers = map[string]string{
	"cinematic":   "cinematic lighting, professional photography, film-like quality",
	"documentary": "documentary style, realistic, natural lighting, authentic",
	"cartoon":     "illustrated style, vibrant colors, cartoon-like, animated",
	"minimalist":  "clean, minimal, simple composition, elegant",
}

type ImageSearchInput struct {
	Query            string `json:"query"`
	Count            int    `json:"count"`
	Budget           string `json:"budget"`
	Style            string `json:"style"`
	GenerateIfNeeded bool   `json:"generateIfNeeded"`
	SessionID        string `json:"sessionId"`
}

type ImageSearchResult struct {
	Images []imagesearch.Result `json:"images"`
	Total  int                  `json:"total"`
	Query  string               `json:"query"`
}

type GenerateImageInput struct {
	Prompt  string `json:"prompt"`
	Style   string `json:"style"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Save    bool   `json:"save_to_firestore"`
}

type GenerateImageResult struct {
	Success        bool   `json:"success"`
	Image          string `json:"image"`
	RevisedPrompt  string `json:"revised_prompt"`
	OriginalPrompt string `json:"original_prompt"`
	Style          string `json:"style"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ImageID        string `json:"image_id,omitempty"`
	URL            string `json:"url,omitempty"`
}

type ImageService interface {
	Search(ctx context.Context, in ImageSearchInput) (*ImageSearchResult, error)
	Generate(ctx context.Context, in GenerateImageInput) (*GenerateImageResult, error)
}

type imageService struct {
	log       *logger.Logger
	ai        openai.Client
	providers []imagesearch.Provider
	bucket    gcp.BucketService
	searches  repos.ImageSearchRepo
	generated repos.GeneratedImageRepo
}

// NewImageService wires the stock providers in priority order. bucket may be
// nil, in which case generated images are returned inline only.
func NewImageService(
	log *logger.Logger,
	ai openai.Client,
	providers []imagesearch.Provider,
	bucket gcp.BucketService,
	searches repos.ImageSearchRepo,
	generated repos.GeneratedImageRepo,
) ImageService {
	return &imageService{
		log:       log.With("service", "ImageService"),
		ai:        ai,
		providers: providers,
		bucket:    bucket,
		searches:  searches,
		generated: generated,
	}
}

func normalizeBudget(b string) string {
	switch strings.ToLower(strings.TrimSpace(b)) {
	case BudgetFree:
		return BudgetFree
	case BudgetPremium:
		return BudgetPremium
	}
	return BudgetMixed
}

// allowedLicense applies the budget: free keeps zero-cost images, mixed drops
// premium ones, premium keeps everything.
func allowedLicense(budget string, r imagesearch.Result) bool {
	switch budget {
	case BudgetFree:
		return r.Cost == 0
	case BudgetMixed:
		return r.License != imagesearch.LicensePremium
	}
	return true
}

func (s *imageService) Search(ctx context.Context, in ImageSearchInput) (*ImageSearchResult, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, apierr.BadRequest("missing_query", "Query is required")
	}
	count := in.Count
	if count <= 0 {
		count = defaultImageCount
	}
	budget := normalizeBudget(in.Budget)
	style := strings.TrimSpace(in.Style)
	if style == "" {
		style = defaultImageStyle
	}

	var (
		mu      sync.Mutex
		results []imagesearch.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.providers {
		if p == nil || !p.Enabled() {
			continue
		}
		if budget == BudgetFree && p.Name() != "pexels" {
			continue
		}
		n := count
		if p.Name() == "pexels" && n > maxPexelsPerSearch {
			n = maxPexelsPerSearch
		}
		g.Go(func() error {
			found, err := p.Search(gctx, query, n)
			if err != nil {
				// One provider failing leaves the others' results usable.
				s.log.Warn("image provider failed", "provider", p.Name(), "error", err)
				return nil
			}
			mu.Lock()
			results = append(results, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	filtered := make([]imagesearch.Result, 0, len(results))
	for _, r := range results {
		if allowedLicense(budget, r) {
			filtered = append(filtered, r)
		}
	}

	if len(filtered) < minResultsBeforeGen && in.GenerateIfNeeded {
		if img, err := s.generateForSearch(ctx, query, style); err != nil {
			s.log.Warn("fallback image generation failed", "error", err)
		} else {
			filtered = append(filtered, img)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].RelevanceScore > filtered[j].RelevanceScore
	})

	if sid := strings.TrimSpace(in.SessionID); sid != "" && s.searches != nil {
		s.recordSearch(ctx, sid, query, filtered)
	}

	images := filtered
	if len(images) > count {
		images = images[:count]
	}
	return &ImageSearchResult{Images: images, Total: len(filtered), Query: query}, nil
}

func (s *imageService) recordSearch(ctx context.Context, sessionID, query string, results []imagesearch.Result) {
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	_, err = s.searches.Create(dbctx.Context{Ctx: ctx}, &types.ImageSearch{
		SessionID:    sessionID,
		Query:        query,
		Results:      datatypes.JSON(raw),
		ResultsCount: len(results),
	})
	if err != nil {
		s.log.Warn("persist image search failed", "session_id", sessionID, "error", err)
	}
}

func (s *imageService) generateForSearch(ctx context.Context, query, style string) (imagesearch.Result, error) {
	prompt := fmt.Sprintf("%s, %s style, high quality, professional photography", query, style)
	gen, err := s.ai.GenerateImage(ctx, openai.ImageRequest{Prompt: prompt, Size: defaultImageSize, Quality: "hd"})
	if err != nil {
		return imagesearch.Result{}, err
	}
	url := s.storeImage(ctx, uuid.New(), gen)
	if url == "" {
		url = dataURL(gen)
	}
	return imagesearch.Result{
		URL:            url,
		PreviewURL:     url,
		Source:         "dalle-3",
		License:        imagesearch.LicenseAIGenerated,
		Cost:           generatedImageCost,
		Width:          1024,
		Height:         1024,
		Title:          "AI Generated: " + headRunes(query, 50) + "...",
		RelevanceScore: 1.0,
		Photographer:   "DALL-E 3",
		SourceWebsite:  "openai.com",
	}, nil
}

func dataURL(gen openai.ImageGeneration) string {
	mime := gen.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + gen.Base64()
}

// storeImage uploads to the bucket and returns the public URL, or "" when no
// bucket is configured or the upload fails.
func (s *imageService) storeImage(ctx context.Context, id uuid.UUID, gen openai.ImageGeneration) string {
	_, url, err := s.upload(ctx, id, gen)
	if err != nil {
		if !errors.Is(err, gcp.ErrNoBucket) {
			s.log.Warn("upload generated image failed", "error", err)
		}
		return ""
	}
	return url
}

func (s *imageService) upload(ctx context.Context, id uuid.UUID, gen openai.ImageGeneration) (string, string, error) {
	if s.bucket == nil {
		return "", "", gcp.ErrNoBucket
	}
	key := id.String() + imageExt(gen.MimeType)
	if err := s.bucket.UploadFile(ctx, gcp.BucketCategoryGeneratedImage, key, bytes.NewReader(gen.Bytes)); err != nil {
		return "", "", err
	}
	return key, s.bucket.GetPublicURL(gcp.BucketCategoryGeneratedImage, key), nil
}

func imageExt(mime string) string {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	return ".png"
}

func (s *imageService) Generate(ctx context.Context, in GenerateImageInput) (*GenerateImageResult, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, apierr.BadRequest("missing_prompt", "Prompt is required")
	}
	style := strings.ToLower(strings.TrimSpace(in.Style))
	if style == "" {
		style = defaultImageStyle
	}
	size := firstNonBlank(in.Size, defaultImageSize)
	quality := firstNonBlank(in.Quality, defaultImageQuality)

	enhanced := prompt
	if mod, ok := styleModifiers[style]; ok {
		enhanced = fmt.Sprintf("%s, %s, high quality", prompt, mod)
	} else {
		enhanced = prompt + ", high quality"
	}

	gen, err := s.ai.GenerateImage(ctx, openai.ImageRequest{Prompt: enhanced, Size: size, Quality: quality})
	if err != nil {
		return nil, apierr.Upstream("image_generation_failed", fmt.Errorf("Failed to generate image: %w", err))
	}

	out := &GenerateImageResult{
		Success:        true,
		Image:          gen.Base64(),
		RevisedPrompt:  firstNonBlank(gen.RevisedPrompt, enhanced),
		OriginalPrompt: prompt,
		Style:          style,
		Size:           firstNonBlank(gen.Size, size),
		Quality:        firstNonBlank(gen.Quality, quality),
	}
	if !in.Save {
		return out, nil
	}

	id := uuid.New()
	row := &types.GeneratedImage{
		ID:             id,
		Prompt:         prompt,
		EnhancedPrompt: enhanced,
		RevisedPrompt:  out.RevisedPrompt,
		Style:          style,
		Size:           out.Size,
		Quality:        out.Quality,
	}
	key, url, err := s.upload(ctx, id, gen)
	switch {
	case err == nil:
		row.StorageKey, row.URL = key, url
	case errors.Is(err, gcp.ErrNoBucket):
	default:
		s.log.Warn("upload generated image failed", "image_id", id, "error", err)
	}
	if s.generated != nil {
		if _, err := s.generated.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
			s.log.Warn("persist generated image failed", "image_id", id, "error", err)
			return out, nil
		}
		out.ImageID = id.String()
	}
	out.URL = row.URL
	return out, nil
}
