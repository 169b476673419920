package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/scribe-backend/internal/platform/envutil"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

// ErrNoBucket is returned by NewBucketService when GCS_BUCKET_NAME is unset.
var ErrNoBucket = errors.New("GCS_BUCKET_NAME not set")

type BucketCategory string

const (
	BucketCategoryGeneratedImage BucketCategory = "generated-images"
)

type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, category BucketCategory, key string) error
	GetPublicURL(category BucketCategory, key string) string
}

type BucketConfig struct {
	Name          string
	EmulatorHost  string
	PublicBaseURL string
}

func BucketConfigFromEnv() BucketConfig {
	return BucketConfig{
		Name:          envutil.String("GCS_BUCKET_NAME", ""),
		EmulatorHost:  envutil.String("STORAGE_EMULATOR_HOST", ""),
		PublicBaseURL: envutil.String("GCS_PUBLIC_BASE_URL", ""),
	}
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	bucket        string
	emulatorHost  string
	publicBaseURL string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	return NewBucketServiceWithConfig(log, BucketConfigFromEnv())
}

func NewBucketServiceWithConfig(log *logger.Logger, cfg BucketConfig) (BucketService, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, ErrNoBucket
	}
	publicBaseURL, err := normalizePublicBaseURL(cfg.PublicBaseURL)
	if err != nil {
		return nil, err
	}
	emulatorHost := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")

	ctx := context.Background()
	var opts []option.ClientOption
	if emulatorHost != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", emulatorHost)
		opts = []option.ClientOption{option.WithoutAuthentication()}
	} else {
		opts = append(ClientOptionsFromEnv(), option.WithScopes(storage.ScopeReadWrite))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog := log.With("service", "BucketService")
	serviceLog.Info("Object storage initialized",
		"bucket", cfg.Name,
		"emulator_host", emulatorHost,
		"public_base_url", publicBaseURL,
	)
	return &bucketService{
		log:           serviceLog,
		storageClient: client,
		bucket:        cfg.Name,
		emulatorHost:  emulatorHost,
		publicBaseURL: publicBaseURL,
	}, nil
}

func normalizePublicBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid GCS_PUBLIC_BASE_URL=%q; expected absolute URL like https://cdn.example.com", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

func objectName(category BucketCategory, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if category == "" {
		return key
	}
	return string(category) + "/" + key
}

func (bs *bucketService) UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	name := objectName(category, key)
	w := bs.storageClient.Bucket(bs.bucket).Object(name).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	bs.log.Debug("Uploaded object", "object", name)
	return nil
}

// readCloserWithCancel keeps the download context alive until the caller closes the reader.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)
	r, err := bs.storageClient.Bucket(bs.bucket).Object(objectName(category, key)).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open GCS reader: %w", err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, category BucketCategory, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	name := objectName(category, key)
	if err := bs.storageClient.Bucket(bs.bucket).Object(name).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", name, bs.bucket, err)
	}
	return nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	name := objectName(category, key)
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", bs.publicBaseURL, name)
	}
	if bs.emulatorHost != "" {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media",
			bs.emulatorHost, url.PathEscape(bs.bucket), url.PathEscape(name))
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucket, name)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return ""
	}
}
