package media

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/scribe-backend/internal/data/repos/repoerr"
	types "github.com/yungbote/scribe-backend/internal/domain"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

func txOf(db *gorm.DB, dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = db
	}
	return transaction.WithContext(dbc.Ctx)
}

type ImageSearchRepo interface {
	Create(dbc dbctx.Context, s *types.ImageSearch) (*types.ImageSearch, error)
	ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*types.ImageSearch, error)
}

type imageSearchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImageSearchRepo(db *gorm.DB, baseLog *logger.Logger) ImageSearchRepo {
	return &imageSearchRepo{db: db, log: baseLog.With("repo", "ImageSearchRepo")}
}

func (r *imageSearchRepo) Create(dbc dbctx.Context, s *types.ImageSearch) (*types.ImageSearch, error) {
	if err := txOf(r.db, dbc).Create(s).Error; err != nil {
		return nil, repoerr.Map("create image search", err)
	}
	return s, nil
}

func (r *imageSearchRepo) ListBySession(dbc dbctx.Context, sessionID string, limit int) ([]*types.ImageSearch, error) {
	out := []*types.ImageSearch{}
	q := txOf(r.db, dbc).Where("session_id = ?", sessionID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, repoerr.Map("list image searches", err)
	}
	return out, nil
}

type GeneratedImageRepo interface {
	Create(dbc dbctx.Context, img *types.GeneratedImage) (*types.GeneratedImage, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GeneratedImage, error)
}

type generatedImageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeneratedImageRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedImageRepo {
	return &generatedImageRepo{db: db, log: baseLog.With("repo", "GeneratedImageRepo")}
}

func (r *generatedImageRepo) Create(dbc dbctx.Context, img *types.GeneratedImage) (*types.GeneratedImage, error) {
	if err := txOf(r.db, dbc).Create(img).Error; err != nil {
		return nil, repoerr.Map("create generated image", err)
	}
	return img, nil
}

func (r *generatedImageRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GeneratedImage, error) {
	var img types.GeneratedImage
	if err := txOf(r.db, dbc).Where("id = ?", id).First(&img).Error; err != nil {
		return nil, repoerr.Map("get generated image", err)
	}
	return &img, nil
}
