package scripts

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/scribe-backend/internal/data/repos/repoerr"
	types "github.com/yungbote/scribe-backend/internal/domain"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

type ScriptRepo interface {
	Create(dbc dbctx.Context, s *types.Script) (*types.Script, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Script, error)
	// List returns newest first.
	List(dbc dbctx.Context, limit, offset int) ([]*types.Script, error)
	Count(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type scriptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScriptRepo(db *gorm.DB, baseLog *logger.Logger) ScriptRepo {
	return &scriptRepo{db: db, log: baseLog.With("repo", "ScriptRepo")}
}

func (r *scriptRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *scriptRepo) Create(dbc dbctx.Context, s *types.Script) (*types.Script, error) {
	if err := r.tx(dbc).Create(s).Error; err != nil {
		return nil, repoerr.Map("create script", err)
	}
	return s, nil
}

func (r *scriptRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Script, error) {
	var s types.Script
	if err := r.tx(dbc).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, repoerr.Map("get script", err)
	}
	return &s, nil
}

func (r *scriptRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Script, error) {
	out := []*types.Script{}
	q := r.tx(dbc).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, repoerr.Map("list scripts", err)
	}
	return out, nil
}

func (r *scriptRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := r.tx(dbc).Model(&types.Script{}).Count(&n).Error; err != nil {
		return 0, repoerr.Map("count scripts", err)
	}
	return n, nil
}

func (r *scriptRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.tx(dbc).Model(&types.Script{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return repoerr.Map("update script", res.Error)
	}
	if res.RowsAffected == 0 {
		return repoerr.Map("update script", repoerr.ErrNotFound)
	}
	return nil
}

func (r *scriptRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	res := r.tx(dbc).Where("id = ?", id).Delete(&types.Script{})
	if res.Error != nil {
		return repoerr.Map("delete script", res.Error)
	}
	if res.RowsAffected == 0 {
		return repoerr.Map("delete script", repoerr.ErrNotFound)
	}
	return nil
}
