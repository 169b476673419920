package ops

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

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

type APICallLogRepo interface {
	Create(dbc dbctx.Context, entry *types.APICallLog) error
	ListRecent(dbc dbctx.Context, endpoint string, limit int) ([]*types.APICallLog, error)
}

type apiCallLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAPICallLogRepo(db *gorm.DB, baseLog *logger.Logger) APICallLogRepo {
	return &apiCallLogRepo{db: db, log: baseLog.With("repo", "APICallLogRepo")}
}

func (r *apiCallLogRepo) Create(dbc dbctx.Context, entry *types.APICallLog) error {
	return repoerr.Map("create api call log", txOf(r.db, dbc).Create(entry).Error)
}

// ListRecent filters by endpoint unless it is empty.
func (r *apiCallLogRepo) ListRecent(dbc dbctx.Context, endpoint string, limit int) ([]*types.APICallLog, error) {
	out := []*types.APICallLog{}
	q := txOf(r.db, dbc).Order("created_at DESC")
	if endpoint != "" {
		q = q.Where("endpoint = ?", endpoint)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, repoerr.Map("list api call logs", err)
	}
	return out, nil
}

type AppSettingRepo interface {
	// Get reports ok=false when the key was never set.
	Get(dbc dbctx.Context, key string) (value string, ok bool, err error)
	Set(dbc dbctx.Context, key, value string) error
}

type appSettingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAppSettingRepo(db *gorm.DB, baseLog *logger.Logger) AppSettingRepo {
	return &appSettingRepo{db: db, log: baseLog.With("repo", "AppSettingRepo")}
}

func (r *appSettingRepo) Get(dbc dbctx.Context, key string) (string, bool, error) {
	var s types.AppSetting
	err := txOf(r.db, dbc).Where("setting_key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, repoerr.Map("get app setting", err)
	}
	return s.Value, true, nil
}

func (r *appSettingRepo) Set(dbc dbctx.Context, key, value string) error {
	err := txOf(r.db, dbc).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&types.AppSetting{Key: key, Value: value}).Error
	return repoerr.Map("set app setting", err)
}

type ConnectivityProbeRepo interface {
	Create(dbc dbctx.Context, message string) (*types.ConnectivityProbe, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ConnectivityProbe, error)
}

type connectivityProbeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConnectivityProbeRepo(db *gorm.DB, baseLog *logger.Logger) ConnectivityProbeRepo {
	return &connectivityProbeRepo{db: db, log: baseLog.With("repo", "ConnectivityProbeRepo")}
}

func (r *connectivityProbeRepo) Create(dbc dbctx.Context, message string) (*types.ConnectivityProbe, error) {
	p := &types.ConnectivityProbe{Message: message}
	if err := txOf(r.db, dbc).Create(p).Error; err != nil {
		return nil, repoerr.Map("create connectivity probe", err)
	}
	return p, nil
}

func (r *connectivityProbeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ConnectivityProbe, error) {
	var p types.ConnectivityProbe
	if err := txOf(r.db, dbc).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, repoerr.Map("get connectivity probe", err)
	}
	return &p, nil
}
