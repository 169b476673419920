package scripts

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/scribe-backend/internal/data/repos/repoerr"
	types "github.com/yungbote/scribe-backend/internal/domain"
	"github.com/yungbote/scribe-backend/internal/pkg/dbctx"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

type SessionRepo interface {
	Get(dbc dbctx.Context, id string) (*types.Session, error)
	// Upsert replaces agent data and progress for the session.
	Upsert(dbc dbctx.Context, id string, agentData datatypes.JSON, progress int) error
	// SetProgress leaves agent data untouched.
	SetProgress(dbc dbctx.Context, id string, progress int) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *sessionRepo) Get(dbc dbctx.Context, id string) (*types.Session, error) {
	var s types.Session
	if err := r.tx(dbc).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, repoerr.Map("get session", err)
	}
	return &s, nil
}

func (r *sessionRepo) Upsert(dbc dbctx.Context, id string, agentData datatypes.JSON, progress int) error {
	row := &types.Session{ID: id, AgentData: agentData, Progress: progress}
	err := r.tx(dbc).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"agent_data", "progress", "updated_at"}),
	}).Create(row).Error
	return repoerr.Map("upsert session", err)
}

func (r *sessionRepo) SetProgress(dbc dbctx.Context, id string, progress int) error {
	row := &types.Session{ID: id, Progress: progress}
	err := r.tx(dbc).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"progress", "updated_at"}),
	}).Create(row).Error
	return repoerr.Map("set session progress", err)
}
