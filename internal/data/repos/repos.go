package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/scribe-backend/internal/data/repos/media"
	"github.com/yungbote/scribe-backend/internal/data/repos/ops"
	"github.com/yungbote/scribe-backend/internal/data/repos/repoerr"
	"github.com/yungbote/scribe-backend/internal/data/repos/scripts"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

var (
	ErrNotFound  = repoerr.ErrNotFound
	ErrConflict  = repoerr.ErrConflict
	ErrRetryable = repoerr.ErrRetryable
)

type ScriptRepo = scripts.ScriptRepo
type SessionRepo = scripts.SessionRepo

type ImageSearchRepo = media.ImageSearchRepo
type GeneratedImageRepo = media.GeneratedImageRepo

type APICallLogRepo = ops.APICallLogRepo
type AppSettingRepo = ops.AppSettingRepo
type ConnectivityProbeRepo = ops.ConnectivityProbeRepo

func NewScriptRepo(db *gorm.DB, baseLog *logger.Logger) ScriptRepo {
	return scripts.NewScriptRepo(db, baseLog)
}
func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return scripts.NewSessionRepo(db, baseLog)
}

func NewImageSearchRepo(db *gorm.DB, baseLog *logger.Logger) ImageSearchRepo {
	return media.NewImageSearchRepo(db, baseLog)
}
func NewGeneratedImageRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedImageRepo {
	return media.NewGeneratedImageRepo(db, baseLog)
}

func NewAPICallLogRepo(db *gorm.DB, baseLog *logger.Logger) APICallLogRepo {
	return ops.NewAPICallLogRepo(db, baseLog)
}
func NewAppSettingRepo(db *gorm.DB, baseLog *logger.Logger) AppSettingRepo {
	return ops.NewAppSettingRepo(db, baseLog)
}
func NewConnectivityProbeRepo(db *gorm.DB, baseLog *logger.Logger) ConnectivityProbeRepo {
	return ops.NewConnectivityProbeRepo(db, baseLog)
}
