package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/scribe-backend/internal/data/repos"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

type Repos struct {
	Script            repos.ScriptRepo
	Session           repos.SessionRepo
	ImageSearch       repos.ImageSearchRepo
	GeneratedImage    repos.GeneratedImageRepo
	APICallLog        repos.APICallLogRepo
	AppSetting        repos.AppSettingRepo
	ConnectivityProbe repos.ConnectivityProbeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Script:            repos.NewScriptRepo(db, log),
		Session:           repos.NewSessionRepo(db, log),
		ImageSearch:       repos.NewImageSearchRepo(db, log),
		GeneratedImage:    repos.NewGeneratedImageRepo(db, log),
		APICallLog:        repos.NewAPICallLogRepo(db, log),
		AppSetting:        repos.NewAppSettingRepo(db, log),
		ConnectivityProbe: repos.NewConnectivityProbeRepo(db, log),
	}
}
