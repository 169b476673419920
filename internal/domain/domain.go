package domain

import (
	"github.com/yungbote/scribe-backend/internal/domain/media"
	"github.com/yungbote/scribe-backend/internal/domain/ops"
	"github.com/yungbote/scribe-backend/internal/domain/scripts"
)

const (
	ScriptSourceManual   = scripts.SourceManual
	ScriptSourceAdvanced = scripts.SourceAdvanced
	ScriptSourceAgents   = scripts.SourceAgents
	ScriptSourceTest     = scripts.SourceTest
)

type Script = scripts.Script
type Session = scripts.Session

type ImageSearch = media.ImageSearch
type GeneratedImage = media.GeneratedImage

type APICallLog = ops.APICallLog
type AppSetting = ops.AppSetting
type ConnectivityProbe = ops.ConnectivityProbe

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&Script{},
		&Session{},
		&ImageSearch{},
		&GeneratedImage{},
		&APICallLog{},
		&AppSetting{},
		&ConnectivityProbe{},
	}
}
