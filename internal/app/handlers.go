package app

import (
	apphttp "github.com/yungbote/scribe-backend/internal/http"
	httpH "github.com/yungbote/scribe-backend/internal/http/handlers"
	"github.com/yungbote/scribe-backend/internal/observability"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Realtime *httpH.RealtimeHandler
	AI       *httpH.AIHandler
	Media    *httpH.MediaHandler
	FineTune *httpH.FineTuneHandler
	Script   *httpH.ScriptHandler
	Ops      *httpH.OpsHandler
}

func wireHandlers(log *logger.Logger, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Realtime: httpH.NewRealtimeHandler(log, hub),
		AI:       httpH.NewAIHandler(log, s.Research, s.Generation, s.Assistant, s.Images, s.CallLog),
		Media:    httpH.NewMediaHandler(log, s.Images, s.Transcription, s.Documents, s.CallLog),
		FineTune: httpH.NewFineTuneHandler(log, s.FineTune, s.CallLog),
		Script:   httpH.NewScriptHandler(log, s.Scripts),
		Ops:      httpH.NewOpsHandler(log, s.Connectivity, s.YouTube),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers) *apphttp.Server {
	return apphttp.NewServer(log, ":"+cfg.Port, apphttp.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		CORSOrigins:     cfg.CORSOrigins,
		HealthHandler:   h.Health,
		RealtimeHandler: h.Realtime,
		AIHandler:       h.AI,
		MediaHandler:    h.Media,
		FineTuneHandler: h.FineTune,
		ScriptHandler:   h.Script,
		OpsHandler:      h.Ops,
	})
}
