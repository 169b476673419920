package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/scribe-backend/internal/modules/scriptgen"
	"github.com/yungbote/scribe-backend/internal/observability"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
	"github.com/yungbote/scribe-backend/internal/realtime"
	"github.com/yungbote/scribe-backend/internal/services"
)

type Services struct {
	Emitter services.SSEEmitter
	Events  services.AgentEventService
	CallLog services.CallLogService

	Research      services.ResearchService
	Generation    services.GenerationService
	Assistant     services.AssistantService
	FineTune      services.FineTuneService
	Images        services.ImageService
	Transcription services.TranscriptionService
	Documents     services.DocumentService
	Scripts       services.ScriptService
	Connectivity  services.ConnectivityService
	YouTube       services.YouTubeService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, clients Clients, reposet Repos, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := scriptgen.LoadCatalog(log)
	if err != nil {
		return Services{}, fmt.Errorf("load prompt catalog: %w", err)
	}
	pipeline, err := scriptgen.New(log, clients.OpenAI, catalog, metrics, cfg.Scriptgen)
	if err != nil {
		return Services{}, fmt.Errorf("init scriptgen pipeline: %w", err)
	}

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.Bus != nil {
		emitter = &services.RedisEmitter{Bus: clients.Bus, Fallback: hub, Log: log}
	}
	events := services.NewAgentEventService(log, emitter, reposet.Session)

	finetune := services.NewFineTuneService(log, clients.OpenAI, reposet.AppSetting)

	return Services{
		Emitter: emitter,
		Events:  events,
		CallLog: services.NewCallLogService(log, reposet.APICallLog),

		Research:      services.NewResearchService(log, pipeline),
		Generation:    services.NewGenerationService(log, pipeline, clients.OpenAI, clients.YouTube, reposet.Script, events),
		Assistant:     services.NewAssistantService(log, clients.OpenAI, catalog, finetune),
		FineTune:      finetune,
		Images:        services.NewImageService(log, clients.OpenAI, clients.ImageProviders, clients.Bucket, reposet.ImageSearch, reposet.GeneratedImage),
		Transcription: services.NewTranscriptionService(log, clients.OpenAI),
		Documents:     services.NewDocumentService(log),
		Scripts:       services.NewScriptService(db, log, reposet.Script, reposet.Session),
		Connectivity:  services.NewConnectivityService(log, reposet.ConnectivityProbe),
		YouTube:       services.NewYouTubeService(log, clients.YouTube),
	}, nil
}
