package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/scribe-backend/internal/http/handlers"
	httpMW "github.com/yungbote/scribe-backend/internal/http/middleware"
	"github.com/yungbote/scribe-backend/internal/observability"
	"github.com/yungbote/scribe-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler   *httpH.HealthHandler
	RealtimeHandler *httpH.RealtimeHandler
	AIHandler       *httpH.AIHandler
	MediaHandler    *httpH.MediaHandler
	FineTuneHandler *httpH.FineTuneHandler
	ScriptHandler   *httpH.ScriptHandler
	OpsHandler      *httpH.OpsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Ops
		if cfg.OpsHandler != nil {
			api.GET("/test-db", cfg.OpsHandler.TestDB)
			api.GET("/youtube/tools", cfg.OpsHandler.YouTubeTools)
			api.POST("/youtube/search", cfg.OpsHandler.YouTubeSearch)
			api.GET("/youtube/videos/:id", cfg.OpsHandler.YouTubeVideo)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/ai/agent-stream", cfg.RealtimeHandler.AgentStream)
		}

		// AI
		if cfg.AIHandler != nil {
			api.POST("/ai/advanced-research", cfg.AIHandler.AdvancedResearch)
			api.POST("/ai/generate-advanced-script", cfg.AIHandler.GenerateAdvancedScript)
			api.POST("/ai/explore-topic", cfg.AIHandler.ExploreTopic)
			api.POST("/ai/explore-topic-agents", cfg.AIHandler.ExploreTopicAgents)
			api.POST("/ai/analyze-script", cfg.AIHandler.AnalyzeScript)
			api.POST("/ai/selection-action", cfg.AIHandler.SelectionAction)
			api.POST("/ai/enhance-context", cfg.AIHandler.EnhanceContext)
			api.POST("/ai/analyze-typing", cfg.AIHandler.AnalyzeTyping)
			api.POST("/ai/search-images", cfg.AIHandler.SearchImages)
		}

		// Media
		if cfg.MediaHandler != nil {
			api.POST("/generate-image", cfg.MediaHandler.GenerateImage)
			api.POST("/audio/transcribe", cfg.MediaHandler.Transcribe)
			api.POST("/parse-file", cfg.MediaHandler.ParseFile)
		}

		// Fine-tuning
		if cfg.FineTuneHandler != nil {
			api.POST("/fine-tuning/create", cfg.FineTuneHandler.Create)
			api.GET("/fine-tuning/jobs", cfg.FineTuneHandler.ListJobs)
			api.GET("/fine-tuning/set-model", cfg.FineTuneHandler.GetActiveModel)
			api.POST("/fine-tuning/set-model", cfg.FineTuneHandler.SetActiveModel)
		}

		// Scripts
		if cfg.ScriptHandler != nil {
			api.GET("/scripts", cfg.ScriptHandler.List)
			api.POST("/scripts", cfg.ScriptHandler.Create)
			api.POST("/scripts/sync", cfg.ScriptHandler.Sync)
			api.GET("/scripts/:id", cfg.ScriptHandler.Get)
			api.PUT("/scripts/:id", cfg.ScriptHandler.Update)
			api.DELETE("/scripts/:id", cfg.ScriptHandler.Delete)
			api.POST("/create-test-script", cfg.ScriptHandler.CreateTestScript)
		}
	}

	return r
}
