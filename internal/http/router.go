package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/osisteam/catalogue-backend/internal/http/handlers"
	httpMW "github.com/osisteam/catalogue-backend/internal/http/middleware"
	"github.com/osisteam/catalogue-backend/internal/observability"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

type RouterConfig struct {
	ServiceName string
	CORSOrigins []string
	Log         *logger.Logger
	Metrics     *observability.Metrics

	ActorMiddleware *httpMW.ActorMiddleware

	ProposalHandler     *httpH.ProposalHandler
	PostponementHandler *httpH.PostponementHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	if cfg.ActorMiddleware != nil {
		api.Use(cfg.ActorMiddleware.RequireActor())
	}

	// Proposals
	if h := cfg.ProposalHandler; h != nil {
		api.GET("/proposals", h.Search)
		api.POST("/proposals/creation", h.ProposeCreation)
		api.POST("/proposals/batch/cancel", h.BatchCancel)
		api.POST("/proposals/batch/consolidate", h.BatchConsolidate)
		api.POST("/proposals/batch/state", h.BatchForceState)
		api.GET("/proposals/:id", h.GetProposal)
		api.PATCH("/proposals/:id", h.EditProposal)
		api.POST("/proposals/:id/state", h.ModifyState)
		api.POST("/proposals/:id/cancel", h.Cancel)
		api.POST("/proposals/:id/consolidate", h.Consolidate)

		api.GET("/learning-unit-years/:id/proposal", h.GetForLearningUnitYear)
		api.POST("/learning-unit-years/:id/proposals/modification", h.ProposeModification)
		api.POST("/learning-unit-years/:id/proposals/suppression", h.ProposeSuppression)

		api.GET("/entities/:id/proposals", h.ListForEntity)
	}

	// Postponement
	if h := cfg.PostponementHandler; h != nil {
		api.POST("/learning-unit-years/:id/postponement", h.Propagate)
		api.GET("/learning-unit-years/:id/postponement/conflicts", h.Conflicts)
		api.POST("/postponement/auto", h.AutoPostpone)
	}

	return r
}
