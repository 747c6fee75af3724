package app

import (
	"gorm.io/gorm"

	apphttp "github.com/osisteam/catalogue-backend/internal/http"
	httpH "github.com/osisteam/catalogue-backend/internal/http/handlers"
	httpMW "github.com/osisteam/catalogue-backend/internal/http/middleware"
	"github.com/osisteam/catalogue-backend/internal/observability"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

func wireRouterConfig(log *logger.Logger, cfg Config, db *gorm.DB, svc Services, metrics *observability.Metrics) apphttp.RouterConfig {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB, err := db.DB(); err == nil {
		pinger = sqlDB
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.RouterConfig{
		ServiceName:         serviceName,
		CORSOrigins:         cfg.CORSOrigins,
		Log:                 log,
		Metrics:             metrics,
		ActorMiddleware:     httpMW.NewActorMiddleware(log, svc.Identity),
		ProposalHandler:     httpH.NewProposalHandler(svc.Proposals),
		PostponementHandler: httpH.NewPostponementHandler(svc.Postponement),
		HealthHandler:       httpH.NewHealthHandler(pinger),
	}
}
