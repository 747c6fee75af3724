package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/osisteam/catalogue-backend/internal/app"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"github.com/osisteam/catalogue-backend/internal/services"
)

// autopostpone runs the yearly copy of every open learning unit up to the
// postponement horizon, either once or on AUTOPOSTPONE_CRON.
func main() {
	once := flag.Bool("once", false, "run a single pass and exit")
	schedule := flag.String("schedule", "", "cron schedule (overrides AUTOPOSTPONE_CRON)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.Close(shutdownCtx)
	}()
	log := a.Log.With("cmd", "autopostpone")

	if *once {
		if err := runOnce(ctx, log, a.Services.Postponement); err != nil {
			log.Error("autopostpone failed", "error", err)
			a.Close(ctx)
			os.Exit(1)
		}
		return
	}

	spec := *schedule
	if spec == "" {
		spec = a.Cfg.AutoPostponeCron
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := runOnce(ctx, log, a.Services.Postponement); err != nil {
			log.Error("autopostpone failed", "error", err)
		}
	}); err != nil {
		log.Error("invalid schedule", "schedule", spec, "error", err)
		return
	}
	log.Info("autopostpone scheduled", "schedule", spec)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}

func runOnce(ctx context.Context, log *logger.Logger, svc services.PostponementService) error {
	start := time.Now()
	res, err := svc.AutoPostpone(ctx)
	if err != nil {
		return err
	}
	log.Info("autopostpone finished",
		"horizon", res.Horizon,
		"postponed", len(res.Reports),
		"skipped", len(res.Skipped),
		"errors", len(res.Errors),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
