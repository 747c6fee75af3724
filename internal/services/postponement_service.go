package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/osisteam/catalogue-backend/internal/data/aggregates"
	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/academicyear"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/entityversion"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/graph"
	"github.com/osisteam/catalogue-backend/internal/modules/postponement"
	"github.com/osisteam/catalogue-backend/internal/notify"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

const DefaultAutoPostponeWorkers = 4

type PostponementConfig struct {
	Span    int
	Workers int
	Now     func() time.Time
}

// AutoPostponeResult lists what one run of the yearly job did, per learning unit.
type AutoPostponeResult struct {
	Horizon int
	Reports []*types.PostponementReport
	Skipped []string
	Errors  []string
}

type PostponementService interface {
	// Propagate copies a unit year forward up to the horizon. Central managers only.
	Propagate(ctx context.Context, actor types.Actor, learningUnitYearID uint) (*types.PostponementReport, error)
	Conflicts(ctx context.Context, learningUnitYearID uint) ([]string, error)
	AutoPostpone(ctx context.Context) (*AutoPostponeResult, error)
}

type postponementService struct {
	log      *logger.Logger
	repos    repos.Set
	runner   aggregates.TxRunner
	engine   *postponement.Engine
	notifier ProposalNotifier
	cfg      PostponementConfig
}

func NewPostponementService(db *gorm.DB, baseLog *logger.Logger, rs repos.Set, runner aggregates.TxRunner, notifier ProposalNotifier, cfg PostponementConfig) PostponementService {
	if runner == nil {
		runner = aggregates.NewGormTxRunner(db)
	}
	if cfg.Span < 0 {
		cfg.Span = aggregates.DefaultPostponementSpan
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultAutoPostponeWorkers
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	gs := graph.New(rs, baseLog)
	return &postponementService{
		log:      baseLog.With("service", "PostponementService"),
		repos:    rs,
		runner:   runner,
		engine:   postponement.New(db, rs, gs, baseLog),
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *postponementService) years(dbc dbctx.Context) (*academicyear.Registry, int, error) {
	years, err := academicyear.Load(dbc, s.repos.AcademicYear, academicyear.WithClock(s.cfg.Now))
	if err != nil {
		return nil, 0, err
	}
	horizon, err := years.Horizon(s.cfg.Span)
	if err != nil {
		return nil, 0, err
	}
	return years, horizon, nil
}

func (s *postponementService) Propagate(ctx context.Context, actor types.Actor, learningUnitYearID uint) (*types.PostponementReport, error) {
	const op = "PostponementService.Propagate"
	if !actor.Has(types.RoleCentralManager) {
		return nil, domainagg.NewError(domainagg.CodePermissionDenied, op, "only central managers may postpone a learning unit", nil)
	}
	var rep *types.PostponementReport
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		luy, err := s.repos.LearningUnitYear.LockByID(dbc, learningUnitYearID)
		if err != nil {
			return err
		}
		if luy == nil {
			return domainagg.Errorf(domainagg.CodeNotFound, op, "learning unit year %d not found", learningUnitYearID)
		}
		years, horizon, err := s.years(dbc)
		if err != nil {
			return err
		}
		rep, err = s.engine.Propagate(dbc, years, luy.ID, horizon)
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	ev := notify.NewEvent(notify.KindPostponementReport, actor)
	ev.Transition = "postpone"
	ev.Postponements = []*types.PostponementReport{rep}
	s.emit(ev)
	return rep, nil
}

func (s *postponementService) Conflicts(ctx context.Context, learningUnitYearID uint) ([]string, error) {
	const op = "PostponementService.Conflicts"
	dbc := dbctx.Context{Ctx: ctx}
	entities, err := entityversion.Load(dbc, s.repos.Entity)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	out, err := s.engine.ConflictsWithNextYear(dbc, entities, learningUnitYearID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return out, nil
}

// AutoPostpone propagates the latest unit year of every learning unit still
// open in the current year. Units run in parallel, each in its own
// transaction; partims travel with their FULL and units under proposal are left alone.
func (s *postponementService) AutoPostpone(ctx context.Context) (*AutoPostponeResult, error) {
	const op = "PostponementService.AutoPostpone"
	dbc := dbctx.Context{Ctx: ctx}
	years, horizon, err := s.years(dbc)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	cur, err := years.Current()
	if err != nil {
		return nil, err
	}
	units, err := s.repos.LearningUnit.ListOpenFrom(dbc, cur.Year)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}

	res := &AutoPostponeResult{Horizon: horizon}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for _, lu := range units {
		lu := lu
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rep, skip, err := s.postponeUnit(gctx, years, horizon, lu)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				s.log.Warn("autopostponement failed", "learning_unit_id", lu.ID, "error", err)
				res.Errors = append(res.Errors, domainagg.MessageOf(err))
			case skip != "":
				res.Skipped = append(res.Skipped, skip)
			case rep != nil:
				res.Reports = append(res.Reports, rep)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(res.Reports, func(i, j int) bool { return res.Reports[i].Source.Acronym < res.Reports[j].Source.Acronym })
	sort.Strings(res.Skipped)
	sort.Strings(res.Errors)

	s.log.Info("autopostponement finished",
		"horizon", horizon,
		"units", len(units),
		"postponed", len(res.Reports),
		"skipped", len(res.Skipped),
		"errors", len(res.Errors),
	)
	ev := notify.NewEvent(notify.KindPostponementReport, types.Actor{})
	ev.Transition = "autopostpone"
	ev.Postponements = res.Reports
	ev.Outcomes = map[string][]string{notify.BucketError: res.Errors, notify.BucketInfo: res.Skipped}
	s.emit(ev)
	return res, nil
}

func (s *postponementService) postponeUnit(ctx context.Context, years *academicyear.Registry, horizon int, lu *types.LearningUnit) (*types.PostponementReport, string, error) {
	const op = "PostponementService.postponeUnit"
	var (
		rep  *types.PostponementReport
		skip string
	)
	err := s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		rows, err := s.repos.LearningUnitYear.ListByUnitFromYear(dbc, lu.ID, lu.StartYear)
		if err != nil {
			return err
		}
		var src *types.LearningUnitYear
		for _, r := range rows {
			if r.Year() <= horizon {
				src = r
			}
		}
		switch {
		case src == nil:
			return nil
		case src.IsPartim():
			return nil
		case src.Year() >= horizon:
			return nil
		}
		p, err := s.repos.Proposal.FindForLearningUnitYear(dbc, src.ID)
		if err != nil {
			return err
		}
		if p != nil {
			skip = src.Acronym + ": proposal in progress"
			return nil
		}
		if _, err := s.repos.LearningUnitYear.LockByID(dbc, src.ID); err != nil {
			return err
		}
		rep, err = s.engine.Propagate(dbc, years, src.ID, horizon)
		return err
	})
	if err != nil {
		return nil, "", aggregates.MapError(op, err)
	}
	return rep, skip, nil
}

func (s *postponementService) emit(ev notify.Event) {
	if s.notifier != nil {
		s.notifier.Notify(ev)
	}
}
