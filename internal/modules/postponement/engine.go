// Package postponement copies a learning unit year forward into later
// academic years and reports how a year differs from the next one.
package postponement

import (
	"sort"

	"gorm.io/gorm"

	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/academicyear"
	"github.com/osisteam/catalogue-backend/internal/modules/catalogue/graph"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

type (
	Target  = types.PostponementTarget
	Failure = types.PostponementFailure
	Report  = types.PostponementReport
)

func newReport(src *graph.Graph, horizon int) *Report {
	return &Report{
		Source: Target{
			Year:               src.Year(),
			Acronym:            src.LearningUnitYear.Acronym,
			LearningUnitYearID: src.LearningUnitYear.ID,
		},
		Succeeded: []Target{},
		Failed:    []Failure{},
		Removed:   []Target{},
		Horizon:   horizon,
	}
}

type Engine struct {
	db    *gorm.DB
	repos repos.Set
	graph *graph.Service
	log   *logger.Logger
}

func New(db *gorm.DB, rs repos.Set, g *graph.Service, baseLog *logger.Logger) *Engine {
	return &Engine{db: db, repos: rs, graph: g, log: baseLog.With("module", "Postponement")}
}

// Propagate copies the unit year into every registered year in
// (source year, min(end_year, horizon)], overriding existing rows, then drops
// unit years past end_year. A FULL source carries its partims along.
func (e *Engine) Propagate(dbc dbctx.Context, years *academicyear.Registry, learningUnitYearID uint, horizon int) (*Report, error) {
	const op = "Postponement.Propagate"
	src, err := e.graph.Load(dbc, learningUnitYearID)
	if err != nil {
		return nil, err
	}
	lu := src.Unit()
	if lu == nil {
		return nil, domainagg.Errorf(domainagg.CodeInternal, op, "learning unit of %d not loaded", learningUnitYearID)
	}
	rep := newReport(src, horizon)
	rep.EndYear = lu.EndYear

	targets, err := targetYears(years, src.Year(), lu.EndYear, horizon)
	if err != nil {
		return nil, err
	}
	if len(targets) > 0 {
		rep.TargetFrom = targets[0].Year
	}

	var partims []*graph.Graph
	if src.LearningUnitYear.IsFull() {
		rows, err := e.graph.PartimsOf(dbc, src.LearningUnitYear)
		if err != nil {
			return nil, err
		}
		for _, p := range rows {
			pg, err := e.graph.Load(dbc, p.ID)
			if err != nil {
				return nil, err
			}
			partims = append(partims, pg)
		}
	}

	for _, ay := range targets {
		out, err := e.copyOne(dbc, ay, src)
		if err != nil {
			rep.Failed = append(rep.Failed, failure(ay.Year, src.LearningUnitYear.Acronym, err))
			e.log.Warn("postponement target failed", "acronym", src.LearningUnitYear.Acronym, "year", ay.Year, "error", err)
			continue
		}
		rep.Succeeded = append(rep.Succeeded, Target{Year: ay.Year, Acronym: out.LearningUnitYear.Acronym, LearningUnitYearID: out.LearningUnitYear.ID})

		for _, pg := range partims {
			plu := pg.Unit()
			if plu != nil && !plu.OpenIn(ay.Year) {
				continue
			}
			pout, err := e.copyOne(dbc, ay, pg)
			if err != nil {
				rep.Failed = append(rep.Failed, failure(ay.Year, pg.LearningUnitYear.Acronym, err))
				e.log.Warn("postponement partim failed", "acronym", pg.LearningUnitYear.Acronym, "year", ay.Year, "error", err)
				continue
			}
			rep.Succeeded = append(rep.Succeeded, Target{Year: ay.Year, Acronym: pout.LearningUnitYear.Acronym, LearningUnitYearID: pout.LearningUnitYear.ID})
		}
	}

	// A partim source is only carried where its FULL already exists.
	if src.LearningUnitYear.IsPartim() {
		kept := rep.Failed[:0]
		for _, f := range rep.Failed {
			if f.Code == string(domainagg.CodeNotFound) {
				rep.Skipped = append(rep.Skipped, Target{Year: f.Year, Acronym: f.Acronym})
				continue
			}
			kept = append(kept, f)
		}
		rep.Failed = kept
	}

	if lu.EndYear != nil {
		if err := e.removeAfter(dbc, lu.ID, *lu.EndYear, rep); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// Truncate drops the unit years past the end year of the source's unit
// without copying anything forward.
func (e *Engine) Truncate(dbc dbctx.Context, learningUnitYearID uint) (*Report, error) {
	src, err := e.graph.Load(dbc, learningUnitYearID)
	if err != nil {
		return nil, err
	}
	rep := newReport(src, 0)
	lu := src.Unit()
	if lu == nil || lu.EndYear == nil {
		return rep, nil
	}
	rep.EndYear = lu.EndYear
	if err := e.removeAfter(dbc, lu.ID, *lu.EndYear, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

// copyOne duplicates src into ay inside a savepoint after locking the unit
// year it replaces, so one failing target leaves the others intact. A unit
// year under its own proposal is never replaced.
func (e *Engine) copyOne(dbc dbctx.Context, ay *types.AcademicYear, src *graph.Graph) (*graph.Graph, error) {
	var out *graph.Graph
	err := dbc.DB(e.db).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		existing, err := e.repos.LearningUnitYear.GetByUnitAndYear(inner, src.LearningUnitYear.LearningUnitID, ay.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			if _, err := e.repos.LearningUnitYear.LockByID(inner, existing.ID); err != nil {
				return domainagg.Wrap(domainagg.CodeConcurrent, "Postponement.copyOne", err)
			}
			if err := e.checkNoProposal(inner, "Postponement.copyOne", existing.ID, existing.Acronym, ay.Year); err != nil {
				return err
			}
		}
		g, err := e.graph.DuplicateTo(inner, ay, src)
		if err != nil {
			return err
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// removeAfter deletes the unit years of learningUnitID past endYear, latest
// first. Rows held by a proposal stay and are reported as failed.
func (e *Engine) removeAfter(dbc dbctx.Context, learningUnitID uint, endYear int, rep *Report) error {
	rows, err := e.repos.LearningUnitYear.ListByUnitFromYear(dbc, learningUnitID, endYear+1)
	if err != nil {
		return err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year() > rows[j].Year() })
	for _, luy := range rows {
		err := dbc.DB(e.db).Transaction(func(tx *gorm.DB) error {
			inner := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
			if _, err := e.repos.LearningUnitYear.LockByID(inner, luy.ID); err != nil {
				return domainagg.Wrap(domainagg.CodeConcurrent, "Postponement.removeAfter", err)
			}
			if err := e.checkNoProposal(inner, "Postponement.removeAfter", luy.ID, luy.Acronym, luy.Year()); err != nil {
				return err
			}
			_, err := e.graph.Delete(inner, luy.ID)
			return err
		})
		if err != nil {
			rep.Failed = append(rep.Failed, failure(luy.Year(), luy.Acronym, err))
			e.log.Warn("postponement removal failed", "acronym", luy.Acronym, "year", luy.Year(), "error", err)
			continue
		}
		rep.Removed = append(rep.Removed, Target{Year: luy.Year(), Acronym: luy.Acronym, LearningUnitYearID: luy.ID})
	}
	return nil
}

// checkNoProposal fails with proposal_exists when the locked unit year has a
// proposal of its own.
func (e *Engine) checkNoProposal(dbc dbctx.Context, op string, learningUnitYearID uint, acronym string, year int) error {
	p, err := e.repos.Proposal.FindForLearningUnitYear(dbc, learningUnitYearID)
	if err != nil {
		return err
	}
	if p != nil {
		return domainagg.Errorf(domainagg.CodeProposalExists, op, "%s in %d has a %s proposal in state %s", acronym, year, p.Type, p.State)
	}
	return nil
}

// targetYears lists the registered years in (from, min(endYear, horizon)].
func targetYears(years *academicyear.Registry, from int, endYear *int, horizon int) ([]*types.AcademicYear, error) {
	last := horizon
	if endYear != nil && *endYear < last {
		last = *endYear
	}
	if last <= from {
		return nil, nil
	}
	if _, err := years.Get(from + 1); err != nil {
		return nil, nil
	}
	if lastAY, err := years.Last(); err == nil && lastAY.Year < last {
		last = lastAY.Year
	}
	return years.Range(from+1, last)
}

func failure(year int, acronym string, err error) Failure {
	return Failure{
		Year:    year,
		Acronym: acronym,
		Code:    string(domainagg.CodeOf(err)),
		Error:   domainagg.MessageOf(err),
	}
}
