package testutil

import (
	"context"
	"sync"

	"github.com/osisteam/catalogue-backend/internal/data/aggregates"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

// InjectedTxRunner wraps a transaction runner with failure injection. With
// Next nil the body runs without a database.
type InjectedTxRunner struct {
	mu sync.Mutex

	Next aggregates.TxRunner

	FailBegin      error
	FailBeforeBody error
	// FailCommit is returned after a successful body; a real Next rolls back.
	FailCommit error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	next := r.Next
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.count(&r.RollbackCalls)
		return failBeforeBody
	}

	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failCommit
	}
	var err error
	if next != nil {
		err = next.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.count(&r.RollbackCalls)
		return err
	}
	r.count(&r.CommitCalls)
	return nil
}

func (r *InjectedTxRunner) count(n *int) {
	r.mu.Lock()
	*n++
	r.mu.Unlock()
}
