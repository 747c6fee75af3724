package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Postgres(t *testing.T) {
	cases := []struct {
		pg   *pgconn.PgError
		want domainagg.ErrorCode
	}{
		{&pgconn.PgError{Code: "23505", TableName: "proposal_learning_unit"}, domainagg.CodeProposalExists},
		{&pgconn.PgError{Code: "23503"}, domainagg.CodeInUse},
		{&pgconn.PgError{Code: "55P03"}, domainagg.CodeConcurrent},
		{&pgconn.PgError{Code: "40001"}, domainagg.CodeConcurrent},
	}
	for _, tc := range cases {
		if got := domainagg.CodeOf(MapError("op", tc.pg)); got != tc.want {
			t.Fatalf("sqlstate %s: got %q want %q", tc.pg.Code, got, tc.want)
		}
	}
}

func TestMapError_SQLiteMessages(t *testing.T) {
	if got := domainagg.CodeOf(MapError("op", errors.New("UNIQUE constraint failed: proposal_learning_unit.learning_unit_year_id"))); got != domainagg.CodeProposalExists {
		t.Fatalf("unique proposal: got %q", got)
	}
	if got := domainagg.CodeOf(MapError("op", errors.New("database is locked"))); got != domainagg.CodeConcurrent {
		t.Fatalf("locked: got %q", got)
	}
	if got := domainagg.CodeOf(MapError("op", context.DeadlineExceeded)); got != domainagg.CodeConcurrent {
		t.Fatalf("deadline: got %q", got)
	}
	if got := domainagg.CodeOf(MapError("op", errors.New("boom"))); got != domainagg.CodeInternal {
		t.Fatalf("unknown: got %q", got)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeConcurrent, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}
