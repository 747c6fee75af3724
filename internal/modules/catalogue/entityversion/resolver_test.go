package entityversion

import (
	"context"
	"testing"
	"time"

	"github.com/osisteam/catalogue-backend/internal/data/repos/testutil"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func ptr(v uint) *uint { return &v }

func ptrTime(t time.Time) *time.Time { return &t }

// sector(1) > faculty(2) > school(3); school moves under faculty 4 in 2020.
func forest() *Resolver {
	return New([]*types.EntityVersion{
		{ID: 1, EntityID: 1, Acronym: "SST", EntityType: types.EntitySector, StartDate: date(2000, 1, 1)},
		{ID: 2, EntityID: 2, ParentID: ptr(1), Acronym: "AGRO", EntityType: types.EntityFaculty, StartDate: date(2000, 1, 1)},
		{ID: 3, EntityID: 3, ParentID: ptr(2), Acronym: "BIR", EntityType: types.EntitySchool, StartDate: date(2000, 1, 1), EndDate: ptrTime(date(2020, 1, 1))},
		{ID: 4, EntityID: 3, ParentID: ptr(4), Acronym: "BIRA", EntityType: types.EntitySchool, StartDate: date(2020, 1, 1)},
		{ID: 5, EntityID: 4, ParentID: ptr(1), Acronym: "SC", EntityType: types.EntityFaculty, StartDate: date(2000, 1, 1)},
	})
}

func TestAtAndMostRecentAcronym(t *testing.T) {
	r := forest()
	if v := r.At(3, date(2019, 6, 1)); v == nil || v.Acronym != "BIR" {
		t.Fatalf("At 2019: %+v", v)
	}
	if v := r.At(3, date(2020, 1, 1)); v == nil || v.Acronym != "BIRA" {
		t.Fatalf("At 2020 boundary belongs to the next version: %+v", v)
	}
	if v := r.At(3, date(1999, 1, 1)); v != nil {
		t.Fatalf("expected no version before history, got %+v", v)
	}
	if got := r.MostRecentAcronym(3); got != "BIRA" {
		t.Fatalf("MostRecentAcronym=%q", got)
	}
}

func TestFindFacultyFollowsDate(t *testing.T) {
	r := forest()
	ay2018 := &types.AcademicYear{Year: 2018, StartDate: date(2018, 9, 15)}
	ay2021 := &types.AcademicYear{Year: 2021, StartDate: date(2021, 9, 15)}
	if f := r.FindFaculty(3, ay2018); f == nil || f.EntityID != 2 {
		t.Fatalf("2018 faculty: %+v", f)
	}
	if f := r.FindFaculty(3, ay2021); f == nil || f.EntityID != 4 {
		t.Fatalf("2021 faculty: %+v", f)
	}
	if f := r.FindFaculty(1, ay2021); f != nil {
		t.Fatalf("sector has no faculty above it, got %+v", f)
	}
}

func TestDescendants(t *testing.T) {
	r := forest()
	got := r.Descendants(1, date(2018, 1, 1))
	if len(got) != 3 {
		t.Fatalf("expected 3 descendants of the sector, got %v", got)
	}
	if !r.IsDescendant(3, 2, date(2018, 1, 1)) {
		t.Fatalf("BIR should sit under AGRO in 2018")
	}
	if r.IsDescendant(3, 2, date(2021, 1, 1)) {
		t.Fatalf("BIRA moved under SC in 2020")
	}
	if r.IsDescendant(2, 2, date(2021, 1, 1)) {
		t.Fatalf("an entity is not its own descendant")
	}
}

func TestCheckRejectsConflicts(t *testing.T) {
	r := forest()
	cases := []struct {
		name string
		v    *types.EntityVersion
	}{
		{"overlap same entity", &types.EntityVersion{EntityID: 2, Acronym: "AGRO2", StartDate: date(2010, 1, 1)}},
		{"acronym reuse", &types.EntityVersion{EntityID: 9, Acronym: "sc", StartDate: date(2010, 1, 1)}},
		{"self parent", &types.EntityVersion{EntityID: 9, ParentID: ptr(9), Acronym: "SELF", StartDate: date(2010, 1, 1)}},
	}
	for _, tc := range cases {
		err := r.Check(tc.v)
		if !domainagg.IsCode(err, domainagg.CodeVersionConflict) {
			t.Fatalf("%s: expected version_conflict, got %v", tc.name, err)
		}
	}
}

func TestCheckDetectsParentCycle(t *testing.T) {
	r := New([]*types.EntityVersion{
		{EntityID: 1, Acronym: "A", StartDate: date(2000, 1, 1), EndDate: ptrTime(date(2010, 1, 1))},
		{EntityID: 2, ParentID: ptr(1), Acronym: "B", StartDate: date(2000, 1, 1)},
	})
	err := r.Check(&types.EntityVersion{EntityID: 1, ParentID: ptr(2), Acronym: "A2", StartDate: date(2010, 1, 1)})
	if !domainagg.IsCode(err, domainagg.CodeVersionConflict) {
		t.Fatalf("expected cycle to be rejected, got %v", err)
	}
	if err := r.Check(&types.EntityVersion{EntityID: 3, ParentID: ptr(2), Acronym: "C", StartDate: date(2010, 1, 1)}); err != nil {
		t.Fatalf("valid child rejected: %v", err)
	}
}

func TestInsertPersists(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	rs := testutil.Repos(t, db)
	root := testutil.SeedEntity(t, ctx, db, "ROOT", types.EntitySector, nil)

	v := &types.EntityVersion{EntityID: 99, ParentID: &root.ID, Acronym: "CHILD", EntityType: types.EntityFaculty, StartDate: date(2001, 1, 1)}
	if _, err := Insert(dbctx.Context{Ctx: ctx}, rs.Entity, v); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	dup := &types.EntityVersion{EntityID: 100, Acronym: "child", StartDate: date(2005, 1, 1)}
	if _, err := Insert(dbctx.Context{Ctx: ctx}, rs.Entity, dup); !domainagg.IsCode(err, domainagg.CodeVersionConflict) {
		t.Fatalf("expected version_conflict, got %v", err)
	}
}
