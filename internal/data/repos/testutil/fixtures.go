package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

// EpochDate is the start date of seeded entity versions.
var EpochDate = time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)

// SeedAcademicYears registers every year in [from, to]; year y runs from
// September 15 of y to September 14 of y+1.
func SeedAcademicYears(tb testing.TB, ctx context.Context, tx *gorm.DB, from, to int) map[int]*types.AcademicYear {
	tb.Helper()
	out := make(map[int]*types.AcademicYear, to-from+1)
	for y := from; y <= to; y++ {
		ay := &types.AcademicYear{
			Year:      y,
			StartDate: time.Date(y, time.September, 15, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(y+1, time.September, 14, 23, 59, 59, 0, time.UTC),
		}
		if err := tx.WithContext(ctx).Create(ay).Error; err != nil {
			tb.Fatalf("seed academic year %d: %v", y, err)
		}
		out[y] = ay
	}
	return out
}

// SeedEntity creates an entity with one open-ended version.
func SeedEntity(tb testing.TB, ctx context.Context, tx *gorm.DB, acronym string, typ types.EntityType, parentID *uint) *types.Entity {
	tb.Helper()
	e := &types.Entity{ExternalID: acronym}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed entity: %v", err)
	}
	SeedEntityVersion(tb, ctx, tx, e.ID, acronym, typ, parentID, EpochDate, nil)
	return e
}

func SeedEntityVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, entityID uint, acronym string, typ types.EntityType, parentID *uint, start time.Time, end *time.Time) *types.EntityVersion {
	tb.Helper()
	v := &types.EntityVersion{
		EntityID:   entityID,
		ParentID:   parentID,
		Acronym:    acronym,
		Title:      acronym,
		EntityType: typ,
		StartDate:  start,
		EndDate:    end,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed entity version: %v", err)
	}
	return v
}

// SeedPerson creates a person with roles and entity attachments.
func SeedPerson(tb testing.TB, ctx context.Context, tx *gorm.DB, lastName string, roles []types.Role, attachments ...types.PersonEntity) *types.Person {
	tb.Helper()
	p := &types.Person{FirstName: "T", LastName: lastName, Email: lastName + "@example.org"}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed person: %v", err)
	}
	for _, r := range roles {
		if err := tx.WithContext(ctx).Create(&types.PersonRole{PersonID: p.ID, Role: r}).Error; err != nil {
			tb.Fatalf("seed person role: %v", err)
		}
	}
	for i := range attachments {
		a := attachments[i]
		a.ID = 0
		a.PersonID = p.ID
		if err := tx.WithContext(ctx).Create(&a).Error; err != nil {
			tb.Fatalf("seed person entity: %v", err)
		}
	}
	return p
}

// CourseSeed describes one learning unit year written directly to the tables.
type CourseSeed struct {
	AcademicYear  *types.AcademicYear
	LearningUnit  *types.LearningUnit
	Container     *types.LearningContainerYear
	Acronym       string
	Subtype       types.Subtype
	ContainerType types.ContainerType
	CommonTitle   string
	SpecificTitle string
	Credits       decimal.Decimal

	RequirementEntityID uint
	AllocationEntityID  uint

	// Volumes are applied to every default component (total, q1, q2, planned classes).
	Total, Q1, Q2  decimal.Decimal
	PlannedClasses int
}

// SeedCourse creates the unit (when cs.LearningUnit is nil), the container
// (when cs.Container is nil) with its two mandatory attachments, the default
// components of the container type, and the unit year linked to them.
func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, cs CourseSeed) *types.LearningUnitYear {
	tb.Helper()
	t := tx.WithContext(ctx)
	if cs.AcademicYear == nil {
		tb.Fatalf("seed course: academic year required")
	}
	if cs.Subtype == "" {
		cs.Subtype = types.SubtypeFull
	}
	if cs.ContainerType == "" {
		cs.ContainerType = types.ContainerCourse
	}
	if cs.Credits.IsZero() {
		cs.Credits = decimal.NewFromInt(5)
	}
	if cs.PlannedClasses == 0 {
		cs.PlannedClasses = 1
	}
	if cs.Total.IsZero() && cs.Q1.IsZero() && cs.Q2.IsZero() {
		cs.Total, cs.Q1, cs.Q2 = decimal.NewFromInt(30), decimal.NewFromInt(15), decimal.NewFromInt(15)
	}

	lu := cs.LearningUnit
	if lu == nil {
		lu = &types.LearningUnit{StartYear: cs.AcademicYear.Year, Periodicity: types.PeriodicityAnnual}
		if err := t.Create(lu).Error; err != nil {
			tb.Fatalf("seed learning unit: %v", err)
		}
	}

	lcy := cs.Container
	if lcy == nil {
		lcy = &types.LearningContainerYear{
			AcademicYearID: cs.AcademicYear.ID,
			Acronym:        cs.Acronym,
			CommonTitle:    cs.CommonTitle,
			ContainerType:  cs.ContainerType,
			InCharge:       true,
		}
		if err := t.Omit("EntityContainerYears").Create(lcy).Error; err != nil {
			tb.Fatalf("seed container: %v", err)
		}
		for _, a := range []types.EntityContainerYear{
			{LearningContainerYearID: lcy.ID, EntityID: cs.RequirementEntityID, Type: types.RequirementEntity},
			{LearningContainerYearID: lcy.ID, EntityID: cs.AllocationEntityID, Type: types.AllocationEntity},
		} {
			a := a
			if a.EntityID == 0 {
				continue
			}
			if err := t.Create(&a).Error; err != nil {
				tb.Fatalf("seed attachment: %v", err)
			}
		}
	}

	luy := &types.LearningUnitYear{
		LearningUnitID:          lu.ID,
		AcademicYearID:          cs.AcademicYear.ID,
		LearningContainerYearID: lcy.ID,
		Acronym:                 cs.Acronym,
		Subtype:                 cs.Subtype,
		SpecificTitle:           cs.SpecificTitle,
		Credits:                 cs.Credits,
		Status:                  true,
		Periodicity:             lu.Periodicity,
	}
	if err := t.Omit("LearningUnit", "AcademicYear", "LearningContainerYear").Create(luy).Error; err != nil {
		tb.Fatalf("seed learning unit year: %v", err)
	}

	var attachments []*types.EntityContainerYear
	if err := t.Where("learning_container_year_id = ?", lcy.ID).Find(&attachments).Error; err != nil {
		tb.Fatalf("seed load attachments: %v", err)
	}
	policy, _ := types.PolicyFor(cs.ContainerType)
	for _, tmpl := range policy.Components {
		c := &types.LearningComponentYear{
			LearningContainerYearID: lcy.ID,
			Type:                    tmpl.Type,
			Acronym:                 tmpl.Acronym,
			PlannedClasses:          cs.PlannedClasses,
			HourlyVolumeTotalAnnual: cs.Total,
			HourlyVolumePartialQ1:   cs.Q1,
			HourlyVolumePartialQ2:   cs.Q2,
		}
		if err := t.Omit("EntityComponentYears").Create(c).Error; err != nil {
			tb.Fatalf("seed component: %v", err)
		}
		if err := t.Omit("LearningComponentYear").Create(&types.LearningUnitComponent{
			LearningUnitYearID:      luy.ID,
			LearningComponentYearID: c.ID,
		}).Error; err != nil {
			tb.Fatalf("seed unit component: %v", err)
		}
		for _, a := range attachments {
			if !a.Type.IsRequirement() {
				continue
			}
			vol := decimal.Zero
			if a.Type == types.RequirementEntity {
				vol = cs.Total.Mul(decimal.NewFromInt(int64(cs.PlannedClasses)))
			}
			if err := t.Omit("EntityContainerYear").Create(&types.EntityComponentYear{
				EntityContainerYearID:   a.ID,
				LearningComponentYearID: c.ID,
				RepartitionVolume:       vol,
			}).Error; err != nil {
				tb.Fatalf("seed entity component: %v", err)
			}
		}
	}

	var loaded types.LearningUnitYear
	if err := t.
		Preload("AcademicYear").
		Preload("LearningUnit").
		Preload("LearningContainerYear.EntityContainerYears").
		First(&loaded, luy.ID).Error; err != nil {
		tb.Fatalf("seed reload: %v", err)
	}
	return &loaded
}

func SeedTeachingMaterial(tb testing.TB, ctx context.Context, tx *gorm.DB, learningUnitYearID uint, title string, order int) *types.TeachingMaterial {
	tb.Helper()
	tm := &types.TeachingMaterial{LearningUnitYearID: learningUnitYearID, Title: title, Mandatory: true, Order: order}
	if err := tx.WithContext(ctx).Create(tm).Error; err != nil {
		tb.Fatalf("seed teaching material: %v", err)
	}
	return tm
}

func SeedReference(tb testing.TB, ctx context.Context, tx *gorm.DB, learningUnitYearID uint, kind types.ReferenceKind, label string) *types.LearningUnitYearReference {
	tb.Helper()
	ref := &types.LearningUnitYearReference{LearningUnitYearID: learningUnitYearID, Kind: kind, Label: label}
	if err := tx.WithContext(ctx).Create(ref).Error; err != nil {
		tb.Fatalf("seed reference: %v", err)
	}
	return ref
}

func PtrUint(v uint) *uint { return &v }

func PtrInt(v int) *int { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
