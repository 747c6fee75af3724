package graph

import (
	"strings"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/shopspring/decimal"
)

type CreateInput struct {
	AcademicYear *types.AcademicYear
	// LearningUnit reuses an identity; nil creates one starting in AcademicYear.
	LearningUnit *types.LearningUnit
	// EndYear of a newly created identity.
	EndYear *int

	Acronym              string
	Subtype              types.Subtype
	SpecificTitle        string
	SpecificTitleEnglish string
	Credits              decimal.Decimal
	Status               bool
	Session              string
	Quadrimester         string
	InternshipSubtype    *string
	LanguageID           *uint
	CampusID             *uint
	AttributionProcedure string
	Periodicity          types.Periodicity
	FacultyRemark        string
	OtherRemark          string

	// Container data, FULL only.
	ContainerType      types.ContainerType
	CommonTitle        string
	CommonTitleEnglish string
	InCharge           bool
	Attachments        map[types.EntityContainerYearType]uint

	// FullLearningUnitYearID is the FULL whose container a PARTIM joins.
	FullLearningUnitYearID uint
}

// Create builds a unit year and its default components atomically within dbc.
func (s *Service) Create(dbc dbctx.Context, in CreateInput) (*Graph, error) {
	const op = "LearningUnitGraph.Create"
	if in.AcademicYear == nil || in.AcademicYear.ID == 0 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "academic year is required", nil)
	}
	if in.Subtype == "" {
		in.Subtype = types.SubtypeFull
	}
	if in.Periodicity == "" {
		in.Periodicity = types.PeriodicityAnnual
	}
	if !in.Periodicity.Valid() {
		return nil, domainagg.Errorf(domainagg.CodeValidation, op, "invalid periodicity %q", in.Periodicity)
	}
	if err := ValidateCredits(op, in.Credits); err != nil {
		return nil, err
	}
	in.Acronym = NormalizeAcronym(in.Acronym)

	var (
		lcy  *types.LearningContainerYear
		full *types.LearningUnitYear
		err  error
	)
	switch in.Subtype {
	case types.SubtypeFull:
		if err := ValidateAcronym(op, in.Acronym, in.Subtype, ""); err != nil {
			return nil, err
		}
		if !in.ContainerType.Valid() {
			return nil, domainagg.Errorf(domainagg.CodeValidation, op, "invalid container type %q", in.ContainerType)
		}
		if err := ValidateAttachments(op, in.Attachments); err != nil {
			return nil, err
		}
	case types.SubtypePartim:
		full, err = s.repos.LearningUnitYear.GetByID(dbc, in.FullLearningUnitYearID)
		if err != nil {
			return nil, err
		}
		if full == nil || !full.IsFull() {
			return nil, domainagg.Errorf(domainagg.CodeValidation, op, "partim requires an existing FULL learning unit year")
		}
		if full.AcademicYearID != in.AcademicYear.ID {
			return nil, domainagg.Errorf(domainagg.CodeValidation, op, "partim and FULL must share the academic year")
		}
		if err := ValidateAcronym(op, in.Acronym, in.Subtype, full.Acronym); err != nil {
			return nil, err
		}
		if in.Credits.GreaterThan(full.Credits) {
			return nil, domainagg.Errorf(domainagg.CodeValidation, op, "partim credits %s exceed FULL credits %s",
				in.Credits.String(), full.Credits.String())
		}
		lcy = full.LearningContainerYear
		in.ContainerType = lcy.ContainerType
	default:
		return nil, domainagg.Errorf(domainagg.CodeValidation, op, "invalid subtype %q", in.Subtype)
	}
	if err := ValidateInternshipSubtype(op, in.ContainerType, in.InternshipSubtype); err != nil {
		return nil, err
	}
	if err := s.ensureAcronymFree(dbc, op, in.Acronym, in.AcademicYear.ID, 0); err != nil {
		return nil, err
	}

	lu := in.LearningUnit
	if lu == nil {
		lu = &types.LearningUnit{
			StartYear:     in.AcademicYear.Year,
			EndYear:       in.EndYear,
			Periodicity:   in.Periodicity,
			FacultyRemark: in.FacultyRemark,
			OtherRemark:   in.OtherRemark,
		}
		if lu.EndYear != nil && *lu.EndYear < lu.StartYear {
			return nil, domainagg.Errorf(domainagg.CodeValidation, op, "end year %d precedes start year %d", *lu.EndYear, lu.StartYear)
		}
		if _, err := s.repos.LearningUnit.Create(dbc, lu); err != nil {
			return nil, err
		}
	}

	if lcy == nil {
		lcy = &types.LearningContainerYear{
			AcademicYearID:     in.AcademicYear.ID,
			Acronym:            in.Acronym,
			CommonTitle:        strings.TrimSpace(in.CommonTitle),
			CommonTitleEnglish: strings.TrimSpace(in.CommonTitleEnglish),
			ContainerType:      in.ContainerType,
			InCharge:           in.InCharge,
			LanguageID:         in.LanguageID,
			CampusID:           in.CampusID,
		}
		if _, err := s.repos.LearningContainerYear.Create(dbc, lcy); err != nil {
			return nil, err
		}
		for _, t := range types.EntityContainerYearTypes {
			id := in.Attachments[t]
			if id == 0 {
				continue
			}
			if _, err := s.repos.EntityContainerYear.Create(dbc, &types.EntityContainerYear{
				LearningContainerYearID: lcy.ID,
				EntityID:                id,
				Type:                    t,
			}); err != nil {
				return nil, err
			}
		}
	}

	luy := &types.LearningUnitYear{
		LearningUnitID:          lu.ID,
		AcademicYearID:          in.AcademicYear.ID,
		LearningContainerYearID: lcy.ID,
		Acronym:                 in.Acronym,
		Subtype:                 in.Subtype,
		SpecificTitle:           strings.TrimSpace(in.SpecificTitle),
		SpecificTitleEnglish:    strings.TrimSpace(in.SpecificTitleEnglish),
		Credits:                 in.Credits,
		Status:                  in.Status,
		Session:                 in.Session,
		Quadrimester:            in.Quadrimester,
		InternshipSubtype:       in.InternshipSubtype,
		LanguageID:              in.LanguageID,
		CampusID:                in.CampusID,
		AttributionProcedure:    in.AttributionProcedure,
		Periodicity:             in.Periodicity,
	}
	if _, err := s.repos.LearningUnitYear.Create(dbc, luy); err != nil {
		return nil, err
	}
	if err := s.createDefaultComponents(dbc, luy, lcy); err != nil {
		return nil, err
	}

	s.log.Debug("Created learning unit year", "acronym", luy.Acronym, "year", in.AcademicYear.Year, "subtype", luy.Subtype)
	return s.Load(dbc, luy.ID)
}

func (s *Service) createDefaultComponents(dbc dbctx.Context, luy *types.LearningUnitYear, lcy *types.LearningContainerYear) error {
	policy, _ := types.PolicyFor(lcy.ContainerType)
	attachments, err := s.repos.EntityContainerYear.ListByContainer(dbc, lcy.ID)
	if err != nil {
		return err
	}
	for _, tmpl := range policy.Components {
		c := &types.LearningComponentYear{
			LearningContainerYearID: lcy.ID,
			Type:                    tmpl.Type,
			Acronym:                 tmpl.Acronym,
			PlannedClasses:          1,
			HourlyVolumeTotalAnnual: decimal.Zero,
			HourlyVolumePartialQ1:   decimal.Zero,
			HourlyVolumePartialQ2:   decimal.Zero,
		}
		if _, err := s.repos.LearningComponentYear.Create(dbc, c); err != nil {
			return err
		}
		if _, err := s.repos.LearningUnitComponent.Create(dbc, &types.LearningUnitComponent{
			LearningUnitYearID:      luy.ID,
			LearningComponentYearID: c.ID,
		}); err != nil {
			return err
		}
		for _, a := range attachments {
			if !a.Type.IsRequirement() {
				continue
			}
			if _, err := s.repos.EntityComponentYear.Create(dbc, &types.EntityComponentYear{
				EntityContainerYearID:   a.ID,
				LearningComponentYearID: c.ID,
				RepartitionVolume:       decimal.Zero,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ensureAcronymFree rejects an acronym already carried by another unit year
// of the same academic year.
func (s *Service) ensureAcronymFree(dbc dbctx.Context, op, acronym string, academicYearID, exceptLearningUnitID uint) error {
	rows, err := s.repos.LearningUnitYear.ListByAcronymPrefix(dbc, acronym, academicYearID)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if NormalizeAcronym(r.Acronym) == acronym && r.LearningUnitID != exceptLearningUnitID {
			return domainagg.Errorf(domainagg.CodeValidation, op, "acronym %s already exists in this academic year", acronym)
		}
	}
	return nil
}

// EnsureAcronymFree is ensureAcronymFree for callers renaming a unit.
func (s *Service) EnsureAcronymFree(dbc dbctx.Context, op, acronym string, academicYearID, learningUnitID uint) error {
	return s.ensureAcronymFree(dbc, op, NormalizeAcronym(acronym), academicYearID, learningUnitID)
}
