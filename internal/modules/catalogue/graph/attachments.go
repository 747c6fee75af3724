package graph

import (
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/shopspring/decimal"
)

// ReconcileAttachments makes the container's attachments equal want (a zero
// or missing id removes the role). Requirement-type attachments end up with
// one repartition per component of the container; removed attachments take
// their repartitions with them.
func (s *Service) ReconcileAttachments(dbc dbctx.Context, learningContainerYearID uint, want map[types.EntityContainerYearType]uint) error {
	current, err := s.repos.EntityContainerYear.ListByContainer(dbc, learningContainerYearID)
	if err != nil {
		return err
	}
	byType := make(map[types.EntityContainerYearType]*types.EntityContainerYear, len(current))
	for _, ecy := range current {
		byType[ecy.Type] = ecy
	}
	comps, err := s.repos.LearningComponentYear.ListByContainer(dbc, learningContainerYearID)
	if err != nil {
		return err
	}

	for _, t := range types.EntityContainerYearTypes {
		wantID := want[t]
		cur := byType[t]
		switch {
		case wantID == 0 && cur == nil:
			continue
		case wantID == 0:
			if err := s.repos.EntityComponentYear.DeleteByAttachments(dbc, []uint{cur.ID}); err != nil {
				return err
			}
			if err := s.repos.EntityContainerYear.DeleteByIDs(dbc, []uint{cur.ID}); err != nil {
				return err
			}
			continue
		case cur == nil:
			cur = &types.EntityContainerYear{LearningContainerYearID: learningContainerYearID, EntityID: wantID, Type: t}
			if _, err := s.repos.EntityContainerYear.Create(dbc, cur); err != nil {
				return err
			}
		case cur.EntityID != wantID:
			if err := s.repos.EntityContainerYear.UpdateEntity(dbc, cur.ID, wantID); err != nil {
				return err
			}
		}
		if t.IsRequirement() {
			if err := s.ensureRepartitions(dbc, cur, comps); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) ensureRepartitions(dbc dbctx.Context, ecy *types.EntityContainerYear, comps []*types.LearningComponentYear) error {
	for _, c := range comps {
		found := false
		for _, ecoy := range c.EntityComponentYears {
			if ecoy != nil && ecoy.EntityContainerYearID == ecy.ID {
				found = true
				break
			}
		}
		if found {
			continue
		}
		if _, err := s.repos.EntityComponentYear.Create(dbc, &types.EntityComponentYear{
			EntityContainerYearID:   ecy.ID,
			LearningComponentYearID: c.ID,
			RepartitionVolume:       decimal.Zero,
		}); err != nil {
			return err
		}
	}
	return nil
}
