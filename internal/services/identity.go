package services

import (
	"context"

	"github.com/osisteam/catalogue-backend/internal/data/repos"
	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/platform/dbctx"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
)

// IdentityProvider resolves a person id into an actor with roles and entity attachments.
type IdentityProvider interface {
	Resolve(ctx context.Context, personID uint) (types.Actor, error)
}

type identityProvider struct {
	log     *logger.Logger
	persons repos.PersonRepo
}

func NewIdentityProvider(baseLog *logger.Logger, persons repos.PersonRepo) IdentityProvider {
	return &identityProvider{log: baseLog.With("service", "IdentityProvider"), persons: persons}
}

func (s *identityProvider) Resolve(ctx context.Context, personID uint) (types.Actor, error) {
	const op = "Identity.Resolve"
	if personID == 0 {
		return types.Actor{}, domainagg.NewError(domainagg.CodeValidation, op, "actor id required", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := s.persons.GetByID(dbc, personID)
	if err != nil {
		return types.Actor{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if p == nil {
		return types.Actor{}, domainagg.Errorf(domainagg.CodeNotFound, op, "person %d not found", personID)
	}
	roles, err := s.persons.ListRoles(dbc, personID)
	if err != nil {
		return types.Actor{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	attachments, err := s.persons.ListEntities(dbc, personID)
	if err != nil {
		return types.Actor{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return types.Actor{Person: p, Roles: roles, Attachments: attachments}, nil
}
