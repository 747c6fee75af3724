// Package edits validates the payload of a modification proposal and applies
// it to a learning unit graph.
package edits

import (
	"github.com/go-playground/validator/v10"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
)

type (
	Edits         = types.ProposalEdits
	ComponentEdit = types.ComponentEdit
)

var quadrimesters = map[string]bool{"Q1": true, "Q2": true, "Q1&2": true, "Q1|2": true, "Q3": true}

// NewValidator returns a validator knowing the catalogue's custom tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("periodicity", func(fl validator.FieldLevel) bool {
		return types.Periodicity(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("quadrimester", func(fl validator.FieldLevel) bool {
		return quadrimesters[fl.Field().String()]
	})
	_ = v.RegisterValidation("container_type", func(fl validator.FieldLevel) bool {
		return types.ContainerType(fl.Field().String()).Valid()
	})
	return v
}
