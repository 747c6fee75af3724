package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/http/response"
	"github.com/osisteam/catalogue-backend/internal/services"
)

type PostponementHandler struct {
	postponement services.PostponementService
}

func NewPostponementHandler(postponement services.PostponementService) *PostponementHandler {
	return &PostponementHandler{postponement: postponement}
}

// POST /api/learning-unit-years/:id/postponement
func (h *PostponementHandler) Propagate(c *gin.Context) {
	luyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	report, err := h.postponement.Propagate(c.Request.Context(), actor, luyID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"postponement": report})
}

// GET /api/learning-unit-years/:id/postponement/conflicts
func (h *PostponementHandler) Conflicts(c *gin.Context) {
	luyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	conflicts, err := h.postponement.Conflicts(c.Request.Context(), luyID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []string{}
	}
	response.RespondOK(c, gin.H{"conflicts": conflicts})
}

// POST /api/postponement/auto
func (h *PostponementHandler) AutoPostpone(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !actor.Has(types.RoleCentralManager) {
		response.RespondError(c, http.StatusForbidden, "permission_denied", errors.New("only central managers can run the yearly postponement"))
		return
	}
	res, err := h.postponement.AutoPostpone(c.Request.Context())
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"horizon": res.Horizon,
		"reports": res.Reports,
		"skipped": res.Skipped,
		"errors":  res.Errors,
	})
}
