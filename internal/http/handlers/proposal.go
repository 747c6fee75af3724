package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/http/response"
	"github.com/osisteam/catalogue-backend/internal/services"
)

type ProposalHandler struct {
	proposals services.ProposalService
}

func NewProposalHandler(proposals services.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals}
}

type proposeModificationRequest struct {
	Edits          types.ProposalEdits `json:"edits"`
	FolderID       int                 `json:"folder_id" binding:"gte=0"`
	OwningEntityID uint                `json:"owning_entity_id" binding:"required"`
}

type proposeSuppressionRequest struct {
	TargetEndYear  int  `json:"target_end_year" binding:"required"`
	FolderID       int  `json:"folder_id" binding:"gte=0"`
	OwningEntityID uint `json:"owning_entity_id" binding:"required"`
}

type proposeCreationRequest struct {
	Data           types.UnitCreation `json:"data"`
	FolderID       int                `json:"folder_id" binding:"gte=0"`
	OwningEntityID uint               `json:"owning_entity_id" binding:"required"`
}

type editProposalRequest struct {
	Edits types.ProposalEdits `json:"edits"`
}

type stateRequest struct {
	State types.ProposalState `json:"state" binding:"required"`
}

type batchRequest struct {
	IDs      []uint              `json:"ids" binding:"required,min=1"`
	State    types.ProposalState `json:"state,omitempty"`
	Criteria map[string]string   `json:"criteria,omitempty"`
}

func resultPayload(res domainagg.ProposalResult) gin.H {
	out := gin.H{
		"outcome":  res.Outcome,
		"proposal": res.Proposal,
		"messages": res.Messages,
	}
	if res.Messages == nil {
		out["messages"] = []string{}
	}
	if res.LearningUnitYear != nil {
		out["learning_unit_year"] = res.LearningUnitYear
	}
	if res.Postponement != nil {
		out["postponement"] = res.Postponement
	}
	return out
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// POST /api/learning-unit-years/:id/proposals/modification
func (h *ProposalHandler) ProposeModification(c *gin.Context) {
	luyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req proposeModificationRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.proposals.ProposeModification(c.Request.Context(), domainagg.ProposeModificationInput{
		LearningUnitYearID: luyID,
		Edits:              req.Edits,
		FolderID:           req.FolderID,
		OwningEntityID:     req.OwningEntityID,
		Actor:              actor,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, resultPayload(res))
}

// POST /api/learning-unit-years/:id/proposals/suppression
func (h *ProposalHandler) ProposeSuppression(c *gin.Context) {
	luyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req proposeSuppressionRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.proposals.ProposeSuppression(c.Request.Context(), domainagg.ProposeSuppressionInput{
		LearningUnitYearID: luyID,
		TargetEndYear:      req.TargetEndYear,
		FolderID:           req.FolderID,
		OwningEntityID:     req.OwningEntityID,
		Actor:              actor,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, resultPayload(res))
}

// POST /api/proposals/creation
func (h *ProposalHandler) ProposeCreation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req proposeCreationRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.proposals.ProposeCreation(c.Request.Context(), domainagg.ProposeCreationInput{
		Data:           req.Data,
		FolderID:       req.FolderID,
		OwningEntityID: req.OwningEntityID,
		Actor:          actor,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondCreated(c, resultPayload(res))
}

// GET /api/proposals/:id
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.proposals.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"proposal": p})
}

// GET /api/learning-unit-years/:id/proposal
func (h *ProposalHandler) GetForLearningUnitYear(c *gin.Context) {
	luyID, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.proposals.FindForLearningUnitYear(c.Request.Context(), luyID)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"proposal": p})
}

// GET /api/entities/:id/proposals?with_children=true
func (h *ProposalHandler) ListForEntity(c *gin.Context) {
	entityID, ok := parseID(c, "id")
	if !ok {
		return
	}
	withChildren, _ := strconv.ParseBool(c.DefaultQuery("with_children", "false"))
	out, err := h.proposals.FindByEntity(c.Request.Context(), entityID, withChildren)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"proposals": out})
}

// GET /api/proposals?year=&acronym=&type=&state=&folder_id=&entity_folder=&with_children=&tutor=
func (h *ProposalHandler) Search(c *gin.Context) {
	f, err := searchFromQuery(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", err)
		return
	}
	out, err := h.proposals.Search(c.Request.Context(), f)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"proposals": out, "criteria": f.Criteria()})
}

func searchFromQuery(c *gin.Context) (services.ProposalSearch, error) {
	var f services.ProposalSearch
	year, err := queryInt(c, "year")
	if err != nil {
		return f, err
	}
	if year != nil {
		f.Year = *year
	}
	if f.FolderID, err = queryInt(c, "folder_id"); err != nil {
		return f, err
	}
	entity, err := queryInt(c, "entity_folder")
	if err != nil {
		return f, err
	}
	if entity != nil {
		if *entity <= 0 {
			return f, errors.New("invalid entity_folder")
		}
		f.EntityFolder = uint(*entity)
	}
	f.WithChildren, _ = strconv.ParseBool(c.DefaultQuery("with_children", "false"))
	f.Acronym = strings.TrimSpace(c.Query("acronym"))
	f.Type = types.ProposalType(strings.ToUpper(strings.TrimSpace(c.Query("type"))))
	f.State = types.ProposalState(strings.ToUpper(strings.TrimSpace(c.Query("state"))))
	if f.State != "" && !f.State.Valid() {
		return f, errors.New("invalid state")
	}
	f.Tutor = strings.TrimSpace(c.Query("tutor"))
	return f, nil
}

// PATCH /api/proposals/:id
func (h *ProposalHandler) EditProposal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req editProposalRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.proposals.EditProposal(c.Request.Context(), domainagg.EditProposalInput{
		ProposalID: id,
		Edits:      req.Edits,
		Actor:      actor,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, resultPayload(res))
}

// POST /api/proposals/:id/state
func (h *ProposalHandler) ModifyState(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req stateRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.proposals.ModifyState(c.Request.Context(), domainagg.ModifyStateInput{
		ProposalID: id,
		State:      req.State,
		Actor:      actor,
	})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, resultPayload(res))
}

// POST /api/proposals/:id/cancel
func (h *ProposalHandler) Cancel(c *gin.Context) {
	h.action(c, h.proposals.Cancel)
}

// POST /api/proposals/:id/consolidate
func (h *ProposalHandler) Consolidate(c *gin.Context) {
	h.action(c, h.proposals.Consolidate)
}

func (h *ProposalHandler) action(c *gin.Context, fn func(ctx context.Context, in domainagg.ProposalActionInput) (domainagg.ProposalResult, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	res, err := fn(c.Request.Context(), domainagg.ProposalActionInput{ProposalID: id, Actor: actor})
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, resultPayload(res))
}

// POST /api/proposals/batch/cancel
func (h *ProposalHandler) BatchCancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req batchRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.proposals.CancelProposals(c.Request.Context(), actor, req.IDs, req.Criteria)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": out})
}

// POST /api/proposals/batch/consolidate
func (h *ProposalHandler) BatchConsolidate(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req batchRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.proposals.ConsolidateProposals(c.Request.Context(), actor, req.IDs, req.Criteria)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": out})
}

// POST /api/proposals/batch/state
func (h *ProposalHandler) BatchForceState(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req batchRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.proposals.ForceState(c.Request.Context(), actor, req.IDs, req.State, req.Criteria)
	if err != nil {
		response.RespondAggregateError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"result": out})
}
