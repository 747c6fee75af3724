package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	httpH "github.com/osisteam/catalogue-backend/internal/http/handlers"
	httpMW "github.com/osisteam/catalogue-backend/internal/http/middleware"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"github.com/osisteam/catalogue-backend/internal/services"
)

type stubIdentity map[uint]types.Actor

func (s stubIdentity) Resolve(_ context.Context, id uint) (types.Actor, error) {
	a, ok := s[id]
	if !ok {
		return types.Actor{}, domainagg.Errorf(domainagg.CodeNotFound, "Identity.Resolve", "person %d not found", id)
	}
	return a, nil
}

// stubProposals embeds the interface so unimplemented methods panic if reached.
type stubProposals struct {
	services.ProposalService
	lastModification domainagg.ProposeModificationInput
	lastSearch       services.ProposalSearch
	lastBatch        []uint
}

func (s *stubProposals) ProposeModification(_ context.Context, in domainagg.ProposeModificationInput) (domainagg.ProposalResult, error) {
	s.lastModification = in
	if in.OwningEntityID == 99 {
		return domainagg.ProposalResult{}, domainagg.Errorf(domainagg.CodeProposalExists, "Proposal.ProposeModification", "a proposal already exists")
	}
	return domainagg.ProposalResult{
		Outcome:  domainagg.OutcomeCreated,
		Proposal: &types.Proposal{ID: 11, LearningUnitYearID: in.LearningUnitYearID, Type: types.ProposalModification, State: types.StateFaculty},
	}, nil
}

func (s *stubProposals) Get(_ context.Context, id uint) (*types.Proposal, error) {
	if id != 11 {
		return nil, domainagg.Errorf(domainagg.CodeNotFound, "Proposal.Get", "proposal %d not found", id)
	}
	return &types.Proposal{ID: 11}, nil
}

func (s *stubProposals) Search(_ context.Context, f services.ProposalSearch) ([]*types.Proposal, error) {
	s.lastSearch = f
	return []*types.Proposal{}, nil
}

func (s *stubProposals) CancelProposals(_ context.Context, _ types.Actor, ids []uint, _ map[string]string) (services.BatchResult, error) {
	s.lastBatch = ids
	return services.BatchResult{"SUCCESS": {"ok"}, "ERROR": {}, "INFO": {}}, nil
}

type stubPostponement struct {
	services.PostponementService
	autoRuns int
}

func (s *stubPostponement) AutoPostpone(context.Context) (*services.AutoPostponeResult, error) {
	s.autoRuns++
	return &services.AutoPostponeResult{Horizon: 2030}, nil
}

func testRouter(props *stubProposals, post *stubPostponement) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ident := stubIdentity{
		1: {Person: &types.Person{ID: 1}, Roles: []types.Role{types.RoleFacultyManager}},
		2: {Person: &types.Person{ID: 2}, Roles: []types.Role{types.RoleCentralManager}},
	}
	return NewRouter(RouterConfig{
		Log:                 logger.Nop(),
		ActorMiddleware:     httpMW.NewActorMiddleware(logger.Nop(), ident),
		ProposalHandler:     httpH.NewProposalHandler(props),
		PostponementHandler: httpH.NewPostponementHandler(post),
		HealthHandler:       httpH.NewHealthHandler(nil),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(httpMW.HeaderActorID, actor)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	r := testRouter(&stubProposals{}, &stubPostponement{})
	if rec := do(t, r, http.MethodGet, "/healthcheck", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthcheck status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/proposals/11", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("api without actor status=%d", rec.Code)
	}
}

func TestProposeModificationRoute(t *testing.T) {
	props := &stubProposals{}
	r := testRouter(props, &stubPostponement{})

	rec := do(t, r, http.MethodPost, "/api/learning-unit-years/42/proposals/modification", "1", gin.H{
		"edits":            gin.H{"credits": "6", "specific_title": "Algebra"},
		"folder_id":        3,
		"owning_entity_id": 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	in := props.lastModification
	if in.LearningUnitYearID != 42 || in.FolderID != 3 || in.OwningEntityID != 5 || in.Actor.ID() != 1 {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.Edits.Credits == nil || in.Edits.Credits.String() != "6" || in.Edits.SpecificTitle == nil || *in.Edits.SpecificTitle != "Algebra" {
		t.Fatalf("unexpected edits: %+v", in.Edits)
	}
	var out struct {
		Outcome  string `json:"outcome"`
		Proposal struct {
			ID    uint   `json:"id"`
			State string `json:"state"`
		} `json:"proposal"`
		Messages []string `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Outcome != "created" || out.Proposal.ID != 11 || out.Proposal.State != "FACULTY" || out.Messages == nil {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = do(t, r, http.MethodPost, "/api/learning-unit-years/42/proposals/modification", "1", gin.H{"owning_entity_id": 99})
	if rec.Code != http.StatusConflict {
		t.Fatalf("existing proposal status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/learning-unit-years/x/proposals/modification", "1", gin.H{"owning_entity_id": 5}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/learning-unit-years/42/proposals/modification", "1", gin.H{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing owning entity status=%d", rec.Code)
	}
}

func TestGetProposalMapsNotFound(t *testing.T) {
	r := testRouter(&stubProposals{}, &stubPostponement{})
	if rec := do(t, r, http.MethodGet, "/api/proposals/11", "1", nil); rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	rec := do(t, r, http.MethodGet, "/api/proposals/12", "1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Error.Code != "not_found" || env.Error.Message != "proposal 12 not found" {
		t.Fatalf("unexpected envelope: %s", rec.Body.String())
	}
}

func TestSearchQueryParsing(t *testing.T) {
	props := &stubProposals{}
	r := testRouter(props, &stubPostponement{})
	rec := do(t, r, http.MethodGet, "/api/proposals?year=2024&acronym=LBIR&state=faculty&folder_id=3&entity_folder=7&with_children=true&tutor=smith", "1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	f := props.lastSearch
	if f.Year != 2024 || f.Acronym != "LBIR" || f.State != types.StateFaculty || f.FolderID == nil || *f.FolderID != 3 ||
		f.EntityFolder != 7 || !f.WithChildren || f.Tutor != "smith" {
		t.Fatalf("unexpected filter: %+v", f)
	}
	if rec := do(t, r, http.MethodGet, "/api/proposals?state=bogus", "1", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus state status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/proposals?year=abc", "1", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad year status=%d", rec.Code)
	}
}

func TestBatchCancelRoute(t *testing.T) {
	props := &stubProposals{}
	r := testRouter(props, &stubPostponement{})
	rec := do(t, r, http.MethodPost, "/api/proposals/batch/cancel", "2", gin.H{"ids": []uint{3, 4}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if len(props.lastBatch) != 2 {
		t.Fatalf("ids=%v", props.lastBatch)
	}
	if rec := do(t, r, http.MethodPost, "/api/proposals/batch/cancel", "2", gin.H{"ids": []uint{}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty ids status=%d", rec.Code)
	}
}

func TestAutoPostponeRequiresCentralManager(t *testing.T) {
	post := &stubPostponement{}
	r := testRouter(&stubProposals{}, post)
	if rec := do(t, r, http.MethodPost, "/api/postponement/auto", "1", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("faculty status=%d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/postponement/auto", "2", nil); rec.Code != http.StatusOK {
		t.Fatalf("central status=%d", rec.Code)
	}
	if post.autoRuns != 1 {
		t.Fatalf("runs=%d", post.autoRuns)
	}
}
