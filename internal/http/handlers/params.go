package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/http/middleware"
	"github.com/osisteam/catalogue-backend/internal/http/response"
)

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, errors.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

func requireActor(c *gin.Context) (types.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing actor"))
		return types.Actor{}, false
	}
	return actor, true
}

func queryInt(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}
