package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/osisteam/catalogue-backend/internal/domain/aggregates"
	types "github.com/osisteam/catalogue-backend/internal/domain/catalogue"
	"github.com/osisteam/catalogue-backend/internal/http/response"
	"github.com/osisteam/catalogue-backend/internal/platform/ctxutil"
	"github.com/osisteam/catalogue-backend/internal/platform/logger"
	"github.com/osisteam/catalogue-backend/internal/services"
)

const (
	HeaderActorID = "X-Actor-ID"
	actorKey      = "actor"
)

// ActorMiddleware resolves the acting person from the identity header set by
// the upstream gateway.
type ActorMiddleware struct {
	log      *logger.Logger
	identity services.IdentityProvider
}

func NewActorMiddleware(log *logger.Logger, identity services.IdentityProvider) *ActorMiddleware {
	return &ActorMiddleware{log: log.With("Middleware", "ActorMiddleware"), identity: identity}
}

func (am *ActorMiddleware) RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderActorID))
		id, err := strconv.ParseUint(raw, 10, 64)
		if raw == "" || err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
				Error: response.APIError{Message: "missing or invalid actor", Code: "unauthorized"},
			})
			return
		}
		actor, err := am.identity.Resolve(c.Request.Context(), uint(id))
		if err != nil {
			if domainagg.IsCode(err, domainagg.CodeNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorEnvelope{
					Error: response.APIError{Message: "unknown actor", Code: "unauthorized"},
				})
				return
			}
			am.log.Error("resolve actor failed", "actor_id", id, "error", err)
			response.RespondAggregateError(c, err)
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil {
			rd = &ctxutil.RequestData{}
			ctx = ctxutil.WithRequestData(ctx, rd)
			c.Request = c.Request.WithContext(ctx)
		}
		rd.ActorID = actor.ID()
		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the actor set by RequireActor.
func ActorFrom(c *gin.Context) (types.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return types.Actor{}, false
	}
	actor, ok := v.(types.Actor)
	return actor, ok
}
