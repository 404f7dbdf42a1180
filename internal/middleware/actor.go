package middleware

import (
	"github.com/gin-gonic/gin"

	"fleetflow/internal/service"
)

// ActorHeader names the user a request acts on behalf of.
const ActorHeader = "X-Actor"

// Actor stores the X-Actor header in the request context. Requests without
// the header act as service.SystemActor.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := c.GetHeader(ActorHeader); actor != "" {
			c.Request = c.Request.WithContext(service.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}
