package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"

	"fleetflow/internal/service"
)

// NewRelicAttributes annotates the transaction started by nrgin with the
// acting user and reports handler errors. It must run after nrgin.Middleware
// and Actor; without a transaction it does nothing.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		txn.AddAttribute("actor", service.ActorFromContext(c.Request.Context()))
		if route := c.FullPath(); route != "" {
			txn.AddAttribute("route", route)
		}

		c.Next()

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
