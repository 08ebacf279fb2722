package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskhub/internal/auth"
	"taskhub/internal/handler"
	"taskhub/internal/model"
	"taskhub/pkg/metrics"
	"taskhub/pkg/trace"
)

const principalKey = "principal"

// AuthMiddleware verifies the bearer credential and attaches the Principal to
// the request. Requests without a valid credential never reach a handler.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := auth.ExtractToken(c.Request)
		if credential == "" {
			metrics.IncrementAuthFailure("missing_token")
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.ErrorResponse{Error: "missing bearer token"})
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), credential)
		if err != nil {
			metrics.IncrementAuthFailure("invalid_token")
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.ErrorResponse{Error: "invalid token"})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the Principal set by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}

// TraceMiddleware propagates or generates the request trace ID.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName())
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}

		ctx := trace.WithContext(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.HeaderName(), traceID)
		c.Next()
	}
}

// MetricsMiddleware records request duration by method, route and status.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
