package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskhub/internal/auth"
	"taskhub/internal/handler"
	"taskhub/internal/model"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	taskHandler *handler.TaskHandler,
	statusHandler *handler.StatusHandler,
	labelHandler *handler.LabelHandler,
	verifier *auth.Verifier,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(MetricsMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Public
	api.POST("/login", authHandler.Login)
	api.POST("/users", userHandler.Create)

	// Protected
	protected := api.Group("/")
	protected.Use(AuthMiddleware(verifier))
	{
		protected.GET("/users", withPrincipal(userHandler.Index))
		protected.GET("/users/:id", withPrincipal(userHandler.Show))
		protected.PUT("/users/:id", withPrincipal(userHandler.Update))
		protected.DELETE("/users/:id", withPrincipal(userHandler.Destroy))

		protected.POST("/tasks", withPrincipal(taskHandler.Create))
		protected.GET("/tasks", withPrincipal(taskHandler.Index))
		protected.GET("/tasks/:id", withPrincipal(taskHandler.Show))
		protected.PUT("/tasks/:id", withPrincipal(taskHandler.Update))
		protected.DELETE("/tasks/:id", withPrincipal(taskHandler.Destroy))

		protected.POST("/task_statuses", withPrincipal(statusHandler.Create))
		protected.GET("/task_statuses", withPrincipal(statusHandler.Index))
		protected.GET("/task_statuses/:id", withPrincipal(statusHandler.Show))
		protected.PUT("/task_statuses/:id", withPrincipal(statusHandler.Update))
		protected.DELETE("/task_statuses/:id", withPrincipal(statusHandler.Destroy))

		protected.POST("/labels", withPrincipal(labelHandler.Create))
		protected.GET("/labels", withPrincipal(labelHandler.Index))
		protected.GET("/labels/:id", withPrincipal(labelHandler.Show))
		protected.PUT("/labels/:id", withPrincipal(labelHandler.Update))
		protected.DELETE("/labels/:id", withPrincipal(labelHandler.Destroy))
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}

// withPrincipal adapts a principal-aware handler to gin. AuthMiddleware
// guarantees the principal is present on protected routes.
func withPrincipal(fn func(*gin.Context, model.Principal)) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				handler.ErrorResponse{Error: "missing bearer token"})
			return
		}
		fn(c, p)
	}
}
