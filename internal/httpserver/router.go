package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// buildRouter wires routes for the API.
func buildRouter(opts Options, logger *zap.Logger, db pinger, deps Deps) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = false
	router.Use(
		requestID(),
		recovery(logger),
		requestLogger(logger, opts.Development),
		deps.Metrics.Middleware(),
		corsMiddleware(opts.FrontendURL),
	)

	router.GET("/api/health", healthHandler)
	router.GET("/api/ready", readyHandler(db))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	h := &handlers{deps: deps, logger: logger, authRequired: opts.AuthRequired}
	owner := func(param string) gin.HandlerFunc { return requireOwner(opts.AuthRequired, param, logger) }

	api := router.Group("/api", rateLimit(opts.RateLimitPerMinute, opts.RateLimitBurst), authenticate(deps.Sessions, logger))

	products := api.Group("/products")
	products.GET("", h.listProducts)
	products.GET("/categories", h.listCategories)
	products.GET("/:id", h.getProduct)
	products.POST("", h.createProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)
	products.POST("/:id/reviews", requireSession(logger), h.addReview)

	users := api.Group("/users")
	users.POST("", h.registerUser)
	users.POST("/login", h.login)
	users.POST("/logout", requireSession(logger), h.logout)
	users.GET("/:id", owner("id"), h.getUser)
	users.PUT("/:id", owner("id"), h.updateUser)

	carts := api.Group("/cart/:userId", owner("userId"))
	carts.GET("", h.getCart)
	carts.DELETE("", h.clearCart)
	carts.POST("/items", h.addCartItem)
	carts.PUT("/items/:itemId", h.updateCartItem)
	carts.DELETE("/items/:itemId", h.removeCartItem)

	orders := api.Group("/orders")
	orders.POST("", h.checkout)
	orders.GET("/user/:userId", owner("userId"), h.listUserOrders)
	orders.GET("/:id", h.getOrder)

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Route not found")
	})

	return router
}

func corsMiddleware(frontendURL string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if frontendURL == "" || frontendURL == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = []string{frontendURL}
	}
	return cors.New(cfg)
}

// handlers holds the route handlers and what they dispatch to.
type handlers struct {
	deps         Deps
	logger       *zap.Logger
	authRequired bool
}
