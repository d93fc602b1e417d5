// Package server exposes the HTTP API and the per-user WebSocket push
// endpoint.
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"meal-genie/internal/auth"
	"meal-genie/internal/chat"
	"meal-genie/internal/metrics"
	"meal-genie/internal/planner"
	"meal-genie/internal/push"
	"meal-genie/internal/user"
)

// Server wires the HTTP routes to the application services.
type Server struct {
	engine     *gin.Engine
	verifier   *auth.Verifier
	users      *user.Repository
	plans      *planner.PlanRepository
	generator  *planner.Generator
	chats      *chat.Repository
	chatSvc    *chat.Service
	registry   *push.Registry
	usage      *metrics.Store
	wsUpgrader websocket.Upgrader
	port       string
}

// NewServer creates the Server and registers all routes.
func NewServer(
	port string,
	verifier *auth.Verifier,
	users *user.Repository,
	plans *planner.PlanRepository,
	generator *planner.Generator,
	chats *chat.Repository,
	chatSvc *chat.Service,
	registry *push.Registry,
	usage *metrics.Store,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowWebSockets = true
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine:    engine,
		verifier:  verifier,
		users:     users,
		plans:     plans,
		generator: generator,
		chats:     chats,
		chatSvc:   chatSvc,
		registry:  registry,
		usage:     usage,
		wsUpgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		port: port,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	s.engine.GET("/ws/:userID", s.handleWebSocket)

	api := s.engine.Group("/api", s.authRequired())
	{
		api.POST("/meal-plans", s.createMealPlan)
		api.GET("/meal-plans", s.listMealPlans)
		api.GET("/meal-plans/:id", s.getMealPlan)
		api.DELETE("/meal-plans/:id", s.deleteMealPlan)
		api.POST("/meal-plans/:id/retry", s.retryMealPlan)
		api.POST("/meal-plans/:id/resubmit", s.resubmitMealPlan)

		api.POST("/chats", s.createChat)
		api.GET("/chats", s.listChats)
		api.GET("/chats/:id", s.getChat)
		api.POST("/chats/:id/messages", s.postChatMessage)

		api.GET("/metrics/usage", s.getDailyUsage)
	}
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	return s.engine.Run(fmt.Sprintf(":%s", s.port))
}

// Engine exposes the underlying router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

const userContextKey = "currentUser"

// authRequired verifies the bearer token and resolves the application user,
// storing it on the request context.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing bearer token"})
			return
		}

		identity, err := s.verifier.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
			return
		}

		u, err := s.users.GetOrCreate(c.Request.Context(), identity.AuthUID, identity.Email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "failed to resolve user"})
			return
		}

		c.Set(userContextKey, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *user.User {
	u, _ := c.Get(userContextKey)
	return u.(*user.User)
}
