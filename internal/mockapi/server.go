// Package mockapi is a local stand-in for the TraderVolt platform API. It
// implements the login/refresh and entity CRUD surface the migration engine
// consumes, backed by in-memory state, and is used by the test suite and by
// cmd/mockserver for offline rehearsal of migrations.
package mockapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ksred/tradervolt-migrate/internal/types"
	"github.com/ksred/tradervolt-migrate/pkg/middleware"
	"github.com/ksred/tradervolt-migrate/pkg/response"
)

// Config configures the stand-in server
type Config struct {
	Email      string
	Password   string
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Server bundles the router, the authenticator and the entity store
type Server struct {
	auth   *Authenticator
	store  *Store
	engine *gin.Engine
}

// NewServer builds a stand-in server for one operator account
func NewServer(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	secret := cfg.Secret
	if secret == "" {
		secret = "tradervolt-mock-secret"
	}

	s := &Server{
		auth:  NewAuthenticator([]byte(secret), cfg.Email, cfg.Password, cfg.AccessTTL, cfg.RefreshTTL),
		store: NewStore(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	v1 := engine.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("/login", s.loginHandler)
			users.POST("/refresh_token", s.refreshHandler)
		}

		entities := v1.Group("")
		entities.Use(middleware.RequireAuth([]byte(secret)))
		for _, entityType := range types.DeletionOrder {
			et := entityType
			entities.GET("/"+string(et), func(c *gin.Context) { s.listHandler(c, et) })
			entities.POST("/"+string(et), func(c *gin.Context) { s.createHandler(c, et) })
			entities.GET("/"+string(et)+"/:id", func(c *gin.Context) { s.getHandler(c, et) })
			entities.DELETE("/"+string(et)+"/:id", func(c *gin.Context) { s.deleteHandler(c, et) })
		}
	}

	s.engine = engine
	return s
}

// Router exposes the gin engine, embeddable in httptest servers
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Store exposes the entity state for test assertions and seeding
func (s *Server) Store() *Store {
	return s.store
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

func (s *Server) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	pair, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		response.Unauthorized(c, "Invalid credentials")
		return
	}
	response.OK(c, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) refreshHandler(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	pair, err := s.auth.Refresh(req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "Invalid refresh token")
		return
	}
	response.OK(c, pair)
}

func (s *Server) listHandler(c *gin.Context, entityType types.EntityType) {
	items := s.store.List(entityType)
	if len(items) == 0 {
		response.NoContent(c)
		return
	}
	response.OK(c, items)
}

func (s *Server) createHandler(c *gin.Context, entityType types.EntityType) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	created, ok := s.store.Insert(entityType, payload)
	if !ok {
		response.Conflict(c, "Resource already exists",
			"an entity with the same natural key exists in "+string(entityType))
		return
	}
	response.Created(c, created)
}

func (s *Server) getHandler(c *gin.Context, entityType types.EntityType) {
	item, ok := s.store.Get(entityType, c.Param("id"))
	if !ok {
		response.NotFound(c, "Resource not found")
		return
	}
	response.OK(c, item)
}

func (s *Server) deleteHandler(c *gin.Context, entityType types.EntityType) {
	if !s.store.Delete(entityType, c.Param("id")) {
		response.NotFound(c, "Resource not found")
		return
	}
	response.NoContent(c)
}
