package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/emilythestrangee/eliza-news/backend/internal/config"
	"github.com/emilythestrangee/eliza-news/backend/internal/database"
	"github.com/emilythestrangee/eliza-news/backend/internal/handlers"
	"github.com/emilythestrangee/eliza-news/backend/internal/identity"
	"github.com/emilythestrangee/eliza-news/backend/internal/logger"
	"github.com/emilythestrangee/eliza-news/backend/internal/middleware"
	"github.com/emilythestrangee/eliza-news/backend/internal/store"
	"github.com/emilythestrangee/eliza-news/backend/internal/tokenclaim"
)

type Server struct {
	cfg      *config.Config
	db       database.Service
	handler  *handlers.Handler
	sessions *middleware.Sessions
	limiter  *middleware.RateLimiter
	log      *logrus.Logger
}

// New wires the store backend selected by cfg, the token-claim validator and
// the handlers.
func New(cfg *config.Config, log *logrus.Logger) (*Server, error) {
	s := &Server{cfg: cfg, log: log}

	var backend store.Backend
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := database.New(cfg.DB, logger.Component(log, "database"))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		s.db = db
		backend = database.NewRepository(db.GetDB())
	case config.DriverMemory:
		mem := store.NewMemoryBackend()
		if cfg.Store.Seed {
			mem.Seed(time.Now().UTC())
		}
		backend = mem
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	solana := tokenclaim.NewSolanaClient(tokenclaim.SolanaConfig{
		Endpoint:          cfg.Solana.RPCURL,
		RequestsPerSecond: cfg.Solana.RequestsPerSecond,
		Timeout:           cfg.Solana.Timeout,
	})
	validator := tokenclaim.NewValidator(solana, logger.Component(log, "tokenclaim"))
	content := store.New(backend, validator, logger.Component(log, "store"))

	s.sessions = middleware.NewSessions(
		identity.NewSessionCodec(cfg.Session.Secret, cfg.Session.TTL),
		cfg.Session.CookieName,
		cfg.Session.Secure,
	)
	s.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger.Component(log, "ratelimit"))

	var github *identity.GitHubProvider
	if cfg.GitHub.Enabled() {
		github = identity.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.RedirectURL)
	}

	handler, err := handlers.NewHandler(handlers.Deps{
		Store:    content,
		Sessions: s.sessions,
		Wallet:   identity.NewWalletVerifier(cfg.Session.Secret),
		GitHub:   github,
		Secure:   cfg.Session.Secure,
		Log:      logger.Component(log, "http"),
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.handler = handler
	return s, nil
}

// HTTPServer returns the configured http.Server for the router.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Server.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  s.cfg.Server.IdleTimeout,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// Close releases the database connection, if any.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Server) health(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": s.cfg.Store.Driver})
		return
	}
	stats := s.db.Health(c.Request.Context())
	code := http.StatusOK
	if stats["status"] != "up" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, stats)
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.Component(s.log, "access")))
	r.Use(middleware.Metrics())

	origins := s.cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAny(origins),
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.Identity(s.sessions, logger.Component(s.log, "identity")))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := s.handler
	limited := s.limiter.Handler()

	// API routes
	api := r.Group("/api")
	{
		api.GET("/me", h.Auth.GetMe)
		api.GET("/posts", h.Post.GetPosts)
		api.GET("/posts/:id", h.Post.GetPost)
		api.GET("/posts/:id/comments", h.Comment.GetComments)

		api.GET("/auth/wallet/challenge", limited, h.Auth.WalletChallenge)
		api.POST("/auth/wallet", limited, h.Auth.WalletLogin)
		api.POST("/auth/signout", h.Auth.SignOut)

		// Protected routes (an identity is required)
		protected := api.Group("")
		protected.Use(middleware.RequireIdentity(), limited)
		{
			protected.POST("/posts", h.Post.CreatePost)
			protected.POST("/posts/:id/upvote", h.Post.UpvotePost)
			protected.POST("/posts/:id/comments", h.Comment.CreateComment)
			protected.POST("/token-claims/verify", h.Post.VerifyClaim)
		}
	}

	r.GET("/auth/github/login", h.Auth.GitHubLogin)
	r.GET("/auth/github/callback", h.Auth.GitHubCallback)

	// Pages
	r.GET("/", h.Page.Index)
	r.GET("/item/:id", h.Page.Item)
	r.GET("/submit", h.Page.SubmitForm)
	r.POST("/submit", limited, h.Page.Submit)
	r.POST("/item/:id/upvote", limited, h.Page.Upvote)
	r.POST("/item/:id/comments", limited, h.Page.Comment)
	r.POST("/signout", h.Page.SignOut)

	return r
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
