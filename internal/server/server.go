// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/md2004sameer/Wire/internal/cache"
	"github.com/md2004sameer/Wire/internal/config"
	"github.com/md2004sameer/Wire/internal/database"
	"github.com/md2004sameer/Wire/internal/featureflags"
	"github.com/md2004sameer/Wire/internal/middleware"
	"github.com/md2004sameer/Wire/internal/models"
	"github.com/md2004sameer/Wire/internal/realtime"
	"github.com/md2004sameer/Wire/internal/repository"
	"github.com/md2004sameer/Wire/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	relationshipRepo repository.RelationshipRepository
	notificationRepo repository.NotificationRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository

	notifier *realtime.Notifier
	userHub  *realtime.UserHub
	roomHub  *realtime.RoomHub
	feedHub  *realtime.FeedHub

	featureFlags *featureflags.Manager

	userService         *service.UserService
	relationshipService *service.RelationshipService
	notificationService *service.NotificationService
	postService         *service.PostService
	interactionService  *service.InteractionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   middleware.InitMetrics("wire-api"),
		userRepo:         repository.NewUserRepository(db),
		relationshipRepo: repository.NewRelationshipRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		postRepo:         repository.NewPostRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		userHub:          realtime.NewUserHub(),
		roomHub:          realtime.NewRoomHub(),
		feedHub:          realtime.NewFeedHub(),
		featureFlags:     featureflags.NewManager(cfg.FeatureFlags),
	}

	// Notifier tolerates a nil client; fan-out stays in-process then.
	server.notifier = realtime.NewNotifier(redisClient)

	server.notificationService = service.NewNotificationService(server.notificationRepo, server.notifier)
	server.userService = service.NewUserService(server.userRepo)
	server.relationshipService = service.NewRelationshipService(
		server.relationshipRepo, server.userRepo, server.notificationService)
	server.postService = service.NewPostService(server.postRepo, server.feedHub, server.notifier)
	server.interactionService = service.NewInteractionService(
		server.postRepo, server.commentRepo, server.notificationService)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and username
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on
	// error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Wire Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public feed routes (anonymous browse, viewer-relative liked flag
	// when a token is supplied)
	publicPosts := api.Group("/posts", middleware.OptionalAuth(s.config))
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/:id/comments", s.GetComments)
	publicPosts.Get("/:id", s.GetPost)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired(s.config))

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", s.GetAllUsers)
	users.Get("/:username", s.GetUserProfile)

	// Relationship routes. Specific segments before the generic
	// /:username parameter routes.
	rel := protected.Group("/relationships")
	rel.Get("/following", s.GetFollowing)
	rel.Get("/followers", s.GetFollowers)
	rel.Get("/requests", s.GetFollowRequests)
	rel.Get("/blocked", s.GetBlockedUsers)
	rel.Post("/status/batch", s.BatchRelationshipStatus)
	rel.Get("/status/:username", s.GetRelationshipStatus)
	rel.Post("/:username/follow", middleware.RateLimit(
		s.redis, 30, 5*time.Minute, "follow"), s.Follow)
	rel.Delete("/:username/follow", s.Unfollow)
	rel.Post("/:username/accept", s.AcceptFollowRequest)
	rel.Post("/:username/reject", s.RejectFollowRequest)
	rel.Delete("/:username/request", s.CancelFollowRequest)
	rel.Delete("/:username/follower", s.RemoveFollower)
	rel.Post("/:username/block", s.BlockUser)
	rel.Delete("/:username/block", s.UnblockUser)

	// Feature flags
	protected.Get("/feature-flags", s.GetFeatureFlags)

	// Notification routes
	notifications := protected.Group("/notifications")
	notifications.Get("/", s.GetNotifications)
	notifications.Get("/unseen-count", s.GetUnseenCount)
	notifications.Post("/:id/seen", s.MarkNotificationSeen)

	// Protected post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/share", s.SharePost)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)

	// Chat room creation; joining happens over the websocket.
	protected.Post("/rooms", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_room"), s.CreateRoom)

	// Websocket endpoints. The feed accepts anonymous observers; rooms
	// identify members by the username query parameter.
	api.Get("/ws/feed", middleware.OptionalAuth(s.config), s.FeedWebsocketHandler())
	api.Get("/ws/rooms/:roomID", s.RoomWebsocketHandler())
	api.Get("/ws/notifications", middleware.AuthRequired(s.config), s.NotificationWebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional; without it fan-out is single-instance.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// StartRealtime wires the Redis subscriber to the local hubs so events
// published by other instances reach this instance's connections.
func (s *Server) StartRealtime(ctx context.Context) error {
	return s.notifier.StartSubscriber(ctx,
		func(username, payload string) {
			s.userHub.Broadcast(username, []byte(payload))
		},
		func(payload string) {
			s.feedHub.PublishRaw([]byte(payload))
		},
	)
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Wire API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return models.RespondWithError(c, fiberErr.Code, err)
			}
			return models.RespondWithError(c, models.HTTPStatus(err), err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.StartRealtime(s.shutdownCtx); err != nil {
		log.Printf("failed to start realtime subscriber: %v", err)
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	for _, h := range []interface {
		Name() string
		Shutdown(context.Context) error
	}{s.roomHub, s.feedHub, s.userHub} {
		if err := h.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", h.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
