// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"pawgram/internal/cache"
	"pawgram/internal/config"
	"pawgram/internal/database"
	"pawgram/internal/feed"
	"pawgram/internal/media"
	"pawgram/internal/middleware"
	"pawgram/internal/models"
	"pawgram/internal/notifications"
	"pawgram/internal/repository"
	"pawgram/internal/service"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	followRepo  repository.FollowRepository
	commentRepo repository.CommentRepository
	engageRepo  repository.EngagementRepository

	builder       *feed.Builder
	postService   *service.PostService
	engageService *service.EngagementService

	notifier *notifications.Notifier
	hub      *notifications.Hub
	fanout   *notifications.Fanout
}

// NewServer creates a server instance, establishing database and Redis
// connections from config.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := cache.InitRedis(cfg); err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without cache", "error", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with sqlite and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	engageRepo := repository.NewEngagementRepository(db)

	ingester, err := media.NewIngester(cfg)
	if err != nil {
		return nil, fmt.Errorf("media ingester: %w", err)
	}
	moderator := media.NewModerator(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("pawgram-api"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		followRepo:     followRepo,
		commentRepo:    commentRepo,
		engageRepo:     engageRepo,
	}

	server.builder = feed.NewBuilder(postRepo, followRepo, commentRepo, engageRepo, userRepo)
	server.notifier = notifications.NewNotifier(redisClient)
	server.hub = notifications.NewHub(redisClient)
	server.fanout = notifications.NewFanout(server.hub, server.notifier, followRepo)

	server.postService = service.NewPostService(
		postRepo, userRepo, ingester, moderator.Screen, server.fanout.NotifyNewPost)
	server.engageService = service.NewEngagementService(postRepo, commentRepo, engageRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	// After requestid and context middleware so log lines carry both.
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP).
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Pawgram Backend Metrics Dashboard",
	}))

	// Public single-post view.
	api.Get("/posts/:postId<int>", s.GetPost)

	protected := api.Group("", s.AuthRequired())

	posts := protected.Group("/posts")
	posts.Get("/feed/:offset", s.GetFeed)
	posts.Get("/suggested/:offset", s.GetSuggested)
	posts.Get("/hashtag/:hashtag/:offset", s.GetHashtagFeed)
	posts.Get("/my/:offset", s.GetMyPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:postId/vote", s.VotePost)
	posts.Delete("/:postId", s.DeletePost)

	comments := protected.Group("/comments")
	comments.Post("/", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	comments.Post("/:commentId/vote", s.VoteComment)
	comments.Post("/:commentId/replies", s.CreateReply)
	comments.Put("/:commentId", s.UpdateComment)
	comments.Delete("/:commentId", s.DeleteComment)

	replies := protected.Group("/replies")
	replies.Post("/:replyId/vote", s.VoteReply)
	replies.Put("/:replyId", s.UpdateReply)
	replies.Delete("/:replyId", s.DeleteReply)

	// WebSocket ticket issuance and the gateway itself.
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/", s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It accepts a Bearer
// JWT, or for websocket routes a single-use ticket previously issued by
// IssueWSTicket.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws")

		// Single-use websocket ticket first.
		ticket := c.Query("ticket")
		if ticket != "" && s.redis != nil {
			key := fmt.Sprintf("ws_ticket:%s", ticket)
			userIDStr, err := s.redis.Get(c.Context(), key).Result()
			if err == nil {
				userID, parseErr := strconv.ParseUint(userIDStr, 10, 32)
				if parseErr == nil {
					s.redis.Del(c.Context(), key)
					return s.authenticated(c, uint(userID))
				}
			}
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "pawgram-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "pawgram-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		return s.authenticated(c, uint(userID))
	}
}

// authenticated stores the resolved identity in locals and user context.
func (s *Server) authenticated(c *fiber.Ctx, userID uint) error {
	c.Locals("userID", userID)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
	c.SetUserContext(ctx)
	return c.Next()
}

// Start runs the server until Shutdown is called.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "Pawgram API",
		BodyLimit: 25 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.hub.StartWiring(ctx, s.notifier); err != nil {
		middleware.Logger.Warn("hub wiring failed", "error", err)
	}

	return app.Listen(":" + s.config.Port)
}

// Shutdown drains connections and closes the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}
	if s.hub != nil {
		_ = s.hub.Shutdown(ctx)
	}
	if s.app != nil {
		return s.app.ShutdownWithContext(ctx)
	}
	return nil
}

// App exposes the fiber app for handler tests.
func (s *Server) App() *fiber.App {
	if s.app == nil {
		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return models.RespondError(c, err)
			},
		})
		s.SetupRoutes(app)
		s.app = app
	}
	return s.app
}
