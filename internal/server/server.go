// Package server contains the HTTP handlers for the devcircle API.
package server

import (
	"context"
	"errors"
	"time"

	"devcircle/internal/cache"
	"devcircle/internal/config"
	"devcircle/internal/events"
	"devcircle/internal/middleware"
	"devcircle/internal/models"
	"devcircle/internal/repository"
	"devcircle/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	publisher      events.Publisher
	promMiddleware *fiberprometheus.FiberPrometheus

	identity *service.IdentityService
	follows  *service.FollowService
	posts    *service.PostService
	comments *service.CommentService
	teams    *service.TeamService
	projects *service.ProjectService
	feed     *service.FeedService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests pass an in-memory database, a nil or miniredis client and a recording
// publisher.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, publisher events.Publisher) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		publisher:      publisher,
		promMiddleware: middleware.InitMetrics("devcircle-api"),

		identity: service.NewIdentityService(userRepo, followRepo, publisher, cfg.JWTSecret, cfg.JWTTTL),
		follows:  service.NewFollowService(userRepo, followRepo, publisher),
		posts:    service.NewPostService(postRepo, userRepo, publisher),
		comments: service.NewCommentService(commentRepo, postRepo, publisher),
		teams:    service.NewTeamService(teamRepo, userRepo, publisher),
		projects: service.NewProjectService(projectRepo, teamRepo, userRepo, publisher),
		feed:     service.NewFeedService(postRepo, followRepo),
	}, nil
}

// NewApp builds the fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "devcircle API",
		BodyLimit:    2 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escape handlers (routing misses, body limit,
// request timeout) in the same envelope as handler errors.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	return models.RespondWithError(c, models.HTTPStatus(err), err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Propagates request and trace ids into the user context for the logger.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
	}))

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

	if s.config.RequestTimeout > 0 {
		app.Use(timeout.NewWithContext(func(c *fiber.Ctx) error {
			return c.Next()
		}, s.config.RequestTimeout))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	authRequired := s.AuthRequired()

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/signin", middleware.RateLimit(s.redis, 10, 5*time.Minute, "signin"), s.Signin)
	auth.Post("/signout", authRequired, s.Signout)

	users := api.Group("/users")
	users.Get("/", s.SearchUsers)
	users.Get("/me", authRequired, s.GetMe)
	users.Get("/:username/followers", s.GetFollowers)
	users.Get("/:username/following", s.GetFollowing)
	users.Get("/:username/posts", s.GetUserPosts)
	users.Post("/:username/follow", authRequired, s.Follow)
	users.Delete("/:username/follow", authRequired, s.Unfollow)
	users.Get("/:username", s.GetUserProfile)
	users.Put("/:username", authRequired, s.UpdateUserProfile)

	feed := api.Group("/feed")
	feed.Get("/global", s.GetGlobalFeed)
	feed.Get("/", authRequired, s.GetFollowingFeed)

	posts := api.Group("/posts")
	posts.Get("/", s.GetGlobalFeed)
	posts.Post("/", authRequired, middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	// Specific /:id/:resource routes before the generic /:id routes.
	posts.Post("/:id/like", authRequired, s.ToggleLike)
	posts.Put("/:id/like", authRequired, s.LikePost)
	posts.Delete("/:id/like", authRequired, s.UnlikePost)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", authRequired, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Put("/:id/comments/:commentId", authRequired, s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", authRequired, s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", authRequired, s.UpdatePost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	teams := api.Group("/teams", authRequired)
	teams.Get("/", s.GetMyTeams)
	teams.Post("/", s.CreateTeam)
	teams.Post("/:id/members", s.AddTeamMember)
	teams.Delete("/:id/members/:userId", s.RemoveTeamMember)
	teams.Get("/:id/projects", s.GetTeamProjects)
	teams.Get("/:id", s.GetTeam)
	teams.Put("/:id", s.UpdateTeam)
	teams.Delete("/:id", s.DeleteTeam)

	projects := api.Group("/projects")
	projects.Get("/", s.GetProjects)
	projects.Post("/", authRequired, s.CreateProject)
	projects.Get("/mine", authRequired, s.GetMyProjects)
	projects.Get("/:id", s.GetProject)
	projects.Put("/:id", authRequired, s.UpdateProject)
	projects.Delete("/:id", authRequired, s.DeleteProject)
}

// AuthRequired validates the bearer token and rejects tokens revoked at signout.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.config.JWTSecret, cache.IsTokenRevoked)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis. Redis being
// absent degrades caching and rate limits but does not make the API unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
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

// Shutdown releases the event publisher and the Redis client. Database pools
// are closed by the caller through database.Close.
func (s *Server) Shutdown(_ context.Context) error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	return errors.Join(errs...)
}
