package server

import (
	"backend-navtelemetry/internal/archive"
	"backend-navtelemetry/internal/auth"
	"backend-navtelemetry/internal/config"
	"backend-navtelemetry/internal/stream"
	"backend-navtelemetry/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)
	builder := telemetry.NewBuilder(s.Cfg.SDKIdentifier(), s.Cfg.SDKVersion, s.Cfg.Profile)

	auth.RegisterRoutes(s.App.Group("/clients"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	archive.RegisterRoutes(s.App.Group("/events"), archive.NewService(s.DB, s.Redis, s.Stream, builder), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
