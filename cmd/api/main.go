package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-inventory-tracker/config"
	"go-inventory-tracker/internal/app"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/ws"
	"go-inventory-tracker/pkg/database"
	"go-inventory-tracker/pkg/jwt"
	"go-inventory-tracker/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()
	cfg := config.LoadEnv()

	log := logger.New(cfg.Logger, cfg.IsDevelopment())
	defer log.Sync()
	if envErr != nil {
		log.Warn(".env file not found, using process environment")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Postgres, log, cfg.IsDevelopment())
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("migrate database", zap.Error(err))
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	services := app.NewServices(db, cfg, log, wsHub)
	handlers := services.Handlers(cfg, log)
	tokens := jwt.NewManager(cfg.JWT.SecretKey, cfg.JWT.TokenTTL, cfg.JWT.Issuer)

	// 5. Setup Fiber
	server := fiber.New(fiber.Config{
		AppName:   cfg.Server.AppName,
		BodyLimit: cfg.Transfer.MaxUploadSize,
	})

	// Middleware
	server.Use(fiberlogger.New()) // Logging request
	server.Use(recover.New())     // Panic recovery
	server.Use(cors.New(cors.Config{
		ExposeHeaders: fiber.HeaderContentDisposition,
	}))

	// 6. Routes
	server.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	handlers.Register(server.Group("/api/v1"), tokens)

	// WebSocket Route
	server.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	server.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := server.Listen(":" + cfg.Server.Port); err != nil {
			log.Panic("listen", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.AppEnv))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := server.Shutdown(); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
