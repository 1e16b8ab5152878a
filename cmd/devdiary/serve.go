package main

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/devdiary/devdiary/internal/handler"
	"github.com/devdiary/devdiary/internal/service"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the DevDiary HTTP API",
	Long: `Serve exposes scanning over HTTP: launch scans as background jobs,
follow their progress via SSE, and fetch or export stored results.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.close()

	port := servePort
	if port == "" {
		port = a.cfg.Server.Port
	}

	app := fiber.New(fiber.Config{
		AppName:      "DevDiary",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/api/v1/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"app":    "devdiary",
		})
	})

	base := service.ScanOptions{
		Root:     a.cfg.ExpandedRootPath(),
		MaxRepos: a.cfg.Scanning.MaxRepos,
	}

	tracker := handler.NewJobTracker()
	scanHandler := handler.NewScanHandler(a.svc, a.history, tracker, base)
	scanHandler.Register(app.Group("/api/v1"))

	slog.Info("listening", "port", port, "root", base.Root)
	return app.Listen(":" + port)
}
