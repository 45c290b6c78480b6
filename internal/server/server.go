package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	appconfig "github.com/promptintellect/socialgen/config"
	"github.com/promptintellect/socialgen/internal/ai"
	"github.com/promptintellect/socialgen/internal/feed"
	"github.com/promptintellect/socialgen/internal/report"
	"github.com/promptintellect/socialgen/internal/storage"
	"github.com/promptintellect/socialgen/internal/telemetry"
	"github.com/promptintellect/socialgen/internal/workflow"
)

// Run wires the workflow service and blocks serving HTTP on the configured
// address.
func Run(cfg *appconfig.Config) error {
	ctx := context.Background()

	// The meter provider must be in place before the workflow core creates
	// its counters.
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, "socialgen")
	if err != nil {
		return err
	}
	defer tel.Shutdown(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"POST", "GET", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(tel.Handler()))

	// Shared process-scoped clients, injected into each workflow run.
	store, err := storage.NewS3Client(ctx, cfg.Storage.S3)
	if err != nil {
		return err
	}

	wfLogger := log.New(os.Stdout, "[WORKFLOW] ", log.LstdFlags)
	aiClient := ai.NewHTTPClient(cfg.AI.InvokeURL, cfg.AI.Timeout, wfLogger)
	materializer := storage.NewMaterializer(store, cfg.Storage.Timeout, wfLogger)
	reporter := report.NewWebhookReporter(cfg.Webhook.URL, cfg.Webhook.Timeout, wfLogger)

	core := workflow.NewCore(cfg, aiClient, materializer, reporter, wfLogger)
	caption := workflow.NewCaption(core)
	digest := workflow.NewDigest(core, feed.NewFetcher(cfg.Feed.URL, cfg.Feed.Timeout))

	h := &WorkflowHandler{Caption: caption, Digest: digest}
	api := e.Group("/api")
	h.Register(api.Group("/workflows"))

	return e.Start(cfg.Server.Address)
}
