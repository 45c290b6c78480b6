package workflow

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/promptintellect/socialgen/config"
	"github.com/promptintellect/socialgen/internal/ai"
	"github.com/promptintellect/socialgen/internal/event"
	"github.com/promptintellect/socialgen/internal/render"
	"github.com/promptintellect/socialgen/internal/report"
	"github.com/promptintellect/socialgen/internal/storage"
)

// Response mirrors the process-level contract of the execution platform:
// 200 with a success message, or 500 with the error message as body.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func newResponse(code int, message string) Response {
	body, _ := json.Marshal(map[string]string{"message": message})
	return Response{StatusCode: code, Body: string(body)}
}

// Core bundles the collaborators and settings shared by both workflows.
// Each Run is independent; Core holds no per-execution state.
type Core struct {
	AI            ai.Client
	Materializer  *storage.Materializer
	Reporter      report.Reporter
	Logger        *log.Logger
	ResultsFolder string
	ChatService   string
	ImageService  string
	Size          string

	successes otelmetric.Int64Counter
	failures  otelmetric.Int64Counter
}

// NewCore constructs the shared workflow core.
func NewCore(cfg *config.Config, aiClient ai.Client, mat *storage.Materializer, rep report.Reporter, logger *log.Logger) *Core {
	core := &Core{
		AI:            aiClient,
		Materializer:  mat,
		Reporter:      rep,
		Logger:        logger,
		ResultsFolder: cfg.Storage.S3.ResultsFolder,
		ChatService:   cfg.AI.ChatService,
		ImageService:  cfg.AI.ImageService,
		Size:          cfg.AI.Size,
	}

	meter := otel.Meter("socialgen/workflow")
	var err error
	core.successes, err = meter.Int64Counter(
		"workflow_runs_succeeded",
		otelmetric.WithDescription("Workflow executions that delivered a success envelope"),
	)
	if err != nil {
		logger.Printf("warn: create success counter failed: %v", err)
	}
	core.failures, err = meter.Int64Counter(
		"workflow_runs_failed",
		otelmetric.WithDescription("Workflow executions that ended on the failure path"),
	)
	if err != nil {
		logger.Printf("warn: create failure counter failed: %v", err)
	}
	return core
}

// succeed delivers the success envelope. A delivery failure is funnelled
// through the same failure path as any other pipeline error.
func (c *Core) succeed(ctx context.Context, id event.Identity, html string) Response {
	env := report.Envelope{
		ExecutionID: id.ExecutionID,
		UserID:      id.UserID,
		ProductID:   id.ProductID,
		Token:       id.Token,
		Status:      report.StatusSuccessful,
		Results:     html,
	}
	if err := c.Reporter.Report(ctx, env); err != nil {
		return c.fail(ctx, id, err)
	}
	if c.successes != nil {
		c.successes.Add(ctx, 1)
	}
	return newResponse(http.StatusOK, "Task executed successfully")
}

// fail converts err into a failure envelope and delivers it through the
// same reporter used on success. The delivery of the failure report is
// guarded: it depends only on the defensively extracted identity, and its
// own errors are logged rather than propagated.
func (c *Core) fail(ctx context.Context, id event.Identity, err error) Response {
	c.Logger.Printf("execution %s failed: %v", id.ExecutionID, err)
	if c.failures != nil {
		c.failures.Add(ctx, 1)
	}

	env := report.Envelope{
		ExecutionID: id.ExecutionID,
		UserID:      id.UserID,
		ProductID:   id.ProductID,
		Token:       id.Token,
		Status:      report.StatusFailed,
		Results:     render.ErrorCard(err.Error()),
	}
	if repErr := c.Reporter.Report(ctx, env); repErr != nil {
		c.Logger.Printf("failure report for execution %s not delivered: %v", id.ExecutionID, repErr)
	}
	return newResponse(http.StatusInternalServerError, err.Error())
}
