package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/promptintellect/socialgen/internal/workflow"
)

// Runner is one workflow entry point. Both workflows satisfy it.
type Runner interface {
	Run(ctx context.Context, raw map[string]interface{}) workflow.Response
}

// WorkflowHandler exposes the workflows as HTTP endpoints accepting the
// platform's execution events.
type WorkflowHandler struct {
	Caption Runner
	Digest  Runner
}

// Register mounts the workflow routes on g.
func (h *WorkflowHandler) Register(g *echo.Group) {
	g.POST("/caption", h.runCaption)
	g.POST("/digest", h.runDigest)
}

func (h *WorkflowHandler) runCaption(c echo.Context) error {
	return h.run(c, h.Caption)
}

func (h *WorkflowHandler) runDigest(c echo.Context) error {
	return h.run(c, h.Digest)
}

// run decodes the inbound event and relays the workflow's process response
// verbatim: the workflow never bubbles an error up to the HTTP layer.
func (h *WorkflowHandler) run(c echo.Context, wf Runner) error {
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event payload")
	}
	resp := wf.Run(c.Request().Context(), raw)
	return c.JSONBlob(resp.StatusCode, []byte(resp.Body))
}
