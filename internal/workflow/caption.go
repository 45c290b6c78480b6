package workflow

import (
	"context"
	"fmt"

	"github.com/promptintellect/socialgen/internal/ai"
	"github.com/promptintellect/socialgen/internal/event"
	"github.com/promptintellect/socialgen/internal/render"
)

// Caption is the caption workflow: generate a post caption and a matching
// image from a free-text explanation, store the image, report the rendered
// caption.
type Caption struct {
	*Core
}

// NewCaption creates the caption workflow on top of a shared core.
func NewCaption(core *Core) *Caption {
	return &Caption{Core: core}
}

// Run executes one caption request end to end. Any pipeline error ends on
// the failure path; the identity is extracted up front so even intake
// failures produce a failure report.
func (w *Caption) Run(ctx context.Context, raw map[string]interface{}) Response {
	id := event.ExtractIdentity(raw)

	req, err := event.Parse(raw)
	if err != nil {
		return w.fail(ctx, id, err)
	}
	explanation := req.CustomInputs["explanation"]

	captionPrompt := fmt.Sprintf("Create a social media post caption based on the following explanation:\n\n%s", explanation)
	captionBody, err := w.AI.Invoke(ctx, ai.Invocation{
		ExecutionID: req.ExecutionID,
		UserID:      req.UserID,
		ProductID:   req.ProductID,
		Service:     w.ChatService,
		Size:        w.Size,
		Prompt:      captionPrompt,
	})
	if err != nil {
		return w.fail(ctx, req.Identity, err)
	}
	caption, err := ai.ChatText(captionBody)
	if err != nil {
		return w.fail(ctx, req.Identity, err)
	}

	imagePrompt := fmt.Sprintf("Generate an image based on the following explanation:\n\n%s", explanation)
	imageBody, err := w.AI.Invoke(ctx, ai.Invocation{
		ExecutionID: req.ExecutionID,
		UserID:      req.UserID,
		ProductID:   req.ProductID,
		Service:     w.ImageService,
		Size:        w.Size,
		Prompt:      imagePrompt,
	})
	if err != nil {
		return w.fail(ctx, req.Identity, err)
	}
	imageURL, err := ai.ImageURL(imageBody)
	if err != nil {
		return w.fail(ctx, req.Identity, err)
	}

	folder := fmt.Sprintf("%s/%s", w.ResultsFolder, req.ExecutionID)
	if _, err := w.Materializer.StoreFromURL(ctx, imageURL, folder); err != nil {
		return w.fail(ctx, req.Identity, err)
	}

	html := render.CaptionCard(req.ExecutionID, req.UserID, req.ProductID, caption)
	return w.succeed(ctx, req.Identity, html)
}
