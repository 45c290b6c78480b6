package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/promptintellect/socialgen/internal/ai"
	"github.com/promptintellect/socialgen/internal/event"
	"github.com/promptintellect/socialgen/internal/feed"
	"github.com/promptintellect/socialgen/internal/render"
)

// Digest is the news digest workflow: filter the syndicated feed by the
// requested keywords, generate a post from the matching entries, keep a raw
// copy of the generation response, report the rendered post.
type Digest struct {
	*Core
	Feed feed.Source
}

// NewDigest creates the digest workflow on top of a shared core.
func NewDigest(core *Core, source feed.Source) *Digest {
	return &Digest{Core: core, Feed: source}
}

// Run executes one digest request end to end. Filtering happens before any
// generation call: an empty match set fails the run without invoking the
// generation service.
func (w *Digest) Run(ctx context.Context, raw map[string]interface{}) Response {
	id := event.ExtractIdentity(raw)

	req, err := event.Parse(raw)
	if err != nil {
		return w.fail(ctx, id, err)
	}
	keywords := feed.SplitKeywords(req.CustomInputs["keywords"])

	entries, err := w.Feed.Latest(ctx)
	if err != nil {
		return w.fail(ctx, req.Identity, err)
	}
	matched := feed.Filter(entries, keywords)
	if len(matched) == 0 {
		return w.fail(ctx, req.Identity, &feed.EmptyResultError{Keywords: keywords})
	}

	sections := make([]string, 0, len(matched))
	for _, entry := range matched {
		sections = append(sections, fmt.Sprintf("Title: %s\nLink: %s", entry.Title, entry.Link))
	}
	prompt := fmt.Sprintf("Write a social media post based on the following news articles:\n\n%s", strings.Join(sections, "\n\n"))

	body, err := w.AI.Invoke(ctx, ai.Invocation{
		ExecutionID: req.ExecutionID,
		UserID:      req.UserID,
		ProductID:   req.ProductID,
		Service:     w.ChatService,
		Size:        w.Size,
		Prompt:      prompt,
	})
	if err != nil {
		return w.fail(ctx, req.Identity, err)
	}

	resultKey := fmt.Sprintf("%s/%s/result.json", w.ResultsFolder, req.ExecutionID)
	if err := w.Materializer.StoreJSON(ctx, resultKey, body); err != nil {
		return w.fail(ctx, req.Identity, err)
	}

	text, err := ai.ChatText(body)
	if err != nil {
		return w.fail(ctx, req.Identity, err)
	}

	html := render.DigestCard(req.ExecutionID, req.UserID, req.ProductID, text)
	return w.succeed(ctx, req.Identity, html)
}
