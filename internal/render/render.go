package render

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var unicodeEscapeRE = regexp.MustCompile(`\\u([0-9A-Fa-f]{4})`)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// fragmentPolicy returns a singleton bluemonday policy for the
// markdown-derived fragment embedded in result cards. The card shell itself
// is fixed trusted markup and is not passed through the policy.
func fragmentPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

// DecodeUnicodeEscapes reverses literal \uXXXX sequences that survived
// upstream JSON decoding. Idempotent on already-decoded text.
func DecodeUnicodeEscapes(s string) string {
	return unicodeEscapeRE.ReplaceAllStringFunc(s, func(match string) string {
		code, err := strconv.ParseUint(match[2:], 16, 32)
		if err != nil {
			return match
		}
		return string(rune(code))
	})
}

// MarkdownToHTML converts raw generation text to a sanitized HTML fragment:
// unicode escapes are reversed first, then markdown is rendered and the
// result cleaned with the fragment policy.
func MarkdownToHTML(raw string) string {
	decoded := DecodeUnicodeEscapes(raw)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	rendered := markdown.ToHTML([]byte(decoded), p, renderer)
	return strings.TrimSpace(fragmentPolicy().Sanitize(string(rendered)))
}

// DigestCard renders the fixed-layout success card for the digest workflow.
func DigestCard(executionID, userID, productID, rawText string) string {
	return fmt.Sprintf(`
        <div style="padding: 20px; background-color: #f0f0f0; border-radius: 5px;">
            <h2>Task Execution Result</h2>
            <p><strong>Execution ID:</strong> %s</p>
            <p><strong>User ID:</strong> %s</p>
            <p><strong>Product ID:</strong> %s</p>
            <strong>Response:</strong><br>
            <div>
                %s
            </div>
        </div>
    `, html.EscapeString(executionID), html.EscapeString(userID), html.EscapeString(productID), MarkdownToHTML(rawText))
}

// CaptionCard renders the fixed-layout success card for the caption
// workflow, with the rendered caption wrapped in a pre block.
func CaptionCard(executionID, userID, productID, caption string) string {
	return fmt.Sprintf(`
        <div style="padding: 20px; background-color: #f0f0f0; border-radius: 5px;">
            <h2>Post Creation Result</h2>
            <p><strong>Execution ID:</strong> %s</p>
            <p><strong>User ID:</strong> %s</p>
            <p><strong>Product ID:</strong> %s</p>
            <p><strong>Caption:</strong><br>
                <pre>%s</pre>
            </p>
        </div>
    `, html.EscapeString(executionID), html.EscapeString(userID), html.EscapeString(productID), MarkdownToHTML(caption))
}

// ErrorCard renders the failure card embedded in failure envelopes.
func ErrorCard(message string) string {
	return fmt.Sprintf(`
        <div style="padding: 20px; color: #ff3333; background-color: #fec4c4; border-radius: 5px;">
            <p><strong>Error: </strong> %s</p>
        </div>
    `, html.EscapeString(message))
}
