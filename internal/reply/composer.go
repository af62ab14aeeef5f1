// Package reply turns a page of ranked plans into user-facing text. An LLM
// writes the conversational summary when it can; otherwise a fixed template
// renders the page.
package reply

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"plangenie/internal/llm"
	"plangenie/internal/models"
)

// ErrCompositionFailed is logged when the LLM reply is unusable. Compose
// never returns it.
var ErrCompositionFailed = errors.New("reply composition failed")

const systemPrompt = "Talk like a helpful telecom plan expert."

// MoreHint is appended to the template when further pages exist.
const MoreHint = "Ask for 'more' for additional plans."

// Composer writes replies for a query result page.
type Composer struct {
	llm     llm.Completer
	timeout time.Duration
	logger  *zap.Logger
}

// NewComposer creates a Composer. A nil completer always uses the template.
func NewComposer(c llm.Completer, timeout time.Duration, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{llm: c, timeout: timeout, logger: logger}
}

// Compose always returns text.
func (c *Composer) Compose(ctx context.Context, text string, f models.Filter, page []models.Plan, total, offset int) string {
	if len(page) > 0 && c.llm != nil {
		out, err := c.summarize(ctx, text, page, total, offset)
		if err == nil {
			return out
		}
		c.logger.Warn("llm reply unavailable, using template", zap.Error(err))
	}
	return Format(f, page, total, offset)
}

func (c *Composer) summarize(ctx context.Context, text string, page []models.Plan, total, offset int) (string, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.llm.Complete(callCtx, systemPrompt, summaryPrompt(text, page, total, offset))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompositionFailed, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty output", ErrCompositionFailed)
	}
	return out, nil
}

func summaryPrompt(text string, page []models.Plan, total, offset int) string {
	var list strings.Builder
	for i, p := range page {
		fmt.Fprintf(&list, "%d. ₹%s, %s, %s days", offset+i+1, p.Price.String(), p.Data, validityText(p))
		if p.Benefits != "" {
			list.WriteString(", Features: " + p.Benefits)
		}
		if p.AdditionalBenefits != "" {
			list.WriteString(", Extra: " + p.AdditionalBenefits)
		}
		list.WriteString("\n")
	}

	return fmt.Sprintf(`You're a helpful, friendly telecom plan expert chatting with a user.
The user said: %q
Here are the matching plans to show (out of %d total):
%s
Please:
- Say 'Hi' or 'Hey there'.
- Briefly summarize what you found.
- Highlight any good value or standout plans (mention plan number).
- Point out differences useful to the user's query (OTT, validity, price, data).
- Suggest a next action (e.g. "ask for more plans", "change budget").
Keep your reply concise, conversational and natural.`, text, total, list.String())
}

// Format renders the deterministic reply for a page.
func Format(f models.Filter, page []models.Plan, total, offset int) string {
	if len(page) == 0 {
		return fmt.Sprintf("Sorry, no %s found. Try changing your filters!", f.Describe())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Showing %d %s:\n\n", len(page), f.Describe())
	for i, p := range page {
		fmt.Fprintf(&b, "%d. ₹%s: %s, %s days", offset+i+1, p.Price.String(), p.Data, validityText(p))
		if p.Benefits != "" {
			fmt.Fprintf(&b, " (%s)", p.Benefits)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n(Showing %d–%d of %d)", offset+1, offset+len(page), total)
	if total > offset+len(page) {
		b.WriteString("\n" + MoreHint)
	}
	return b.String()
}

func validityText(p models.Plan) string {
	if p.ValidityDays > 0 {
		return strconv.Itoa(p.ValidityDays)
	}
	if p.Validity != "" {
		return p.Validity
	}
	return "?"
}
