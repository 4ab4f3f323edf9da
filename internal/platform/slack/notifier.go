// Package slack delivers the partner-submission notification to a Slack
// incoming webhook. Delivery is best-effort: by the time it runs the
// submission is already durably saved, so failures are logged and swallowed,
// never surfaced to the partner.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Submission is the notification payload source: the identity fields of the
// just-submitted hospital plus its catalog.
type Submission struct {
	HospitalName       string
	RepresentativeName string
	Phone              string
	Email              string
	District           string
	Address            string
	DetailedAddress    string
	Products           []Product
}

// Product is one submitted catalog entry with its pricing options.
type Product struct {
	Name     string
	Pricings []Pricing
}

// Pricing is one price line. Prices are minor currency units.
type Pricing struct {
	Description    string
	Price          int64
	PromotionPrice *int64
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.httpClient = c }
}

// Notifier posts Block Kit messages to a Slack incoming webhook.
type Notifier struct {
	webhookURL   string
	adminBaseURL string
	httpClient   *http.Client
	logger       zerolog.Logger
}

// NewNotifier creates a Notifier. An empty webhookURL disables delivery
// (NotifySubmission becomes a no-op), which is how local development runs.
func NewNotifier(webhookURL, adminBaseURL string, logger zerolog.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		webhookURL:   webhookURL,
		adminBaseURL: adminBaseURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// NotifySubmission builds the submission summary and posts it. Errors are
// logged and swallowed.
func (n *Notifier) NotifySubmission(ctx context.Context, sub Submission) {
	if n.webhookURL == "" {
		return
	}

	payload, err := json.Marshal(buildMessage(sub, n.adminBaseURL))
	if err != nil {
		n.logger.Error().Err(err).Msg("slack: marshal payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		n.logger.Error().Err(err).Msg("slack: build request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error().Err(err).Str("hospital", sub.HospitalName).Msg("slack: delivery failed")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Error().
			Int("status", resp.StatusCode).
			Str("hospital", sub.HospitalName).
			Msg("slack: non-2xx response")
		return
	}

	n.logger.Info().Str("hospital", sub.HospitalName).Int("products", len(sub.Products)).Msg("slack: submission notified")
}

// ---------------------------------------------------------------------------
// Block Kit message
// ---------------------------------------------------------------------------

type message struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks"`
}

type block struct {
	Type     string    `json:"type"`
	Text     *textObj  `json:"text,omitempty"`
	Fields   []textObj `json:"fields,omitempty"`
	Elements []element `json:"elements,omitempty"`
}

type textObj struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type element struct {
	Type  string   `json:"type"`
	Text  *textObj `json:"text,omitempty"`
	URL   string   `json:"url,omitempty"`
	Style string   `json:"style,omitempty"`
}

func buildMessage(sub Submission, adminBaseURL string) message {
	msg := message{
		Text: "New hospital partner submission received",
		Blocks: []block{
			{
				Type: "header",
				Text: &textObj{Type: "plain_text", Text: ":hospital: New hospital partner submission", Emoji: true},
			},
			{
				Type: "section",
				Fields: []textObj{
					{Type: "mrkdwn", Text: "*Hospital:*\n" + sub.HospitalName},
					{Type: "mrkdwn", Text: "*Representative:*\n" + sub.RepresentativeName},
				},
			},
			{
				Type: "section",
				Fields: []textObj{
					{Type: "mrkdwn", Text: "*Phone:*\n" + sub.Phone},
					{Type: "mrkdwn", Text: "*Email:*\n" + sub.Email},
				},
			},
			{
				Type: "section",
				Fields: []textObj{
					{Type: "mrkdwn", Text: fmt.Sprintf("*Address:*\n%s %s", sub.Address, sub.DetailedAddress)},
					{Type: "mrkdwn", Text: "*District:*\n" + sub.District},
				},
			},
			{
				Type: "section",
				Fields: []textObj{
					{Type: "mrkdwn", Text: fmt.Sprintf("*Submitted products:*\n%d", len(sub.Products))},
				},
			},
		},
	}

	if detail := productDetail(sub.Products); detail != "" {
		msg.Blocks = append(msg.Blocks, block{
			Type: "section",
			Text: &textObj{Type: "mrkdwn", Text: detail},
		})
	}

	if adminBaseURL != "" {
		msg.Blocks = append(msg.Blocks, block{
			Type: "actions",
			Elements: []element{
				{
					Type:  "button",
					Text:  &textObj{Type: "plain_text", Text: "Open admin dashboard", Emoji: true},
					URL:   adminBaseURL,
					Style: "primary",
				},
			},
		})
	}

	return msg
}

// productDetail renders at most ten products with their pricing lines; a
// longer catalog is truncated with a trailing count.
func productDetail(products []Product) string {
	const maxListed = 10

	var buf bytes.Buffer
	for i, p := range products {
		if i == maxListed {
			fmt.Fprintf(&buf, "_...and %d more_\n", len(products)-maxListed)
			break
		}
		fmt.Fprintf(&buf, "*%s*\n", p.Name)
		for _, pr := range p.Pricings {
			if pr.PromotionPrice != nil {
				fmt.Fprintf(&buf, "  • %s — %d (promo %d)\n", pr.Description, pr.Price, *pr.PromotionPrice)
			} else {
				fmt.Fprintf(&buf, "  • %s — %d\n", pr.Description, pr.Price)
			}
		}
	}
	return buf.String()
}
