// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/interfaces"
)

const DefaultModel = "gemini-2.0-flash"

// Client implements the AdvisoryClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Close closes the client
func (c *Client) Close() error {
	// The genai client doesn't have a Close method
	return nil
}

// SuggestProxy asks the model for a replacement asset to hold while the
// given ticker is harvested. The answer is free text and is passed
// through to the report and audit log untouched.
//
// The wash-sale constraints below exist only as prompt language; nothing
// in this codebase enforces them programmatically. Real enforcement needs
// transaction-level purchase-date history across accounts.
func (c *Client) SuggestProxy(ctx context.Context, ticker string) (string, error) {
	c.logger.Debug().Str("model", c.model).Str("ticker", ticker).Msg("Requesting proxy suggestion")

	prompt := buildProxyPrompt(ticker)

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate proxy suggestion: %w", err)
	}

	return extractTextFromResponse(result)
}

// buildProxyPrompt creates the proxy-asset suggestion prompt.
func buildProxyPrompt(ticker string) string {
	return fmt.Sprintf(`You are a financial research assistant specializing in tax-loss harvesting
strategies. You only recommend or suggest; never give official financial advice.

I am performing a tax-loss harvest on the asset: %s.

Recommend ONE specific "proxy asset" to buy immediately to maintain similar
market exposure, while adhering to these constraints:
- Flag any transaction where an investment is sold at a loss and immediately repurchased.
- Disallow the loss if the same or a substantially identical investment is
  purchased within 30 days before or after the sale (61-day window).
- Apply wash-sale logic across all accounts owned or controlled by the user,
  spouse, or partner, including IRAs and 401(k)s.
- Cover both the exact investment and any substantially identical securities.
- If a wash sale is detected, do not present the transaction as a deductible loss.
- Instruct the user to contact a tax advisor for guidance on tax-loss
  harvesting and the definition of substantially identical investments.

Answer with just the ticker symbol and a five-word explanation, e.g.:
IVV (Tracks S&P 500 like SPY)`, ticker)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// Ensure Client implements AdvisoryClient
var _ interfaces.AdvisoryClient = (*Client)(nil)
