package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrRateLimited marks an HTTP 429 from the model endpoint. Callers never
// see it: every operation converts it into a fixed fallback value.
var ErrRateLimited = errors.New("gemini: rate limited")

// rateLimitFallback is Lumi's stock line when the backend is throttling.
const rateLimitFallback = "Lumi is resting right now. Let's save some energy! ✨"

const advicePersona = "You are Lumi, a cute and helpful financial assistant. " +
	"Give one very short (max 6 words) proactive financial tip. Be friendly, " +
	"help the user reach their dream faster, and use emoji."

const receiptPersona = "Analyze this receipt. Extract the merchant name, the total " +
	"amount and a category from: 'Groceries', 'Apparel', 'Auto', 'Other', 'Dining', " +
	"'Entertainment'. Decide whether the purchase was smart (isSmartBuy: discounts or " +
	"deals) or wasteful (isWasteful: luxury or impulse buys), estimate savingsAmount, " +
	"and write a feedbackMessage of at most 5 words. Return ONLY JSON."

// Client wraps the advice, NLU and vision calls against the Generative
// Language API. Calls are independent; nothing is cached.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	log        zerolog.Logger
	today      func() string
}

// NewClient builds a client for the given model. An empty baseURL picks
// the public endpoint; tests point it at an httptest server.
func NewClient(baseURL, apiKey, model string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With().Str("component", "gemini").Logger(),
		today:      func() string { return time.Now().Format("2006-01-02") },
	}
}

// FetchAdvice asks for a short proactive suggestion for the given numbers.
// Rate limiting degrades to a fixed line; other failures propagate.
func (c *Client) FetchAdvice(ctx context.Context, budget, spent float64, dreamName string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{
			Text: fmt.Sprintf("Budget: $%.2f, Spent: $%.2f, Dream: %s", budget, spent, dreamName),
		}}}},
		SystemInstruction: &content{Parts: []part{{Text: advicePersona}}},
	}

	text, err := c.generate(ctx, req)
	if errors.Is(err, ErrRateLimited) {
		c.log.Warn().Msg("advice rate limited, using fallback")
		return rateLimitFallback, nil
	}
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return "Keep saving for your dream with me! ✨", nil
	}
	return text, nil
}

// ClassifyCommand maps free text onto one of the five intents. Rate
// limiting degrades to an UNKNOWN result with the fallback feedback; other
// failures propagate. A malformed body is treated as an empty object.
func (c *Client) ClassifyCommand(ctx context.Context, text string) (CommandResult, error) {
	persona := fmt.Sprintf("Today is %s. You are Lumi, an AI financial assistant. "+
		"If the user asks to split a bill, compute the per-person amount and return "+
		"'splitDetails'. If the user adds an expense in text, judge 'isSmartBuy' or "+
		"'isWasteful'. For settings use the actions SET_BUDGET or SET_DREAM. If the "+
		"command is unclear, politely ask for detail in 'feedbackMessage'. Return ONLY JSON.",
		c.today())

	req := generateRequest{
		Contents:          []content{{Parts: []part{{Text: text}}}},
		SystemInstruction: &content{Parts: []part{{Text: persona}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   commandSchema(),
		},
	}

	raw, err := c.generate(ctx, req)
	if errors.Is(err, ErrRateLimited) {
		c.log.Warn().Msg("classify rate limited, using fallback")
		return CommandResult{Intent: IntentUnknown, Feedback: rateLimitFallback}, nil
	}
	if err != nil {
		return CommandResult{}, err
	}

	var payload commandPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		c.log.Warn().Err(err).Str("raw", raw).Msg("malformed NLU payload")
		payload = commandPayload{}
	}
	return normalizeCommand(payload), nil
}

// ExtractReceipt sends a photo and returns structured purchase fields with
// the defaulting policy already applied. Rate limiting degrades to a
// defaults-only extraction with the fallback feedback; other failures
// propagate.
func (c *Client) ExtractReceipt(ctx context.Context, image []byte) (ReceiptExtraction, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &blob{
				MIMEType: "image/jpeg",
				Data:     base64.StdEncoding.EncodeToString(image),
			}},
			{Text: "Analyze this receipt. Extract the data as JSON."},
		}}},
		SystemInstruction: &content{Parts: []part{{Text: receiptPersona}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   receiptSchema(),
		},
	}

	raw, err := c.generate(ctx, req)
	if errors.Is(err, ErrRateLimited) {
		c.log.Warn().Msg("receipt scan rate limited, using fallback")
		rec := normalizeReceipt(receiptPayload{})
		rec.Feedback = rateLimitFallback
		return rec, nil
	}
	if err != nil {
		return ReceiptExtraction{}, err
	}

	var payload receiptPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		c.log.Warn().Err(err).Str("raw", raw).Msg("malformed receipt payload")
		payload = receiptPayload{}
	}
	return normalizeReceipt(payload), nil
}

func (c *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Msg("gemini request failed")
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API error: %d - %s", resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Error().Err(err).Msg("failed to decode gemini response")
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out.text(), nil
}
