package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/clearchart/intake/internal/shared/config"
	"github.com/clearchart/intake/internal/shared/errors"
)

// Fixed sampling parameters for the synchronous backend. These are part of
// the report contract, not user-tunable.
const (
	geminiMaxOutputTokens = 4096
	geminiTemperature     = 0.3
	geminiTopP            = 0.8
	geminiTopK            = 40
)

// GeminiClient is the synchronous generation backend: one generateContent
// call, text in the response or a typed error.
type GeminiClient struct {
	baseURL string
	model   string
	apiKey  string
	http    doer
	log     *logrus.Logger
}

// NewGemini creates the synchronous backend client.
func NewGemini(cfg config.GenerationConfig, apiKey string, log *logrus.Logger) *GeminiClient {
	return &GeminiClient{
		baseURL: cfg.GeminiBaseURL,
		model:   cfg.GeminiModel,
		apiKey:  apiKey,
		http:    newBreakerDoer("gemini", newHTTPClient()),
		log:     log,
	}
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt to the hosted model and returns its text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.Unconfigured("gemini api key")
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: geminiMaxOutputTokens,
			Temperature:     geminiTemperature,
			TopP:            geminiTopP,
			TopK:            geminiTopK,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Internal(err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).Error("gemini call failed")
		return "", errors.Upstream(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.WithField("status", resp.StatusCode).Error("gemini returned non-200")
		return "", errors.Upstream(fmt.Errorf("gemini returned %d: %s", resp.StatusCode, msg))
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Upstream(fmt.Errorf("decoding gemini response: %w", err))
	}

	text := ""
	if len(out.Candidates) > 0 && len(out.Candidates[0].Content.Parts) > 0 {
		text = out.Candidates[0].Content.Parts[0].Text
	}
	if text == "" {
		return "", errors.NoResponse("model returned an empty response")
	}
	return text, nil
}
