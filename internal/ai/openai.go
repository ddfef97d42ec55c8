package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prompt-clash/internal/game"

	"github.com/google/uuid"
)

const (
	themeSystemPrompt = "You suggest short, playful themes for an AI image guessing game. " +
		"Reply with one theme per line, no numbering, no extra text."
	imageSystemPrompt = "You write a single vivid, surprising image prompt for the given theme. " +
		"One sentence, concrete and drawable. Reply with the prompt only."
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to the OpenAI HTTP API. It backs the question, assessment
// and announcer providers; callers own all fallback behavior.
type Client struct {
	apiKey     string
	model      string
	imageModel string
	baseURL    string
	httpClient *http.Client
}

func New(apiKey, model, imageModel string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		imageModel: imageModel,
		baseURL:    "https://api.openai.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Themes(ctx context.Context) ([]string, error) {
	raw, err := c.chat(ctx, themeSystemPrompt, "Suggest 5 themes.", 0.9, 200)
	if err != nil {
		return nil, err
	}
	themes := parseLineList(raw)
	if len(themes) == 0 {
		return nil, errors.New("no themes in response")
	}
	return themes, nil
}

// Generate turns a theme or a player-authored prompt into a round question.
// Player text is used verbatim; otherwise the model writes the prompt from
// the theme first.
func (c *Client) Generate(ctx context.Context, roundNumber int, theme, playerPrompt string) (game.Question, error) {
	prompt := strings.TrimSpace(playerPrompt)
	if prompt == "" {
		subject := strings.TrimSpace(theme)
		if subject == "" {
			subject = "anything unexpected"
		}
		written, err := c.chat(ctx, imageSystemPrompt, "Theme: "+subject, 0.9, 120)
		if err != nil {
			return game.Question{}, err
		}
		prompt = strings.TrimSpace(written)
	}
	if prompt == "" {
		return game.Question{}, errors.New("no image prompt")
	}
	imageURL, err := c.generateImage(ctx, prompt)
	if err != nil {
		return game.Question{}, err
	}
	return game.Question{
		ID:             uuid.NewString(),
		Theme:          theme,
		OriginalPrompt: prompt,
		ImageURL:       imageURL,
		RoundNumber:    roundNumber,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (c *Client) chat(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("OpenAI API key is not configured")
	}
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}
	body, err := c.post(ctx, "/v1/chat/completions", payload)
	if err != nil {
		return "", err
	}
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse OpenAI response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("OpenAI error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("OpenAI returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) generateImage(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(imageRequest{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	})
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}
	body, err := c.post(ctx, "/v1/images/generations", payload)
	if err != nil {
		return "", err
	}
	var parsed imageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse OpenAI response")
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("OpenAI error: %s", parsed.Error.Message)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", errors.New("OpenAI returned no image")
	}
	return parsed.Data[0].URL, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAI request")
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach OpenAI")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAI response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("OpenAI request failed (%d)", resp.StatusCode)
	}
	return body, nil
}

func parseLineList(raw string) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*")
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := strings.ToLower(line)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, line)
		if len(out) == 8 {
			break
		}
	}
	return out
}
