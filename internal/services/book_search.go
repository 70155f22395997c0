package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bookscope/bookscope/internal/config"
)

// BookInfo is one recommendation returned by the book search.
type BookInfo struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Year        string `json:"year"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// BookSearchService talks to the Groq chat-completions API (OpenAI wire
// format) to turn a free-text description into concrete book matches.
type BookSearchService struct {
	cfg    *config.Config
	client *http.Client
}

func NewBookSearchService(cfg *config.Config) *BookSearchService {
	return &BookSearchService{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Search asks for exactly 10 real books matching the description.
func (s *BookSearchService) Search(ctx context.Context, description, additionalDetails string, excludeTitles []string) ([]BookInfo, error) {
	details := additionalDetails
	if details == "" {
		details = "No additional constraints"
	}
	excluded := "None yet"
	if len(excludeTitles) > 0 {
		excluded = strings.Join(excludeTitles, ", ")
	}

	prompt := fmt.Sprintf(`You are a knowledgeable librarian assistant. Find exactly 10 books that match the following criteria:

PRIMARY CRITERIA: %s
ADDITIONAL DETAILS: %s

For each book, provide:
1. Title (exact, official title)
2. Author(s) (full name(s))
3. Publication year (original publication date)
4. Genre/Type (e.g., thriller, biography, sci-fi, mystery, romance, fantasy, historical fiction, horror, non-fiction, memoir, etc.)
5. Description (exactly 2 sentences that synthesize the book's plot, themes, or main content - NOT why it matches the criteria)

Format your response as a valid JSON array with this exact structure:
[
    {
        "title": "Book Title",
        "author": "Author Name",
        "year": "YYYY",
        "type": "genre/type",
        "description": "First sentence about the book. Second sentence about the book."
    }
]

IMPORTANT:
- Only include real, published books
- Provide accurate publication dates and genres
- The description must be a synthesis of the book itself (plot, themes, content), not an explanation of why it matches the search
- Each description must be exactly 2 complete sentences
- Ensure variety in your selections
- Avoid books already suggested: %s`, description, details, excluded)

	content, err := s.complete(ctx, "You are a helpful librarian assistant who provides accurate book recommendations in JSON format.", prompt)
	if err != nil {
		return nil, err
	}

	var books []BookInfo
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &books); err != nil {
		return nil, fmt.Errorf("parsing book search response: %w", err)
	}
	return books, nil
}

// Complete runs one plain completion; the report generator uses it to
// write section bodies.
func (s *BookSearchService) Complete(ctx context.Context, system, prompt string) (string, error) {
	return s.complete(ctx, system, prompt)
}

func (s *BookSearchService) complete(ctx context.Context, system, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: s.cfg.GroqModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.5,
		MaxTokens:   2000,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GroqAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.GroqAPIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("groq returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding groq response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// its JSON in.
func stripCodeFence(content string) string {
	if strings.Contains(content, "```json") {
		content = strings.Split(content, "```json")[1]
		content = strings.Split(content, "```")[0]
	} else if strings.Contains(content, "```") {
		parts := strings.Split(content, "```")
		if len(parts) >= 2 {
			content = parts[1]
		}
	}
	return strings.TrimSpace(content)
}
