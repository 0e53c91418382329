package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra"
)

// Analysis — качественная оценка актива моделью
type Analysis struct {
	Score   float64
	Reasons []string
}

// Caller — контракт "сырого" вызова AI-провайдера. Ошибки здесь еще живые:
// их гасит верхний слой (Assessor), подменяя нейтральным fallback-ом.
type Caller interface {
	Assess(ctx context.Context, asset *domain.Asset) (Analysis, error)
}

// OpenAIClient ходит в chat/completions внешнего провайдера.
// Провайдер говорит по HTTPS+JSON, поэтому транспорт — net/http.
type OpenAIClient struct {
	cfg        infra.OpenAIConfig
	httpClient *http.Client
}

func NewOpenAIClient(cfg infra.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		cfg: cfg,
		// Таймаут клиента — страховка поверх контекстного дедлайна
		httpClient: &http.Client{Timeout: cfg.Timeout + 5*time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Assess выполняет один вызов модели. Ретраев нет сознательно:
// контракт пайплайна — одна попытка, любой сбой уходит в fallback.
func (c *OpenAIClient) Assess(ctx context.Context, asset *domain.Asset) (Analysis, error) {
	// Защитный предел на уровне вызова
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: buildPrompt(asset)}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(c.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Analysis{}, fmt.Errorf("ai provider call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Тело нужно только для диагностики, ограничиваем размер
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Analysis{}, fmt.Errorf("ai provider returned %d: %s", resp.StatusCode, string(snippet))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Analysis{}, fmt.Errorf("failed to decode provider response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Analysis{}, fmt.Errorf("provider response contains no choices")
	}

	return parseVerdict(parsed.Choices[0].Message.Content)
}

// aiVerdict — строгая схема ответа модели.
// Score как указатель: отличаем "поле отсутствует" от честного нуля.
type aiVerdict struct {
	Status          string   `json:"status"`
	Score           *float64 `json:"score"`
	Reasons         []string `json:"reasons"`
	Recommendations []string `json:"recommendations"`
}

// parseVerdict валидирует JSON-вердикт модели по схеме.
// Никакого parse-and-trust: несоответствие любого поля — ошибка (и fallback выше).
func parseVerdict(content string) (Analysis, error) {
	content = stripJSONFence(content)

	var v aiVerdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return Analysis{}, fmt.Errorf("malformed ai verdict json: %w", err)
	}

	switch domain.ComplianceStatus(v.Status) {
	case domain.StatusHalal, domain.StatusHaram, domain.StatusDoubtful:
	default:
		return Analysis{}, fmt.Errorf("unexpected ai verdict status %q", v.Status)
	}

	if v.Score == nil || *v.Score < 0 || *v.Score > 1 {
		return Analysis{}, fmt.Errorf("ai verdict score out of range")
	}

	reasons := v.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return Analysis{Score: *v.Score, Reasons: reasons}, nil
}

// stripJSONFence срезает markdown-ограду ```json ... ```, в которую модели
// любят заворачивать ответ несмотря на инструкции.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func buildPrompt(asset *domain.Asset) string {
	description := asset.Description
	if description == "" {
		description = "No description available"
	}
	whitepaper := asset.WhitepaperContent
	if whitepaper == "" {
		whitepaper = "No whitepaper available"
	}

	return fmt.Sprintf(`As an Islamic finance expert, analyze the following asset for Sharia compliance:

Asset: %s (%s)
Type: %s
Description: %s
Whitepaper Content: %s

Evaluate based on:
1. Riba (Interest) prohibition
2. Gharar (Excessive uncertainty) prohibition
3. Haram sector involvement
4. AAOIFI standards for Islamic financial institutions
5. Modern Islamic finance principles

Provide:
1. Compliance status (halal/haram/doubtful)
2. Confidence score (0-1)
3. Specific reasons for the assessment
4. Recommendations if doubtful

Format your response as JSON:
{
  "status": "halal|haram|doubtful",
  "score": 0.0-1.0,
  "reasons": ["reason1", "reason2"],
  "recommendations": ["rec1", "rec2"]
}`, asset.Name, asset.Symbol, asset.AssetType, description, whitepaper)
}
