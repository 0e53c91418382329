package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/domain"
	"github.com/xela07ax/shariaai-compliance-prototype/internal/infra"
)

func testAsset() *domain.Asset {
	return &domain.Asset{
		ID:          "a1",
		Symbol:      "TST",
		Name:        "TestCoin",
		AssetType:   domain.AssetCrypto,
		Description: "A test asset",
	}
}

func newTestClient(serverURL string) *OpenAIClient {
	return NewOpenAIClient(infra.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "gpt-4-turbo-preview",
		Timeout: 5 * time.Second,
	})
}

// chatReply оборачивает текст в формат ответа chat/completions
func chatReply(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"content":%q}}]}`, content)
}

func TestAssessParsesVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, chatReply(`{"status":"halal","score":0.9,"reasons":["clean business model"]}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Assess(context.Background(), testAsset())
	require.NoError(t, err)
	assert.InDelta(t, 0.9, res.Score, 1e-9)
	assert.Equal(t, []string{"clean business model"}, res.Reasons)
}

func TestAssessHandlesMarkdownFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fenced := "```json\n{\"status\":\"doubtful\",\"score\":0.5,\"reasons\":[]}\n```"
		fmt.Fprint(w, chatReply(fenced))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Assess(context.Background(), testAsset())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.Score, 1e-9)
}

func TestAssessRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Assess(context.Background(), testAsset())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestAssessRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Assess(context.Background(), testAsset())
	assert.Error(t, err)
}

func TestParseVerdictValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid haram verdict", `{"status":"haram","score":0.1,"reasons":["gambling"]}`, false},
		{"nil reasons normalized", `{"status":"halal","score":0.9}`, false},
		{"broken json", `{status: halal`, true},
		{"unknown status", `{"status":"maybe","score":0.5,"reasons":[]}`, true},
		{"missing score", `{"status":"halal","reasons":[]}`, true},
		{"score above range", `{"status":"halal","score":1.5,"reasons":[]}`, true},
		{"score below range", `{"status":"haram","score":-0.1,"reasons":[]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseVerdict(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, res.Reasons)
		})
	}
}

func TestBuildPromptFallbackPlaceholders(t *testing.T) {
	asset := testAsset()
	asset.Description = ""
	asset.WhitepaperContent = ""

	prompt := buildPrompt(asset)
	assert.Contains(t, prompt, "No description available")
	assert.Contains(t, prompt, "No whitepaper available")
	assert.Contains(t, prompt, "TestCoin (TST)")
}
