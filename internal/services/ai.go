package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/config"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/tools"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/pkg/logger"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// GenerationOptions overrides the resolved model settings for one call. Zero
// values keep the configured defaults.
type GenerationOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// GenerationClient calls the external generative model. It never retries and
// never inspects the returned text.
type GenerationClient interface {
	Generate(ctx context.Context, prompt tools.Prompt, opts GenerationOptions) (string, error)
}

// DefaultConfigSource returns the stored default model endpoint, if any.
type DefaultConfigSource interface {
	Default() (*models.LLMConfig, error)
}

// LLMClient is the GenerationClient backed by the provider SDKs.
type LLMClient struct {
	cfg        *config.OpenAIConfig
	store      DefaultConfigSource
	breaker    *gobreaker.CircuitBreaker
	httpClient *http.Client
}

// NewLLMClient builds a client for the file config. store may be nil.
func NewLLMClient(cfg *config.OpenAIConfig, store DefaultConfigSource, breakerCfg config.BreakerConfig) *LLMClient {
	c := &LLMClient{
		cfg:        cfg,
		store:      store,
		httpClient: &http.Client{},
	}
	if breakerCfg.Enabled {
		c.breaker = newGenerationBreaker(breakerCfg)
	}
	return c
}

func newGenerationBreaker(cfg config.BreakerConfig) *gobreaker.CircuitBreaker {
	maxFailures := uint32(cfg.MaxFailures)
	if maxFailures == 0 {
		maxFailures = 5
	}
	open := time.Duration(cfg.OpenSeconds) * time.Second
	if open <= 0 {
		open = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "generation",
		MaxRequests: 1,
		Timeout:     open,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Only upstream health problems count against the breaker.
		IsSuccessful: func(err error) bool {
			switch ErrorKind(err) {
			case KindTransient, KindQuotaExceeded:
				return false
			}
			return true
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf("[Generation] Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

// resolve picks the stored default endpoint when present, else the file config.
func (c *LLMClient) resolve(opts GenerationOptions) models.LLMConfig {
	var llm models.LLMConfig
	if c.store != nil {
		if stored, err := c.store.Default(); err == nil && stored != nil {
			llm = *stored
		}
	}
	if llm.ID == 0 {
		llm = models.LLMConfig{
			Name:           "config",
			Provider:       c.cfg.Provider,
			BaseURL:        c.cfg.BaseURL,
			APIKey:         c.cfg.APIKey,
			Model:          c.cfg.Model,
			MaxTokens:      c.cfg.MaxTokens,
			Temperature:    c.cfg.Temperature,
			TimeoutSeconds: c.cfg.TimeoutSeconds,
		}
	}
	if llm.Provider == "" {
		llm.Provider = "openai"
	}
	if opts.Model != "" {
		llm.Model = opts.Model
	}
	if opts.MaxTokens > 0 {
		llm.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		llm.Temperature = opts.Temperature
	}
	return llm
}

func (c *LLMClient) timeout(llm *models.LLMConfig) time.Duration {
	if llm.TimeoutSeconds > 0 {
		return time.Duration(llm.TimeoutSeconds) * time.Second
	}
	return c.cfg.Timeout()
}

// Generate sends the prompt to the resolved provider and returns the raw text.
func (c *LLMClient) Generate(ctx context.Context, prompt tools.Prompt, opts GenerationOptions) (string, error) {
	llm := c.resolve(opts)

	if err := precheckCredential(&llm); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout(&llm))
	defer cancel()

	start := time.Now()
	var (
		text string
		err  error
	)
	if c.breaker != nil {
		var res interface{}
		res, err = c.breaker.Execute(func() (interface{}, error) {
			out, callErr := c.callLLM(callCtx, &llm, prompt)
			if callErr != nil {
				// A caller that went away says nothing about upstream health.
				if errors.Is(ctx.Err(), context.Canceled) {
					return nil, &GenerationError{Kind: KindCancelled, Provider: llm.Provider, Err: callErr}
				}
				return nil, classifyError(llm.Provider, callErr)
			}
			return out, nil
		})
		if err == nil {
			text = res.(string)
		} else if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &GenerationError{Kind: KindTransient, Provider: llm.Provider, Err: err}
		}
	} else {
		text, err = c.callLLM(callCtx, &llm, prompt)
		if err != nil {
			err = classifyError(llm.Provider, err)
		}
	}

	if err != nil {
		logger.Warnf("[Generation] %s/%s failed after %v: %v", llm.Provider, llm.Model, time.Since(start), err)
		return "", err
	}
	logger.Debugf("[Generation] %s/%s returned %d chars in %v", llm.Provider, llm.Model, len(text), time.Since(start))
	return text, nil
}

// callLLM dispatches to the provider-specific call based on the Provider field.
func (c *LLMClient) callLLM(ctx context.Context, llm *models.LLMConfig, prompt tools.Prompt) (string, error) {
	switch llm.Provider {
	case "anthropic":
		return c.callAnthropic(ctx, llm, prompt)
	case "ollama":
		return c.callOllama(ctx, llm, prompt)
	case "gemini":
		return c.callGemini(ctx, llm, prompt)
	case "azure":
		return c.callOpenAI(ctx, openai.DefaultAzureConfig(llm.APIKey, llm.BaseURL), llm, prompt)
	default:
		// openai and other OpenAI-compatible services
		cfg := openai.DefaultConfig(llm.APIKey)
		if llm.BaseURL != "" {
			cfg.BaseURL = llm.BaseURL
		}
		return c.callOpenAI(ctx, cfg, llm, prompt)
	}
}

func (c *LLMClient) callOpenAI(ctx context.Context, clientConfig openai.ClientConfig, llm *models.LLMConfig, prompt tools.Prompt) (string, error) {
	clientConfig.HTTPClient = c.httpClient
	client := openai.NewClientWithConfig(clientConfig)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: llm.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.Instruction},
		},
		MaxTokens:   llm.MaxTokens,
		Temperature: float32(llm.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *LLMClient) callAnthropic(ctx context.Context, llm *models.LLMConfig, prompt tools.Prompt) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(llm.APIKey),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
	}
	if llm.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(llm.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := int64(llm.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}
	model := llm.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(llm.Temperature),
		System:      []anthropic.TextBlockParam{{Text: prompt.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.Instruction)),
		},
	})
	if err != nil {
		return "", err
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return content.String(), nil
}

func (c *LLMClient) callOllama(ctx context.Context, llm *models.LLMConfig, prompt tools.Prompt) (string, error) {
	baseURL := llm.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, c.httpClient)

	model := llm.Model
	if model == "" {
		model = "llama3"
	}

	stream := false
	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model:  model,
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
		Messages: []api.Message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.Instruction},
		},
		Options: map[string]interface{}{
			"temperature": llm.Temperature,
			"num_predict": llm.MaxTokens,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return content.String(), nil
}

func (c *LLMClient) callGemini(ctx context.Context, llm *models.LLMConfig, prompt tools.Prompt) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     llm.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	model := llm.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	resp, err := client.Models.GenerateContent(ctx, model,
		genai.Text(prompt.System+"\n\n"+prompt.Instruction),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			Temperature:      genai.Ptr(float32(llm.Temperature)),
		},
	)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// precheckCredential rejects obviously unusable credentials without a network
// round trip. Ollama runs locally and needs none.
func precheckCredential(llm *models.LLMConfig) error {
	if llm.Provider == "ollama" {
		return nil
	}
	key := llm.APIKey
	var reason string
	switch {
	case key == "":
		reason = "missing API key"
	case strings.TrimSpace(key) != key || strings.ContainsAny(key, " \t\r\n"):
		reason = "API key contains whitespace"
	case llm.Provider == "anthropic" && !strings.HasPrefix(key, "sk-ant-"):
		reason = "malformed Anthropic API key"
	case (llm.Provider == "openai" || llm.Provider == "") && isDefaultOpenAIEndpoint(llm.BaseURL) && !strings.HasPrefix(key, "sk-"):
		reason = "malformed OpenAI API key"
	}
	if reason == "" {
		return nil
	}
	return &GenerationError{Kind: KindUnauthorized, Provider: llm.Provider, Err: errors.New(reason)}
}

func isDefaultOpenAIEndpoint(baseURL string) bool {
	return baseURL == "" || strings.TrimRight(baseURL, "/") == defaultOpenAIBaseURL
}

// classifyError maps provider SDK and transport errors onto generation kinds.
func classifyError(provider string, err error) error {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	wrap := func(kind string, status int) error {
		return &GenerationError{Kind: kind, Provider: provider, StatusCode: status, Err: err}
	}

	if errors.Is(err, context.Canceled) {
		return wrap(KindCancelled, 0)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return wrap(KindTransient, 0)
	}

	var oaiErr *openai.APIError
	if errors.As(err, &oaiErr) {
		if code, ok := oaiErr.Code.(string); ok && code == "insufficient_quota" {
			return wrap(KindQuotaExceeded, oaiErr.HTTPStatusCode)
		}
		return wrap(statusKind(oaiErr.HTTPStatusCode), oaiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return wrap(statusKind(reqErr.HTTPStatusCode), reqErr.HTTPStatusCode)
	}
	var antErr *anthropic.Error
	if errors.As(err, &antErr) {
		return wrap(statusKind(antErr.StatusCode), antErr.StatusCode)
	}
	var gemErr genai.APIError
	if errors.As(err, &gemErr) {
		return wrap(statusKind(gemErr.Code), gemErr.Code)
	}
	var olErr api.StatusError
	if errors.As(err, &olErr) {
		return wrap(statusKind(olErr.StatusCode), olErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return wrap(KindTransient, 0)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return wrap(KindTransient, 0)
	}
	return wrap(KindUnknown, 0)
}

func statusKind(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests || status == http.StatusPaymentRequired:
		return KindQuotaExceeded
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}
