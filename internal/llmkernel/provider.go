package llmkernel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/anthropic"
	"github.com/sevigo/goframe/llms/azureopenai"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"
	"github.com/sevigo/goframe/llms/openai"

	"github.com/sevigo/reposcribe/internal/config"
)

// UnsupportedProvider is returned when Config.LLM.ModelProvider names a
// string LLMConfig.Validate does not recognize.
type UnsupportedProvider struct {
	Provider string
}

func (e *UnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %s", e.Provider)
}

// newModel constructs the llms.Model for a given model name using the
// provider selected in cfg, following the teacher's createGeneratorLLM
// provider switch.
func newModel(ctx context.Context, cfg *config.LLMConfig, modelName string, logger *slog.Logger) (llms.Model, error) {
	switch cfg.ModelProvider {
	case "ollama":
		opts := []ollama.Option{
			ollama.WithHTTPClient(newHTTPClient()),
			ollama.WithModel(modelName),
			ollama.WithLogger(logger),
		}
		if cfg.OllamaHost != "" {
			opts = append(opts, ollama.WithServerURL(cfg.OllamaHost))
		}
		return ollama.New(opts...)

	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires LLM.GeminiAPIKey")
		}
		return gemini.New(ctx,
			gemini.WithModel(modelName),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)

	case "openai":
		if cfg.ChatAPIKey == "" {
			return nil, fmt.Errorf("openai provider requires LLM.ChatAPIKey")
		}
		opts := []openai.Option{
			openai.WithAPIKey(cfg.ChatAPIKey),
			openai.WithModel(modelName),
		}
		if cfg.Endpoint != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Endpoint))
		}
		return openai.New(ctx, opts...)

	case "azureopenai":
		if cfg.ChatAPIKey == "" || cfg.Endpoint == "" {
			return nil, fmt.Errorf("azureopenai provider requires LLM.ChatAPIKey and LLM.Endpoint")
		}
		return azureopenai.New(ctx,
			azureopenai.WithAPIKey(cfg.ChatAPIKey),
			azureopenai.WithEndpoint(cfg.Endpoint),
			azureopenai.WithModel(modelName),
		)

	case "anthropic":
		if cfg.ChatAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires LLM.ChatAPIKey")
		}
		return anthropic.New(ctx,
			anthropic.WithAPIKey(cfg.ChatAPIKey),
			anthropic.WithModel(modelName),
		)

	default:
		return nil, &UnsupportedProvider{Provider: cfg.ModelProvider}
	}
}
