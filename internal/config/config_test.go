package config

import "testing"

func TestLLMConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  LLMConfig
		wantErr bool
	}{
		{name: "ollama needs nothing", config: LLMConfig{ModelProvider: "ollama"}, wantErr: false},
		{name: "gemini requires api key", config: LLMConfig{ModelProvider: "gemini"}, wantErr: true},
		{name: "gemini with api key", config: LLMConfig{ModelProvider: "gemini", GeminiAPIKey: "k"}, wantErr: false},
		{name: "openai requires chat api key", config: LLMConfig{ModelProvider: "openai"}, wantErr: true},
		{name: "openai with chat api key", config: LLMConfig{ModelProvider: "openai", ChatAPIKey: "k"}, wantErr: false},
		{name: "anthropic requires chat api key", config: LLMConfig{ModelProvider: "anthropic"}, wantErr: true},
		{name: "anthropic with chat api key", config: LLMConfig{ModelProvider: "anthropic", ChatAPIKey: "k"}, wantErr: false},
		{name: "azureopenai requires key and endpoint", config: LLMConfig{ModelProvider: "azureopenai", ChatAPIKey: "k"}, wantErr: true},
		{name: "azureopenai with key and endpoint", config: LLMConfig{ModelProvider: "azureopenai", ChatAPIKey: "k", Endpoint: "https://x.openai.azure.com"}, wantErr: false},
		{name: "unrecognized provider", config: LLMConfig{ModelProvider: "bogus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("LLMConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateForServer(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				LLM:      LLMConfig{ModelProvider: "ollama"},
				Document: DocumentConfig{CatalogueFormat: "compact"},
				Worker:   WorkerConfig{LeaseDuration: 45},
			},
			wantErr: false,
		},
		{
			name: "invalid catalogue format",
			config: Config{
				LLM:      LLMConfig{ModelProvider: "ollama"},
				Document: DocumentConfig{CatalogueFormat: "xml"},
				Worker:   WorkerConfig{LeaseDuration: 45},
			},
			wantErr: true,
		},
		{
			name: "non-positive lease duration",
			config: Config{
				LLM:      LLMConfig{ModelProvider: "ollama"},
				Document: DocumentConfig{CatalogueFormat: "compact"},
				Worker:   WorkerConfig{LeaseDuration: 0},
			},
			wantErr: true,
		},
		{
			name: "invalid llm config propagates",
			config: Config{
				LLM:      LLMConfig{ModelProvider: "bogus"},
				Document: DocumentConfig{CatalogueFormat: "compact"},
				Worker:   WorkerConfig{LeaseDuration: 45},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.ValidateForServer(); (err != nil) != tt.wantErr {
				t.Errorf("Config.ValidateForServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateForCLI_OnlyChecksLLM(t *testing.T) {
	cfg := Config{LLM: LLMConfig{ModelProvider: "ollama"}}
	if err := cfg.ValidateForCLI(); err != nil {
		t.Errorf("Config.ValidateForCLI() error = %v, want nil", err)
	}

	cfg.LLM.ModelProvider = "bogus"
	if err := cfg.ValidateForCLI(); err == nil {
		t.Error("Config.ValidateForCLI() error = nil, want error for unsupported provider")
	}
}
