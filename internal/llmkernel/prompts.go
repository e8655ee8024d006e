package llmkernel

import (
	"bytes"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/sevigo/reposcribe/internal/config"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

// PromptKey names one of the eight prompt templates a Stage Runner renders.
type PromptKey string

const (
	PromptOverview                 PromptKey = "overview"
	PromptRepositoryClassification PromptKey = "repository_classification"
	PromptGenerateMindMap          PromptKey = "generate_mind_map"
	PromptAnalyzeCatalogue         PromptKey = "analyze_catalogue"
	PromptGenerateDocs             PromptKey = "generate_docs"
	PromptAnalyzeNewCatalogue      PromptKey = "analyze_new_catalogue"
	PromptCodeDirSimplifier        PromptKey = "code_dir_simplifier"
	PromptGenerateReadme           PromptKey = "generate_readme"
)

const defaultProviderKey = "default"

// PromptManager loads and renders the prompt library, grounded on the
// teacher's PromptManager: templates are named "<key>_<provider>.prompt",
// keyed two levels deep (key -> provider -> template) with a "default"
// provider fallback.
type PromptManager struct {
	prompts map[PromptKey]map[string]*template.Template
}

// NewPromptManager reads every embedded prompts/*.prompt file and indexes
// it by key and provider.
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{prompts: map[PromptKey]map[string]*template.Template{}}

	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("read embedded prompts directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		base := strings.TrimSuffix(name, filepath.Ext(name))
		idx := strings.LastIndex(base, "_")
		if idx <= 0 || idx == len(base)-1 {
			return nil, fmt.Errorf("invalid prompt filename %q: expected key_provider.prompt", name)
		}
		key := PromptKey(base[:idx])
		provider := base[idx+1:]

		content, err := promptFiles.ReadFile("prompts/" + name)
		if err != nil {
			return nil, fmt.Errorf("read embedded prompt %s: %w", name, err)
		}
		if err := pm.register(key, provider, string(content)); err != nil {
			return nil, fmt.Errorf("register prompt %s: %w", name, err)
		}
	}
	return pm, nil
}

func (pm *PromptManager) register(key PromptKey, provider, content string) error {
	tmpl, err := template.New(string(key) + "_" + provider).Parse(content)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	if pm.prompts[key] == nil {
		pm.prompts[key] = map[string]*template.Template{}
	}
	pm.prompts[key][provider] = tmpl
	return nil
}

// Get returns the template registered for key and provider, falling back
// to the "default" provider, then erroring if neither exists.
func (pm *PromptManager) Get(key PromptKey, provider string) (*template.Template, error) {
	byProvider, ok := pm.prompts[key]
	if !ok {
		return nil, fmt.Errorf("no prompts registered for key %q", key)
	}
	if tmpl, ok := byProvider[provider]; ok {
		return tmpl, nil
	}
	if tmpl, ok := byProvider[defaultProviderKey]; ok {
		return tmpl, nil
	}
	return nil, fmt.Errorf("no template for key %q, provider %q, and no default available", key, provider)
}

// Render renders key for provider with data. classificationVariant, if
// non-empty, is tried first as "<key>_<classificationVariant lowercased>";
// callers pass the AnalyzeCatalogue variants this way
// (analyze_catalogue_libraries, analyze_catalogue_clitools, ...), falling
// back to the base key when no variant template is registered — a second,
// orthogonal fallback layered on top of the provider fallback above.
func (pm *PromptManager) Render(key PromptKey, classificationVariant, provider string, data any) (string, error) {
	effectiveKey := key
	if classificationVariant != "" {
		variantKey := PromptKey(string(key) + "_" + strings.ToLower(classificationVariant))
		if _, ok := pm.prompts[variantKey]; ok {
			effectiveKey = variantKey
		}
	}

	tmpl, err := pm.Get(effectiveKey, provider)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", effectiveKey, err)
	}
	return buf.String(), nil
}

// providerKeyFor maps a config provider string onto the prompt library's
// provider namespace: ollama and gemini keep their own name (Get falls back
// to "default" when no template exists for them), every other provider
// maps straight to "default".
func providerKeyFor(cfg *config.LLMConfig) string {
	switch cfg.ModelProvider {
	case "ollama", "gemini":
		return cfg.ModelProvider
	default:
		return defaultProviderKey
	}
}
