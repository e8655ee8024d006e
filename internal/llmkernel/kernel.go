package llmkernel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/goframe/llms"

	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/depanalyzer"
	"github.com/sevigo/reposcribe/internal/scanner"
)

// maxToolIterations bounds the prompt/tool-call loop. A model that keeps
// requesting tools past this point is treated as stuck; the kernel returns
// whatever final text it last produced rather than looping forever.
const maxToolIterations = 8

// Kernel wraps one LLM client plus the prompt registry a Stage Runner
// renders prompts against. One Kernel is built per repository working
// tree (tools are scoped to repoRoot) and reused across that
// repository's stages; the tool set itself is rebuilt fresh on every
// Invoke* call, each bound to its own DocumentContext, since
// DocumentContext is a per-request side-effect log (spec §4.C) rather
// than something a Kernel accumulates for its whole lifetime.
type Kernel struct {
	model    llms.Model
	prompts  *PromptManager
	provider string
	logger   *slog.Logger

	repoRoot string
	ignore   *scanner.IgnoreSet
	compress bool
	depModel *depanalyzer.ProjectModel
}

// NewKernel constructs a Kernel scoped to repoRoot. depModel, when
// non-nil, is the already-initialized Dependency Analyzer result for this
// repository; passing nil omits the dependency-analysis tools entirely,
// matching Document.EnableCodeDependencyAnalysis = false.
func NewKernel(ctx context.Context, cfg *config.Config, repoRoot string, ignore *scanner.IgnoreSet, depModel *depanalyzer.ProjectModel, modelName string, logger *slog.Logger) (*Kernel, error) {
	llm, err := newModel(ctx, &cfg.LLM, modelName, logger)
	if err != nil {
		return nil, fmt.Errorf("construct llm client: %w", err)
	}
	prompts, err := NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("load prompt library: %w", err)
	}
	return &Kernel{
		model:    llm,
		prompts:  prompts,
		provider: providerKeyFor(&cfg.LLM),
		logger:   logger,
		repoRoot: repoRoot,
		ignore:   ignore,
		compress: cfg.Document.EnableCodeCompression,
		depModel: depModel,
	}, nil
}

// InvokePrompt renders key (with an optional classification variant)
// against data, then drives the tool-call loop until the model emits no
// further TOOL_CALL lines, returning the content of the section wrapped
// in tag — falling back to a ```json``` fence, then to the raw trimmed
// output, per the Prompt Library's three-tier extraction contract
// (ExtractResult). Pass an empty tag for templates with no wrapper
// (GenerateMindMap); the caller then applies its own post-processing
// (StripTag, ParseClassifyTag, ...). docCtx may be nil when the caller
// doesn't need the accessed-file log (only PerDocStage persists it, onto
// DocumentFileItem.SourceFiles). A tool's own error is turned into a
// string and fed back to the model rather than aborting the invocation,
// per spec's tool-error-as-string propagation.
func (k *Kernel) InvokePrompt(ctx context.Context, key PromptKey, classificationVariant string, data any, tag string, docCtx *DocumentContext) (string, error) {
	prompt, err := k.prompts.Render(key, classificationVariant, k.provider, data)
	if err != nil {
		return "", fmt.Errorf("render prompt %s: %w", key, err)
	}
	return k.runLoop(ctx, prompt, tag, docCtx)
}

// InvokeStreaming behaves like InvokePrompt but reports each raw model
// response as it arrives via onChunk, for stages that want progress
// visibility (e.g. PerDocStage over a long catalogue). The final returned
// string is still the fully extracted tagged section.
func (k *Kernel) InvokeStreaming(ctx context.Context, key PromptKey, classificationVariant string, data any, tag string, docCtx *DocumentContext, onChunk func(string)) (string, error) {
	prompt, err := k.prompts.Render(key, classificationVariant, k.provider, data)
	if err != nil {
		return "", fmt.Errorf("render prompt %s: %w", key, err)
	}
	return k.runLoop(ctx, prompt, tag, docCtx, onChunk)
}

func (k *Kernel) runLoop(ctx context.Context, prompt, tag string, docCtx *DocumentContext, onChunk ...func(string)) (string, error) {
	if docCtx == nil {
		docCtx = NewDocumentContext()
	}
	tools := buildTools(k.repoRoot, k.ignore, k.compress, k.depModel, docCtx)

	var transcript strings.Builder
	transcript.WriteString(prompt)

	var last string
	for i := 0; i < maxToolIterations; i++ {
		resp, err := k.model.Call(ctx, transcript.String())
		if err != nil {
			return "", fmt.Errorf("llm call: %w", err)
		}
		last = resp
		for _, fn := range onChunk {
			fn(resp)
		}

		calls := extractToolCalls(resp)
		if len(calls) == 0 {
			break
		}

		transcript.WriteString("\n")
		transcript.WriteString(resp)
		transcript.WriteString("\n")
		for _, call := range calls {
			tool, ok := tools[call.Name]
			if !ok {
				transcript.WriteString(fmt.Sprintf("TOOL_RESULT %s: error: unknown tool\n", call.Name))
				continue
			}
			result, err := tool(call.Args)
			if err != nil {
				transcript.WriteString(fmt.Sprintf("TOOL_RESULT %s: error: %v\n", call.Name, err))
				continue
			}
			transcript.WriteString(fmt.Sprintf("TOOL_RESULT %s:\n%s\n", call.Name, result))
		}
	}

	return ExtractResult(last, tag), nil
}
