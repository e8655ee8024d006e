package pipeline

import (
	"context"
	"log/slog"

	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/depanalyzer"
	"github.com/sevigo/reposcribe/internal/gitutil"
	"github.com/sevigo/reposcribe/internal/llmkernel"
	"github.com/sevigo/reposcribe/internal/scanner"
	"github.com/sevigo/reposcribe/internal/storage"
)

// Build assembles a RunContext for one repository run: it loads the
// working tree's gitignore rules, runs the Dependency Analyzer's
// Initialize pass when Document.EnableCodeDependencyAnalysis is set, and
// constructs a Tool Kernel scoped to the working tree. Called once per
// Worker Loop iteration and once per Incremental Updater pass (spec
// §4.G/§4.H share this construction, not the orchestrator run itself).
//
// The kernel's model is LLM.AnalysisModel when dependency-analysis
// tools are exposed (the heavier code-reasoning path spec §6 calls out as
// a distinct config knob) and ChatModel otherwise.
func Build(ctx context.Context, cfg *config.Config, store storage.Store, gitClient *gitutil.Client, logger *slog.Logger, repo *core.Repository, doc *core.Document, workingTree string) (*RunContext, error) {
	ignore := scanner.LoadIgnoreSet(workingTree)

	var depModel *depanalyzer.ProjectModel
	modelName := cfg.LLM.ChatModel
	if cfg.Document.EnableCodeDependencyAnalysis {
		paths, err := scanner.Scan(workingTree, ignore)
		if err != nil {
			logger.WarnContext(ctx, "dependency analyzer scan failed, continuing without dependency tools", "repository.id", repo.ID, "error", err)
		} else {
			var files []string
			for _, p := range paths {
				if p.Kind == scanner.KindFile {
					files = append(files, p.RelPath)
				}
			}
			analyzer := depanalyzer.NewAnalyzer(logger)
			model, err := analyzer.Initialize(ctx, workingTree, files)
			if err != nil {
				logger.WarnContext(ctx, "dependency analyzer initialize failed, continuing without dependency tools", "repository.id", repo.ID, "error", err)
			} else {
				depModel = model
				modelName = cfg.LLM.AnalysisModel
			}
		}
	}

	kernel, err := llmkernel.NewKernel(ctx, cfg, workingTree, ignore, depModel, modelName, logger)
	if err != nil {
		return nil, err
	}

	return &RunContext{
		Repository:  repo,
		Document:    doc,
		Kernel:      kernel,
		Store:       store,
		GitClient:   gitClient,
		Config:      cfg,
		Ignore:      ignore,
		WorkingTree: workingTree,
		Logger:      logger,
	}, nil
}
