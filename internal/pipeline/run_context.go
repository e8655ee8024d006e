package pipeline

import (
	"log/slog"

	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/gitutil"
	"github.com/sevigo/reposcribe/internal/llmkernel"
	"github.com/sevigo/reposcribe/internal/scanner"
	"github.com/sevigo/reposcribe/internal/storage"
)

// RunContext bundles everything a Stage needs: the row being processed,
// its Document, a Tool Kernel scoped to the working tree, and the Store
// to persist into — the same four inputs spec §4.E's stage signature
// names.
type RunContext struct {
	Repository  *core.Repository
	Document    *core.Document
	Kernel      *llmkernel.Kernel
	Store       storage.Store
	GitClient   *gitutil.Client
	Config      *config.Config
	Ignore      *scanner.IgnoreSet
	WorkingTree string
	Logger      *slog.Logger
}
