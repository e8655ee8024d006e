// Package worker implements the Worker Loop (spec §4.G): a single
// long-running background task per process that leases pending repository
// rows from the store, materializes a working tree, and drives the
// Pipeline Orchestrator over it. Concurrency across worker processes is
// coordinated exclusively through the store's atomic lease (spec §5);
// this package never assumes it is the only worker running.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/gitutil"
	"github.com/sevigo/reposcribe/internal/pipeline"
	"github.com/sevigo/reposcribe/internal/storage"
)

// idlePollInterval is the spec's fixed "sleep 5 seconds, continue" delay
// when no claimable row is found (spec §4.G step 2). It does not read
// Worker.PollInterval; the lease length comes from Worker.LeaseDuration.
const idlePollInterval = 5 * time.Second

// Loop is one worker process's claim/process cycle. ID identifies this
// process as the lease owner; multiple Loops (in-process or across
// machines) may share a Store safely.
type Loop struct {
	ID        string
	Cfg       *config.Config
	Store     storage.Store
	GitClient *gitutil.Client
	Logger    *slog.Logger
}

// New returns a Loop with a freshly generated worker ID.
func New(cfg *config.Config, store storage.Store, gitClient *gitutil.Client, logger *slog.Logger) *Loop {
	id := uuid.NewString()
	return &Loop{
		ID:        id,
		Cfg:       cfg,
		Store:     store,
		GitClient: gitClient,
		Logger:    logger.With("component", "worker", "worker.id", id[:8]),
	}
}

// Run blocks, repeatedly claiming and processing one repository at a
// time, until ctx is canceled. Each iteration is spec §4.G's loop body.
func (l *Loop) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		processed, err := l.tick(ctx)
		if err != nil {
			l.Logger.ErrorContext(ctx, "worker tick failed", "error", err)
		}
		if !processed {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idlePollInterval):
			}
		}
	}
}

// tick claims at most one repository and processes it to completion (or
// failure). It reports whether a row was claimed, so Run knows whether to
// sleep before the next attempt.
func (l *Loop) tick(ctx context.Context) (bool, error) {
	repo, err := l.Store.ClaimRepository(ctx, l.ID, l.Cfg.Worker.LeaseDuration)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("claim repository: %w", err)
	}

	l.process(ctx, repo)
	return true, nil
}

// process runs spec §4.G steps 3-4 for one claimed repository: resolve
// the working tree (clone/pull for git, pass-through for file), upsert
// its Document, drive the orchestrator, and write the single terminal
// status update.
func (l *Loop) process(ctx context.Context, repo *core.Repository) {
	logger := l.Logger.With("repository.id", repo.ID, "repository.type", repo.Type)

	workingTree, err := l.materialize(ctx, repo)
	if err != nil {
		l.fail(ctx, logger, repo, err)
		return
	}

	doc, err := l.Store.UpsertDocument(ctx, &core.Document{
		RepositoryID: repo.ID,
		GitPath:      workingTree,
		Status:       core.StatusProcessing,
	})
	if err != nil {
		l.fail(ctx, logger, repo, fmt.Errorf("upsert document: %w", err))
		return
	}

	rc, err := pipeline.Build(ctx, l.Cfg, l.Store, l.GitClient, logger, repo, doc, workingTree)
	if err != nil {
		l.fail(ctx, logger, repo, fmt.Errorf("build run context: %w", err))
		return
	}

	if err := pipeline.Run(ctx, rc); err != nil {
		l.fail(ctx, logger, repo, err)
		return
	}

	if err := l.Store.UpdateRepositoryFields(ctx, repo.ID, map[string]any{"status": core.StatusCompleted, "last_error": ""}); err != nil {
		logger.ErrorContext(ctx, "failed to write completed status", "error", err)
		return
	}
	if _, err := l.Store.UpsertDocument(ctx, &core.Document{ID: doc.ID, RepositoryID: repo.ID, GitPath: workingTree, Status: core.StatusCompleted, LastUpdate: time.Now()}); err != nil {
		logger.WarnContext(ctx, "failed to mark document completed", "error", err)
	}
	logger.InfoContext(ctx, "repository pipeline completed")
}

// materialize resolves repo's working tree per spec §4.G steps 3a/3b,
// marking the row Processing with clone-resolved fields for git
// repositories along the way. For unsupported types it returns an error
// whose message the caller persists verbatim as spec requires.
func (l *Loop) materialize(ctx context.Context, repo *core.Repository) (string, error) {
	switch repo.Type {
	case core.RepoTypeGit:
		return l.cloneOrPull(ctx, repo)
	case core.RepoTypeFile:
		if err := l.Store.UpdateRepositoryFields(ctx, repo.ID, map[string]any{"status": core.StatusProcessing}); err != nil {
			return "", fmt.Errorf("mark processing: %w", err)
		}
		return repo.LocalPath, nil
	default:
		return "", fmt.Errorf("unsupported repository type: %q", repo.Type)
	}
}

func (l *Loop) cloneOrPull(ctx context.Context, repo *core.Repository) (string, error) {
	path := filepath.Join(l.Cfg.Storage.RepoPath, repo.ID)

	gitRepo, err := l.GitClient.Open(path)
	if err != nil {
		gitRepo, err = l.GitClient.Clone(ctx, repo.RemoteAddr, path, repo.Branch, repo.Credential)
		if err != nil {
			return "", fmt.Errorf("clone: %w", err)
		}
	} else if err := l.GitClient.Fetch(ctx, gitRepo, repo.Credential); err != nil {
		l.Logger.WarnContext(ctx, "fetch failed on existing working tree, continuing with current checkout", "repository.id", repo.ID, "error", err)
	}

	head, err := l.GitClient.HeadSHA(gitRepo)
	if err != nil {
		return "", fmt.Errorf("resolve head: %w", err)
	}

	name := filepath.Base(path)
	org := organizationFromRemote(repo.RemoteAddr)

	fields := map[string]any{
		"status":          core.StatusProcessing,
		"name":            name,
		"organization":    org,
		"resolved_branch": repo.Branch,
		"local_path":      path,
	}
	if repo.Version == "" {
		fields["version"] = head
	}
	if err := l.Store.UpdateRepositoryFields(ctx, repo.ID, fields); err != nil {
		return "", fmt.Errorf("persist clone metadata: %w", err)
	}
	repo.LocalPath = path
	repo.Name = name
	repo.Organization = org
	repo.ResolvedBranch = repo.Branch
	return path, nil
}

// fail implements spec §4.G step 3f / §7 StageFailed propagation: log, wait
// idlePollInterval, then persist the single terminal Failed write with the
// error text.
func (l *Loop) fail(ctx context.Context, logger *slog.Logger, repo *core.Repository, cause error) {
	logger.ErrorContext(ctx, "repository processing failed", "error", cause)
	select {
	case <-ctx.Done():
		// Shutting down mid-failure: release the lease instead of waiting
		// out idlePollInterval, so another worker can reclaim the row on
		// its next poll rather than wait for the lease to expire.
		if err := l.Store.ReleaseRepository(context.Background(), repo.ID, l.ID); err != nil && !errors.Is(err, storage.ErrLeaseLost) {
			logger.ErrorContext(ctx, "failed to release repository lease on shutdown", "error", err)
		}
		return
	case <-time.After(idlePollInterval):
	}
	if err := l.Store.UpdateRepositoryFields(context.Background(), repo.ID, map[string]any{
		"status":     core.StatusFailed,
		"last_error": cause.Error(),
	}); err != nil {
		logger.ErrorContext(ctx, "failed to persist failure status", "error", err)
	}
}

// organizationFromRemote extracts the "org" segment from a typical
// host/org/repo.git remote address: after stripping an "https://",
// "http://" or "git@" prefix it returns the second-to-last "/"-separated
// segment, or "" when there are fewer than two segments.
func organizationFromRemote(remote string) string {
	trimmed := remote
	for _, prefix := range []string{"https://", "http://", "git@"} {
		if len(trimmed) > len(prefix) && trimmed[:len(prefix)] == prefix {
			trimmed = trimmed[len(prefix):]
			break
		}
	}
	trimmed = filepath.ToSlash(trimmed)
	var parts []string
	for _, seg := range splitNonEmpty(trimmed, '/') {
		parts = append(parts, seg)
	}
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
