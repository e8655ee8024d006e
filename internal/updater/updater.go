// Package updater implements the Incremental Updater (spec §4.H): a
// second periodic loop that reconciles completed repositories past a
// staleness threshold by pulling new commits, asking the model which
// catalogue sections the changes affect, and re-running only PerDocStage
// for the nodes that need it. It shares the Pipeline Orchestrator's
// RunContext construction (internal/pipeline.Build) but never walks the
// full eight-stage sequence itself.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/sevigo/reposcribe/internal/config"
	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/gitutil"
	"github.com/sevigo/reposcribe/internal/llmkernel"
	"github.com/sevigo/reposcribe/internal/pipeline"
	"github.com/sevigo/reposcribe/internal/storage"
	"github.com/sevigo/reposcribe/internal/util"
)

// sweepInterval governs how often the updater looks for stale
// repositories; the staleness threshold itself is
// Document.UpdateIntervalDays, a separate and independently configurable
// knob per spec §6.
const sweepInterval = 10 * time.Minute

// Updater drives spec §4.H's reconciliation pass over every repository in
// Store that has gone stale.
type Updater struct {
	Cfg       *config.Config
	Store     storage.Store
	GitClient *gitutil.Client
	Logger    *slog.Logger
}

// New returns an Updater.
func New(cfg *config.Config, store storage.Store, gitClient *gitutil.Client, logger *slog.Logger) *Updater {
	return &Updater{Cfg: cfg, Store: store, GitClient: gitClient, Logger: logger.With("component", "incremental_updater")}
}

// Run blocks, sweeping for stale repositories on sweepInterval until ctx
// is canceled.
func (u *Updater) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	u.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.sweep(ctx)
		}
	}
}

func (u *Updater) sweep(ctx context.Context) {
	staleAfter := time.Duration(u.Cfg.Document.UpdateIntervalDays) * 24 * time.Hour
	repos, err := u.Store.ListStaleCompleted(ctx, staleAfter)
	if err != nil {
		u.Logger.ErrorContext(ctx, "list stale completed repositories failed", "error", err)
		return
	}

	for _, repo := range repos {
		if ctx.Err() != nil {
			return
		}
		logger := u.Logger.With("repository.id", repo.ID)
		if err := u.updateOne(ctx, repo); err != nil {
			logger.ErrorContext(ctx, "incremental update failed", "error", err)
			if ferr := u.Store.UpdateRepositoryFields(ctx, repo.ID, map[string]any{"last_error": err.Error()}); ferr != nil {
				logger.WarnContext(ctx, "failed to persist incremental update error", "error", ferr)
			}
			continue
		}
		logger.InfoContext(ctx, "incremental update completed")
	}
}

// updateOne runs spec §4.H steps 1-5 for a single stale repository.
func (u *Updater) updateOne(ctx context.Context, repo *core.Repository) error {
	if repo.Type != core.RepoTypeGit {
		// file-type repositories have no commit history to diff against;
		// they simply never go stale under this reconciliation path.
		return nil
	}

	doc, err := u.Store.GetDocumentByRepository(ctx, repo.ID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	gitRepo, err := u.GitClient.Open(repo.LocalPath)
	if err != nil {
		return fmt.Errorf("open working tree: %w", err)
	}
	if err := u.GitClient.Fetch(ctx, gitRepo, repo.Credential); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	head, err := u.GitClient.HeadSHA(gitRepo)
	if err != nil {
		return fmt.Errorf("resolve head: %w", err)
	}
	if head == repo.Version {
		// No new commits; push the staleness clock forward so the next
		// sweep doesn't immediately re-pick this repository.
		_, err := u.Store.UpsertDocument(ctx, &core.Document{ID: doc.ID, RepositoryID: repo.ID, GitPath: doc.GitPath, Status: doc.Status, LastUpdate: time.Now()})
		return err
	}

	commits, err := u.GitClient.CommitsSince(gitRepo, repo.Version, head)
	if err != nil {
		return fmt.Errorf("commits since: %w", err)
	}
	added, modified, deleted, err := u.GitClient.Diff(gitRepo, repo.Version, head)
	if err != nil {
		return fmt.Errorf("diff: %w", err)
	}

	nodes, err := u.Store.ListCatalogue(ctx, repo.ID)
	if err != nil {
		return fmt.Errorf("list catalogue: %w", err)
	}

	rc, err := pipeline.Build(ctx, u.Cfg, u.Store, u.GitClient, u.Logger, repo, doc, repo.LocalPath)
	if err != nil {
		return fmt.Errorf("build run context: %w", err)
	}

	raw, err := rc.Kernel.InvokePrompt(ctx, llmkernel.PromptAnalyzeNewCatalogue, repo.Classify, newCatalogueData{
		RepositoryName:    repo.Name,
		ExistingCatalogue: renderCatalogue(nodes),
		ChangedFiles:      renderCommitDiff(commits, added, modified, deleted),
	}, "catalogue_delta", nil)
	if err != nil {
		return fmt.Errorf("analyze new catalogue: %w", err)
	}

	var delta catalogueDelta
	if err := json.Unmarshal([]byte(raw), &delta); err != nil {
		return fmt.Errorf("parse catalogue delta: %w", err)
	}

	if err := u.applyDelta(ctx, repo.ID, nodes, delta); err != nil {
		return fmt.Errorf("apply catalogue delta: %w", err)
	}

	if err := pipeline.PerDocStage(ctx, rc); err != nil {
		return fmt.Errorf("re-run per-doc stage: %w", err)
	}

	records := make([]*core.CommitRecord, 0, len(commits))
	for _, c := range commits {
		title, description := splitMessage(c.Message)
		records = append(records, &core.CommitRecord{RepositoryID: repo.ID, Title: title, Description: description, Date: c.Author.When})
	}
	if len(records) > 0 {
		if err := u.Store.ReplaceCommitRecords(ctx, repo.ID, records); err != nil {
			return fmt.Errorf("replace commit records: %w", err)
		}
	}

	if err := u.Store.UpdateRepositoryFields(ctx, repo.ID, map[string]any{"version": head}); err != nil {
		return fmt.Errorf("persist new version: %w", err)
	}
	if _, err := u.Store.UpsertDocument(ctx, &core.Document{ID: doc.ID, RepositoryID: repo.ID, GitPath: doc.GitPath, Status: core.StatusCompleted, LastUpdate: time.Now()}); err != nil {
		return fmt.Errorf("refresh document last_update: %w", err)
	}
	return nil
}

type catalogueDeltaItem struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type catalogueDelta struct {
	Add    []catalogueDeltaItem `json:"add"`
	Update []catalogueDeltaItem `json:"update"`
	Delete []catalogueDeltaItem `json:"delete"`
}

type newCatalogueData struct {
	RepositoryName    string
	ExistingCatalogue string
	ChangedFiles      string
}

// applyDelta implements spec §4.H step 3: soft-delete removed sections,
// mark updated sections incomplete so PerDocStage regenerates them, and
// insert new placeholder leaves for additions.
func (u *Updater) applyDelta(ctx context.Context, repoID string, existing []*core.DocumentCatalogue, delta catalogueDelta) error {
	byName := map[string]*core.DocumentCatalogue{}
	for _, n := range existing {
		byName[n.Name] = n
	}

	for _, item := range delta.Delete {
		if node, ok := byName[item.Name]; ok {
			if err := u.Store.SoftDeleteCatalogue(ctx, node.ID); err != nil {
				return fmt.Errorf("soft delete %s: %w", node.Title, err)
			}
		}
	}
	for _, item := range delta.Update {
		if node, ok := byName[item.Name]; ok {
			if err := u.Store.MarkCatalogueCompleted(ctx, node.ID, false); err != nil {
				return fmt.Errorf("mark %s incomplete: %w", node.Title, err)
			}
		}
	}
	for i, item := range delta.Add {
		node := &core.DocumentCatalogue{
			RepositoryID: repoID,
			Title:        item.Title,
			Name:         item.Name,
			URLSlug:      util.Slugify(item.Title),
			Description:  item.Description,
			OrderIndex:   len(existing) + i,
			IsCompleted:  false,
		}
		if err := u.Store.InsertCatalogueNode(ctx, node); err != nil {
			return fmt.Errorf("insert catalogue node %s: %w", item.Title, err)
		}
	}
	return nil
}

func renderCatalogue(nodes []*core.DocumentCatalogue) string {
	var b strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&b, "- %s (%s): %s\n", n.Title, n.Name, n.Description)
	}
	return b.String()
}

func renderCommitDiff(commits []*object.Commit, added, modified, deleted []string) string {
	var b strings.Builder
	for _, c := range commits {
		fmt.Fprintf(&b, "<commit>\n%s\n", strings.TrimSpace(c.Message))
		for _, p := range added {
			fmt.Fprintf(&b, " - added: %s\n", p)
		}
		for _, p := range modified {
			fmt.Fprintf(&b, " - modified: %s\n", p)
		}
		for _, p := range deleted {
			fmt.Fprintf(&b, " - deleted: %s\n", p)
		}
		b.WriteString("</commit>\n")
	}
	return b.String()
}

func splitMessage(message string) (title, description string) {
	message = strings.TrimRight(message, "\n")
	idx := strings.IndexByte(message, '\n')
	if idx < 0 {
		return strings.TrimSpace(message), ""
	}
	return strings.TrimSpace(message[:idx]), strings.TrimSpace(message[idx+1:])
}
