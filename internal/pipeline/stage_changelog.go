package pipeline

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/sevigo/reposcribe/internal/core"
)

// changeLogCommitLimit bounds how far back ChangeLogStage walks on a
// repository's first run (Repository.Version unset), avoiding an
// unbounded history walk on a large imported repo.
const changeLogCommitLimit = 200

// ChangeLogStage is stage 8: git-only, skipped entirely for RepoTypeFile.
// It always re-runs, replacing the full CommitRecord list with the
// commits since Repository.Version up to the working tree's current HEAD
// (or, when no Version is stored yet, the changeLogCommitLimit most recent
// commits reachable from HEAD), then advances
// Repository.Version to that HEAD so the next run's Incremental Updater
// pass has a base to diff from.
func ChangeLogStage(ctx context.Context, rc *RunContext) error {
	if rc.Repository.Type != core.RepoTypeGit {
		return nil
	}

	repo, err := rc.GitClient.Open(rc.WorkingTree)
	if err != nil {
		return newFatalError("changelog", err)
	}
	headSHA, err := rc.GitClient.HeadSHA(repo)
	if err != nil {
		return newFatalError("changelog", err)
	}

	var commits []*object.Commit
	if rc.Repository.Version != "" {
		commits, err = rc.GitClient.CommitsSince(repo, rc.Repository.Version, headSHA)
		if err != nil {
			return newTransientError("changelog", err)
		}
	} else {
		commits, err = rc.GitClient.RecentCommits(repo, headSHA, changeLogCommitLimit)
		if err != nil {
			return newTransientError("changelog", err)
		}
	}

	records := make([]*core.CommitRecord, 0, len(commits))
	for _, c := range commits {
		title, description := splitCommitMessage(c.Message)
		records = append(records, &core.CommitRecord{
			RepositoryID: rc.Repository.ID,
			Title:        title,
			Description:  description,
			Date:         c.Author.When,
		})
	}

	if err := rc.Store.ReplaceCommitRecords(ctx, rc.Repository.ID, records); err != nil {
		return newFatalError("changelog", err)
	}

	rc.Repository.Version = headSHA
	return rc.Store.UpdateRepositoryFields(ctx, rc.Repository.ID, map[string]any{"version": headSHA})
}

// splitCommitMessage separates a commit message's subject line from its
// body, trimming trailing whitespace from both.
func splitCommitMessage(message string) (title, description string) {
	message = strings.TrimRight(message, "\n")
	idx := strings.IndexByte(message, '\n')
	if idx < 0 {
		return strings.TrimSpace(message), ""
	}
	return strings.TrimSpace(message[:idx]), strings.TrimSpace(message[idx+1:])
}
