// Package gitutil implements the spec's Git primitive contract: clone,
// pull (fetch+checkout), and diff, plus a remote-HEAD lookup
// (GetRemoteHeadSHA) that reads a branch's head without cloning.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// CloneTimeout bounds a single clone/fetch operation.
const CloneTimeout = 10 * time.Minute

// errStopWalk is a sentinel used only to stop RecentCommits' history walk
// once its limit is reached.
var errStopWalk = errors.New("stop commit walk")

// Client wraps go-git for the pipeline's working-tree needs.
type Client struct {
	Logger *slog.Logger
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Logger: logger}
}

// Open opens a Git repository at a given path.
func (c *Client) Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", path, err)
	}
	return repo, nil
}

// Clone clones a repository to path, checking out the given branch if set.
// Credential is "user:pass"; an empty credential clones as a public remote.
func (c *Client) Clone(ctx context.Context, repoURL, path, branch, credential string) (*git.Repository, error) {
	authURL, err := c.authenticatedURL(repoURL, credential)
	if err != nil {
		return nil, err
	}

	cloneCtx, cancel := context.WithTimeout(ctx, CloneTimeout)
	defer cancel()

	opts := &git.CloneOptions{URL: authURL}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	c.Logger.InfoContext(ctx, "cloning repository", "url", repoURL, "path", path, "branch", branch)
	repo, err := git.PlainCloneContext(cloneCtx, path, false, opts)
	if err != nil {
		return nil, fmt.Errorf("clone repo %q to %q: %w", repoURL, path, err)
	}
	return repo, nil
}

// Fetch fetches updates from the 'origin' remote.
func (c *Client) Fetch(ctx context.Context, repo *git.Repository, credential string, refSpecs ...string) error {
	c.Logger.InfoContext(ctx, "fetching latest changes from origin")

	fetchOptions := &git.FetchOptions{
		RemoteName: "origin",
		Auth:       c.basicAuth(credential),
		Force:      true,
	}
	if len(refSpecs) > 0 {
		specs := make([]config.RefSpec, 0, len(refSpecs))
		for _, spec := range refSpecs {
			specs = append(specs, config.RefSpec(spec))
		}
		fetchOptions.RefSpecs = specs
	}

	fetchCtx, cancel := context.WithTimeout(ctx, CloneTimeout)
	defer cancel()

	err := repo.FetchContext(fetchCtx, fetchOptions)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch from remote: %w", err)
	}
	c.Logger.InfoContext(ctx, "fetch complete")
	return nil
}

// Checkout switches the repository's worktree to a specific commit.
func (c *Client) Checkout(repo *git.Repository, sha string) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(sha), Force: true}); err != nil {
		return fmt.Errorf("checkout commit %q: %w", sha, err)
	}
	return nil
}

// HeadSHA returns the current HEAD commit hash of an open repository.
func (c *Client) HeadSHA(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// GetRemoteHeadSHA fetches the HEAD commit SHA of a remote branch without cloning.
func (c *Client) GetRemoteHeadSHA(ctx context.Context, repoURL, branch, credential string) (string, error) {
	authURL, err := c.authenticatedURL(repoURL, credential)
	if err != nil {
		return "", err
	}

	ref := fmt.Sprintf("refs/heads/%s", branch)
	out, err := exec.CommandContext(ctx, "git", "ls-remote", authURL, ref).Output()
	if err != nil {
		return "", fmt.Errorf("git ls-remote failed: %w (branch %q)", err, branch)
	}

	output := strings.TrimSpace(string(out))
	if output == "" {
		return "", fmt.Errorf("branch %q not found or repository is empty", branch)
	}
	return strings.Fields(output)[0], nil
}

// CommitsSince returns the commits reachable from newSHA but not from
// oldSHA, oldest first — the input to the Incremental Updater's per-commit
// diff summary.
func (c *Client) CommitsSince(repo *git.Repository, oldSHA, newSHA string) ([]*object.Commit, error) {
	newCommit, err := repo.CommitObject(plumbing.NewHash(newSHA))
	if err != nil {
		return nil, fmt.Errorf("get commit object for new SHA %s: %w", newSHA, err)
	}

	var commits []*object.Commit
	iter := object.NewCommitPreorderIter(newCommit, nil, nil)
	err = iter.ForEach(func(commit *object.Commit) error {
		if commit.Hash.String() == oldSHA {
			return object.ErrParentNotFound // sentinel used only to stop the walk
		}
		commits = append(commits, commit)
		return nil
	})
	if err != nil && !errors.Is(err, object.ErrParentNotFound) {
		return nil, fmt.Errorf("walk commits from %s to %s: %w", oldSHA, newSHA, err)
	}

	// iter walked newest-first; reverse for oldest-first.
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

// RecentCommits walks up to limit commits reachable from headSHA, oldest
// first. Used for a repository's first ChangeLogStage run, when there is
// no prior Repository.Version to diff from.
func (c *Client) RecentCommits(repo *git.Repository, headSHA string, limit int) ([]*object.Commit, error) {
	headCommit, err := repo.CommitObject(plumbing.NewHash(headSHA))
	if err != nil {
		return nil, fmt.Errorf("get commit object for head %s: %w", headSHA, err)
	}

	var commits []*object.Commit
	iter := object.NewCommitPreorderIter(headCommit, nil, nil)
	err = iter.ForEach(func(commit *object.Commit) error {
		if len(commits) >= limit {
			return errStopWalk
		}
		commits = append(commits, commit)
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return nil, fmt.Errorf("walk commits from %s: %w", headSHA, err)
	}

	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}
	return commits, nil
}

// Diff calculates the difference between two SHAs in an open repository.
func (c *Client) Diff(repo *git.Repository, oldSHA, newSHA string) (added, modified, deleted []string, err error) {
	oldCommit, err := repo.CommitObject(plumbing.NewHash(oldSHA))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get commit object for old SHA %s: %w", oldSHA, err)
	}
	newCommit, err := repo.CommitObject(plumbing.NewHash(newSHA))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get commit object for new SHA %s: %w", newSHA, err)
	}

	oldTree, err := oldCommit.Tree()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get tree for old commit %s: %w", oldSHA, err)
	}
	newTree, err := newCommit.Tree()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get tree for new commit %s: %w", newSHA, err)
	}

	changes, err := object.DiffTree(oldTree, newTree)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("diff trees between %s and %s: %w", oldSHA, newSHA, err)
	}

	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			c.Logger.Error("failed to get action for change, skipping", "error", err)
			continue
		}
		switch action {
		case merkletrie.Insert:
			added = append(added, change.To.Name)
		case merkletrie.Modify:
			modified = append(modified, change.To.Name)
		case merkletrie.Delete:
			deleted = append(deleted, change.From.Name)
		}
	}
	return added, modified, deleted, nil
}

// CleanupDir removes a working tree, logging but not failing on error.
func (c *Client) CleanupDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		c.Logger.Warn("cleanup failed", "path", path, "err", err)
	}
}

func (c *Client) authenticatedURL(repoURL, credential string) (string, error) {
	if !strings.HasPrefix(repoURL, "https://") && !strings.HasPrefix(repoURL, "http://") {
		return repoURL, nil // SSH/local remotes are used as-is.
	}
	if credential == "" {
		return repoURL, nil
	}

	user, pass, ok := strings.Cut(credential, ":")
	if !ok {
		return "", fmt.Errorf("invalid credential, expected user:pass")
	}

	parsedURL, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("parse repository URL %q: %w", repoURL, err)
	}
	parsedURL.User = url.UserPassword(user, pass)
	return parsedURL.String(), nil
}

func (c *Client) basicAuth(credential string) *githttp.BasicAuth {
	if credential == "" {
		return nil
	}
	user, pass, ok := strings.Cut(credential, ":")
	if !ok {
		return nil
	}
	return &githttp.BasicAuth{Username: user, Password: pass}
}
