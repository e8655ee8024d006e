// Package core defines the data model shared across the documentation
// pipeline: the entities every stage reads and writes, and the lifecycle
// enums that govern them. These types are intentionally storage-agnostic;
// internal/storage maps them onto rows.
package core

import (
	"encoding/json"
	"time"
)

// RepositoryStatus is the lifecycle state of a Repository row.
type RepositoryStatus string

const (
	StatusPending    RepositoryStatus = "pending"
	StatusProcessing RepositoryStatus = "processing"
	StatusCompleted  RepositoryStatus = "completed"
	StatusFailed     RepositoryStatus = "failed"
)

// RepositoryType distinguishes a Git-backed repository from a raw
// filesystem path supplied directly.
type RepositoryType string

const (
	RepoTypeGit  RepositoryType = "git"
	RepoTypeFile RepositoryType = "file"
)

// Repository is the root entity of the pipeline: one row per ingested
// codebase. RemoteAddr/Branch/Credential are only meaningful when Type is
// RepoTypeGit; for RepoTypeFile, LocalPath is the address supplied at
// submission time and is used verbatim as the working tree root.
type Repository struct {
	ID         string         `db:"id"`
	RemoteAddr string         `db:"remote_addr"`
	Branch     string         `db:"branch"`
	Credential string         `db:"credential"`
	LocalPath  string         `db:"local_path"`
	Type       RepositoryType `db:"type"`

	Status         RepositoryStatus `db:"status"`
	LastError      string           `db:"last_error"`
	Organization   string           `db:"organization"`
	Name           string           `db:"name"`
	ResolvedBranch string           `db:"resolved_branch"`
	Version        string           `db:"version"`

	OptimizedDirectoryStructure string `db:"optimized_directory_structure"`
	Classify                    string `db:"classify"`
	Readme                      string `db:"readme"`

	// Lease fields, added to resolve the spec's lease-discipline open
	// question: at-most-one worker may hold Status=Processing at a time.
	Owner         string     `db:"owner"`
	LeaseDeadline *time.Time `db:"lease_deadline"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Document is owned 1:1 by a Repository.
type Document struct {
	ID           string           `db:"id"`
	RepositoryID string           `db:"repository_id"`
	GitPath      string           `db:"git_path"`
	LastUpdate   time.Time        `db:"last_update"`
	Status       RepositoryStatus `db:"status"`
	CreatedAt    time.Time        `db:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at"`
}

// DocumentCatalogue is one node of the per-repository documentation
// outline forest. A node with no children is a "leaf" and is the unit of
// per-document generation (PerDocStage).
type DocumentCatalogue struct {
	ID           string  `db:"id"`
	RepositoryID string  `db:"repository_id"`
	ParentID     *string `db:"parent_id"`
	Title        string  `db:"title"`
	Name         string  `db:"name"`
	URLSlug      string  `db:"url_slug"`
	Description  string  `db:"description"`
	Prompt       string  `db:"prompt"`
	OrderIndex   int     `db:"order_index"`
	IsCompleted  bool    `db:"is_completed"`
	IsDeleted    bool    `db:"is_deleted"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DocumentFileItem holds the generated content for a single leaf catalogue
// node, plus the source files the model consulted while writing it.
type DocumentFileItem struct {
	ID             string   `db:"id"`
	CatalogueID    string   `db:"catalogue_id"`
	Title          string   `db:"title"`
	Content        string   `db:"content"`
	SourceFiles    []string `db:"-"`
	SourceFilesRaw string   `db:"source_files"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SetSourceFiles populates both the in-memory SourceFiles slice and the
// JSON-encoded column it round-trips through.
func (f *DocumentFileItem) SetSourceFiles(paths []string) {
	f.SourceFiles = paths
	if paths == nil {
		paths = []string{}
	}
	b, err := json.Marshal(paths)
	if err != nil {
		f.SourceFilesRaw = "[]"
		return
	}
	f.SourceFilesRaw = string(b)
}

// DecodeSourceFiles populates SourceFiles from SourceFilesRaw after a load
// from the store.
func (f *DocumentFileItem) DecodeSourceFiles() {
	if f.SourceFilesRaw == "" {
		f.SourceFiles = nil
		return
	}
	var paths []string
	if err := json.Unmarshal([]byte(f.SourceFilesRaw), &paths); err == nil {
		f.SourceFiles = paths
	}
}

// DocumentOverview is replaced wholesale (delete-then-insert) on every
// OverviewStage run.
type DocumentOverview struct {
	ID         string    `db:"id"`
	DocumentID string    `db:"document_id"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
}

// MiniMap is the serialized knowledge-graph tree produced by MindMapStage.
type MiniMap struct {
	ID           string    `db:"id"`
	RepositoryID string    `db:"repository_id"`
	Value        string    `db:"value"` // JSON tree of {title, url, children}
	CreatedAt    time.Time `db:"created_at"`
}

// CommitRecord is one entry of the ChangeLogStage's output, regenerated in
// full on every successful stage-8 run.
type CommitRecord struct {
	ID           string    `db:"id"`
	RepositoryID string    `db:"repository_id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Date         time.Time `db:"date"`
	CreatedAt    time.Time `db:"created_at"`
}

// Classification enumerates the seven canonical repository tags. Kept as a
// plain string type (rather than an int enum) because it round-trips
// through LLM output and SQL without translation tables.
type Classification = string
