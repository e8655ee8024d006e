// Package storage implements the Store contract (spec §6): the single
// coordination point multiple worker processes use to claim repositories,
// persist stage artifacts, and observe pipeline progress. Every write here
// is a single short transaction; no operation spans more than one
// *sqlx.Tx.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sevigo/reposcribe/internal/core"
)

// ErrNotFound is returned when a requested record is not found in the database.
var ErrNotFound = errors.New("record not found")

// ErrLeaseLost is returned when a write assumes ownership of a repository
// row that another worker has since claimed or completed (spec §7
// StorePreconditionFailed).
var ErrLeaseLost = errors.New("repository lease lost or precondition failed")

// Store defines the interface for all database operations the pipeline
// needs: claiming work, updating repository fields, and the
// delete-then-insert / upsert contracts for each owned artifact.
//
//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks github.com/sevigo/reposcribe/internal/storage Store
type Store interface {
	// ClaimRepository atomically leases one Pending-or-stale-Processing
	// repository row for workerID, preferring in-flight Processing rows
	// over fresh Pending ones (spec §4.G step 1). Returns ErrNotFound if
	// nothing is claimable.
	ClaimRepository(ctx context.Context, workerID string, leaseFor time.Duration) (*core.Repository, error)
	CreateRepository(ctx context.Context, repo *core.Repository) error
	GetRepository(ctx context.Context, id string) (*core.Repository, error)
	GetAllRepositories(ctx context.Context) ([]*core.Repository, error)
	// UpdateRepositoryFields applies a partial update by column name; it is
	// the store-level primitive every Stage Runner calls to persist a
	// single field (readme, classify, optimized_directory_structure, ...).
	UpdateRepositoryFields(ctx context.Context, id string, fields map[string]any) error
	// ReleaseRepository clears owner/lease_deadline without changing status,
	// used when a worker abandons a row it still holds (on shutdown); it
	// returns ErrLeaseLost when expectedOwner no longer owns the row.
	ReleaseRepository(ctx context.Context, id, expectedOwner string) error
	ListStaleCompleted(ctx context.Context, olderThan time.Duration) ([]*core.Repository, error)

	UpsertDocument(ctx context.Context, doc *core.Document) (*core.Document, error)
	GetDocumentByRepository(ctx context.Context, repoID string) (*core.Document, error)

	ReplaceOverview(ctx context.Context, documentID string, content string) (*core.DocumentOverview, error)
	ReplaceMiniMap(ctx context.Context, repositoryID string, value string) (*core.MiniMap, error)

	// ReplaceCatalogue deletes all existing nodes for repositoryID and
	// inserts the given forest in one transaction, assigning every node a
	// freshly generated ID and resolving ParentID references by array index
	// before insert (parentIdx, per node, -1 for root).
	ReplaceCatalogue(ctx context.Context, repositoryID string, nodes []*core.DocumentCatalogue, parentIdx []int) ([]*core.DocumentCatalogue, error)
	ListCatalogue(ctx context.Context, repositoryID string) ([]*core.DocumentCatalogue, error)
	MarkCatalogueCompleted(ctx context.Context, catalogueID string, completed bool) error
	SoftDeleteCatalogue(ctx context.Context, catalogueID string) error
	InsertCatalogueNode(ctx context.Context, node *core.DocumentCatalogue) error

	UpsertFileItem(ctx context.Context, item *core.DocumentFileItem) error
	GetFileItem(ctx context.Context, catalogueID string) (*core.DocumentFileItem, error)

	ReplaceCommitRecords(ctx context.Context, repositoryID string, records []*core.CommitRecord) error

	GetProgress(ctx context.Context, repositoryID string) (completedStages []string, currentStage string, err error)
	SetProgress(ctx context.Context, repositoryID string, completedStages []string, currentStage string) error
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) ClaimRepository(ctx context.Context, workerID string, leaseFor time.Duration) (*core.Repository, error) {
	const query = `
		UPDATE repositories
		SET status = 'processing', owner = $1, lease_deadline = now() + $2::interval, updated_at = now()
		WHERE id = (
			SELECT id FROM repositories
			WHERE status IN ('pending', 'processing')
			  AND (owner = '' OR lease_deadline IS NULL OR lease_deadline < now())
			ORDER BY (status = 'processing') DESC, updated_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, remote_addr, branch, credential, local_path, type, status, last_error,
			organization, name, resolved_branch, version, optimized_directory_structure,
			classify, readme, owner, lease_deadline, created_at, updated_at`

	var repo core.Repository
	err := s.db.GetContext(ctx, &repo, query, workerID, fmt.Sprintf("%d seconds", int(leaseFor.Seconds())))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("claim repository: %w", err)
	}
	return &repo, nil
}

func (s *postgresStore) CreateRepository(ctx context.Context, repo *core.Repository) error {
	const query = `
		INSERT INTO repositories (remote_addr, branch, credential, local_path, type, status)
		VALUES (:remote_addr, :branch, :credential, :local_path, :type, :status)
		RETURNING id, created_at, updated_at`
	stmt, err := s.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare create repository: %w", err)
	}
	defer stmt.Close()
	return stmt.QueryRowContext(ctx, repo).Scan(&repo.ID, &repo.CreatedAt, &repo.UpdatedAt)
}

func (s *postgresStore) GetRepository(ctx context.Context, id string) (*core.Repository, error) {
	const query = `SELECT * FROM repositories WHERE id = $1`
	var repo core.Repository
	err := s.db.GetContext(ctx, &repo, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get repository %s: %w", id, err)
	}
	return &repo, nil
}

func (s *postgresStore) GetAllRepositories(ctx context.Context) ([]*core.Repository, error) {
	const query = `SELECT * FROM repositories ORDER BY name ASC, created_at ASC`
	var repos []*core.Repository
	if err := s.db.SelectContext(ctx, &repos, query); err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	return repos, nil
}

func (s *postgresStore) UpdateRepositoryFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	setClauses := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	i := 1
	for col, val := range fields {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, i))
		args = append(args, val)
		i++
	}
	setClauses = append(setClauses, "updated_at = now()")
	query := fmt.Sprintf("UPDATE repositories SET %s WHERE id = $%d", joinComma(setClauses), i)
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update repository %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) ReleaseRepository(ctx context.Context, id, expectedOwner string) error {
	const query = `UPDATE repositories SET owner = '', lease_deadline = NULL, updated_at = now() WHERE id = $1 AND owner = $2`
	res, err := s.db.ExecContext(ctx, query, id, expectedOwner)
	if err != nil {
		return fmt.Errorf("release repository %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}

func (s *postgresStore) ListStaleCompleted(ctx context.Context, olderThan time.Duration) ([]*core.Repository, error) {
	const query = `
		SELECT r.* FROM repositories r
		JOIN documents d ON d.repository_id = r.id
		WHERE r.status = 'completed' AND d.last_update < now() - $1::interval`
	var repos []*core.Repository
	err := s.db.SelectContext(ctx, &repos, query, fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return nil, fmt.Errorf("list stale completed repositories: %w", err)
	}
	return repos, nil
}

func (s *postgresStore) UpsertDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	const query = `
		INSERT INTO documents (repository_id, git_path, last_update, status)
		VALUES (:repository_id, :git_path, :last_update, :status)
		ON CONFLICT (repository_id)
		DO UPDATE SET git_path = EXCLUDED.git_path, last_update = EXCLUDED.last_update,
			status = EXCLUDED.status, updated_at = now()
		RETURNING id, repository_id, git_path, last_update, status, created_at, updated_at`

	rows, err := s.db.NamedQueryContext(ctx, query, doc)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			slog.Error("postgres error during upsert document", "code", pqErr.Code, "message", pqErr.Message)
		}
		return nil, fmt.Errorf("upsert document for repo %s: %w", doc.RepositoryID, err)
	}
	defer rows.Close()

	var out core.Document
	if rows.Next() {
		if err := rows.StructScan(&out); err != nil {
			return nil, fmt.Errorf("scan upserted document: %w", err)
		}
	}
	return &out, rows.Err()
}

func (s *postgresStore) GetDocumentByRepository(ctx context.Context, repoID string) (*core.Document, error) {
	const query = `SELECT * FROM documents WHERE repository_id = $1`
	var doc core.Document
	err := s.db.GetContext(ctx, &doc, query, repoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document for repo %s: %w", repoID, err)
	}
	return &doc, nil
}

func (s *postgresStore) ReplaceOverview(ctx context.Context, documentID string, content string) (*core.DocumentOverview, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(ctx, tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_overviews WHERE document_id = $1`, documentID); err != nil {
		return nil, fmt.Errorf("delete prior overview: %w", err)
	}

	var out core.DocumentOverview
	const insert = `INSERT INTO document_overviews (document_id, content) VALUES ($1, $2) RETURNING id, document_id, content, created_at`
	if err := tx.QueryRowContext(ctx, insert, documentID, content).Scan(&out.ID, &out.DocumentID, &out.Content, &out.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert overview: %w", err)
	}
	return &out, tx.Commit()
}

func (s *postgresStore) ReplaceMiniMap(ctx context.Context, repositoryID string, value string) (*core.MiniMap, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(ctx, tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM mini_maps WHERE repository_id = $1`, repositoryID); err != nil {
		return nil, fmt.Errorf("delete prior minimap: %w", err)
	}

	var out core.MiniMap
	const insert = `INSERT INTO mini_maps (repository_id, value) VALUES ($1, $2) RETURNING id, repository_id, value, created_at`
	if err := tx.QueryRowContext(ctx, insert, repositoryID, value).Scan(&out.ID, &out.RepositoryID, &out.Value, &out.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert minimap: %w", err)
	}
	return &out, tx.Commit()
}

func (s *postgresStore) ReplaceCatalogue(ctx context.Context, repositoryID string, nodes []*core.DocumentCatalogue, parentIdx []int) ([]*core.DocumentCatalogue, error) {
	if len(nodes) != len(parentIdx) {
		return nil, fmt.Errorf("replace catalogue: nodes/parentIdx length mismatch")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer rollback(ctx, tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_catalogues WHERE repository_id = $1`, repositoryID); err != nil {
		return nil, fmt.Errorf("delete prior catalogue: %w", err)
	}

	ids := make([]string, len(nodes))
	const insert = `
		INSERT INTO document_catalogues
			(repository_id, parent_id, title, name, url_slug, description, prompt, order_index, is_completed, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	for i, n := range nodes {
		var parentID any
		if pi := parentIdx[i]; pi >= 0 {
			if pi >= i {
				return nil, fmt.Errorf("replace catalogue: node %d references parent %d not yet inserted", i, pi)
			}
			parentID = ids[pi]
		}
		var id string
		err := tx.QueryRowContext(ctx, insert, repositoryID, parentID, n.Title, n.Name, n.URLSlug,
			n.Description, n.Prompt, n.OrderIndex, n.IsCompleted, n.IsDeleted).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert catalogue node %q: %w", n.Title, err)
		}
		ids[i] = id
		n.ID = id
		n.RepositoryID = repositoryID
		if parentID != nil {
			pid := parentID.(string)
			n.ParentID = &pid
		}
	}

	return nodes, tx.Commit()
}

func (s *postgresStore) ListCatalogue(ctx context.Context, repositoryID string) ([]*core.DocumentCatalogue, error) {
	const query = `SELECT * FROM document_catalogues WHERE repository_id = $1 AND NOT is_deleted ORDER BY parent_id NULLS FIRST, order_index ASC`
	var nodes []*core.DocumentCatalogue
	if err := s.db.SelectContext(ctx, &nodes, query, repositoryID); err != nil {
		return nil, fmt.Errorf("list catalogue for repo %s: %w", repositoryID, err)
	}
	return nodes, nil
}

func (s *postgresStore) MarkCatalogueCompleted(ctx context.Context, catalogueID string, completed bool) error {
	const query = `UPDATE document_catalogues SET is_completed = $1, updated_at = now() WHERE id = $2`
	_, err := s.db.ExecContext(ctx, query, completed, catalogueID)
	if err != nil {
		return fmt.Errorf("mark catalogue %s completed=%v: %w", catalogueID, completed, err)
	}
	return nil
}

func (s *postgresStore) SoftDeleteCatalogue(ctx context.Context, catalogueID string) error {
	const query = `UPDATE document_catalogues SET is_deleted = true, updated_at = now() WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, catalogueID)
	if err != nil {
		return fmt.Errorf("soft delete catalogue %s: %w", catalogueID, err)
	}
	return nil
}

func (s *postgresStore) InsertCatalogueNode(ctx context.Context, node *core.DocumentCatalogue) error {
	const query = `
		INSERT INTO document_catalogues
			(repository_id, parent_id, title, name, url_slug, description, prompt, order_index, is_completed, is_deleted)
		VALUES (:repository_id, :parent_id, :title, :name, :url_slug, :description, :prompt, :order_index, :is_completed, :is_deleted)
		RETURNING id, created_at, updated_at`
	stmt, err := s.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert catalogue node: %w", err)
	}
	defer stmt.Close()
	return stmt.QueryRowContext(ctx, node).Scan(&node.ID, &node.CreatedAt, &node.UpdatedAt)
}

func (s *postgresStore) UpsertFileItem(ctx context.Context, item *core.DocumentFileItem) error {
	const query = `
		INSERT INTO document_file_items (catalogue_id, title, content, source_files)
		VALUES (:catalogue_id, :title, :content, :source_files)
		ON CONFLICT (catalogue_id)
		DO UPDATE SET title = EXCLUDED.title, content = EXCLUDED.content, source_files = EXCLUDED.source_files, updated_at = now()
		RETURNING id, created_at, updated_at`
	rows, err := s.db.NamedQueryContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("upsert file item for catalogue %s: %w", item.CatalogueID, err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return fmt.Errorf("scan upserted file item: %w", err)
		}
	}
	return rows.Err()
}

func (s *postgresStore) GetFileItem(ctx context.Context, catalogueID string) (*core.DocumentFileItem, error) {
	const query = `SELECT * FROM document_file_items WHERE catalogue_id = $1`
	var item core.DocumentFileItem
	err := s.db.GetContext(ctx, &item, query, catalogueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get file item for catalogue %s: %w", catalogueID, err)
	}
	return &item, nil
}

func (s *postgresStore) ReplaceCommitRecords(ctx context.Context, repositoryID string, records []*core.CommitRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM commit_records WHERE repository_id = $1`, repositoryID); err != nil {
		return fmt.Errorf("delete prior commit records: %w", err)
	}

	const insert = `INSERT INTO commit_records (repository_id, title, description, date) VALUES ($1, $2, $3, $4)`
	for _, r := range records {
		if _, err := tx.ExecContext(ctx, insert, repositoryID, r.Title, r.Description, r.Date); err != nil {
			return fmt.Errorf("insert commit record %q: %w", r.Title, err)
		}
	}
	return tx.Commit()
}

func (s *postgresStore) GetProgress(ctx context.Context, repositoryID string) ([]string, string, error) {
	const query = `SELECT completed_stages, current_stage FROM pipeline_progress WHERE repository_id = $1`
	var rawStages, currentStage string
	err := s.db.QueryRowContext(ctx, query, repositoryID).Scan(&rawStages, &currentStage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("get pipeline progress for repo %s: %w", repositoryID, err)
	}
	return decodeStageList(rawStages), currentStage, nil
}

func (s *postgresStore) SetProgress(ctx context.Context, repositoryID string, completedStages []string, currentStage string) error {
	const query = `
		INSERT INTO pipeline_progress (repository_id, completed_stages, current_stage, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (repository_id)
		DO UPDATE SET completed_stages = EXCLUDED.completed_stages, current_stage = EXCLUDED.current_stage, updated_at = now()`
	_, err := s.db.ExecContext(ctx, query, repositoryID, encodeStageList(completedStages), currentStage)
	if err != nil {
		return fmt.Errorf("set pipeline progress for repo %s: %w", repositoryID, err)
	}
	return nil
}

func rollback(ctx context.Context, tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.ErrorContext(ctx, "transaction rollback failed", "error", err)
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
