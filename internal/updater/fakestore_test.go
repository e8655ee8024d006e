package updater

import (
	"context"
	"time"

	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/storage"
)

// fakeStore is a minimal in-memory storage.Store covering only the calls
// applyDelta/sweep actually make, enough to exercise updater logic without
// a database.
type fakeStore struct {
	softDeleted        []string
	markedIncomplete   []string
	inserted           []*core.DocumentCatalogue
	listStaleResult    []*core.Repository
	listStaleErr       error
	updatedFields      map[string]map[string]any
}

func newFakeStore() *fakeStore {
	return &fakeStore{updatedFields: map[string]map[string]any{}}
}

func (f *fakeStore) ClaimRepository(ctx context.Context, workerID string, leaseFor time.Duration) (*core.Repository, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeStore) CreateRepository(ctx context.Context, repo *core.Repository) error { return nil }
func (f *fakeStore) GetRepository(ctx context.Context, id string) (*core.Repository, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeStore) GetAllRepositories(ctx context.Context) ([]*core.Repository, error) {
	return nil, nil
}
func (f *fakeStore) UpdateRepositoryFields(ctx context.Context, id string, fields map[string]any) error {
	if f.updatedFields[id] == nil {
		f.updatedFields[id] = map[string]any{}
	}
	for k, v := range fields {
		f.updatedFields[id][k] = v
	}
	return nil
}
func (f *fakeStore) ReleaseRepository(ctx context.Context, id, expectedOwner string) error {
	return nil
}
func (f *fakeStore) ListStaleCompleted(ctx context.Context, olderThan time.Duration) ([]*core.Repository, error) {
	return f.listStaleResult, f.listStaleErr
}
func (f *fakeStore) UpsertDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	return doc, nil
}
func (f *fakeStore) GetDocumentByRepository(ctx context.Context, repoID string) (*core.Document, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeStore) ReplaceOverview(ctx context.Context, documentID string, content string) (*core.DocumentOverview, error) {
	return nil, nil
}
func (f *fakeStore) ReplaceMiniMap(ctx context.Context, repositoryID string, value string) (*core.MiniMap, error) {
	return nil, nil
}
func (f *fakeStore) ReplaceCatalogue(ctx context.Context, repositoryID string, nodes []*core.DocumentCatalogue, parentIdx []int) ([]*core.DocumentCatalogue, error) {
	return nodes, nil
}
func (f *fakeStore) ListCatalogue(ctx context.Context, repositoryID string) ([]*core.DocumentCatalogue, error) {
	return nil, nil
}
func (f *fakeStore) MarkCatalogueCompleted(ctx context.Context, catalogueID string, completed bool) error {
	if !completed {
		f.markedIncomplete = append(f.markedIncomplete, catalogueID)
	}
	return nil
}
func (f *fakeStore) SoftDeleteCatalogue(ctx context.Context, catalogueID string) error {
	f.softDeleted = append(f.softDeleted, catalogueID)
	return nil
}
func (f *fakeStore) InsertCatalogueNode(ctx context.Context, node *core.DocumentCatalogue) error {
	f.inserted = append(f.inserted, node)
	return nil
}
func (f *fakeStore) UpsertFileItem(ctx context.Context, item *core.DocumentFileItem) error {
	return nil
}
func (f *fakeStore) GetFileItem(ctx context.Context, catalogueID string) (*core.DocumentFileItem, error) {
	return nil, storage.ErrNotFound
}
func (f *fakeStore) ReplaceCommitRecords(ctx context.Context, repositoryID string, records []*core.CommitRecord) error {
	return nil
}
func (f *fakeStore) GetProgress(ctx context.Context, repositoryID string) ([]string, string, error) {
	return nil, "", nil
}
func (f *fakeStore) SetProgress(ctx context.Context, repositoryID string, completedStages []string, currentStage string) error {
	return nil
}

var _ storage.Store = (*fakeStore)(nil)
