package worker

import (
	"context"
	"time"

	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/storage"
)

type fakeStore struct {
	fields          map[string]map[string]any
	releasedID      string
	releasedOwner   string
	releaseErr      error
	releaseCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{fields: map[string]map[string]any{}}
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
	if f.fields[id] == nil {
		f.fields[id] = map[string]any{}
	}
	for k, v := range fields {
		f.fields[id][k] = v
	}
	return nil
}
func (f *fakeStore) ReleaseRepository(ctx context.Context, id, expectedOwner string) error {
	f.releaseCalls++
	f.releasedID = id
	f.releasedOwner = expectedOwner
	return f.releaseErr
}
func (f *fakeStore) ListStaleCompleted(ctx context.Context, olderThan time.Duration) ([]*core.Repository, error) {
	return nil, nil
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
	return nil
}
func (f *fakeStore) SoftDeleteCatalogue(ctx context.Context, catalogueID string) error { return nil }
func (f *fakeStore) InsertCatalogueNode(ctx context.Context, node *core.DocumentCatalogue) error {
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
