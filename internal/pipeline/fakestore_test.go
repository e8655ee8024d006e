package pipeline

import (
	"context"
	"time"

	"github.com/sevigo/reposcribe/internal/core"
	"github.com/sevigo/reposcribe/internal/storage"
)

// fakeStore is an in-memory storage.Store good enough to drive the
// orchestrator and individual stages without a database: every write
// lands in a map keyed by repository ID, mirroring the one real row a
// test typically cares about.
type fakeStore struct {
	fields    map[string]map[string]any
	completed []string
	current   string

	updateErr error

	catalogueNodes    []*core.DocumentCatalogue
	markedCompletedID string
	upsertedItem      *core.DocumentFileItem
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
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.fields[id] == nil {
		f.fields[id] = map[string]any{}
	}
	for k, v := range fields {
		f.fields[id][k] = v
	}
	return nil
}

func (f *fakeStore) ReleaseRepository(ctx context.Context, id, expectedOwner string) error {
	return nil
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
	return &core.DocumentOverview{DocumentID: documentID, Content: content}, nil
}

func (f *fakeStore) ReplaceMiniMap(ctx context.Context, repositoryID string, value string) (*core.MiniMap, error) {
	return &core.MiniMap{RepositoryID: repositoryID, Value: value}, nil
}

func (f *fakeStore) ReplaceCatalogue(ctx context.Context, repositoryID string, nodes []*core.DocumentCatalogue, parentIdx []int) ([]*core.DocumentCatalogue, error) {
	return nodes, nil
}

func (f *fakeStore) ListCatalogue(ctx context.Context, repositoryID string) ([]*core.DocumentCatalogue, error) {
	return f.catalogueNodes, nil
}

func (f *fakeStore) MarkCatalogueCompleted(ctx context.Context, catalogueID string, completed bool) error {
	if completed {
		f.markedCompletedID = catalogueID
	}
	return nil
}

func (f *fakeStore) SoftDeleteCatalogue(ctx context.Context, catalogueID string) error { return nil }

func (f *fakeStore) InsertCatalogueNode(ctx context.Context, node *core.DocumentCatalogue) error {
	return nil
}

func (f *fakeStore) UpsertFileItem(ctx context.Context, item *core.DocumentFileItem) error {
	f.upsertedItem = item
	return nil
}

func (f *fakeStore) GetFileItem(ctx context.Context, catalogueID string) (*core.DocumentFileItem, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeStore) ReplaceCommitRecords(ctx context.Context, repositoryID string, records []*core.CommitRecord) error {
	return nil
}

func (f *fakeStore) GetProgress(ctx context.Context, repositoryID string) ([]string, string, error) {
	return f.completed, f.current, nil
}

func (f *fakeStore) SetProgress(ctx context.Context, repositoryID string, completedStages []string, currentStage string) error {
	f.completed = completedStages
	f.current = currentStage
	return nil
}

var _ storage.Store = (*fakeStore)(nil)
