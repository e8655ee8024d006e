package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/reposcribe/internal/core"
)

func newTestRunContext(store *fakeStore) *RunContext {
	return &RunContext{
		Repository: &core.Repository{ID: "repo-1"},
		Store:      store,
		Logger:     slog.Default(),
	}
}

func TestRun_AllStagesSucceedInOrder(t *testing.T) {
	var order []string
	restore := stageOrder
	stageOrder = []namedStage{
		{"a", func(ctx context.Context, rc *RunContext) error { order = append(order, "a"); return nil }},
		{"b", func(ctx context.Context, rc *RunContext) error { order = append(order, "b"); return nil }},
	}
	defer func() { stageOrder = restore }()

	store := newFakeStore()
	rc := newTestRunContext(store)
	require.NoError(t, Run(context.Background(), rc))
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, []string{"a", "b"}, store.completed)
	assert.Equal(t, "", store.current)
}

func TestRun_FatalErrorStopsRun(t *testing.T) {
	var ran []string
	restore := stageOrder
	stageOrder = []namedStage{
		{"a", func(ctx context.Context, rc *RunContext) error { ran = append(ran, "a"); return newFatalError("a", errors.New("boom")) }},
		{"b", func(ctx context.Context, rc *RunContext) error { ran = append(ran, "b"); return nil }},
	}
	defer func() { stageOrder = restore }()

	store := newFakeStore()
	rc := newTestRunContext(store)
	err := Run(context.Background(), rc)
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, ran)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindFatal, se.Kind)
}

func TestRun_TransientErrorRetriesThenFails(t *testing.T) {
	attempts := 0
	restore := stageOrder
	stageOrder = []namedStage{
		{"flaky", func(ctx context.Context, rc *RunContext) error {
			attempts++
			return newTransientError("flaky", errors.New("timeout"))
		}},
	}
	defer func() { stageOrder = restore }()

	store := newFakeStore()
	rc := newTestRunContext(store)
	err := Run(context.Background(), rc)
	require.Error(t, err)
	assert.Equal(t, maxStageAttempts, attempts)
}

func TestRun_TransientErrorRecoversWithinRetryBudget(t *testing.T) {
	attempts := 0
	restore := stageOrder
	stageOrder = []namedStage{
		{"flaky", func(ctx context.Context, rc *RunContext) error {
			attempts++
			if attempts < maxStageAttempts {
				return newTransientError("flaky", errors.New("timeout"))
			}
			return nil
		}},
	}
	defer func() { stageOrder = restore }()

	store := newFakeStore()
	rc := newTestRunContext(store)
	require.NoError(t, Run(context.Background(), rc))
	assert.Equal(t, maxStageAttempts, attempts)
}

func TestRun_ContextCanceledStopsBeforeNextStage(t *testing.T) {
	restore := stageOrder
	stageOrder = []namedStage{
		{"a", func(ctx context.Context, rc *RunContext) error { return nil }},
		{"b", func(ctx context.Context, rc *RunContext) error { t.Fatal("stage b must not run"); return nil }},
	}
	defer func() { stageOrder = restore }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := newFakeStore()
	rc := newTestRunContext(store)
	err := Run(ctx, rc)
	require.Error(t, err)
}
