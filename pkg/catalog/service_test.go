package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mwantia/tomodb/pkg/catalog/filter"
	"github.com/mwantia/tomodb/pkg/catalog/ids"
	"github.com/mwantia/tomodb/pkg/dataset"
	"github.com/mwantia/tomodb/pkg/db/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	return NewService(repo, Config{Pattern: ids.DefaultPattern(), CreateRetries: 3}, nil)
}

// staleRepository returns an outdated identifier list on its first read,
// as if another writer inserted a dataset after it was fetched.
type staleRepository struct {
	*store.SQLiteStore
	stale []string
	reads int
}

func (r *staleRepository) ListDatasetIDs(ctx context.Context) ([]string, error) {
	r.reads++
	if r.reads == 1 {
		return r.stale, nil
	}
	return r.SQLiteStore.ListDatasetIDs(ctx)
}

type unavailableIDs struct {
	*store.SQLiteStore
}

func (r *unavailableIDs) ListDatasetIDs(ctx context.Context) ([]string, error) {
	return nil, errors.New("remote table unavailable")
}

func TestService_CreateAssignsSequentialIDs(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()

	first, err := svc.Create(ctx, dataset.Record{Title: "Vibrio cholerae cell ultrastructure", Organism: "Vibrio cholerae"})
	require.NoError(t, err)
	assert.Equal(t, "UCTD_001", first.ID)
	assert.Equal(t, "/data/raw/UCTD_001/", first.RawDataPath)
	assert.Equal(t, dataset.DefaultTags(), first.Tags)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := svc.Create(ctx, dataset.Record{Title: "Caulobacter stalk"})
	require.NoError(t, err)
	assert.Equal(t, "UCTD_002", second.ID)

	assert.Equal(t, "UCTD_003", svc.NextID(ctx))
}

func TestService_CreateRetriesOnTakenID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := NewService(s, Config{Pattern: ids.DefaultPattern()}, nil)
	_, err := base.Create(ctx, dataset.Record{Title: "one"})
	require.NoError(t, err)
	_, err = base.Create(ctx, dataset.Record{Title: "two"})
	require.NoError(t, err)

	repo := &staleRepository{SQLiteStore: s, stale: []string{"UCTD_001"}}
	svc := newTestService(t, repo)

	created, err := svc.Create(ctx, dataset.Record{Title: "three"})
	require.NoError(t, err)
	assert.Equal(t, "UCTD_003", created.ID)
	assert.Equal(t, 2, repo.reads)
}

func TestService_CreateGivesUpAfterRetries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, NewService(s, Config{}, nil).Insert(ctx, dataset.Record{ID: "UCTD_001", Title: "existing"}))

	svc := NewService(&unavailableIDs{SQLiteStore: s}, Config{Pattern: ids.DefaultPattern(), CreateRetries: 2}, nil)

	_, err := svc.Create(ctx, dataset.Record{Title: "blocked"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrDuplicateID), "got %v", err)
}

func TestService_NextIDDegradesOnSourceFailure(t *testing.T) {
	svc := newTestService(t, &unavailableIDs{SQLiteStore: newTestStore(t)})

	var failures int
	svc.Allocator().OnFailure(func(err error) {
		failures++
	})

	assert.Equal(t, "UCTD_001", svc.NextID(context.Background()))
	assert.Equal(t, 1, failures)
}

func TestService_Get(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, dataset.Record{Title: "Flagellar motor", Tags: []string{".mrc", ".mp4"}})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flagellar motor", got.Title)
	assert.Equal(t, []string{".mrc", ".mp4"}, got.Tags)

	_, err = svc.Get(ctx, "UCTD_1")
	assert.True(t, errors.Is(err, ErrInvalidID))

	_, err = svc.Get(ctx, "UCTD_404")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestService_ListAndOptions(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()

	inputs := []dataset.Record{
		{Title: "Vibrio cholerae cell", Organism: "Vibrio cholerae", Instrument: "FEI Polara 300kV", Tags: []string{".mrc"}, CreatedAt: time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC)},
		{Title: "Caulobacter stalk", Organism: "Caulobacter crescentus", Instrument: "Titan Krios 300kV", Tags: []string{".mp4"}, CreatedAt: time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "Vibrio motor", Organism: "Vibrio cholerae", Instrument: "Titan Krios 300kV", Tags: []string{".star"}, CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, r := range inputs {
		_, err := svc.Create(ctx, r)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, filter.Spec{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "UCTD_003", all[0].ID, "most recent first")

	vibrio, err := svc.List(ctx, filter.Spec{}.WithCategory(filter.FieldOrganism, "Vibrio cholerae").WithDateRange("2023-01-01", "2023-12-31"))
	require.NoError(t, err)
	require.Len(t, vibrio, 1)
	assert.Equal(t, "UCTD_001", vibrio[0].ID)

	opts, err := svc.Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vibrio cholerae", "Caulobacter crescentus"}, opts.Organisms)
	assert.Equal(t, []string{"Titan Krios 300kV", "FEI Polara 300kV"}, opts.Instruments)
	assert.Equal(t, []string{".star", ".mp4", ".mrc"}, opts.Tags)
}

func TestService_Insert(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()

	require.NoError(t, svc.Insert(ctx, dataset.Record{ID: "UCTD_010", Title: "imported"}))
	assert.True(t, errors.Is(svc.Insert(ctx, dataset.Record{ID: "legacy-1"}), ErrInvalidID))
	assert.True(t, errors.Is(svc.Insert(ctx, dataset.Record{ID: "UCTD_010"}), store.ErrDuplicateID))

	assert.Equal(t, "UCTD_011", svc.NextID(ctx))
}

func TestService_IdentifiersBeyondPaddedWidth(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()

	require.NoError(t, svc.Insert(ctx, dataset.Record{ID: "UCTD_999", Title: "last padded"}))

	grown, err := svc.Create(ctx, dataset.Record{Title: "first grown"})
	require.NoError(t, err)
	assert.Equal(t, "UCTD_1000", grown.ID)

	got, err := svc.Get(ctx, "UCTD_1000")
	require.NoError(t, err)
	assert.Equal(t, "first grown", got.Title)

	next, err := svc.Create(ctx, dataset.Record{Title: "second grown"})
	require.NoError(t, err)
	assert.Equal(t, "UCTD_1001", next.ID)

	third, err := svc.Create(ctx, dataset.Record{Title: "third grown"})
	require.NoError(t, err)
	assert.Equal(t, "UCTD_1002", third.ID)

	require.NoError(t, svc.Insert(ctx, dataset.Record{ID: "UCTD_2000", Title: "imported grown"}))
	_, err = svc.Get(ctx, "UCTD_12")
	assert.True(t, errors.Is(err, ErrInvalidID))
}

func TestService_SavedFilters(t *testing.T) {
	svc := newTestService(t, newTestStore(t))
	ctx := context.Background()

	spec := filter.Spec{}.WithText("cell").WithTags(".mrc", ".mp4")
	saved, err := svc.SaveFilter(ctx, "cells", "cell tomograms with movies", spec)
	require.NoError(t, err)
	assert.Equal(t, "cells", saved.Name)

	_, err = svc.SaveFilter(ctx, "  ", "", spec)
	assert.Error(t, err)

	got, err := svc.SavedFilter(ctx, "cells")
	require.NoError(t, err)
	assert.Equal(t, spec, got.Spec)

	list, err := svc.SavedFilters(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteSavedFilter(ctx, "cells"))
	_, err = svc.SavedFilter(ctx, "cells")
	assert.True(t, errors.Is(err, ErrNotFound))
}
