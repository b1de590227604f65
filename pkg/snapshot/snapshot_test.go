package snapshot

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mwantia/tomodb/pkg/catalog"
	"github.com/mwantia/tomodb/pkg/catalog/ids"
	"github.com/mwantia/tomodb/pkg/dataset"
	"github.com/mwantia/tomodb/pkg/db/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *catalog.Service {
	t.Helper()

	s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: filepath.Join(t.TempDir(), "snapshot.db")})
	require.NoError(t, err)
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() {
		s.Close()
	})

	return catalog.NewService(s, catalog.Config{Pattern: ids.DefaultPattern(), CreateRetries: 3}, nil)
}

func sampleRecords() []dataset.Record {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := dataset.Record{Title: "Motor", Organism: "Vibrio cholerae", Tags: []string{".mrc"}, CreatedAt: created}
	first.AssignID("UCTD_001")
	second := dataset.Record{Title: "Array", Organism: "Escherichia coli", Authors: []string{"A. Author"}, CreatedAt: created.Add(time.Hour)}
	second.AssignID("UCTD_002")
	return []dataset.Record{first, second}
}

func TestWriteImport_RoundTripPerCompressor(t *testing.T) {
	for _, c := range []Compressor{NewNoOpCompressor(), NewGzipCompressor(), NewZstdCompressor()} {
		t.Run(c.Name(), func(t *testing.T) {
			ctx := context.Background()
			svc := newTestService(t)

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, c, sampleRecords()))

			result, err := Import(ctx, svc, &buf, c)
			require.NoError(t, err)
			assert.Equal(t, 2, result.Imported)
			assert.Empty(t, result.Skipped)

			got, err := svc.Get(ctx, "UCTD_002")
			require.NoError(t, err)
			assert.Equal(t, "Array", got.Title)
			assert.Equal(t, []string{"A. Author"}, got.Authors)
		})
	}
}

func TestImport_SkipsInvalidAndDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	input := strings.Join([]string{
		`{"tomogram_id":"UCTD_001","title":"ok"}`,
		``,
		`{"tomogram_id":"UCTD_1","title":"short"}`,
		`{"tomogram_id":"UCTD_001","title":"again"}`,
	}, "\n")

	result, err := Import(ctx, svc, strings.NewReader(input), NewNoOpCompressor())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, Skipped{Line: 3, ID: "UCTD_1", Reason: "invalid identifier"}, result.Skipped[0])
	assert.Equal(t, Skipped{Line: 4, ID: "UCTD_001", Reason: "identifier already exists"}, result.Skipped[1])
}

func TestExportImport_KeepsGrownIdentifiers(t *testing.T) {
	ctx := context.Background()
	src := newTestService(t)

	require.NoError(t, src.Insert(ctx, dataset.Record{ID: "UCTD_999", Title: "last padded"}))
	grown, err := src.Create(ctx, dataset.Record{Title: "first grown"})
	require.NoError(t, err)
	require.Equal(t, "UCTD_1000", grown.ID)

	var buf bytes.Buffer
	n, err := Export(ctx, src, &buf, NewNoOpCompressor())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	dst := newTestService(t)
	result, err := Import(ctx, dst, &buf, NewNoOpCompressor())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Skipped)

	got, err := dst.Get(ctx, "UCTD_1000")
	require.NoError(t, err)
	assert.Equal(t, "first grown", got.Title)
}

func TestImport_MalformedLineAborts(t *testing.T) {
	svc := newTestService(t)

	_, err := Import(context.Background(), svc, strings.NewReader("{broken\n"), NewNoOpCompressor())
	assert.ErrorContains(t, err, "line 1")
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	for _, record := range sampleRecords() {
		require.NoError(t, svc.Insert(ctx, record))
	}

	var buf bytes.Buffer
	n, err := Export(ctx, svc, &buf, NewNoOpCompressor())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"tomogram_id":"UCTD_002"`, "most recent first")
}

func TestCompressorSelection(t *testing.T) {
	c, err := CompressorByName("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, "zstd", c.Name())

	_, err = CompressorByName("lz4")
	assert.Error(t, err)

	assert.Equal(t, "gzip", CompressorForPath("catalog.jsonl.gz").Name())
	assert.Equal(t, "zstd", CompressorForPath("catalog.jsonl.zst").Name())
	assert.Equal(t, "noop", CompressorForPath("catalog.jsonl").Name())
}
