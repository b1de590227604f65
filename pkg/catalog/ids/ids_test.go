package ids

import (
	"bytes"
	"context"
	"errors"
	"testing"

	config "github.com/mwantia/tomodb/internal/config/server"
	"github.com/mwantia/tomodb/pkg/log"
	"github.com/stretchr/testify/assert"
)

func TestPattern_Next(t *testing.T) {
	p := NewPattern("PREFIX", 3)

	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"empty", nil, "PREFIX_001"},
		{"unordered", []string{"PREFIX_001", "PREFIX_003", "PREFIX_002"}, "PREFIX_004"},
		{"malformed ignored", []string{"PREFIX_001", "INVALID_ID", "PREFIX_002"}, "PREFIX_003"},
		{"only malformed", []string{"PREFIX_1", "prefix_005", "PREFIX_0005", ""}, "PREFIX_001"},
		{"grows to next width", []string{"PREFIX_099"}, "PREFIX_100"},
		{"overflows width", []string{"PREFIX_999"}, "PREFIX_1000"},
		{"gaps are not filled", []string{"PREFIX_001", "PREFIX_010"}, "PREFIX_011"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Next(tt.existing))
		})
	}
}

func TestPattern_Next_ConfiguredWidth(t *testing.T) {
	p := NewPattern("EMD", 5)

	assert.Equal(t, "EMD_00001", p.Next(nil))
	assert.Equal(t, "EMD_00043", p.Next([]string{"EMD_00042", "EMD_042"}))
}

func TestPattern_Valid(t *testing.T) {
	p := NewPattern("PREFIX", 3)

	assert.True(t, p.Valid("PREFIX_001"))
	assert.True(t, p.Valid("PREFIX_999"))
	assert.False(t, p.Valid("PREFIX_1"))
	assert.False(t, p.Valid("PREFIX_1234"))
	assert.False(t, p.Valid("prefix_001"))
	assert.False(t, p.Valid("INVALID_001"))
	assert.False(t, p.Valid(""))
	assert.False(t, p.ValidPtr(nil))

	id := "PREFIX_042"
	assert.True(t, p.ValidPtr(&id))
}

func TestPattern_PrefixIsLiteral(t *testing.T) {
	p := NewPattern("A.B", 2)

	assert.True(t, p.Valid("A.B_01"))
	assert.False(t, p.Valid("AxB_01"))
}

func TestPattern_ZeroValue(t *testing.T) {
	p := Pattern{Prefix: "UCTD", Width: 3}

	assert.True(t, p.Valid("UCTD_001"))
	assert.Equal(t, "UCTD_002", p.Next([]string{"UCTD_001"}))
}

type stubSource struct {
	ids []string
	err error
}

func (s *stubSource) ListDatasetIDs(ctx context.Context) ([]string, error) {
	return s.ids, s.err
}

func TestAllocator_Next(t *testing.T) {
	src := &stubSource{ids: []string{"UCTD_001", "UCTD_007", "legacy-12"}}
	a := NewAllocator(DefaultPattern(), src, nil)

	assert.Equal(t, "UCTD_008", a.Next(context.Background()))
}

func TestAllocator_Next_SourceFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLoggerServiceWithWriter("test", config.LogServerConfig{Level: "INFO"}, &buf)

	var observed error
	src := &stubSource{ids: []string{"UCTD_050"}, err: errors.New("connection refused")}
	a := NewAllocator(DefaultPattern(), src, logger).OnFailure(func(err error) {
		observed = err
	})

	assert.Equal(t, "UCTD_001", a.Next(context.Background()))
	assert.EqualError(t, observed, "connection refused")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestPattern_AcceptsGrownIdentifiers(t *testing.T) {
	p := NewPattern("UCTD", 3)

	assert.True(t, p.Accepts("UCTD_001"))
	assert.True(t, p.Accepts("UCTD_1000"))
	assert.True(t, p.Accepts("UCTD_12345"))
	assert.False(t, p.Accepts("UCTD_12"))
	assert.False(t, p.Accepts("uctd_1000"))
	assert.False(t, p.Accepts(""))

	assert.False(t, p.Valid("UCTD_1000"))
	assert.Equal(t, 1000, p.Sequence("UCTD_1000"))
	assert.Equal(t, -1, p.Sequence("UCTD_12"))
	assert.Equal(t, 1001, p.Highest([]string{"UCTD_999", "UCTD_1001", "UCTD_1000", "legacy-5000"}))
}

func TestAllocator_NextAfter(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		taken    string
		want     string
	}{
		{"fresh read moves on", []string{"UCTD_001", "UCTD_002"}, "UCTD_002", "UCTD_003"},
		{"steps past grown identifiers", []string{"UCTD_999", "UCTD_1000", "UCTD_1001"}, "UCTD_1000", "UCTD_1002"},
		{"steps past a stale read", []string{"UCTD_001"}, "UCTD_002", "UCTD_003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(DefaultPattern(), &stubSource{ids: tt.existing}, nil)
			assert.Equal(t, tt.want, a.NextAfter(context.Background(), tt.taken))
		})
	}
}

func TestAllocator_NextAfter_SourceFailure(t *testing.T) {
	a := NewAllocator(DefaultPattern(), &stubSource{err: errors.New("connection refused")}, nil)

	assert.Equal(t, "UCTD_001", a.NextAfter(context.Background(), "UCTD_001"))
}
