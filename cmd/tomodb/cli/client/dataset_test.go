package client

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestReadLines(t *testing.T) {
	defer goleak.VerifyNone(t)

	var got []string
	for line := range readLines(context.Background(), strings.NewReader("mot\nmotor\n")) {
		got = append(got, line)
	}
	assert.Equal(t, []string{"mot", "motor"}, got)
}

func TestReadLines_StopsWhenCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nobody receives: the reader must give up instead of blocking on send.
	readLines(ctx, strings.NewReader("a\nb\nc\n"))
}

func TestDatasetSearch_PrintsFlushedQuery(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("metadata.sqlite.path", filepath.Join(t.TempDir(), "search.db"))
	viper.Set("search.debounce", "10ms")
	viper.Set("log.level", "ERROR")

	var out bytes.Buffer
	cmd := NewDatasetSearchCommand()
	cmd.SetIn(strings.NewReader("motor\n"))
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, 1, strings.Count(out.String(), `result(s) for "motor"`))
}

func TestDatasetSearch_Cancelled(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("metadata.sqlite.path", filepath.Join(t.TempDir(), "search.db"))
	viper.Set("log.level", "ERROR")

	stdin, feed := io.Pipe()
	t.Cleanup(func() {
		feed.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	cmd := NewDatasetSearchCommand()
	cmd.SetIn(stdin)
	cmd.SetOut(io.Discard)
	cmd.SetArgs(nil)

	assert.ErrorIs(t, cmd.ExecuteContext(ctx), context.Canceled)
}
