package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/webindex"
	"github.com/fwojciec/webindex/mock"
	webindexslog "github.com/fwojciec/webindex/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingIndexStore_Upsert(t *testing.T) {
	t.Parallel()

	t.Run("logs batch size and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.IndexStore{
			UpsertFn: func(ctx context.Context, docs []webindex.IndexDocument) error {
				return nil
			},
		}

		store := webindexslog.NewLoggingIndexStore(inner, logger)
		err := store.Upsert(context.Background(), []webindex.IndexDocument{{ID: "a"}, {ID: "b"}})

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "index upsert")
		assert.Contains(t, output, "docs=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.IndexStore{
			UpsertFn: func(ctx context.Context, docs []webindex.IndexDocument) error {
				return webindex.Errorf(webindex.ERATELIMIT, "throttled")
			},
		}

		store := webindexslog.NewLoggingIndexStore(inner, logger)
		err := store.Upsert(context.Background(), []webindex.IndexDocument{{ID: "a"}})

		require.Error(t, err)
		assert.Equal(t, webindex.ERATELIMIT, webindex.ErrorCode(err))
		assert.Contains(t, buf.String(), "index upsert")
	})
}
