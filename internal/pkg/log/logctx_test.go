package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom_DefaultWhenEmpty(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.Default(), From(context.Background()))
}

func TestInto_From_RoundTrip(t *testing.T) {
	t.Parallel()

	l := slog.New(slog.DiscardHandler)
	ctx := Into(context.Background(), l)

	require.Same(t, l, From(ctx))
}

func TestWithAttrs_EnrichesLogger(t *testing.T) {
	t.Parallel()

	l := slog.New(slog.DiscardHandler)
	ctx := Into(context.Background(), l)

	enriched := WithAttrs(ctx, "user_id", int64(7))
	require.NotSame(t, l, From(enriched))
}
