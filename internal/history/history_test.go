package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	path := Path(t.TempDir())
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, Run{ID: "a", LedgerAccount: "Assets:Giro", AccountID: 1, Fetched: 3, Appended: 2, StartedAt: base, FinishedAt: base.Add(time.Second)}))
	require.NoError(t, s.Record(ctx, Run{ID: "b", LedgerAccount: "Assets:Karte", AccountID: 2, Error: "ledger convert failed", StartedAt: base.Add(time.Minute), FinishedAt: base.Add(time.Minute)}))

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "b", runs[0].ID)
	require.True(t, runs[0].Failed())
	require.Equal(t, "a", runs[1].ID)
	require.Equal(t, 2, runs[1].Appended)
	require.True(t, base.Equal(runs[1].StartedAt))

	runs, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestOpenTwiceKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "h.db")
	s, err := Open(path)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, s.Record(ctx, Run{ID: "x", LedgerAccount: "Assets:Giro", StartedAt: now, FinishedAt: now}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	runs, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}
