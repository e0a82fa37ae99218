package panelx_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Abraxas-365/debelu/pkg/chat/panelx"
	"github.com/Abraxas-365/debelu/pkg/errx"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBoard_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	b := panelx.NewMemoryBoard()
	s := kernel.SessionID("u1/s1")

	_, ok, err := b.Active(ctx, s)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Activate(ctx, s, panelx.KindCompare, "first"))
	require.NoError(t, b.Activate(ctx, s, panelx.KindIntelligence, "second"))

	act, ok, err := b.Active(ctx, s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, panelx.Activation{Kind: panelx.KindIntelligence, Payload: "second"}, act)

	_, ok, _ = b.Active(ctx, "u1/other")
	assert.False(t, ok, "sessions do not share panels")

	require.NoError(t, b.Clear(ctx, s))
	_, ok, _ = b.Active(ctx, s)
	assert.False(t, ok)
}

func TestMemoryBoard_RejectsEmptyKind(t *testing.T) {
	err := panelx.NewMemoryBoard().Activate(context.Background(), "s", "", nil)
	assert.True(t, errx.HasCode(err, panelx.ErrInvalidKind))
}

func TestMemoryBoard_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	b := panelx.NewMemoryBoard()
	s := kernel.SessionID("s")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _, _ = b.Active(ctx, s)
			}
		}()
	}
	for j := 0; j < 100; j++ {
		require.NoError(t, b.Activate(ctx, s, panelx.KindCompare, j))
	}
	wg.Wait()

	act, _, _ := b.Active(ctx, s)
	assert.Equal(t, 99, act.Payload)
}
