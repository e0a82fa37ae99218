package chatinfra_test

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/debelu/pkg/chat"
	"github.com/Abraxas-365/debelu/pkg/chat/chatinfra"
	"github.com/Abraxas-365/debelu/pkg/chat/toolx"
	"github.com/Abraxas-365/debelu/pkg/kernel"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *chatinfra.SQLStore {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := chatinfra.NewSQLStore(db)
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func sampleConversation() []chat.Message {
	resolved := toolx.Called("c1", "search_marketplace", map[string]any{"query": "laptop"}).
		Resolved([]any{map[string]any{"id": "1", "name": "A"}})
	return []chat.Message{
		chat.NewBuyerMessage("show me laptops"),
		chat.NewAssistantMessage("Here are some laptops:", []toolx.Invocation{
			resolved,
			toolx.Called("c2", "compare_products", nil),
		}),
	}
}

// exerciseStore runs the contract every chat.Store must honour.
func exerciseStore(t *testing.T, store chat.Store) {
	t.Helper()
	ctx := context.Background()
	session := kernel.SessionID("u1/s1")

	msgs, err := store.Messages(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	want := sampleConversation()
	for _, m := range want {
		require.NoError(t, store.AddMessage(ctx, session, m))
	}
	require.NoError(t, store.AddMessage(ctx, "u1/other", chat.NewBuyerMessage("elsewhere")))

	got, err := store.Messages(ctx, session)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, want[0].ID, got[0].ID)
	assert.Equal(t, chat.RoleBuyer, got[0].Role)
	assert.Empty(t, got[0].ToolInvocations)
	assert.WithinDuration(t, want[0].CreatedAt, got[0].CreatedAt, time.Millisecond)

	assert.Equal(t, "Here are some laptops:", got[1].Content)
	require.Len(t, got[1].ToolInvocations, 2)
	assert.Equal(t, toolx.StateResulted, got[1].ToolInvocations[0].State())
	result, _ := got[1].ToolInvocations[0].Result()
	assert.Equal(t, []any{map[string]any{"id": "1", "name": "A"}}, result)
	assert.Equal(t, toolx.StateCalled, got[1].ToolInvocations[1].State())
	assert.Equal(t, map[string]any{}, got[1].ToolInvocations[1].Args)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, chatinfra.NewMemoryStore())
}

func TestMemoryStore_ReturnsDefensiveCopy(t *testing.T) {
	ctx := context.Background()
	store := chatinfra.NewMemoryStore()
	require.NoError(t, store.AddMessage(ctx, "s", chat.NewBuyerMessage("hello")))

	msgs, _ := store.Messages(ctx, "s")
	msgs[0].Content = "mutated"

	again, _ := store.Messages(ctx, "s")
	assert.Equal(t, "hello", again[0].Content)
}

func TestSQLStore_SQLite(t *testing.T) {
	store := newSQLiteStore(t)
	exerciseStore(t, store)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestSQLStore_EnsureSchemaIsIdempotent(t *testing.T) {
	store := newSQLiteStore(t)
	assert.NoError(t, store.EnsureSchema(context.Background()))
}

func TestSQLStore_DuplicateIDConflicts(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	msg := chat.NewBuyerMessage("once")

	require.NoError(t, store.AddMessage(ctx, "s", msg))
	err := store.AddMessage(ctx, "s", msg)

	require.Error(t, err)
	msgs, _ := store.Messages(ctx, "s")
	assert.Len(t, msgs, 1)
}

func TestSQLStore_WorksWithService(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	svc := chat.NewService(chatinfra.OfflineBackend{}, store, nil)

	reply, err := svc.Append(ctx, "u1/s1", "hello", nil)
	require.NoError(t, err)

	history, err := svc.History(ctx, "u1/s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, reply.ID, history[1].ID)
	assert.Equal(t, chatinfra.OfflineReply, history[1].Content)
}
