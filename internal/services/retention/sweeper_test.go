package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ercanvas/locamoo/internal/dependencies/mocks"
	"github.com/ercanvas/locamoo/internal/model"
	"github.com/ercanvas/locamoo/internal/storage/memory"
	"github.com/ercanvas/locamoo/internal/testutil"
)

func TestSweepRemovesExpiredKeepsFresh(t *testing.T) {
	store := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	old := &model.ChatMessage{Username: "alice", Message: "old", Timestamp: clk.Now().Add(-25 * time.Minute)}
	fresh := &model.ChatMessage{Username: "bob", Message: "fresh", Timestamp: clk.Now().Add(-5 * time.Minute)}
	require.NoError(t, store.AppendGlobalChat(ctx, old))
	require.NoError(t, store.AppendGlobalChat(ctx, fresh))

	sweeper := NewSweeper(store, clk, testutil.NopLogger(), DefaultWindow, DefaultInterval)
	sweeper.Sweep(ctx)

	messages, err := store.GlobalChatSince(ctx, clk.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "fresh", messages[0].Message)
}

func TestSweepBecomesEffectiveAsClockAdvances(t *testing.T) {
	store := memory.New()
	clk := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	msg := &model.ChatMessage{Username: "alice", Message: "hello", Timestamp: clk.Now()}
	require.NoError(t, store.AppendGlobalChat(ctx, msg))

	sweeper := NewSweeper(store, clk, testutil.NopLogger(), DefaultWindow, DefaultInterval)

	sweeper.Sweep(ctx)
	messages, _ := store.GlobalChatSince(ctx, clk.Now().Add(-time.Hour))
	require.Len(t, messages, 1, "message inside the window must survive")

	clk.Advance(21 * time.Minute)
	sweeper.Sweep(ctx)
	messages, _ = store.GlobalChatSince(ctx, clk.Now().Add(-time.Hour))
	require.Empty(t, messages, "message outside the window must be pruned")
}

func TestSweepOnEmptyStoreIsANoOp(t *testing.T) {
	store := memory.New()
	clk := mocks.NewMockClock(time.Now())

	sweeper := NewSweeper(store, clk, testutil.NopLogger(), 0, 0)
	sweeper.Sweep(context.Background())
}
