package storage

import (
	"context"
	"time"

	"github.com/ercanvas/locamoo/internal/model"
)

// Store is the relay's narrow contract with the document store: user
// projections, the hidden-word block-list, and the global chat collection.
// Live connection state never touches it.
type Store interface {
	// Player projection operations
	GetPlayerProfile(ctx context.Context, username string) (*model.PlayerProfile, error)
	SavePlayerProfile(ctx context.Context, profile *model.PlayerProfile) error

	// Hidden word operations
	ListHiddenWords(ctx context.Context) ([]model.HiddenWord, error)
	AddHiddenWord(ctx context.Context, word, addedBy string, at time.Time) error
	RemoveHiddenWord(ctx context.Context, word string) error

	// Global chat operations
	AppendGlobalChat(ctx context.Context, msg *model.ChatMessage) error
	GlobalChatSince(ctx context.Context, since time.Time) ([]*model.ChatMessage, error)
	PruneGlobalChatBefore(ctx context.Context, cutoff time.Time) (int, error)
}
