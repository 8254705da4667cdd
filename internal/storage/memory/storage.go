package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ercanvas/locamoo/internal/model"
	"github.com/ercanvas/locamoo/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	profiles    map[string]*model.PlayerProfile
	hiddenWords map[string]model.HiddenWord
	chat        []*model.ChatMessage
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		profiles:    make(map[string]*model.PlayerProfile),
		hiddenWords: make(map[string]model.HiddenWord),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Player projection operations

func (s *Storage) GetPlayerProfile(ctx context.Context, username string) (*model.PlayerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	copied := *profile
	return &copied, nil
}

func (s *Storage) SavePlayerProfile(ctx context.Context, profile *model.PlayerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	s.profiles[profile.Username] = &copied
	return nil
}

// Hidden word operations

func (s *Storage) ListHiddenWords(ctx context.Context) ([]model.HiddenWord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	words := make([]model.HiddenWord, 0, len(s.hiddenWords))
	for _, hw := range s.hiddenWords {
		words = append(words, hw)
	}
	sort.Slice(words, func(i, j int) bool {
		return words[i].AddedAt.After(words[j].AddedAt)
	})
	return words, nil
}

func (s *Storage) AddHiddenWord(ctx context.Context, word, addedBy string, at time.Time) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return model.ErrEmptyWord
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hiddenWords[word] = model.HiddenWord{Word: word, AddedBy: addedBy, AddedAt: at}
	return nil
}

func (s *Storage) RemoveHiddenWord(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hiddenWords[word]; !ok {
		return model.ErrWordNotFound
	}
	delete(s.hiddenWords, word)
	return nil
}

// Global chat operations

func (s *Storage) AppendGlobalChat(ctx context.Context, msg *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *msg
	s.chat = append(s.chat, &copied)
	return nil
}

func (s *Storage) GlobalChatSince(ctx context.Context, since time.Time) ([]*model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var messages []*model.ChatMessage
	for _, msg := range s.chat {
		if !msg.Timestamp.Before(since) {
			copied := *msg
			messages = append(messages, &copied)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (s *Storage) PruneGlobalChatBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chat[:0]
	pruned := 0
	for _, msg := range s.chat {
		if msg.Timestamp.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, msg)
	}
	s.chat = kept
	return pruned, nil
}
