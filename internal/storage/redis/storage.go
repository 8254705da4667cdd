package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ercanvas/locamoo/internal/model"
	"github.com/ercanvas/locamoo/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Player projection operations

func (s *Storage) GetPlayerProfile(ctx context.Context, username string) (*model.PlayerProfile, error) {
	data, err := s.client.Get(ctx, playerKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var profile model.PlayerProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) SavePlayerProfile(ctx context.Context, profile *model.PlayerProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, playerKey(profile.Username), data, 0).Err()
}

// Hidden word operations

// hiddenWordMeta is the hash field value; the word itself is the field name
type hiddenWordMeta struct {
	AddedBy string    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

func (s *Storage) ListHiddenWords(ctx context.Context) ([]model.HiddenWord, error) {
	fields, err := s.client.HGetAll(ctx, hiddenWordsKey()).Result()
	if err != nil {
		return nil, err
	}

	words := make([]model.HiddenWord, 0, len(fields))
	for word, raw := range fields {
		var meta hiddenWordMeta
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			continue // skip invalid entries
		}
		words = append(words, model.HiddenWord{Word: word, AddedBy: meta.AddedBy, AddedAt: meta.AddedAt})
	}
	return words, nil
}

func (s *Storage) AddHiddenWord(ctx context.Context, word, addedBy string, at time.Time) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return model.ErrEmptyWord
	}

	data, err := json.Marshal(hiddenWordMeta{AddedBy: addedBy, AddedAt: at})
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, hiddenWordsKey(), word, data).Err()
}

func (s *Storage) RemoveHiddenWord(ctx context.Context, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	removed, err := s.client.HDel(ctx, hiddenWordsKey(), word).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return model.ErrWordNotFound
	}
	return nil
}

// Global chat operations

func (s *Storage) AppendGlobalChat(ctx context.Context, msg *model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.client.ZAdd(ctx, globalChatKey(), redis.Z{
		Score:  float64(msg.Timestamp.UnixMilli()),
		Member: data,
	}).Err()
}

func (s *Storage) GlobalChatSince(ctx context.Context, since time.Time) ([]*model.ChatMessage, error) {
	raw, err := s.client.ZRangeByScore(ctx, globalChatKey(), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]*model.ChatMessage, 0, len(raw))
	for _, entry := range raw {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			continue // skip invalid data
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

func (s *Storage) PruneGlobalChatBefore(ctx context.Context, cutoff time.Time) (int, error) {
	removed, err := s.client.ZRemRangeByScore(ctx, globalChatKey(),
		"-inf", "("+strconv.FormatInt(cutoff.UnixMilli(), 10)).Result()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}
