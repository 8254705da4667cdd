package moderation

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	goahocorasick "github.com/anknown/ahocorasick"

	"github.com/ercanvas/locamoo/internal/storage"
)

// Mask replaces every blocked word occurrence in outgoing global chat
const Mask = "***"

// DefaultRefreshInterval is how often the block-list is re-read from the store
const DefaultRefreshInterval = 60 * time.Second

// Filter redacts blocked words from chat text. The block-list lives in the
// store and is cached in an Aho-Corasick automaton, rebuilt on a fixed
// refresh interval and at startup. Matching is case-insensitive and
// substring-based; the filter never rejects a message, it only redacts.
type Filter struct {
	store    storage.Store
	logger   *slog.Logger
	interval time.Duration

	mu      sync.RWMutex
	machine *goahocorasick.Machine
}

// NewFilter creates a filter with an empty block-list. Call Refresh (or Run)
// to load words from the store.
func NewFilter(store storage.Store, logger *slog.Logger, interval time.Duration) *Filter {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Filter{
		store:    store,
		logger:   logger.With(slog.String("component", "moderation")),
		interval: interval,
	}
}

// Refresh re-reads the block-list from the store and rebuilds the automaton
func (f *Filter) Refresh(ctx context.Context) error {
	entries, err := f.store.ListHiddenWords(ctx)
	if err != nil {
		return err
	}

	words := make([]string, 0, len(entries))
	for _, entry := range entries {
		word := strings.ToLower(strings.TrimSpace(entry.Word))
		if word != "" {
			words = append(words, word)
		}
	}

	machine, err := buildMachine(words)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.machine = machine
	f.mu.Unlock()

	f.logger.Debug("hidden word list refreshed", slog.Int("words", len(words)))
	return nil
}

// Run refreshes the block-list on a fixed interval until ctx is cancelled.
// Refresh failures are logged and retried on the next tick.
func (f *Filter) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := f.Refresh(ctx); err != nil {
				f.logger.Error("hidden word refresh failed", slog.Any("error", err))
			}
		}
	}
}

// SetWords replaces the block-list directly, bypassing the store (for tests)
func (f *Filter) SetWords(words []string) error {
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			lowered = append(lowered, w)
		}
	}

	machine, err := buildMachine(lowered)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.machine = machine
	f.mu.Unlock()
	return nil
}

// Censor replaces every occurrence of every blocked word with the mask.
// Matching ignores case; an empty result is still a valid message.
func (f *Filter) Censor(text string) string {
	f.mu.RLock()
	machine := f.machine
	f.mu.RUnlock()

	if machine == nil || text == "" {
		return text
	}

	original := []rune(text)
	lowered := []rune(strings.ToLower(text))

	hits := machine.MultiPatternSearch(lowered, false)
	if len(hits) == 0 {
		return text
	}

	type span struct{ start, end int }
	spans := make([]span, 0, len(hits))
	for _, hit := range hits {
		spans = append(spans, span{start: hit.Pos, end: hit.Pos + len(hit.Word)})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var b strings.Builder
	cursor := 0
	for _, sp := range spans {
		if sp.start < cursor {
			// overlapping match, already masked
			if sp.end > cursor {
				cursor = sp.end
			}
			continue
		}
		b.WriteString(string(original[cursor:sp.start]))
		b.WriteString(Mask)
		cursor = sp.end
	}
	if cursor < len(original) {
		b.WriteString(string(original[cursor:]))
	}
	return b.String()
}

func buildMachine(words []string) (*goahocorasick.Machine, error) {
	if len(words) == 0 {
		return nil, nil
	}

	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = []rune(word)
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return machine, nil
}
