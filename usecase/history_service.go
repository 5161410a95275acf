package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vibeflow/vibeflow/domain/entities"
	"github.com/vibeflow/vibeflow/domain/repositories"
)

// MaxHistoryItems is the number of results kept
const MaxHistoryItems = 50

// HistoryService keeps the newest results first, capped at MaxHistoryItems
type HistoryService struct {
	store  repositories.KeyValueStore
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewHistoryService creates a history service
func NewHistoryService(store repositories.KeyValueStore, logger *zap.Logger) *HistoryService {
	return &HistoryService{store: store, logger: logger, now: time.Now}
}

// List returns the stored items, newest first. Malformed data reads as empty.
func (s *HistoryService) List(ctx context.Context) ([]entities.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add prepends a result and drops whatever falls beyond the cap
func (s *HistoryService) Add(ctx context.Context, result string, mode entities.Mode) (entities.HistoryItem, error) {
	item := entities.NewHistoryItem(result, mode, s.now())
	if err := item.Validate(); err != nil {
		return item, fmt.Errorf("invalid history item: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return item, err
	}

	items = append([]entities.HistoryItem{item}, items...)
	if len(items) > MaxHistoryItems {
		items = items[:MaxHistoryItems]
	}

	data, err := json.Marshal(items)
	if err != nil {
		return item, fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.store.Set(ctx, KeyHistory, string(data)); err != nil {
		return item, fmt.Errorf("failed to save history: %w", err)
	}
	return item, nil
}

// Clear empties the list and removes the persisted copy
func (s *HistoryService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, KeyHistory); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	s.logger.Info("History cleared")
	return nil
}

func (s *HistoryService) load(ctx context.Context) ([]entities.HistoryItem, error) {
	raw, err := s.store.Get(ctx, KeyHistory)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var items []entities.HistoryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("Discarding malformed history", zap.Error(err))
		return nil, nil
	}
	return items, nil
}
