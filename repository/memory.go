package repository

import (
	"container/list"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hoangpro267200/omen/domain"
)

// Memory is an in-process Repository: a bounded ordered mapping with FIFO
// eviction on overflow. Both the primary index (by signal_id) and the
// secondary index (input_event_hash -> signal_id) are updated atomically
// under one lock, matching the no-long-running-operation-inside-the-lock
// discipline used elsewhere in this codebase for shared in-memory state.
type Memory struct {
	mu           sync.RWMutex
	maxSize      int
	order        *list.List // front = oldest, back = newest
	elements     map[string]*list.Element
	byID         map[string]domain.Signal
	byEventHash  map[string]string // input_event_hash -> signal_id
}

// NewMemory builds a Memory repository capped at maxSize entries (default
// 10000 if maxSize <= 0, per spec §4.3).
func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Memory{
		maxSize:     maxSize,
		order:       list.New(),
		elements:    make(map[string]*list.Element),
		byID:        make(map[string]domain.Signal),
		byEventHash: make(map[string]string),
	}
}

// Save upserts signal. If signal.SignalID already exists, it is updated
// in place without moving its FIFO position — re-saves of the same
// deterministic signal_id are not evictions.
func (m *Memory) Save(_ context.Context, signal domain.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.elements[signal.SignalID]; exists {
		m.byID[signal.SignalID] = signal
		m.byEventHash[signal.InputEventHash] = signal.SignalID
		return nil
	}

	elem := m.order.PushBack(signal.SignalID)
	m.elements[signal.SignalID] = elem
	m.byID[signal.SignalID] = signal
	m.byEventHash[signal.InputEventHash] = signal.SignalID

	for m.order.Len() > m.maxSize {
		m.evictOldest()
	}
	return nil
}

// evictOldest must be called with m.mu held.
func (m *Memory) evictOldest() {
	front := m.order.Front()
	if front == nil {
		return
	}
	oldestID := front.Value.(string)
	m.order.Remove(front)
	delete(m.elements, oldestID)
	if signal, ok := m.byID[oldestID]; ok {
		if m.byEventHash[signal.InputEventHash] == oldestID {
			delete(m.byEventHash, signal.InputEventHash)
		}
	}
	delete(m.byID, oldestID)
}

// FindByID returns the signal with the given signal_id, if present.
func (m *Memory) FindByID(_ context.Context, signalID string) (domain.Signal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	signal, ok := m.byID[signalID]
	return signal, ok, nil
}

// FindByHash returns the signal previously saved for inputEventHash, if any.
// This backs the pipeline's idempotency contract.
func (m *Memory) FindByHash(ctx context.Context, inputEventHash string) (domain.Signal, bool, error) {
	m.mu.RLock()
	signalID, ok := m.byEventHash[inputEventHash]
	m.mu.RUnlock()
	if !ok {
		return domain.Signal{}, false, nil
	}
	return m.FindByID(ctx, signalID)
}

// FindRecent returns up to limit signals ordered newest first, optionally
// filtered to GeneratedAt >= *since.
func (m *Memory) FindRecent(_ context.Context, limit int, since *time.Time) ([]domain.Signal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	signals := make([]domain.Signal, 0, m.order.Len())
	for e := m.order.Back(); e != nil; e = e.Prev() {
		id := e.Value.(string)
		signal, ok := m.byID[id]
		if !ok {
			continue
		}
		if since != nil && signal.GeneratedAt.Before(*since) {
			continue
		}
		signals = append(signals, signal)
		if limit > 0 && len(signals) >= limit {
			break
		}
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].GeneratedAt.After(signals[j].GeneratedAt)
	})
	return signals, nil
}
