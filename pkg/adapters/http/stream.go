package http

import (
	"log/slog"
	"sync"
)

// StreamManager fans editor events out to SSE connections. Each
// subscriber picks the event types it wants.
type StreamManager struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	subscribers map[string]map[chan string]struct{} // event type -> set of channels
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		logger:      logger,
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

// Subscribe registers a channel for topics. The returned func removes it
// and closes the channel.
func (sm *StreamManager) Subscribe(topics []string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	for _, t := range topics {
		if _, ok := sm.subscribers[t]; !ok {
			sm.subscribers[t] = make(map[chan string]struct{})
		}
		sm.subscribers[t][ch] = struct{}{}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			for _, t := range topics {
				if subs, ok := sm.subscribers[t]; ok {
					delete(subs, ch)
					if len(subs) == 0 {
						delete(sm.subscribers, t)
					}
				}
			}
			close(ch)
		})
	}
}

// Broadcast sends msg to every subscriber of topic without blocking.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("SSE: Client buffer full, dropping message", "topic", topic)
		}
	}
}

// Count returns the number of subscriptions to topic.
func (sm *StreamManager) Count(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}
