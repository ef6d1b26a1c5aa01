package notify

import "sync"

// MemorySink records everything handed to it. Handy for tests and dry runs.
type MemorySink struct {
	mu            sync.Mutex
	notifications []Notification
	events        []DomainEvent
}

func (s *MemorySink) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

func (s *MemorySink) Publish(e DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *MemorySink) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.notifications...)
}

func (s *MemorySink) Events() []DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DomainEvent(nil), s.events...)
}

func (s *MemorySink) EventKinds() []EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]EventKind, 0, len(s.events))
	for _, e := range s.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}
