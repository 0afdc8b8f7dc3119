package memory

import (
	"context"
	"sync"

	"ledgerly/internal/export"
)

// Delivery is one export received by Sink.
type Delivery struct {
	Filename string
	CSV      string
}

// Sink keeps every delivery in memory.
type Sink struct {
	mu         sync.Mutex
	deliveries []Delivery
}

var _ export.Sink = (*Sink)(nil)

func New() *Sink {
	return &Sink{}
}

func (s *Sink) Deliver(_ context.Context, filename, csv string) error {
	if filename == "" {
		return export.ErrEmptyFilename
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, Delivery{Filename: filename, CSV: csv})
	return nil
}

// Deliveries returns a copy of everything delivered so far.
func (s *Sink) Deliveries() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delivery(nil), s.deliveries...)
}
