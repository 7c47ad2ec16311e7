package clientgen

import (
	"context"
	"errors"

	"github.com/andy/autoshop/internal/domain"
)

// ErrExhausted is returned by a source that has no more clients
var ErrExhausted = errors.New("client source exhausted")

// Arrival is a client driving in with one broken part
type Arrival struct {
	Client     *domain.Client
	BrokenPart *domain.Part
}

// Source produces arriving clients
type Source interface {
	Next(ctx context.Context) (Arrival, error)
}

// ScriptedSource replays a fixed list of arrivals, then returns ErrExhausted
type ScriptedSource struct {
	arrivals []Arrival
	next     int
}

func NewScriptedSource(arrivals ...Arrival) *ScriptedSource {
	return &ScriptedSource{arrivals: arrivals}
}

func (s *ScriptedSource) Next(ctx context.Context) (Arrival, error) {
	if err := ctx.Err(); err != nil {
		return Arrival{}, err
	}
	if s.next >= len(s.arrivals) {
		return Arrival{}, ErrExhausted
	}
	a := s.arrivals[s.next]
	s.next++
	return a, nil
}

// Remaining returns how many arrivals are left
func (s *ScriptedSource) Remaining() int {
	return len(s.arrivals) - s.next
}
