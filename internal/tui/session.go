package tui

import (
	"context"
	"fmt"

	"github.com/andy/autoshop/internal/app"
	"github.com/andy/autoshop/internal/clientgen"
)

// session is the state shared by every screen: the app and the stream of
// clients driving into the shop
type session struct {
	app    *app.App
	source clientgen.Source
}

func newSession(a *app.App) (*session, error) {
	src, err := a.NewSource()
	if err != nil {
		return nil, fmt.Errorf("failed to create client source: %w", err)
	}
	return &session{app: a, source: src}, nil
}

// restart opens a new shop with fresh clients
func (s *session) restart(ctx context.Context) error {
	s.app.Seed = clientgen.RandomSeed()
	if err := s.app.Restart(ctx); err != nil {
		return err
	}
	src, err := s.app.NewSource()
	if err != nil {
		return err
	}
	s.source = src
	return nil
}
