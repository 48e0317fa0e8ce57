package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jeopardy-ctf/scoring-api/internal/domain"
)

func DecodePostSolve(e domain.OutboxEvent) (domain.PostSolveEvent, error) {
	var solve domain.PostSolveEvent
	if err := json.Unmarshal(e.Payload, &solve); err != nil {
		return domain.PostSolveEvent{}, fmt.Errorf("json.Unmarshal outbox %d -> %w", e.ID, err)
	}
	return solve, nil
}

type SolveHandlerFunc func(ctx context.Context, e domain.PostSolveEvent) error

// SolveHandler adapts a post-solve callback to the outbox Handler interface.
type SolveHandler struct {
	name string
	fn   SolveHandlerFunc
}

func NewSolveHandler(name string, fn SolveHandlerFunc) *SolveHandler {
	return &SolveHandler{
		name: name,
		fn:   fn,
	}
}

func (h *SolveHandler) Name() string {
	return h.name
}

func (h *SolveHandler) Handle(ctx context.Context, e domain.OutboxEvent) error {
	solve, err := DecodePostSolve(e)
	if err != nil {
		return err
	}
	return h.fn(ctx, solve)
}
