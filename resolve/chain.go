// Package resolve runs the ordered fallback chains that turn a
// classified URL into metadata, audio, or a downloaded video. Each chain
// is an explicit list of named stages tried in priority order; the first
// success wins and every attempt is kept as a trace.
package resolve

import (
	"context"
	"fmt"

	"github.com/royhenengel/Bookmark-Knowledge-Base/models"
)

// Stage is one alternative strategy in a chain.
type Stage[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// ChainError is the typed failure raised when every stage of a chain has
// been exhausted. It carries the full attempt trace for diagnostics.
type ChainError struct {
	Attempts []models.ResolutionAttempt
}

func (e *ChainError) Error() string {
	if len(e.Attempts) == 0 {
		return "resolution failed: no stages attempted"
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("resolution failed after %d attempts, last (%s): %s", len(e.Attempts), last.Source, last.Detail)
}

// runChain tries stages in order until one succeeds. The returned trace
// includes the failed attempts and, on success, the winning stage.
func runChain[T any](ctx context.Context, stages []Stage[T]) (T, []models.ResolutionAttempt, *ChainError) {
	var attempts []models.ResolutionAttempt

	for _, stage := range stages {
		value, err := stage.Run(ctx)
		if err != nil {
			attempts = append(attempts, models.ResolutionAttempt{
				Source:  stage.Name,
				Outcome: models.OutcomeFailure,
				Detail:  err.Error(),
			})
			continue
		}
		attempts = append(attempts, models.ResolutionAttempt{
			Source:  stage.Name,
			Outcome: models.OutcomeSuccess,
		})
		return value, attempts, nil
	}

	var zero T
	return zero, attempts, &ChainError{Attempts: attempts}
}
