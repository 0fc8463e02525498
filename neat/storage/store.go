// Package storage persists genomes and per-generation summaries of a run.
package storage

import (
	"context"

	"github.com/baldhumanity/neat-lstm/neat"
)

// Store defines persistence operations for evolved genomes and run history.
// Records are grouped by run id.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, runID string, genome *neat.Genome) error
	GetGenome(ctx context.Context, runID string, id int) (*neat.Genome, bool, error)
	SaveGeneration(ctx context.Context, summary GenerationSummary) error
	ListGenerations(ctx context.Context, runID string) ([]GenerationSummary, error)
}
