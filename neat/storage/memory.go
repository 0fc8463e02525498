package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/baldhumanity/neat-lstm/neat"
)

type genomeKey struct {
	runID string
	id    int
}

// MemoryStore keeps records in process memory. Genomes are copied on the way
// in and on the way out.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[genomeKey]*neat.Genome
	generations map[string]map[int]GenerationSummary
}

// NewMemoryStore returns an empty store. Call Init before use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[genomeKey]*neat.Genome)
	s.generations = make(map[string]map[int]GenerationSummary)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, runID string, genome *neat.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.genomes[genomeKey{runID: runID, id: genome.ID}] = genome.Clone()
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, runID string, id int) (*neat.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genome, ok := s.genomes[genomeKey{runID: runID, id: id}]
	if !ok {
		return nil, false, nil
	}
	return genome.Clone(), true, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, summary GenerationSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	run, ok := s.generations[summary.RunID]
	if !ok {
		run = make(map[int]GenerationSummary)
		s.generations[summary.RunID] = run
	}
	run[summary.Generation] = summary
	return nil
}

func (s *MemoryStore) ListGenerations(_ context.Context, runID string) ([]GenerationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := s.generations[runID]
	out := make([]GenerationSummary, 0, len(run))
	for _, summary := range run {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}
