package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// speciesArena builds n frozen genomes with fitness equal to their slot and a
// species holding all of them.
func speciesArena(t *testing.T, e *Engine, n int) ([]*Genome, map[int]float64, *Species) {
	t.Helper()
	seed, err := e.NewSeedGenome(2, 1)
	require.NoError(t, err)

	genomes := make([]*Genome, n)
	fitness := make(map[int]float64, n)
	s := NewSpecies(0)
	for i := range genomes {
		g := seed.Clone()
		g.ID = e.NewGenomeID()
		require.NoError(t, e.MutateAll(g))
		g.freeze()
		genomes[i] = g
		fitness[i] = float64(i)
		if i > 0 {
			s.Add(i)
		}
	}
	return genomes, fitness, s
}

func TestSpeciesReproduceExactCount(t *testing.T) {
	const members = 5
	for _, size := range []int{1, 2, members, 5 * members} {
		e := newTestEngine(t, nil)
		genomes, fitness, s := speciesArena(t, e, members)

		offspring, err := s.Reproduce(e, genomes, fitness, size)
		require.NoError(t, err, "size %d", size)
		require.Len(t, offspring, size)
		for _, child := range offspring {
			assert.False(t, child.Frozen())
			assert.True(t, child.CheckConnections())
			for _, parent := range genomes {
				assert.NotSame(t, parent, child)
			}
		}
	}
}

func TestSpeciesReproduceZeroSize(t *testing.T) {
	e := newTestEngine(t, nil)
	genomes, fitness, s := speciesArena(t, e, 3)
	offspring, err := s.Reproduce(e, genomes, fitness, 0)
	assert.NoError(t, err)
	assert.Empty(t, offspring)
}

func TestSpeciesReproduceCarriesOverFittest(t *testing.T) {
	e := newTestEngine(t, nil)
	genomes, fitness, s := speciesArena(t, e, 5)

	// ceil(sqrt(2*3)) = 3 parents fill the whole quota.
	offspring, err := s.Reproduce(e, genomes, fitness, 3)
	require.NoError(t, err)
	require.Len(t, offspring, 3)
	for i, child := range offspring {
		parent := genomes[4-i]
		assert.Equal(t, parent.ID, child.ID)
		assert.Equal(t, parent.Connections, child.Connections)
	}
}

func TestSpeciesReproduceSingleMember(t *testing.T) {
	e := newTestEngine(t, nil)
	genomes, fitness, _ := speciesArena(t, e, 1)
	s := NewSpecies(0)

	offspring, err := s.Reproduce(e, genomes, fitness, 4)
	require.NoError(t, err)
	require.Len(t, offspring, 4)
	ids := map[int]bool{}
	for _, child := range offspring {
		assert.NotEqual(t, genomes[0].ID, child.ID)
		ids[child.ID] = true
	}
	assert.Len(t, ids, 4)
}

func TestSpeciesReproduceMissingFitness(t *testing.T) {
	e := newTestEngine(t, nil)
	genomes, fitness, s := speciesArena(t, e, 3)
	delete(fitness, 1)

	_, err := s.Reproduce(e, genomes, fitness, 3)
	assert.ErrorIs(t, err, ErrMissingFitness)
}

func TestSpeciesReproduceSlotOutOfRange(t *testing.T) {
	e := newTestEngine(t, nil)
	genomes, fitness, s := speciesArena(t, e, 3)
	s.Add(7)

	_, err := s.Reproduce(e, genomes, fitness, 3)
	assert.ErrorIs(t, err, ErrSlotRange)
}

func TestSpeciesCompatible(t *testing.T) {
	e := newTestEngine(t, nil)
	g, err := e.NewSeedGenome(2, 1)
	require.NoError(t, err)
	far := g.Clone()
	for i := range far.Connections {
		far.Connections[i].Weight += 10
	}

	s := NewSpecies(0)
	genomes := []*Genome{g}
	assert.True(t, s.Compatible(e, genomes, g.Clone()))
	assert.False(t, s.Compatible(e, genomes, far))
}
