package neat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightSum(g *Genome) (float64, error) {
	sum := 0.0
	for _, c := range g.Connections {
		if c.Enabled {
			sum += c.Weight
		}
	}
	return sum * sum, nil
}

func newTestPopulation(t *testing.T, e *Engine, size int) (*Genome, *Population) {
	t.Helper()
	seed, err := e.NewSeedGenome(2, 1)
	require.NoError(t, err)
	pop, err := NewPopulation(e, seed, size)
	require.NoError(t, err)
	return seed, pop
}

func assertSpeciesPartition(t *testing.T, pop *Population) {
	t.Helper()
	seen := make(map[int]bool, len(pop.Genomes))
	for _, s := range pop.Species {
		require.NotEmpty(t, s.Members)
		assert.Equal(t, s.Representative, s.Members[0])
		for _, slot := range s.Members {
			assert.False(t, seen[slot], "slot %d is in two species", slot)
			seen[slot] = true
		}
	}
	assert.Len(t, seen, len(pop.Genomes))
}

func TestNewPopulation(t *testing.T) {
	e := newTestEngine(t, nil)
	seed, pop := newTestPopulation(t, e, 30)

	assert.Equal(t, 1, pop.Generation)
	assert.Equal(t, 30, pop.Size)
	require.Len(t, pop.Genomes, 30)
	assert.False(t, seed.Frozen())

	ids := map[int]bool{}
	for _, g := range pop.Genomes {
		assert.True(t, g.Frozen())
		assert.NotEqual(t, seed.ID, g.ID)
		ids[g.ID] = true
	}
	assert.Len(t, ids, 30)
	assertSpeciesPartition(t, pop)
	assert.Equal(t, len(pop.Species), pop.SpeciesCount())
}

func TestNewPopulationRejectsEmptySize(t *testing.T) {
	e := newTestEngine(t, nil)
	seed, err := e.NewSeedGenome(2, 1)
	require.NoError(t, err)
	_, err = NewPopulation(e, seed, 0)
	assert.ErrorIs(t, err, ErrContract)
}

func TestSpeciateMembersMatchRepresentative(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.Speciation.CompatibilityThreshold = 1.0
		c.Mutation.PRandomizeWeight = 0.5
	})
	_, pop := newTestPopulation(t, e, 40)
	for _, s := range pop.Species {
		rep := pop.Genomes[s.Representative]
		for _, slot := range s.Members {
			assert.Less(t, Compatibility(rep, pop.Genomes[slot], e.Config.Speciation), e.Config.Speciation.CompatibilityThreshold)
		}
	}
}

func TestPopulationFitnessAccessors(t *testing.T) {
	e := newTestEngine(t, nil)
	_, pop := newTestPopulation(t, e, 5)

	_, _, ok := pop.Best()
	assert.False(t, ok)
	assert.Equal(t, -1, pop.Stats().BestGenomeID)

	assert.ErrorIs(t, pop.SetFitness(5, 1), ErrSlotRange)
	assert.ErrorIs(t, pop.SetFitness(-1, 1), ErrSlotRange)

	for slot := range pop.Genomes {
		require.NoError(t, pop.SetFitness(slot, float64(slot)))
	}
	f, ok := pop.Fitness(3)
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	slot, best, ok := pop.Best()
	require.True(t, ok)
	assert.Equal(t, 4, slot)
	assert.Same(t, pop.Genomes[4], best)

	stats := pop.Stats()
	assert.Equal(t, 4.0, stats.BestFitness)
	assert.Equal(t, 0.0, stats.MinFitness)
	assert.InDelta(t, 2.0, stats.MeanFitness, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), stats.StdevFitness, 1e-12)
	assert.Equal(t, pop.Genomes[4].ID, stats.BestGenomeID)
}

func TestStatsSingleFitness(t *testing.T) {
	e := newTestEngine(t, nil)
	_, pop := newTestPopulation(t, e, 3)
	require.NoError(t, pop.SetFitness(1, 6))

	stats := pop.Stats()
	assert.Equal(t, 6.0, stats.BestFitness)
	assert.Equal(t, 6.0, stats.MinFitness)
	assert.Equal(t, 6.0, stats.MeanFitness)
	assert.Zero(t, stats.StdevFitness)
	assert.Equal(t, pop.Genomes[1].ID, stats.BestGenomeID)
}

func TestReproduceRequiresFitness(t *testing.T) {
	e := newTestEngine(t, nil)
	_, pop := newTestPopulation(t, e, 10)
	_, err := pop.Reproduce()
	assert.ErrorIs(t, err, ErrMissingFitness)
}

func TestReproduceConservesSize(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.Speciation.CompatibilityThreshold = 0.5
		c.Mutation.PAddNode = 0.2
		c.Mutation.PAddConnection = 0.3
	})
	_, pop := newTestPopulation(t, e, 25)

	for gen := 1; gen <= 8; gen++ {
		require.Equal(t, gen, pop.Generation)
		require.NoError(t, pop.Evaluate(weightSum))

		next, err := pop.Reproduce()
		require.NoError(t, err)
		require.Len(t, next.Genomes, 25)
		for _, g := range next.Genomes {
			assert.True(t, g.Frozen())
			assert.True(t, g.CheckConnections())
		}
		for _, g := range pop.Genomes {
			assert.True(t, g.Frozen(), "previous generation must stay untouched")
		}
		assertSpeciesPartition(t, next)
		_, ok := next.Fitness(0)
		assert.False(t, ok, "fitness does not carry into the next generation")
		pop = next
	}
}

func TestReproduceWithZeroFitness(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Speciation.CompatibilityThreshold = 0.5 })
	_, pop := newTestPopulation(t, e, 12)
	require.NoError(t, pop.Evaluate(func(*Genome) (float64, error) { return 0, nil }))

	next, err := pop.Reproduce()
	require.NoError(t, err)
	assert.Len(t, next.Genomes, 12)
}

func TestEvaluatePropagatesErrors(t *testing.T) {
	e := newTestEngine(t, nil)
	_, pop := newTestPopulation(t, e, 3)
	err := pop.Evaluate(func(*Genome) (float64, error) { return 0, ErrInputSize })
	assert.ErrorIs(t, err, ErrInputSize)
}

func TestEvolutionIsDeterministicForSeed(t *testing.T) {
	run := func() *Population {
		e := newTestEngine(t, func(c *Config) { c.Run.Seed = 7 })
		_, pop := newTestPopulation(t, e, 20)
		for i := 0; i < 3; i++ {
			require.NoError(t, pop.Evaluate(weightSum))
			next, err := pop.Reproduce()
			require.NoError(t, err)
			pop = next
		}
		return pop
	}
	a, b := run(), run()
	require.Len(t, b.Genomes, len(a.Genomes))
	for i := range a.Genomes {
		assert.Equal(t, a.Genomes[i].ID, b.Genomes[i].ID)
		assert.Equal(t, a.Genomes[i].Nodes, b.Genomes[i].Nodes)
		assert.Equal(t, a.Genomes[i].Connections, b.Genomes[i].Connections)
	}
}

// uniformGenome clones seed with a fresh id and every connection weight set to w.
func uniformGenome(e *Engine, seed *Genome, w float64) *Genome {
	g := seed.Clone()
	g.ID = e.NewGenomeID()
	for i := range g.Connections {
		g.Connections[i].Weight = w
	}
	return g
}

func TestSpeciateFirstMatchWins(t *testing.T) {
	e := newTestEngine(t, nil)
	seed, err := e.NewSeedGenome(2, 1)
	require.NoError(t, err)

	genomes := []*Genome{
		uniformGenome(e, seed, 0),
		uniformGenome(e, seed, 10),
		uniformGenome(e, seed, 6),
	}
	cfg := e.Config.Speciation
	toFirst := Compatibility(genomes[0], genomes[2], cfg)
	toSecond := Compatibility(genomes[1], genomes[2], cfg)
	require.GreaterOrEqual(t, Compatibility(genomes[0], genomes[1], cfg), cfg.CompatibilityThreshold)
	require.Less(t, toFirst, cfg.CompatibilityThreshold)
	require.Less(t, toSecond, toFirst, "slot 2 is closer to the second representative")

	pop := newGeneration(e, 1, len(genomes), genomes)
	require.Len(t, pop.Species, 2)
	assert.Equal(t, []int{0, 2}, pop.Species[0].Members)
	assert.Equal(t, []int{1}, pop.Species[1].Members)
}

func TestReproduceSpeciesQuotas(t *testing.T) {
	cases := []struct {
		name     string
		weights  []float64 // 0 and 10 land in different species
		fitness  []float64
		wantZero int
		wantTen  int
	}{
		{
			// adjusted 3 and 1: round(0.75*4)=3, round(0.25*4)=1
			name:     "proportional",
			weights:  []float64{0, 0, 10, 10},
			fitness:  []float64{3, 3, 1, 1},
			wantZero: 3,
			wantTen:  1,
		},
		{
			// adjusted 1 and 1: round(2.5)=3 each, the second is capped at 2
			name:     "rounding capped",
			weights:  []float64{0, 0, 0, 10, 10},
			fitness:  []float64{1, 1, 1, 1, 1},
			wantZero: 3,
			wantTen:  2,
		},
		{
			// adjusted 2 and 6: round(0.25*4)=1, round(0.75*4)=3
			name:     "fitter species second",
			weights:  []float64{0, 0, 10, 10},
			fitness:  []float64{1, 3, 6, 6},
			wantZero: 1,
			wantTen:  3,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, func(c *Config) {
				c.Mutation = MutationConfig{PerturbWeightPower: c.Mutation.PerturbWeightPower}
			})
			seed, err := e.NewSeedGenome(2, 1)
			require.NoError(t, err)

			genomes := make([]*Genome, len(tc.weights))
			for i, w := range tc.weights {
				genomes[i] = uniformGenome(e, seed, w)
			}
			pop := newGeneration(e, 1, len(genomes), genomes)
			require.Len(t, pop.Species, 2)
			for slot, f := range tc.fitness {
				require.NoError(t, pop.SetFitness(slot, f))
			}

			next, err := pop.Reproduce()
			require.NoError(t, err)
			require.Len(t, next.Genomes, len(genomes))

			counts := map[float64]int{}
			for _, g := range next.Genomes {
				w := g.Connections[0].Weight
				for _, c := range g.Connections {
					require.Equal(t, w, c.Weight)
				}
				counts[w]++
			}
			assert.Equal(t, tc.wantZero, counts[0])
			assert.Equal(t, tc.wantTen, counts[10])
		})
	}
}
