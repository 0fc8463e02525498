package neat

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FitnessFunc scores one genome. It is called sequentially by Evaluate; the
// genome is owned by the population and must be treated as read-only.
type FitnessFunc func(g *Genome) (float64, error)

// Population holds one generation. Genomes live in an arena addressed by slot;
// species membership and fitness refer to slots, never to genome pointers.
// Every genome in the arena is frozen.
type Population struct {
	Generation int
	Size       int
	Genomes    []*Genome
	Species    []*Species

	fitness map[int]float64
	engine  *Engine
}

// GenerationStats summarizes the fitness distribution of an evaluated generation.
type GenerationStats struct {
	Generation   int
	Species      int
	BestGenomeID int
	BestFitness  float64
	MeanFitness  float64
	MinFitness   float64
	StdevFitness float64
}

// NewPopulation builds the first generation: size independently mutated copies
// of seed, each with a fresh id, then speciates them. seed itself is not
// modified.
func NewPopulation(e *Engine, seed *Genome, size int) (*Population, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: population size must be positive, got %d", ErrContract, size)
	}
	genomes := make([]*Genome, 0, size)
	for i := 0; i < size; i++ {
		g := seed.Clone()
		g.ID = e.NewGenomeID()
		if err := e.MutateAll(g); err != nil {
			return nil, fmt.Errorf("failed to mutate initial genome %d: %w", g.ID, err)
		}
		genomes = append(genomes, g)
	}
	return newGeneration(e, 1, size, genomes), nil
}

// newGeneration takes ownership of genomes and speciates them.
func newGeneration(e *Engine, generation, size int, genomes []*Genome) *Population {
	for _, g := range genomes {
		g.freeze()
	}
	p := &Population{
		Generation: generation,
		Size:       size,
		Genomes:    genomes,
		fitness:    make(map[int]float64, len(genomes)),
		engine:     e,
	}
	p.Speciate()
	return p
}

// Engine returns the engine driving this population.
func (p *Population) Engine() *Engine { return p.engine }

// Speciate clusters the genomes from scratch. Each genome, in slot order,
// joins the first species whose representative is within the compatibility
// threshold, or founds a new species.
func (p *Population) Speciate() {
	p.Species = p.Species[:0]
	for slot, g := range p.Genomes {
		placed := false
		for _, s := range p.Species {
			if s.Compatible(p.engine, p.Genomes, g) {
				s.Add(slot)
				placed = true
				break
			}
		}
		if !placed {
			p.Species = append(p.Species, NewSpecies(slot))
		}
	}
	p.engine.Log.WithFields(logrus.Fields{
		"generation": p.Generation,
		"genomes":    len(p.Genomes),
		"species":    len(p.Species),
	}).Debug("population speciated")
}

// SpeciesCount returns the number of species in this generation.
func (p *Population) SpeciesCount() int { return len(p.Species) }

// SetFitness records the fitness of the genome in slot.
func (p *Population) SetFitness(slot int, fitness float64) error {
	if slot < 0 || slot >= len(p.Genomes) {
		return fmt.Errorf("%w: slot %d, population holds %d", ErrSlotRange, slot, len(p.Genomes))
	}
	p.fitness[slot] = fitness
	return nil
}

// Fitness returns the recorded fitness of the genome in slot.
func (p *Population) Fitness(slot int) (float64, bool) {
	f, ok := p.fitness[slot]
	return f, ok
}

// Evaluate scores every genome in slot order and records the results.
func (p *Population) Evaluate(fn FitnessFunc) error {
	for slot, g := range p.Genomes {
		f, err := fn(g)
		if err != nil {
			return fmt.Errorf("fitness evaluation failed for genome %d in generation %d: %w", g.ID, p.Generation, err)
		}
		p.fitness[slot] = f
	}
	return nil
}

// Best returns the slot and genome with the highest recorded fitness.
func (p *Population) Best() (int, *Genome, bool) {
	bestSlot := -1
	bestFitness := math.Inf(-1)
	for slot := range p.Genomes {
		f, ok := p.fitness[slot]
		if ok && (bestSlot < 0 || f > bestFitness) {
			bestSlot, bestFitness = slot, f
		}
	}
	if bestSlot < 0 {
		return -1, nil, false
	}
	return bestSlot, p.Genomes[bestSlot], true
}

// Stats summarizes the recorded fitness values; the deviation is the sample
// standard deviation. Fitness fields are zero and BestGenomeID is -1 until at
// least one fitness has been recorded.
func (p *Population) Stats() GenerationStats {
	values := make([]float64, 0, len(p.fitness))
	for slot := range p.Genomes {
		if f, ok := p.fitness[slot]; ok {
			values = append(values, f)
		}
	}
	stats := GenerationStats{
		Generation:   p.Generation,
		Species:      len(p.Species),
		BestGenomeID: -1,
	}
	if len(values) == 0 {
		return stats
	}
	stats.BestFitness = floats.Max(values)
	stats.MeanFitness = stat.Mean(values, nil)
	stats.MinFitness = floats.Min(values)
	if len(values) > 1 {
		stats.StdevFitness = stat.StdDev(values, nil)
	}
	if _, g, ok := p.Best(); ok {
		stats.BestGenomeID = g.ID
	}
	return stats
}

// Reproduce produces the next generation. Each species receives
// round(adjusted / total * size) offspring, where a species' adjusted fitness
// is the sum of member fitness divided by its size; offspring never exceed
// size, and any shortfall is filled with unmutated copies of uniformly chosen
// genomes from this generation. The result is speciated from scratch.
func (p *Population) Reproduce() (*Population, error) {
	for slot, g := range p.Genomes {
		if _, ok := p.fitness[slot]; !ok {
			return nil, fmt.Errorf("%w: genome %d in slot %d", ErrMissingFitness, g.ID, slot)
		}
	}

	adjusted := make([]float64, len(p.Species))
	total := 0.0
	for i, s := range p.Species {
		for _, slot := range s.Members {
			adjusted[i] += p.fitness[slot] / float64(s.Size())
		}
		total += adjusted[i]
	}

	next := make([]*Genome, 0, p.Size)
	for i, s := range p.Species {
		var share float64
		if total > 0 {
			share = adjusted[i] / total
		} else {
			share = float64(s.Size()) / float64(len(p.Genomes))
		}
		quota := int(math.Round(share * float64(p.Size)))
		quota = min(max(quota, 0), p.Size-len(next))
		if quota == 0 {
			continue
		}
		offspring, err := s.Reproduce(p.engine, p.Genomes, p.fitness, quota)
		if err != nil {
			return nil, fmt.Errorf("reproduction failed for species of genome %d: %w", p.Genomes[s.Representative].ID, err)
		}
		next = append(next, offspring...)
	}

	shortfall := p.Size - len(next)
	for len(next) < p.Size {
		next = append(next, p.Genomes[p.engine.Rand.Intn(len(p.Genomes))].Clone())
	}
	if shortfall > 0 {
		p.engine.Log.WithFields(logrus.Fields{
			"generation": p.Generation,
			"resampled":  shortfall,
		}).Info("filled population shortfall with genomes from previous generation")
	}
	if len(next) != p.Size {
		return nil, invariantf("population size", "specified %d, actual %d", p.Size, len(next))
	}

	np := newGeneration(p.engine, p.Generation+1, p.Size, next)
	p.engine.Log.WithFields(logrus.Fields{
		"generation": np.Generation,
		"species":    len(np.Species),
		"innovation": p.engine.Innovations.Max(),
	}).Info("generation reproduced")
	return np, nil
}
