package neat

import (
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// Species represents a group of genetically similar genomes. Members are slot
// indices into the owning population's genome arena; the first member is the
// representative. Species are rebuilt from scratch every generation.
type Species struct {
	Representative int   // slot of the representative genome
	Members        []int // slots of all member genomes, representative first
}

// NewSpecies creates a species represented by the genome in the given slot.
func NewSpecies(representative int) *Species {
	return &Species{
		Representative: representative,
		Members:        []int{representative},
	}
}

// Add registers a genome slot as a member.
func (s *Species) Add(slot int) {
	s.Members = append(s.Members, slot)
}

// Size returns the number of members.
func (s *Species) Size() int {
	return len(s.Members)
}

// Compatible reports whether g is within the compatibility threshold of the
// representative, which is looked up in genomes.
func (s *Species) Compatible(e *Engine, genomes []*Genome, g *Genome) bool {
	rep := genomes[s.Representative]
	return Compatibility(rep, g, e.Config.Speciation) < e.Config.Speciation.CompatibilityThreshold
}

type scoredSlot struct {
	slot    int
	fitness float64
}

// Reproduce produces exactly size genomes for the next generation:
//   - a single-member species is cloned and mutated repeatedly;
//   - a target of one returns a random member unchanged;
//   - otherwise the ceil(sqrt(2*size)) fittest members are carried over
//     unchanged and every pair of them is crossed over and mutated, fitter
//     parent first. Remaining slots are filled with the other members by
//     descending fitness and then with mutated clones of the offspring so far.
//
// Every returned genome is a new, unowned copy.
func (s *Species) Reproduce(e *Engine, genomes []*Genome, fitness map[int]float64, size int) ([]*Genome, error) {
	if size <= 0 {
		return nil, nil
	}
	members := make([]scoredSlot, 0, len(s.Members))
	for _, slot := range s.Members {
		if slot < 0 || slot >= len(genomes) {
			return nil, fmt.Errorf("%w: species member %d, arena holds %d", ErrSlotRange, slot, len(genomes))
		}
		f, ok := fitness[slot]
		if !ok {
			return nil, fmt.Errorf("%w: slot %d", ErrMissingFitness, slot)
		}
		members = append(members, scoredSlot{slot: slot, fitness: f})
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: empty species cannot reproduce", ErrContract)
	}

	offspring := make([]*Genome, 0, size)

	if len(members) == 1 {
		parent := genomes[members[0].slot]
		for len(offspring) < size {
			clone := parent.Clone()
			clone.ID = e.NewGenomeID()
			if err := e.MutateAll(clone); err != nil {
				return nil, err
			}
			offspring = append(offspring, clone)
		}
		return offspring, nil
	}
	if size == 1 {
		pick := members[e.Rand.Intn(len(members))]
		return []*Genome{genomes[pick.slot].Clone()}, nil
	}

	// A pool of x parents yields x carried-over genomes plus x(x-1)/2
	// children, so x = sqrt(2*size) covers the target.
	poolSize := min(int(math.Ceil(math.Sqrt(float64(2*size)))), len(members))
	sort.SliceStable(members, func(i, j int) bool { return members[i].fitness > members[j].fitness })
	parents := members[:poolSize]
	remaining := members[poolSize:]

	for _, p := range parents {
		offspring = append(offspring, genomes[p.slot].Clone())
		if len(offspring) == size {
			return offspring, nil
		}
	}

	for i := 0; i < len(parents)-1; i++ {
		for j := i + 1; j < len(parents); j++ {
			a, b := parents[i], parents[j]
			var child *Genome
			if a.fitness > b.fitness {
				child = e.Crossover(genomes[a.slot], genomes[b.slot])
			} else {
				child = e.Crossover(genomes[b.slot], genomes[a.slot])
			}
			if err := e.MutateAll(child); err != nil {
				return nil, err
			}
			offspring = append(offspring, child)
			if len(offspring) == size {
				return offspring, nil
			}
		}
	}

	for _, m := range remaining {
		offspring = append(offspring, genomes[m.slot].Clone())
		if len(offspring) == size {
			return offspring, nil
		}
	}

	filled := 0
	for rolling := 0; len(offspring) < size; rolling++ {
		clone := offspring[rolling].Clone()
		clone.ID = e.NewGenomeID()
		if err := e.MutateAll(clone); err != nil {
			return nil, err
		}
		offspring = append(offspring, clone)
		filled++
	}
	if filled > 0 {
		e.Log.WithFields(logrus.Fields{
			"representative": genomes[s.Representative].ID,
			"members":        len(members),
			"target":         size,
			"clones":         filled,
		}).Debug("species offspring topped up with mutated clones")
	}

	if len(offspring) != size {
		return nil, invariantf("offspring count", "produced %d, want %d", len(offspring), size)
	}
	return offspring, nil
}
