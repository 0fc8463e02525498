package neat

// Crossover creates a child from two parents. fitter must be the parent with
// the higher fitness: the child copies its node list, its size fields and its
// gated memory units verbatim. Connections are aligned by innovation number:
// genes only the fitter parent has are inherited, matching genes come from
// either parent with equal probability, and genes only the less fit parent
// has are dropped.
//
// The child gets a fresh id and is not owned by any population.
func (e *Engine) Crossover(fitter, lessFit *Genome) *Genome {
	child := &Genome{
		ID:          e.NewGenomeID(),
		InputSize:   fitter.InputSize,
		OutputSize:  fitter.OutputSize,
		MaxNodeID:   fitter.MaxNodeID,
		Nodes:       append([]NodeGene(nil), fitter.Nodes...),
		Connections: make([]ConnectionGene, 0, len(fitter.Connections)),
	}

	i, j := 0, 0
	for i < len(fitter.Connections) {
		mf := fitter.Connections[i]
		switch {
		case j == len(lessFit.Connections) || mf.Innovation < lessFit.Connections[j].Innovation:
			child.Connections = append(child.Connections, mf)
			i++
		case mf.Innovation == lessFit.Connections[j].Innovation:
			if e.Rand.Intn(2) == 0 {
				child.Connections = append(child.Connections, mf)
			} else {
				child.Connections = append(child.Connections, lessFit.Connections[j])
			}
			i++
			j++
		default:
			j++
		}
	}

	// TODO: align memory units between parents once units can be added by mutation.
	for k := range fitter.LSTMUnits {
		child.LSTMUnits = append(child.LSTMUnits, fitter.LSTMUnits[k].Copy())
	}
	return child
}
