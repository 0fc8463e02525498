package neat

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// MutateAll independently applies, each with its configured probability and in
// this order: add-node, add-connection, toggle-connection, perturb-weights.
// Operators that find nothing eligible are skipped. The genome must not be
// owned by a population.
func (e *Engine) MutateAll(g *Genome) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	cfg := e.Config.Mutation
	operators := []struct {
		name string
		p    float64
		fn   func(*Genome) error
	}{
		{"add_node", cfg.PAddNode, e.AddNode},
		{"add_connection", cfg.PAddConnection, e.AddConnection},
		{"toggle_connection", cfg.PToggleConnection, e.ToggleConnection},
		{"perturb_weights", cfg.PPerturbWeights, e.PerturbWeights},
	}
	for _, op := range operators {
		if !e.chance(op.p) {
			continue
		}
		err := op.fn(g)
		if errors.Is(err, ErrNoCandidate) {
			e.Log.WithFields(logrus.Fields{"genome": g.ID, "operator": op.name}).Debug("mutation skipped: no eligible candidate")
			continue
		}
		if err != nil {
			return fmt.Errorf("%s on genome %d: %w", op.name, g.ID, err)
		}
	}
	return nil
}

// AddConnection adds a forward connection between two nodes. The source may
// not be an output or the bias, the target may not be an input, the bias or a
// node driven by a memory unit, and the target must come later in the node
// order. Drawing a pair that is
// already connected leaves the genome unchanged.
func (e *Engine) AddConnection(g *Genome) error {
	if err := g.checkMutable(); err != nil {
		return err
	}

	driven := make(map[int]bool)
	for _, u := range g.LSTMUnits {
		for _, id := range u.OutNodes {
			driven[id] = true
		}
	}
	canSource := func(n NodeGene) bool { return n.Kind != NodeOutput && n.Kind != NodeBias }
	canTarget := func(n NodeGene) bool { return n.Kind != NodeInput && n.Kind != NodeBias && !driven[n.ID] }

	// lastTarget is the index of the last node that can be a target; any
	// eligible source before it has at least one eligible target.
	lastTarget := -1
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		if canTarget(g.Nodes[i]) {
			lastTarget = i
			break
		}
	}
	var sources []int
	for i := 0; i < lastTarget; i++ {
		if canSource(g.Nodes[i]) {
			sources = append(sources, i)
		}
	}
	if len(sources) == 0 {
		return ErrNoCandidate
	}

	src := sources[e.Rand.Intn(len(sources))]
	var targets []int
	for j := src + 1; j < len(g.Nodes); j++ {
		if canTarget(g.Nodes[j]) {
			targets = append(targets, j)
		}
	}
	dst := targets[e.Rand.Intn(len(targets))]

	srcID, dstID := g.Nodes[src].ID, g.Nodes[dst].ID
	innovation := e.Innovations.Get(srcID, dstID)
	if g.HasInnovation(innovation) {
		e.Log.WithFields(logrus.Fields{"genome": g.ID, "in": srcID, "out": dstID}).Debug("add_connection drew an existing connection")
		return nil
	}
	return g.insertConnections(ConnectionGene{
		InNode:     srcID,
		OutNode:    dstID,
		Weight:     e.randomWeight(),
		Enabled:    true,
		Innovation: innovation,
	})
}

// AddNode splits an enabled connection that does not start at the bias. The
// connection is disabled, a hidden node is inserted just before its target, and
// three connections are added: source->new (weight 1), new->target (the old
// weight) and bias->new (weight 1).
func (e *Engine) AddNode(g *Genome) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	biasID, ok := g.BiasID()
	if !ok {
		return fmt.Errorf("%w: genome %d has no bias node", ErrContract, g.ID)
	}

	var candidates []int
	for i, c := range g.Connections {
		if c.Enabled && c.InNode != biasID {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return ErrNoCandidate
	}

	old := &g.Connections[candidates[e.Rand.Intn(len(candidates))]]
	sourceID, targetID := old.InNode, old.OutNode
	if g.NodeIndex(targetID) < 0 {
		return fmt.Errorf("%w: connection %d targets unknown node %d", ErrContract, old.Innovation, targetID)
	}
	old.Enabled = false
	weight := old.Weight

	node := NodeGene{ID: g.MaxNodeID + 1, Kind: NodeHidden, Activation: ActivationSigmoid}
	g.MaxNodeID = node.ID
	if err := g.insertNodeBefore(node, targetID); err != nil {
		return err
	}

	return g.insertConnections(
		ConnectionGene{InNode: sourceID, OutNode: node.ID, Weight: 1, Enabled: true,
			Innovation: e.Innovations.Get(sourceID, node.ID)},
		ConnectionGene{InNode: node.ID, OutNode: targetID, Weight: weight, Enabled: true,
			Innovation: e.Innovations.Get(node.ID, targetID)},
		ConnectionGene{InNode: biasID, OutNode: node.ID, Weight: 1, Enabled: true,
			Innovation: e.Innovations.Get(biasID, node.ID)},
	)
}

// ToggleConnection flips the enabled flag of one uniformly chosen connection.
func (e *Engine) ToggleConnection(g *Genome) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	if len(g.Connections) == 0 {
		return ErrNoCandidate
	}
	c := &g.Connections[e.UniformInt(0, len(g.Connections)-1)]
	c.Enabled = !c.Enabled
	return nil
}

// PerturbWeights visits every connection. With probability p_randomize_weight
// the weight is redrawn over the bounds; otherwise it moves by uniform noise of
// perturb_weight_power and is clamped to the bounds.
func (e *Engine) PerturbWeights(g *Genome) error {
	if err := g.checkMutable(); err != nil {
		return err
	}
	bounds := e.Config.Bounds
	power := e.Config.Mutation.PerturbWeightPower
	for i := range g.Connections {
		c := &g.Connections[i]
		if e.chance(e.Config.Mutation.PRandomizeWeight) {
			c.Weight = e.randomWeight()
			continue
		}
		c.Weight = clamp(e.Uniform(c.Weight-power, c.Weight+power), bounds.MinWeight, bounds.MaxWeight)
	}
	return nil
}
