package nn

import (
	"fmt"

	"github.com/baldhumanity/neat-lstm/neat"
)

// incoming is a precomputed in-connection of a node.
type incoming struct {
	source  int // index into Network.values
	weight  float64
	enabled bool
	bias    bool
}

// neuralNode is a hidden or output node prepared for activation.
type neuralNode struct {
	index      int // index into Network.values
	activation neat.ActivationFunc
	inputs     []incoming
}

// Network is the runnable phenotype of a genome. It keeps its own copy of the
// genome, so the source genome may change or be discarded after NewNetwork
// returns. Gated memory units carry state between calls to Activate.
//
// A Network is not safe for concurrent use; build one per goroutine.
type Network struct {
	genome *neat.Genome

	values      []float64 // activation of every node, in genome node order
	inputIndex  []int
	outputIndex []int
	evalOrder   []neuralNode
	cells       []*memoryCell
	activated   bool
}

// NewNetwork builds a network from a genome. Every hidden and output node must
// have a registered activation function and every memory unit must be
// well-formed, otherwise an error wrapping neat.ErrContract is returned.
func NewNetwork(g *neat.Genome) (*Network, error) {
	genome := g.Clone()
	net := &Network{
		genome: genome,
		values: make([]float64, len(genome.Nodes)),
	}

	index := make(map[int]int, len(genome.Nodes))
	for i, n := range genome.Nodes {
		index[n.ID] = i
		switch n.Kind {
		case neat.NodeInput:
			net.inputIndex = append(net.inputIndex, i)
		case neat.NodeOutput:
			net.outputIndex = append(net.outputIndex, i)
		case neat.NodeBias:
			net.values[i] = 1
		}
	}
	if len(net.inputIndex) != genome.InputSize {
		return nil, fmt.Errorf("%w: genome %d declares %d inputs but has %d input nodes",
			neat.ErrContract, genome.ID, genome.InputSize, len(net.inputIndex))
	}

	// Disabled connections do not contribute, but they still mark the target
	// as having incoming connections.
	in := make(map[int][]incoming)
	for _, c := range genome.Connections {
		src, ok := index[c.InNode]
		if !ok {
			return nil, fmt.Errorf("%w: connection %d starts at unknown node %d", neat.ErrContract, c.Innovation, c.InNode)
		}
		if _, ok := index[c.OutNode]; !ok {
			return nil, fmt.Errorf("%w: connection %d ends at unknown node %d", neat.ErrContract, c.Innovation, c.OutNode)
		}
		in[c.OutNode] = append(in[c.OutNode], incoming{
			source:  src,
			weight:  c.Weight,
			enabled: c.Enabled,
			bias:    genome.Nodes[src].Kind == neat.NodeBias,
		})
	}

	for i, n := range genome.Nodes {
		if n.Kind == neat.NodeInput || n.Kind == neat.NodeBias {
			continue
		}
		fn, err := neat.GetActivation(n.Activation)
		if err != nil {
			return nil, fmt.Errorf("node %d of genome %d: %w", n.ID, genome.ID, err)
		}
		inputs, ok := in[n.ID]
		if !ok {
			continue
		}
		net.evalOrder = append(net.evalOrder, neuralNode{index: i, activation: fn, inputs: inputs})
	}

	for k := range genome.LSTMUnits {
		cell, err := newMemoryCell(&genome.LSTMUnits[k], index)
		if err != nil {
			return nil, fmt.Errorf("memory unit %d of genome %d: %w", k, genome.ID, err)
		}
		net.cells = append(net.cells, cell)
	}
	return net, nil
}

// Genome returns a copy of the genome the network was built from. Changing it
// does not affect the network.
func (net *Network) Genome() *neat.Genome { return net.genome.Clone() }

// Activate runs one forward pass and returns the output activations. Inputs
// are assigned to input nodes positionally; their count must equal the
// genome's input size.
func (net *Network) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.inputIndex) {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d", neat.ErrInputSize, len(inputs), len(net.inputIndex))
	}
	for i, idx := range net.inputIndex {
		net.values[idx] = inputs[i]
	}

	for _, cell := range net.cells {
		cell.activate(net.values)
	}

	for _, node := range net.evalOrder {
		sum, bias := 0.0, 0.0
		for _, c := range node.inputs {
			if !c.enabled {
				continue
			}
			if c.bias {
				bias += c.weight * net.values[c.source]
				continue
			}
			sum += c.weight * net.values[c.source]
		}
		net.values[node.index] = node.activation(sum + bias)
	}

	net.activated = true
	return net.Activations(), nil
}

// Activations returns the output activations of the last Activate call in
// declared order, or nil if the network has not been activated.
func (net *Network) Activations() []float64 {
	if !net.activated {
		return nil
	}
	outputs := make([]float64, len(net.outputIndex))
	for i, idx := range net.outputIndex {
		outputs[i] = net.values[idx]
	}
	return outputs
}

// Reset clears all node activations and memory unit state, as if the network
// had just been built.
func (net *Network) Reset() {
	for i, n := range net.genome.Nodes {
		net.values[i] = 0
		if n.Kind == neat.NodeBias {
			net.values[i] = 1
		}
	}
	for _, cell := range net.cells {
		cell.reset()
	}
	net.activated = false
}
