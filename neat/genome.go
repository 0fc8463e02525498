package neat

import (
	"fmt"
	"sort"
	"strings"
)

// Genome represents an individual organism: an ordered node list, an ordered
// connection list and optional gated memory unit blueprints.
//
// Two orderings are maintained by every operator in this package:
//   - Connections are strictly ascending by innovation number.
//   - Nodes form a feed-forward order: inputs, bias, outputs, and hidden nodes
//     inserted immediately before the node they were created to feed.
//
// Fitness is not stored here; it lives in the Population's fitness map.
type Genome struct {
	ID          int              `json:"id"`
	InputSize   int              `json:"input_size"`
	OutputSize  int              `json:"output_size"`
	MaxNodeID   int              `json:"max_node_id"`
	Nodes       []NodeGene       `json:"nodes"`
	Connections []ConnectionGene `json:"connections"`
	LSTMUnits   []LSTMUnitGene   `json:"lstm_units"`

	// frozen is set when a population takes ownership of the genome.
	frozen bool
}

// NewSeedGenome creates a basic genome with the given numbers of input and
// output nodes. One bias node is created after the inputs. Every input and the
// bias node is connected to every output; input weights are drawn uniformly
// over the weight bounds and bias weights sit at the middle of the bounds.
// Output nodes use sigmoid.
func (e *Engine) NewSeedGenome(inputs, outputs int) (*Genome, error) {
	return e.newSeedGenome(inputs, outputs, 0)
}

// NewSeedGenomeWithMemory is NewSeedGenome plus one gated memory unit of the
// given capacity. The unit reads every input node and drives capacity hidden
// nodes that sit between the bias and the outputs, each of which is connected
// to every output.
func (e *Engine) NewSeedGenomeWithMemory(inputs, outputs, capacity int) (*Genome, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: memory capacity must be positive, got %d", ErrContract, capacity)
	}
	return e.newSeedGenome(inputs, outputs, capacity)
}

func (e *Engine) newSeedGenome(inputs, outputs, capacity int) (*Genome, error) {
	if inputs <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("%w: seed genome needs inputs and outputs, got %d/%d", ErrContract, inputs, outputs)
	}
	bounds := e.Config.Bounds
	g := &Genome{
		ID:         e.NewGenomeID(),
		InputSize:  inputs,
		OutputSize: outputs,
	}

	nodeID := 0
	for i := 0; i < inputs; i++ {
		g.Nodes = append(g.Nodes, NodeGene{ID: nodeID, Kind: NodeInput})
		nodeID++
	}
	biasID := nodeID
	g.Nodes = append(g.Nodes, NodeGene{ID: biasID, Kind: NodeBias})
	nodeID++

	outputIDs := make([]int, outputs)
	for i := range outputIDs {
		outputIDs[i] = nodeID
		nodeID++
	}
	memoryIDs := make([]int, capacity)
	for i := range memoryIDs {
		memoryIDs[i] = nodeID
		nodeID++
	}

	// Memory-driven hidden nodes precede the outputs they feed.
	for _, id := range memoryIDs {
		g.Nodes = append(g.Nodes, NodeGene{ID: id, Kind: NodeHidden, Activation: ActivationSigmoid})
	}
	for _, id := range outputIDs {
		g.Nodes = append(g.Nodes, NodeGene{ID: id, Kind: NodeOutput, Activation: ActivationSigmoid})
	}

	biasWeight := (bounds.MinWeight + bounds.MaxWeight) / 2
	for _, o := range outputIDs {
		for i := 0; i < inputs; i++ {
			g.Connections = append(g.Connections, ConnectionGene{
				InNode: i, OutNode: o, Weight: e.randomWeight(), Enabled: true,
				Innovation: e.Innovations.Get(i, o),
			})
		}
		g.Connections = append(g.Connections, ConnectionGene{
			InNode: biasID, OutNode: o, Weight: biasWeight, Enabled: true,
			Innovation: e.Innovations.Get(biasID, o),
		})
		for _, m := range memoryIDs {
			g.Connections = append(g.Connections, ConnectionGene{
				InNode: m, OutNode: o, Weight: e.randomWeight(), Enabled: true,
				Innovation: e.Innovations.Get(m, o),
			})
		}
	}
	// A registry shared with earlier genomes may hand out numbers out of
	// creation order.
	sort.Slice(g.Connections, func(i, j int) bool {
		return g.Connections[i].Innovation < g.Connections[j].Innovation
	})

	if capacity > 0 {
		inNodes := make([]int, inputs)
		for i := range inNodes {
			inNodes[i] = i
		}
		g.LSTMUnits = append(g.LSTMUnits, e.newLSTMUnit(capacity, inNodes, memoryIDs))
	}

	g.MaxNodeID = nodeID - 1
	return g, nil
}

func (e *Engine) newLSTMUnit(capacity int, inNodes, outNodes []int) LSTMUnitGene {
	width := capacity + len(inNodes)
	matrix := func() []float64 {
		w := make([]float64, capacity*width)
		for i := range w {
			w[i] = e.randomWeight()
		}
		return w
	}
	vector := func() []float64 {
		b := make([]float64, capacity)
		for i := range b {
			b[i] = e.randomWeight()
		}
		return b
	}
	return LSTMUnitGene{
		Capacity:      capacity,
		InNodes:       append([]int(nil), inNodes...),
		OutNodes:      append([]int(nil), outNodes...),
		ForgetWeights: matrix(),
		InputWeights:  matrix(),
		StateWeights:  matrix(),
		OutputWeights: matrix(),
		ForgetBias:    vector(),
		InputBias:     vector(),
		StateBias:     vector(),
		OutputBias:    vector(),
	}
}

// Clone creates a deep, unfrozen copy of the genome, keeping its id.
func (g *Genome) Clone() *Genome {
	c := &Genome{
		ID:          g.ID,
		InputSize:   g.InputSize,
		OutputSize:  g.OutputSize,
		MaxNodeID:   g.MaxNodeID,
		Nodes:       append([]NodeGene(nil), g.Nodes...),
		Connections: append([]ConnectionGene(nil), g.Connections...),
	}
	if len(g.LSTMUnits) > 0 {
		c.LSTMUnits = make([]LSTMUnitGene, len(g.LSTMUnits))
		for i := range g.LSTMUnits {
			c.LSTMUnits[i] = g.LSTMUnits[i].Copy()
		}
	}
	return c
}

// Frozen reports whether the genome is owned by a population and therefore
// must not be mutated in place.
func (g *Genome) Frozen() bool { return g.frozen }

func (g *Genome) freeze() { g.frozen = true }

func (g *Genome) checkMutable() error {
	if g.frozen {
		return fmt.Errorf("%w (genome %d)", ErrFrozenGenome, g.ID)
	}
	return nil
}

// CheckConnections reports whether connections are strictly ascending by innovation.
func (g *Genome) CheckConnections() bool {
	for i := 0; i+1 < len(g.Connections); i++ {
		if g.Connections[i].Innovation >= g.Connections[i+1].Innovation {
			return false
		}
	}
	return true
}

// NodeIndex returns the position of the node with the given id, or -1.
func (g *Genome) NodeIndex(id int) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// NodeKind returns the kind of the node with the given id.
func (g *Genome) NodeKind(id int) (NodeKind, bool) {
	idx := g.NodeIndex(id)
	if idx < 0 {
		return 0, false
	}
	return g.Nodes[idx].Kind, true
}

// BiasID returns the id of the bias node.
func (g *Genome) BiasID() (int, bool) {
	for _, n := range g.Nodes {
		if n.Kind == NodeBias {
			return n.ID, true
		}
	}
	return 0, false
}

// HasInnovation reports whether a connection with the innovation number exists.
func (g *Genome) HasInnovation(innovation int) bool {
	i := sort.Search(len(g.Connections), func(i int) bool {
		return g.Connections[i].Innovation >= innovation
	})
	return i < len(g.Connections) && g.Connections[i].Innovation == innovation
}

// insertNodeBefore places node immediately before the node with id targetID.
func (g *Genome) insertNodeBefore(node NodeGene, targetID int) error {
	idx := g.NodeIndex(targetID)
	if idx < 0 {
		return fmt.Errorf("%w: node %d not in genome %d", ErrContract, targetID, g.ID)
	}
	g.Nodes = append(g.Nodes, NodeGene{})
	copy(g.Nodes[idx+1:], g.Nodes[idx:])
	g.Nodes[idx] = node
	return nil
}

// insertConnections merges new connections into the sorted connection list.
// Innovations already present are rejected as an invariant failure.
func (g *Genome) insertConnections(added ...ConnectionGene) error {
	sort.Slice(added, func(i, j int) bool { return added[i].Innovation < added[j].Innovation })

	merged := make([]ConnectionGene, 0, len(g.Connections)+len(added))
	i, j := 0, 0
	for i < len(g.Connections) || j < len(added) {
		switch {
		case j == len(added):
			merged = append(merged, g.Connections[i])
			i++
		case i == len(g.Connections):
			merged = append(merged, added[j])
			j++
		case g.Connections[i].Innovation < added[j].Innovation:
			merged = append(merged, g.Connections[i])
			i++
		case g.Connections[i].Innovation > added[j].Innovation:
			merged = append(merged, added[j])
			j++
		default:
			return invariantf("connection order", "genome %d already has innovation %d", g.ID, added[j].Innovation)
		}
	}
	g.Connections = merged
	if !g.CheckConnections() {
		return invariantf("connection order", "genome %d has duplicate innovations after insert", g.ID)
	}
	return nil
}

// String returns a multi-line description of the genome.
func (g *Genome) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Genome(ID: %d, Inputs: %d, Outputs: %d, MaxNodeID: %d)\n", g.ID, g.InputSize, g.OutputSize, g.MaxNodeID)
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  %s\n", n)
	}
	for _, c := range g.Connections {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	for i, u := range g.LSTMUnits {
		fmt.Fprintf(&b, "  LSTMUnit(%d: Capacity: %d, In: %v, Out: %v)\n", i, u.Capacity, u.InNodes, u.OutNodes)
	}
	return b.String()
}
