package neat

import (
	"fmt"
)

// NodeKind is the role a node plays in the network.
type NodeKind int

const (
	NodeInput NodeKind = iota
	NodeBias
	NodeOutput
	NodeHidden
)

func (k NodeKind) String() string {
	switch k {
	case NodeInput:
		return "INPUT"
	case NodeBias:
		return "BIAS"
	case NodeOutput:
		return "OUTPUT"
	case NodeHidden:
		return "HIDDEN"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the genome.
type NodeGene struct {
	ID         int            `json:"id"`
	Kind       NodeKind       `json:"kind"`
	Activation ActivationType `json:"activation"` // ActivationUndefined for inputs and bias
}

// String returns a string representation of the NodeGene.
func (ng NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Kind: %s, Activation: %s)", ng.ID, ng.Kind, ng.Activation)
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionKey identifies a structural innovation by its endpoints.
type ConnectionKey struct {
	InNodeID  int
	OutNodeID int
}

// ConnectionGene represents a connection between two nodes in the genome.
type ConnectionGene struct {
	InNode     int     `json:"in_node"`
	OutNode    int     `json:"out_node"`
	Weight     float64 `json:"weight"`
	Enabled    bool    `json:"enabled"`
	Innovation int     `json:"innovation"`
}

// Key returns the (in, out) pair this connection realizes.
func (cg ConnectionGene) Key() ConnectionKey {
	return ConnectionKey{InNodeID: cg.InNode, OutNodeID: cg.OutNode}
}

// String returns a string representation of the ConnectionGene.
func (cg ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(#%d: %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Innovation, cg.InNode, cg.OutNode, cg.Weight, cg.Enabled)
}

// --------------------------- LSTMUnitGene ---------------------------

// LSTMUnitGene is the blueprint of a gated memory unit. Every gate weight
// matrix is Capacity x (Capacity + len(InNodes)), stored row-major. Each gate
// bias has Capacity entries. OutNodes lists the node ids that receive the
// unit's activations, in order; there may be at most Capacity of them.
type LSTMUnitGene struct {
	Capacity int   `json:"capacity"`
	InNodes  []int `json:"in_nodes"`
	OutNodes []int `json:"out_nodes"`

	ForgetWeights []float64 `json:"forget_weights"`
	InputWeights  []float64 `json:"input_weights"`
	StateWeights  []float64 `json:"state_weights"`
	OutputWeights []float64 `json:"output_weights"`

	ForgetBias []float64 `json:"forget_bias"`
	InputBias  []float64 `json:"input_bias"`
	StateBias  []float64 `json:"state_bias"`
	OutputBias []float64 `json:"output_bias"`
}

// Width returns the length of the combined vector the gates read:
// previous activations followed by the external inputs.
func (u *LSTMUnitGene) Width() int {
	return u.Capacity + len(u.InNodes)
}

// Validate checks that every matrix and bias vector has the declared shape.
func (u *LSTMUnitGene) Validate() error {
	if u.Capacity <= 0 {
		return fmt.Errorf("%w: memory unit capacity must be positive, got %d", ErrContract, u.Capacity)
	}
	if len(u.OutNodes) > u.Capacity {
		return fmt.Errorf("%w: memory unit drives %d nodes but has capacity %d", ErrContract, len(u.OutNodes), u.Capacity)
	}
	want := u.Capacity * u.Width()
	gates := []struct {
		name    string
		weights []float64
		bias    []float64
	}{
		{"forget", u.ForgetWeights, u.ForgetBias},
		{"input", u.InputWeights, u.InputBias},
		{"state", u.StateWeights, u.StateBias},
		{"output", u.OutputWeights, u.OutputBias},
	}
	for _, gate := range gates {
		if len(gate.weights) != want {
			return fmt.Errorf("%w: %s gate has %d weights, want %d", ErrContract, gate.name, len(gate.weights), want)
		}
		if len(gate.bias) != u.Capacity {
			return fmt.Errorf("%w: %s gate has %d biases, want %d", ErrContract, gate.name, len(gate.bias), u.Capacity)
		}
	}
	return nil
}

// Copy creates a deep copy of the blueprint.
func (u *LSTMUnitGene) Copy() LSTMUnitGene {
	return LSTMUnitGene{
		Capacity:      u.Capacity,
		InNodes:       append([]int(nil), u.InNodes...),
		OutNodes:      append([]int(nil), u.OutNodes...),
		ForgetWeights: append([]float64(nil), u.ForgetWeights...),
		InputWeights:  append([]float64(nil), u.InputWeights...),
		StateWeights:  append([]float64(nil), u.StateWeights...),
		OutputWeights: append([]float64(nil), u.OutputWeights...),
		ForgetBias:    append([]float64(nil), u.ForgetBias...),
		InputBias:     append([]float64(nil), u.InputBias...),
		StateBias:     append([]float64(nil), u.StateBias...),
		OutputBias:    append([]float64(nil), u.OutputBias...),
	}
}
