package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/baldhumanity/neat-lstm/neat"
)

// memoryCell is the runtime form of a gated memory unit. It reads the
// previous activations followed by the current values of its input nodes:
//
//	f = sigmoid(Wf·v + bf)    i = sigmoid(Wi·v + bi)
//	c = tanh(Wc·v + bc)       o = sigmoid(Wo·v + bo)
//	state = f⊙state + i⊙c     act = o⊙tanh(state)
type memoryCell struct {
	capacity int
	inIndex  []int // indices of external input nodes in Network.values
	outIndex []int // indices of driven nodes in Network.values

	forget, input, candidate, output         *mat.Dense
	forgetB, inputB, candidateB, outputB     *mat.VecDense
	combined, state, act                     *mat.VecDense
	forgetG, inputG, candidateG, outputG, tm *mat.VecDense
}

func newMemoryCell(u *neat.LSTMUnitGene, index map[int]int) (*memoryCell, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	resolve := func(ids []int) ([]int, error) {
		out := make([]int, len(ids))
		for i, id := range ids {
			idx, ok := index[id]
			if !ok {
				return nil, fmt.Errorf("%w: memory unit references unknown node %d", neat.ErrContract, id)
			}
			out[i] = idx
		}
		return out, nil
	}
	inIndex, err := resolve(u.InNodes)
	if err != nil {
		return nil, err
	}
	outIndex, err := resolve(u.OutNodes)
	if err != nil {
		return nil, err
	}

	n, width := u.Capacity, u.Width()
	own := func(v []float64) []float64 { return append([]float64(nil), v...) }
	return &memoryCell{
		capacity:   n,
		inIndex:    inIndex,
		outIndex:   outIndex,
		forget:     mat.NewDense(n, width, own(u.ForgetWeights)),
		input:      mat.NewDense(n, width, own(u.InputWeights)),
		candidate:  mat.NewDense(n, width, own(u.StateWeights)),
		output:     mat.NewDense(n, width, own(u.OutputWeights)),
		forgetB:    mat.NewVecDense(n, own(u.ForgetBias)),
		inputB:     mat.NewVecDense(n, own(u.InputBias)),
		candidateB: mat.NewVecDense(n, own(u.StateBias)),
		outputB:    mat.NewVecDense(n, own(u.OutputBias)),
		combined:   mat.NewVecDense(width, nil),
		state:      mat.NewVecDense(n, nil),
		act:        mat.NewVecDense(n, nil),
		forgetG:    mat.NewVecDense(n, nil),
		inputG:     mat.NewVecDense(n, nil),
		candidateG: mat.NewVecDense(n, nil),
		outputG:    mat.NewVecDense(n, nil),
		tm:         mat.NewVecDense(n, nil),
	}, nil
}

// gate computes dst = squash(w·v + b).
func (c *memoryCell) gate(dst *mat.VecDense, w *mat.Dense, b *mat.VecDense, squash neat.ActivationFunc) {
	dst.MulVec(w, c.combined)
	dst.AddVec(dst, b)
	for i := 0; i < dst.Len(); i++ {
		dst.SetVec(i, squash(dst.AtVec(i)))
	}
}

// activate advances the cell one step and writes its activations into the
// driven nodes of values.
func (c *memoryCell) activate(values []float64) {
	for i := 0; i < c.capacity; i++ {
		c.combined.SetVec(i, c.act.AtVec(i))
	}
	for j, idx := range c.inIndex {
		c.combined.SetVec(c.capacity+j, values[idx])
	}

	c.gate(c.forgetG, c.forget, c.forgetB, neat.Sigmoid)
	c.gate(c.inputG, c.input, c.inputB, neat.Sigmoid)
	c.gate(c.candidateG, c.candidate, c.candidateB, neat.Tanh)
	c.gate(c.outputG, c.output, c.outputB, neat.Sigmoid)

	c.state.MulElemVec(c.forgetG, c.state)
	c.tm.MulElemVec(c.inputG, c.candidateG)
	c.state.AddVec(c.state, c.tm)

	for i := 0; i < c.capacity; i++ {
		c.tm.SetVec(i, neat.Tanh(c.state.AtVec(i)))
	}
	c.act.MulElemVec(c.outputG, c.tm)

	for i, idx := range c.outIndex {
		values[idx] = c.act.AtVec(i)
	}
}

func (c *memoryCell) reset() {
	c.state.Zero()
	c.act.Zero()
}

