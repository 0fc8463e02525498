package nn

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/neat-lstm/neat"
)

func newTestEngine(t *testing.T) *neat.Engine {
	t.Helper()
	config := neat.DefaultConfig()
	config.Run.Seed = 3
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	e, err := neat.NewEngine(config, logger)
	require.NoError(t, err)
	return e
}

// seedWithUnitWeights returns a 2-input, 1-output seed genome whose three
// connections all have weight 1.
func seedWithUnitWeights(t *testing.T) *neat.Genome {
	t.Helper()
	g, err := newTestEngine(t).NewSeedGenome(2, 1)
	require.NoError(t, err)
	for i := range g.Connections {
		g.Connections[i].Weight = 1
	}
	return g
}

func TestActivateSeedGenome(t *testing.T) {
	net, err := NewNetwork(seedWithUnitWeights(t))
	require.NoError(t, err)

	outputs, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.InDelta(t, neat.Sigmoid(3), outputs[0], 1e-12)
	assert.Greater(t, outputs[0], 0.0)
	assert.Less(t, outputs[0], 1.0)
	assert.Equal(t, outputs, net.Activations())
}

func TestActivationsBeforeActivate(t *testing.T) {
	net, err := NewNetwork(seedWithUnitWeights(t))
	require.NoError(t, err)
	assert.Nil(t, net.Activations())
}

func TestActivateRejectsWrongInputSize(t *testing.T) {
	net, err := NewNetwork(seedWithUnitWeights(t))
	require.NoError(t, err)

	_, err = net.Activate([]float64{1})
	assert.ErrorIs(t, err, neat.ErrInputSize)
	assert.ErrorIs(t, err, neat.ErrContract)
	_, err = net.Activate([]float64{1, 2, 3})
	assert.ErrorIs(t, err, neat.ErrInputSize)
}

func TestActivateSkipsDisabledConnections(t *testing.T) {
	g := seedWithUnitWeights(t)
	for i := range g.Connections {
		if g.Connections[i].InNode == 0 {
			g.Connections[i].Enabled = false
		}
	}
	net, err := NewNetwork(g)
	require.NoError(t, err)

	outputs, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, neat.Sigmoid(2), outputs[0], 1e-12)
}

func TestNodeWithoutIncomingConnectionsKeepsDefault(t *testing.T) {
	g := &neat.Genome{
		ID:         1,
		InputSize:  1,
		OutputSize: 1,
		MaxNodeID:  2,
		Nodes: []neat.NodeGene{
			{ID: 0, Kind: neat.NodeInput},
			{ID: 1, Kind: neat.NodeBias},
			{ID: 2, Kind: neat.NodeOutput, Activation: neat.ActivationSigmoid},
		},
	}
	net, err := NewNetwork(g)
	require.NoError(t, err)
	outputs, err := net.Activate([]float64{5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, outputs)

	// Only disabled incoming connections: the node is evaluated on zero input.
	g.Connections = []neat.ConnectionGene{{InNode: 0, OutNode: 2, Weight: 1, Enabled: false, Innovation: 1}}
	net, err = NewNetwork(g)
	require.NoError(t, err)
	outputs, err = net.Activate([]float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, outputs[0], 1e-12)
}

func TestActivateHiddenChain(t *testing.T) {
	g := &neat.Genome{
		ID:         1,
		InputSize:  1,
		OutputSize: 1,
		MaxNodeID:  3,
		Nodes: []neat.NodeGene{
			{ID: 0, Kind: neat.NodeInput},
			{ID: 1, Kind: neat.NodeBias},
			{ID: 3, Kind: neat.NodeHidden, Activation: neat.ActivationTanh},
			{ID: 2, Kind: neat.NodeOutput, Activation: neat.ActivationReLU},
		},
		Connections: []neat.ConnectionGene{
			{InNode: 0, OutNode: 3, Weight: 2, Enabled: true, Innovation: 1},
			{InNode: 1, OutNode: 3, Weight: 0.5, Enabled: true, Innovation: 2},
			{InNode: 3, OutNode: 2, Weight: -3, Enabled: true, Innovation: 3},
		},
	}
	net, err := NewNetwork(g)
	require.NoError(t, err)

	outputs, err := net.Activate([]float64{0.25})
	require.NoError(t, err)
	hidden := neat.Tanh(2*0.25 + 0.5)
	assert.InDelta(t, neat.ReLU(-3*hidden), outputs[0], 1e-12)
	assert.Less(t, outputs[0], 0.0, "leaky relu keeps a small negative slope")
}

func TestNewNetworkRejectsUnknownActivation(t *testing.T) {
	g := seedWithUnitWeights(t)
	g.Nodes[len(g.Nodes)-1].Activation = neat.ActivationUndefined

	_, err := NewNetwork(g)
	assert.ErrorIs(t, err, neat.ErrUnknownActivation)
	assert.ErrorIs(t, err, neat.ErrContract)
}

func TestNewNetworkRejectsDanglingConnection(t *testing.T) {
	g := seedWithUnitWeights(t)
	g.Connections = append(g.Connections, neat.ConnectionGene{InNode: 0, OutNode: 42, Weight: 1, Enabled: true, Innovation: 99})

	_, err := NewNetwork(g)
	assert.ErrorIs(t, err, neat.ErrContract)
}

func TestNetworkIsIndependentOfGenome(t *testing.T) {
	g := seedWithUnitWeights(t)
	net, err := NewNetwork(g)
	require.NoError(t, err)

	for i := range g.Connections {
		g.Connections[i].Weight = -4
	}
	outputs, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, neat.Sigmoid(3), outputs[0], 1e-12)
	assert.NotSame(t, g, net.Genome())
}

func TestNetworkFromEvolvedGenome(t *testing.T) {
	e := newTestEngine(t)
	g, err := e.NewSeedGenome(3, 2)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, e.AddNode(g))
		require.NoError(t, e.AddConnection(g))
	}

	net, err := NewNetwork(g)
	require.NoError(t, err)
	outputs, err := net.Activate([]float64{0.1, -0.4, 0.9})
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	for _, o := range outputs {
		assert.GreaterOrEqual(t, o, 0.0)
		assert.LessOrEqual(t, o, 1.0)
	}
}
