package neat

import (
	"fmt"
	"math"
	"strings"
)

// ActivationType tags the nonlinearity a node applies. Input and bias nodes
// carry ActivationUndefined.
type ActivationType int

const (
	ActivationUndefined ActivationType = iota
	ActivationSigmoid
	ActivationTanh
	ActivationReLU
)

// ActivationFunc is a pure scalar nonlinearity.
type ActivationFunc func(x float64) float64

// ActivationFunctions is the fixed dispatch table from activation type to function.
var ActivationFunctions = map[ActivationType]ActivationFunc{
	ActivationSigmoid: Sigmoid,
	ActivationTanh:    Tanh,
	ActivationReLU:    ReLU,
}

var activationNames = map[ActivationType]string{
	ActivationUndefined: "undefined",
	ActivationSigmoid:   "sigmoid",
	ActivationTanh:      "tanh",
	ActivationReLU:      "relu",
}

// GetActivation retrieves the function registered for an activation type.
func GetActivation(t ActivationType) (ActivationFunc, error) {
	if fn, ok := ActivationFunctions[t]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownActivation, t)
}

// ParseActivation maps a name such as "sigmoid" to its ActivationType.
func ParseActivation(name string) (ActivationType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range activationNames {
		if n == name {
			return t, nil
		}
	}
	return ActivationUndefined, fmt.Errorf("%w: %q", ErrUnknownActivation, name)
}

func (t ActivationType) String() string {
	if n, ok := activationNames[t]; ok {
		return n
	}
	return fmt.Sprintf("ActivationType(%d)", int(t))
}

// Sigmoid is the steepened logistic function 1 / (1 + e^(-4.9x)).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-4.9*x))
}

// Tanh activation function.
func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// ReLU is leaky: negative inputs are scaled by 0.0001 rather than zeroed.
func ReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0.0001 * x
}
