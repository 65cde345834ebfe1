package sequence

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const numClasses = 2

// Network is a single hidden layer classifier:
// input(Window) -> dense(Hidden, ReLU) -> dense(2) -> softmax.
type Network struct {
	window int
	hidden int

	w1 *mat.Dense    // hidden x window
	b1 *mat.VecDense // hidden
	w2 *mat.Dense    // classes x hidden
	b2 *mat.VecDense // classes
}

// NewNetwork returns a network with He-initialized hidden weights and
// Glorot-initialized output weights. Biases start at zero.
func NewNetwork(window, hidden int, rng *rand.Rand) *Network {
	w1 := make([]float64, hidden*window)
	heStd := math.Sqrt(2.0 / float64(window))
	for i := range w1 {
		w1[i] = rng.NormFloat64() * heStd
	}

	w2 := make([]float64, numClasses*hidden)
	limit := math.Sqrt(6.0 / float64(hidden+numClasses))
	for i := range w2 {
		w2[i] = (rng.Float64()*2 - 1) * limit
	}

	return &Network{
		window: window,
		hidden: hidden,
		w1:     mat.NewDense(hidden, window, w1),
		b1:     mat.NewVecDense(hidden, nil),
		w2:     mat.NewDense(numClasses, hidden, w2),
		b2:     mat.NewVecDense(numClasses, nil),
	}
}

// networkFromWeights rebuilds a network from flat row-major weights.
func networkFromWeights(window, hidden int, w1, b1, w2, b2 []float64) (*Network, error) {
	switch {
	case window <= 0 || hidden <= 0:
		return nil, fmt.Errorf("invalid network shape %dx%d", window, hidden)
	case len(w1) != hidden*window:
		return nil, fmt.Errorf("hidden weights: want %d values, got %d", hidden*window, len(w1))
	case len(b1) != hidden:
		return nil, fmt.Errorf("hidden bias: want %d values, got %d", hidden, len(b1))
	case len(w2) != numClasses*hidden:
		return nil, fmt.Errorf("output weights: want %d values, got %d", numClasses*hidden, len(w2))
	case len(b2) != numClasses:
		return nil, fmt.Errorf("output bias: want %d values, got %d", numClasses, len(b2))
	}

	copyOf := func(v []float64) []float64 { return append([]float64(nil), v...) }
	return &Network{
		window: window,
		hidden: hidden,
		w1:     mat.NewDense(hidden, window, copyOf(w1)),
		b1:     mat.NewVecDense(hidden, copyOf(b1)),
		w2:     mat.NewDense(numClasses, hidden, copyOf(w2)),
		b2:     mat.NewVecDense(numClasses, copyOf(b2)),
	}, nil
}

// Window returns the expected input length
func (n *Network) Window() int { return n.window }

// Hidden returns the hidden layer width
func (n *Network) Hidden() int { return n.hidden }

// params returns the raw backing slices in a fixed order: w1, b1, w2, b2.
func (n *Network) params() [][]float64 {
	return [][]float64{
		n.w1.RawMatrix().Data,
		n.b1.RawVector().Data,
		n.w2.RawMatrix().Data,
		n.b2.RawVector().Data,
	}
}

// Predict runs inference on one window and returns class probabilities.
func (n *Network) Predict(input []float64) ([]float64, error) {
	if len(input) != n.window {
		return nil, fmt.Errorf("input length %d does not match window %d", len(input), n.window)
	}
	_, _, probs := n.forward(mat.NewVecDense(len(input), append([]float64(nil), input...)), nil)

	out := probs.RawVector().Data
	for _, p := range out {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, errors.New("network produced a non-finite probability")
		}
	}
	return append([]float64(nil), out...), nil
}

// forward returns the hidden pre-activation, the (masked) hidden activation
// and the softmax output. mask is applied to the activation when non-nil.
func (n *Network) forward(x *mat.VecDense, mask []float64) (pre, act, probs *mat.VecDense) {
	pre = mat.NewVecDense(n.hidden, nil)
	pre.MulVec(n.w1, x)
	pre.AddVec(pre, n.b1)

	act = mat.NewVecDense(n.hidden, nil)
	for i := 0; i < n.hidden; i++ {
		v := math.Max(0, pre.AtVec(i))
		if mask != nil {
			v *= mask[i]
		}
		act.SetVec(i, v)
	}

	logits := mat.NewVecDense(numClasses, nil)
	logits.MulVec(n.w2, act)
	logits.AddVec(logits, n.b2)

	probs = mat.NewVecDense(numClasses, softmax(logits.RawVector().Data))
	return pre, act, probs
}

func softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	maxLogit := floats.Max(logits)
	for i, z := range logits {
		out[i] = math.Exp(z - maxLogit)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// gradients accumulates the cross-entropy gradients of one batch.
type gradients struct {
	w1 *mat.Dense
	b1 *mat.VecDense
	w2 *mat.Dense
	b2 *mat.VecDense
}

func newGradients(n *Network) *gradients {
	return &gradients{
		w1: mat.NewDense(n.hidden, n.window, nil),
		b1: mat.NewVecDense(n.hidden, nil),
		w2: mat.NewDense(numClasses, n.hidden, nil),
		b2: mat.NewVecDense(numClasses, nil),
	}
}

func (g *gradients) slices() [][]float64 {
	return [][]float64{
		g.w1.RawMatrix().Data,
		g.b1.RawVector().Data,
		g.w2.RawMatrix().Data,
		g.b2.RawVector().Data,
	}
}

func (g *gradients) scale(f float64) {
	for _, s := range g.slices() {
		floats.Scale(f, s)
	}
}

// backprop adds the gradients of one example to g and returns its loss.
func (n *Network) backprop(input []float64, label int, mask []float64, g *gradients) float64 {
	x := mat.NewVecDense(len(input), append([]float64(nil), input...))
	pre, act, probs := n.forward(x, mask)

	loss := -math.Log(math.Max(probs.AtVec(label), 1e-12))

	dz := mat.NewVecDense(numClasses, nil)
	dz.CopyVec(probs)
	dz.SetVec(label, dz.AtVec(label)-1)

	var outer mat.Dense
	outer.Outer(1, dz, act)
	g.w2.Add(g.w2, &outer)
	g.b2.AddVec(g.b2, dz)

	dh := mat.NewVecDense(n.hidden, nil)
	dh.MulVec(n.w2.T(), dz)
	for i := 0; i < n.hidden; i++ {
		d := dh.AtVec(i)
		if pre.AtVec(i) <= 0 {
			d = 0
		} else if mask != nil {
			d *= mask[i]
		}
		dh.SetVec(i, d)
	}

	var inner mat.Dense
	inner.Outer(1, dh, x)
	g.w1.Add(g.w1, &inner)
	g.b1.AddVec(g.b1, dh)

	return loss
}
