package sequence

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// TrainConfig holds the hyperparameters of a training run
type TrainConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Hidden       int
	Dropout      float64
	Seed         int64
}

// DefaultTrainConfig returns the production hyperparameters
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:       30,
		BatchSize:    16,
		LearningRate: 0.001,
		Hidden:       16,
		Dropout:      0.2,
		Seed:         42,
	}
}

// withDefaults replaces unset or invalid fields with their defaults.
func (c TrainConfig) withDefaults() TrainConfig {
	d := DefaultTrainConfig()
	if c.Epochs <= 0 {
		c.Epochs = d.Epochs
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.Hidden <= 0 {
		c.Hidden = d.Hidden
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		c.Dropout = d.Dropout
	}
	return c
}

// adam implements the Adam optimizer over a fixed list of parameter slices.
type adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	step  int
	m     [][]float64
	v     [][]float64
}

func newAdam(lr float64, params [][]float64) *adam {
	a := &adam{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-7}
	for _, p := range params {
		a.m = append(a.m, make([]float64, len(p)))
		a.v = append(a.v, make([]float64, len(p)))
	}
	return a
}

// update applies one optimizer step in place.
func (a *adam) update(params, grads [][]float64) {
	a.step++
	c1 := 1 - math.Pow(a.beta1, float64(a.step))
	c2 := 1 - math.Pow(a.beta2, float64(a.step))

	for k, p := range params {
		g := grads[k]
		m := a.m[k]
		v := a.v[k]
		for i := range p {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
			v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
			mHat := m[i] / c1
			vHat := v[i] / c2
			p[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
}

// fit trains net on ds with minibatch Adam and inverted dropout on the
// hidden layer. Returns the mean loss of the last epoch.
func fit(net *Network, ds Dataset, cfg TrainConfig, rng *rand.Rand) float64 {
	opt := newAdam(cfg.LearningRate, net.params())
	keep := 1 - cfg.Dropout

	var lastLoss float64
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		order := rng.Perm(ds.Len())
		losses := make([]float64, 0, ds.Len())

		for start := 0; start < len(order); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}

			grads := newGradients(net)
			for _, idx := range order[start:end] {
				mask := make([]float64, net.hidden)
				for i := range mask {
					if rng.Float64() < keep {
						mask[i] = 1 / keep
					}
				}
				losses = append(losses, net.backprop(ds.Inputs[idx], ds.Labels[idx], mask, grads))
			}
			grads.scale(1 / float64(end-start))
			opt.update(net.params(), grads.slices())
		}

		if len(losses) > 0 {
			lastLoss = floats.Sum(losses) / float64(len(losses))
		}
	}
	return lastLoss
}

// evaluate returns the fraction of examples whose most likely class matches
// the label.
func evaluate(net *Network, ds Dataset) (float64, error) {
	if ds.Len() == 0 {
		return 0, nil
	}
	hits := make([]float64, ds.Len())
	for i, input := range ds.Inputs {
		probs, err := net.Predict(input)
		if err != nil {
			return 0, err
		}
		if floats.MaxIdx(probs) == ds.Labels[i] {
			hits[i] = 1
		}
	}
	return floats.Sum(hits) / float64(len(hits)), nil
}
