package decider

import (
	"fmt"
	"sort"

	"lightcurve-lab/internal/domain"
)

// Registry names.
const (
	NameLDA        = "LDADec"
	NameQDA        = "QDADec"
	NameGaussianNB = "GaussianNBDec"
	NameGMMBayes   = "GMMBayesDec"
	NameTree       = "TreeDec"
	NameSVC        = "SVCDec"
	NameNeuron     = "NeuronDecider"
	NameKMeans     = "KMeansDec"
	NameDistance   = "DistanceDecider"
	NameCustom     = "CustomDecider"
)

// NewLDA creates a linear discriminant analysis decider.
func NewLDA(threshold float64) (*Classifier, error) {
	return newClassifier(NameLDA, threshold, func() model { return &lda{} })
}

// NewQDA creates a quadratic discriminant analysis decider.
func NewQDA(threshold, regParam float64) (*Classifier, error) {
	return newClassifier(NameQDA, threshold, func() model { return &qda{regParam: regParam} })
}

// NewGaussianNB creates a Gaussian naive Bayes decider.
func NewGaussianNB(threshold, varSmoothing float64) (*Classifier, error) {
	return newClassifier(NameGaussianNB, threshold, func() model { return &gaussianNB{varSmoothing: varSmoothing} })
}

// GMMConfig configures the Gaussian mixture Bayes decider.
type GMMConfig struct {
	Components int   // per class mixture size
	MaxIter    int   // EM iterations
	Seed       int64 // initial component means
}

// NewGMMBayes creates a Gaussian mixture Bayes decider.
func NewGMMBayes(threshold float64, cfg GMMConfig) (*Classifier, error) {
	return newClassifier(NameGMMBayes, threshold, func() model {
		return &gmmBayes{components: cfg.Components, maxIter: cfg.MaxIter, seed: cfg.Seed}
	})
}

// NewTree creates a decision tree decider. maxDepth 0 grows until leaves are pure.
func NewTree(threshold float64, maxDepth, minSamplesLeaf int) (*Classifier, error) {
	return newClassifier(NameTree, threshold, func() model {
		return &tree{maxDepth: maxDepth, minSamplesLeaf: minSamplesLeaf}
	})
}

// SVCConfig configures the support vector decider.
type SVCConfig struct {
	Kernel    string  // rbf or linear
	C         float64 // box constraint
	Gamma     float64 // rbf width, 0 = 1/dim
	Tol       float64
	MaxPasses int // passes without alpha changes before stopping
	Seed      int64
}

// NewSVC creates a support vector decider.
func NewSVC(threshold float64, cfg SVCConfig) (*Classifier, error) {
	return newClassifier(NameSVC, threshold, func() model {
		return &svm{kernel: cfg.Kernel, c: cfg.C, gamma: cfg.Gamma, tol: cfg.Tol, maxPasses: cfg.MaxPasses, seed: cfg.Seed}
	})
}

// NeuronConfig configures the neural network decider.
type NeuronConfig struct {
	Hidden       int
	MaxEpochs    int
	MaxErr       float64
	LearningRate float64
	Momentum     float64
	WeightDecay  float64
	Seed         int64
}

// NewNeuron creates a neural network decider.
func NewNeuron(threshold float64, cfg NeuronConfig) (*Classifier, error) {
	return newClassifier(NameNeuron, threshold, func() model {
		return &neuron{
			hidden:       cfg.Hidden,
			maxEpochs:    cfg.MaxEpochs,
			maxErr:       cfg.MaxErr,
			learningRate: cfg.LearningRate,
			momentum:     cfg.Momentum,
			weightDecay:  cfg.WeightDecay,
			seed:         cfg.Seed,
		}
	})
}

// NewKMeans creates a two-cluster k-means decider. seed drives the
// k-means++ choice of starting centres.
func NewKMeans(threshold float64, seed int64) (*Classifier, error) {
	return newClassifier(NameKMeans, threshold, func() model { return &kMeans{seed: seed} })
}

// NewDistance creates a decider passing points with norm below border.
// It scores without learning.
func NewDistance(threshold, border float64) (*Classifier, error) {
	c, err := newClassifier(NameDistance, threshold, func() model { return &distanceRule{border: border} })
	if err != nil {
		return nil, err
	}
	c.m = c.newModel()
	return c, nil
}

// NewCustom creates a decider passing points inside bounds. It scores
// without learning.
func NewCustom(threshold float64, bounds []Bound) (*Classifier, error) {
	if len(bounds) == 0 {
		return nil, fmt.Errorf("%w: boundaries must not be empty", domain.ErrQueryInput)
	}
	c, err := newClassifier(NameCustom, threshold, func() model { return &boxRule{bounds: bounds} })
	if err != nil {
		return nil, err
	}
	c.m = c.newModel()
	c.dim = len(bounds)
	return c, nil
}

type factory func(p domain.ComponentParams, threshold float64) (Decider, error)

var factories = map[string]struct {
	keys []string
	new  factory
}{
	NameLDA: {nil, func(_ domain.ComponentParams, th float64) (Decider, error) {
		return NewLDA(th)
	}},
	NameQDA: {[]string{"reg_param"}, func(p domain.ComponentParams, th float64) (Decider, error) {
		reg, err := p.Float("reg_param", 0)
		if err != nil {
			return nil, err
		}
		return NewQDA(th, reg)
	}},
	NameGaussianNB: {[]string{"var_smoothing"}, func(p domain.ComponentParams, th float64) (Decider, error) {
		vs, err := p.Float("var_smoothing", 1e-9)
		if err != nil {
			return nil, err
		}
		return NewGaussianNB(th, vs)
	}},
	NameGMMBayes: {[]string{"n_components", "max_iter", "seed"}, gmmFromParams},
	NameTree:     {[]string{"max_depth", "min_samples_leaf"}, treeFromParams},
	NameSVC:      {[]string{"kernel", "c", "gamma", "tol", "max_passes", "seed"}, svcFromParams},
	NameNeuron: {[]string{"hidden_neurons", "max_epochs", "max_err", "learning_rate", "momentum", "weight_decay", "seed"},
		neuronFromParams},
	NameKMeans: {[]string{"seed"}, func(p domain.ComponentParams, th float64) (Decider, error) {
		seed, err := p.Int("seed", 0)
		if err != nil {
			return nil, err
		}
		return NewKMeans(th, int64(seed))
	}},
	NameDistance: {[]string{"border"}, func(p domain.ComponentParams, th float64) (Decider, error) {
		border, err := p.RequiredFloat("border")
		if err != nil {
			return nil, err
		}
		return NewDistance(th, border)
	}},
	NameCustom: {[]string{"boundaries"}, customFromParams},
}

// Names returns the registered decider names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsDecider reports whether name is a registered decider.
func IsDecider(name string) bool {
	_, ok := factories[name]
	return ok
}

// FromParams builds the decider registered under name. Every decider accepts
// "threshold" (alias "treshold"). Unknown names fail with domain.ErrNotFound;
// unknown or invalid parameters fail with domain.ErrQueryInput.
func FromParams(name string, p domain.ComponentParams) (Decider, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: decider %q", domain.ErrNotFound, name)
	}
	keys := append([]string{"threshold", "treshold"}, f.keys...)
	if err := p.CheckKeys(name, keys...); err != nil {
		return nil, err
	}
	th, err := p.Float("threshold", DefaultThreshold)
	if err != nil {
		return nil, err
	}
	if !p.Has("threshold") {
		if th, err = p.Float("treshold", DefaultThreshold); err != nil {
			return nil, err
		}
	}
	d, err := f.new(p, th)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return d, nil
}

func gmmFromParams(p domain.ComponentParams, th float64) (Decider, error) {
	var cfg GMMConfig
	var err error
	if cfg.Components, err = p.Int("n_components", 1); err != nil {
		return nil, err
	}
	if cfg.MaxIter, err = p.Int("max_iter", 100); err != nil {
		return nil, err
	}
	seed, err := p.Int("seed", 0)
	if err != nil {
		return nil, err
	}
	cfg.Seed = int64(seed)
	return NewGMMBayes(th, cfg)
}

func treeFromParams(p domain.ComponentParams, th float64) (Decider, error) {
	depth, err := p.Int("max_depth", 0)
	if err != nil {
		return nil, err
	}
	leaf, err := p.Int("min_samples_leaf", 1)
	if err != nil {
		return nil, err
	}
	return NewTree(th, depth, leaf)
}

func svcFromParams(p domain.ComponentParams, th float64) (Decider, error) {
	var cfg SVCConfig
	var err error
	if cfg.Kernel, err = p.String("kernel", KernelRBF); err != nil {
		return nil, err
	}
	if cfg.Kernel != KernelRBF && cfg.Kernel != KernelLinear {
		return nil, fmt.Errorf("%w: kernel %q", domain.ErrInvalidOption, cfg.Kernel)
	}
	if cfg.C, err = p.Float("c", 1); err != nil {
		return nil, err
	}
	if cfg.Gamma, err = p.Float("gamma", 0); err != nil {
		return nil, err
	}
	if cfg.Tol, err = p.Float("tol", 1e-3); err != nil {
		return nil, err
	}
	if cfg.MaxPasses, err = p.Int("max_passes", 10); err != nil {
		return nil, err
	}
	seed, err := p.Int("seed", 0)
	if err != nil {
		return nil, err
	}
	cfg.Seed = int64(seed)
	return NewSVC(th, cfg)
}

// DefaultNeuronConfig holds the network defaults.
var DefaultNeuronConfig = NeuronConfig{
	Hidden:       2,
	MaxEpochs:    2000,
	LearningRate: 0.01,
	Momentum:     0.1,
	WeightDecay:  0.01,
}

func neuronFromParams(p domain.ComponentParams, th float64) (Decider, error) {
	cfg := DefaultNeuronConfig
	var err error
	if cfg.Hidden, err = p.Int("hidden_neurons", cfg.Hidden); err != nil {
		return nil, err
	}
	if cfg.MaxEpochs, err = p.Int("max_epochs", cfg.MaxEpochs); err != nil {
		return nil, err
	}
	if cfg.MaxErr, err = p.Float("max_err", cfg.MaxErr); err != nil {
		return nil, err
	}
	if cfg.LearningRate, err = p.Float("learning_rate", cfg.LearningRate); err != nil {
		return nil, err
	}
	if cfg.Momentum, err = p.Float("momentum", cfg.Momentum); err != nil {
		return nil, err
	}
	if cfg.WeightDecay, err = p.Float("weight_decay", cfg.WeightDecay); err != nil {
		return nil, err
	}
	seed, err := p.Int("seed", 0)
	if err != nil {
		return nil, err
	}
	cfg.Seed = int64(seed)
	return NewNeuron(th, cfg)
}

func customFromParams(p domain.ComponentParams, th float64) (Decider, error) {
	raw, ok := p["boundaries"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: boundaries must be a list of [lower, upper] pairs", domain.ErrQueryInput)
	}
	bounds := make([]Bound, len(raw))
	for i, item := range raw {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: boundary %d must be a [lower, upper] pair", domain.ErrQueryInput, i)
		}
		ends := domain.ComponentParams{"lower": pair[0], "upper": pair[1]}
		for _, key := range []string{"lower", "upper"} {
			if !ends.Has(key) {
				continue
			}
			v, err := ends.Float(key, 0)
			if err != nil {
				return nil, err
			}
			if key == "lower" {
				bounds[i].Lower = &v
			} else {
				bounds[i].Upper = &v
			}
		}
	}
	return NewCustom(th, bounds)
}

// Positional converts static decider params into named params. A mapping is
// used as is. A list assigns the threshold first, then the decider's extra
// params in their registered order. A scalar is the threshold.
func Positional(name string, v any) (domain.ComponentParams, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: decider %q", domain.ErrNotFound, name)
	}
	switch x := v.(type) {
	case nil:
		return domain.ComponentParams{}, nil
	case domain.ComponentParams:
		return x, nil
	case map[string]any:
		return domain.ComponentParams(x), nil
	case []any:
		keys := append([]string{"threshold"}, f.keys...)
		if len(x) > len(keys) {
			return nil, fmt.Errorf("%w: %s accepts at most %d positional params, got %d",
				domain.ErrQueryInput, name, len(keys), len(x))
		}
		out := make(domain.ComponentParams, len(x))
		for i, item := range x {
			out[keys[i]] = item
		}
		return out, nil
	}
	return domain.ComponentParams{"threshold": v}, nil
}
