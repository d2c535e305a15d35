package benchmark

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"mood-predictor/internal/common"
	"mood-predictor/internal/ml"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type searchOutcome struct {
	params ml.Params
	score  float64
	tried  int
}

// search cross-validates the sampled configurations of one family and
// returns the best. Candidates are scored concurrently but each result goes
// to its own slot, so the choice does not depend on scheduling.
func (b *Benchmark) search(c Candidate, X [][]float64, y []float64) (searchOutcome, error) {
	if len(y) < b.cfg.Folds {
		return searchOutcome{}, fmt.Errorf("%w: %s needs at least %d training rows for %d-fold search, have %d",
			common.ErrSearchSpace, c.Family, b.cfg.Folds, b.cfg.Folds, len(y))
	}

	configs := sampleConfigs(c.Space, b.cfg.Iterations, b.cfg.Seed)
	scores := make([]float64, len(configs))
	failures := make([]error, len(configs))

	var g errgroup.Group
	g.SetLimit(b.cfg.Workers)
	for i, params := range configs {
		g.Go(func() error {
			score, err := crossValidate(c.Family, params, b.cfg.Seed, X, y, b.cfg.Folds)
			if b.metrics != nil {
				b.metrics.SearchCandidatesInc()
			}
			if err != nil {
				if errors.Is(err, common.ErrSearchSpace) {
					failures[i] = err
					return nil
				}
				return err
			}
			scores[i] = score
			log.Debug().
				Str("family", string(c.Family)).
				Str("params", params.String()).
				Float64("score", score).
				Msg("Candidate scored")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return searchOutcome{}, err
	}

	best := -1
	for i := range configs {
		if failures[i] != nil {
			continue
		}
		if best < 0 || scores[i] > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return searchOutcome{}, fmt.Errorf("%s has no feasible configuration: %w", c.Family, failures[0])
	}
	return searchOutcome{params: configs[best], score: scores[best], tried: len(configs)}, nil
}

// sampleConfigs enumerates the grid in sorted-key order with the last key
// varying fastest. Grids no larger than n are returned whole; larger grids
// are sampled without replacement using seed.
func sampleConfigs(space SearchSpace, n int, seed uint64) []ml.Params {
	keys := make([]string, 0, len(space))
	total := 1
	for k, values := range space {
		keys = append(keys, k)
		total *= len(values)
	}
	sort.Strings(keys)

	at := func(idx int) ml.Params {
		p := make(ml.Params, len(keys))
		for i := len(keys) - 1; i >= 0; i-- {
			values := space[keys[i]]
			p[keys[i]] = values[idx%len(values)]
			idx /= len(values)
		}
		return p
	}

	if total <= n {
		out := make([]ml.Params, total)
		for i := range out {
			out[i] = at(i)
		}
		return out
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
	picks := rng.Perm(total)[:n]
	out := make([]ml.Params, n)
	for i, idx := range picks {
		out[i] = at(idx)
	}
	return out
}

// foldBounds splits n rows into k contiguous folds; the first n%k folds
// get one extra row.
func foldBounds(n, k int) [][2]int {
	bounds := make([][2]int, k)
	size, extra := n/k, n%k
	start := 0
	for i := range bounds {
		end := start + size
		if i < extra {
			end++
		}
		bounds[i] = [2]int{start, end}
		start = end
	}
	return bounds
}

// crossValidate returns the mean negative MAE over unshuffled K folds.
func crossValidate(family ml.Family, params ml.Params, seed uint64, X [][]float64, y []float64, folds int) (float64, error) {
	var sum float64
	for _, fb := range foldBounds(len(y), folds) {
		trainX := make([][]float64, 0, len(y)-(fb[1]-fb[0]))
		trainY := make([]float64, 0, cap(trainX))
		trainX = append(append(trainX, X[:fb[0]]...), X[fb[1]:]...)
		trainY = append(append(trainY, y[:fb[0]]...), y[fb[1]:]...)

		model, err := ml.NewRegressor(family, params, seed)
		if err != nil {
			return 0, err
		}
		if err := model.Fit(trainX, trainY); err != nil {
			return 0, err
		}
		pred, err := model.Predict(X[fb[0]:fb[1]])
		if err != nil {
			return 0, err
		}
		mae, err := ml.MeanAbsoluteError(y[fb[0]:fb[1]], pred)
		if err != nil {
			return 0, err
		}
		sum -= mae
	}
	return sum / float64(folds), nil
}
