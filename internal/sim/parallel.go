package sim

import (
	"context"
	"sync"
)

// Ensemble runs independent headless simulations with consecutive seeds. Each
// simulation stays single-threaded; only whole runs execute concurrently.
type Ensemble struct {
	cfg        Config
	run        RunConfig
	numRuns    int
	newMetrics func() []Metric
}

// NewEnsemble prepares numRuns runs seeded run.Seed, run.Seed+1, ... newMetrics
// builds a fresh metric set per run so no accumulator is shared.
func NewEnsemble(cfg Config, run RunConfig, numRuns int, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{cfg: cfg, run: run, numRuns: numRuns, newMetrics: newMetrics}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			rc := e.run
			rc.Seed = e.run.Seed + int64(idx)

			var metrics []Metric
			if e.newMetrics != nil {
				metrics = e.newMetrics()
			}
			results[idx], errs[idx] = Run(ctx, e.cfg, rc, metrics)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
