package nutransport

import (
	"runtime"
	"sync"
)

// Rank is one synthetic MPI rank: an independent packet
// pool plus per-rank accumulators, run inside its own OS goroutine rather
// than its own process: n_ranks Rank values instead of n_ranks OS
// processes, each with its own pool and accumulators and no shared memory
// with the others, combined at reduction time through MPIAllCombine rather than
// a network Allreduce.
type Rank struct {
	ID int
	Pool *Pool
	Acc *Accumulators
	Grid Grid
	Opac Opacity
	Cfg *Config
	Bins []Real
	NRanks int
}

// RunStep executes one full control-flow step for this rank alone. Reduction
// across ranks is the caller's job via
// RunAllRanks / MPIAllCombine — a rank never reduces itself.
func (r *Rank) RunStep(seed int64) error {
	r.Acc.Reset()
	r.Pool.Reset()

	workers := r.Cfg.NWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	rngs := NewThreadRNGs(workers, seed)

	if err := EmitInnerSourceByBin(r.Grid, r.Cfg, r.Pool, r.Acc, r.Bins, r.ID, rngs[0]); err != nil {
		return err
	}
	if err := EmitZonesByBin(r.Grid, r.Opac, r.Cfg, r.Pool, r.Acc, r.Bins, r.ID, r.NRanks, rngs[0]); err != nil {
		return err
	}

	return r.propagateAll(rngs)
}

// propagateAll runs the dynamic re-pass loop: iterate the currently known
// packet range across worker goroutines, then re-check the pool length
// (splits may have appended), repeating until it stops growing.
func (r *Rank) propagateAll(rngs []ThreadRNG) error {
	start := 0
	for {
		end := r.Pool.Len()
		if end <= start {
			return nil
		}
		if err := r.propagateRange(start, end, rngs); err != nil {
			return err
		}
		start = end
	}
}

func (r *Rank) propagateRange(start, end int, rngs []ThreadRNG) error {
	workers := len(rngs)
	if workers > end-start {
		workers = end - start
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (end - start + workers - 1) / workers

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		lo := start + w*chunk
		hi := lo + chunk
		if hi > end {
			hi = end
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			rng := rngs[w]
			for i := lo; i < hi; i++ {
				pk := r.Pool.At(i)
				if pk.Fate != Moving {
					continue
				}
				if _, err := PropagatePacket(pk, r.Grid, r.Opac, r.Cfg, rng, r.Pool, r.Acc, r.Bins); err != nil {
					errs[w] = err
					return
				}
			}
		}(w, lo, hi)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// NewRanks builds n_ranks independent Rank values sharing one grid/opacity
// (both are immutable during a step) but owning distinct pools and
// accumulators.
func NewRanks(n int, grid Grid, opac Opacity, cfg *Config, bins []Real, capacityHint int) []*Rank {
	ranks := make([]*Rank, n)
	for i := 0; i < n; i++ {
		ranks[i] = &Rank{
			ID: i, NRanks: n,
			Pool: NewPool(capacityHint),
			Acc: NewAccumulators(grid.NumZones(), cfg.NumSpecies(), len(bins)-1),
			Grid: grid, Opac: opac, Cfg: cfg, Bins: bins,
		}
	}
	return ranks
}

// RunAllRanks executes one step across every rank in parallel (each rank
// itself parallel across worker goroutines), then combines with
// MPIAllCombine — the point where a distributed build would substitute a
// real MPI_Allreduce.
func RunAllRanks(ranks []*Rank, baseSeed int64) (*Accumulators, error) {
	var wg sync.WaitGroup
	errs := make([]error, len(ranks))
	wg.Add(len(ranks))
	for i, r := range ranks {
		go func(i int, r *Rank) {
			defer wg.Done()
			seed := baseSeed ^ int64(uint64(i+1)*0x9e3779b97f4a7c15)
			errs[i] = r.RunStep(seed)
		}(i, r)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	accs := make([]*Accumulators, len(ranks))
	for i, r := range ranks {
		accs[i] = r.Acc
	}
	return MPIAllCombine(accs), nil
}
