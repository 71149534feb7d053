package linkcheck

import (
	"context"
	"sync"

	"github.com/twbeatles/hwpmaster-api/internal/model"
)

// Observer receives one call per record, strictly in input order, after all
// checks have settled. current is 1-based.
type Observer func(current, total int, label string)

// Pool runs link checks through a bounded worker set. Scheduling order is
// arbitrary; output order always equals input order. The cache maps a URL to
// its outcome for the lifetime of one Run call's owning Pool, so a URL that
// appears k times costs at most one check when caching is enabled.
type Pool struct {
	checker      Checker
	conc         int
	cacheEnabled bool
	observer     Observer

	mu    sync.Mutex
	cache map[string]Outcome
}

// NewPool creates a pool with the given concurrency ceiling.
func NewPool(checker Checker, conc int, cacheEnabled bool) *Pool {
	if conc < 1 {
		conc = 1
	}
	return &Pool{
		checker:      checker,
		conc:         conc,
		cacheEnabled: cacheEnabled,
		cache:        make(map[string]Outcome),
	}
}

// OnProgress registers the progress observer. Must be set before Run.
func (p *Pool) OnProgress(fn Observer) { p.observer = fn }

// Run fills in Status/ErrorDetail on every record and returns the slice in
// input order. Cancelling ctx short-circuits checks not yet started; records
// never checked keep the unknown status.
func (p *Pool) Run(ctx context.Context, records []model.LinkRecord) []model.LinkRecord {
	if len(records) == 0 {
		return records
	}

	outcomes := make([]Outcome, len(records))
	for i := range outcomes {
		outcomes[i] = Outcome{Status: model.LinkUnknown}
	}

	if p.cacheEnabled {
		p.runCached(ctx, records, outcomes)
	} else {
		p.runIndependent(ctx, records, outcomes)
	}

	// Ordered apply pass: work scheduling order is pool-driven, output order
	// is the input order.
	total := len(records)
	for i := range records {
		records[i].Status = outcomes[i].Status
		records[i].ErrorDetail = outcomes[i].Detail
		if p.observer != nil {
			p.observer(i+1, total, truncate(records[i].URL, 50))
		}
	}
	return records
}

// runCached checks each distinct URL at most once and fans the outcome out
// to every occurrence.
func (p *Pool) runCached(ctx context.Context, records []model.LinkRecord, outcomes []Outcome) {
	// Indices still needing a check, grouped by URL.
	pending := make(map[string][]int)
	order := make([]string, 0, len(records))
	for i, rec := range records {
		p.mu.Lock()
		cached, ok := p.cache[rec.URL]
		p.mu.Unlock()
		if ok {
			outcomes[i] = cached
			continue
		}
		if _, seen := pending[rec.URL]; !seen {
			order = append(order, rec.URL)
		}
		pending[rec.URL] = append(pending[rec.URL], i)
	}
	if len(pending) == 0 {
		return
	}

	in := make(chan string)
	var wg sync.WaitGroup
	for w := 0; w < p.conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range in {
				if ctx.Err() != nil {
					continue
				}
				out := p.checker.Check(ctx, u)
				p.mu.Lock()
				p.cache[u] = out
				p.mu.Unlock()
			}
		}()
	}
	for _, u := range order {
		in <- u
	}
	close(in)
	wg.Wait()

	for u, idxs := range pending {
		p.mu.Lock()
		out, ok := p.cache[u]
		p.mu.Unlock()
		if !ok {
			continue // cancelled before scheduling; stays unknown
		}
		for _, i := range idxs {
			outcomes[i] = out
		}
	}
}

// runIndependent checks every occurrence, duplicates included.
func (p *Pool) runIndependent(ctx context.Context, records []model.LinkRecord, outcomes []Outcome) {
	in := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range in {
				if ctx.Err() != nil {
					continue
				}
				outcomes[i] = p.checker.Check(ctx, records[i].URL)
			}
		}()
	}
	for i := range records {
		in <- i
	}
	close(in)
	wg.Wait()
}

// Tally counts healthy and unhealthy records.
func Tally(records []model.LinkRecord) (valid, broken int) {
	for _, rec := range records {
		switch {
		case rec.Status.Healthy():
			valid++
		case rec.Status.Unhealthy():
			broken++
		}
	}
	return valid, broken
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
