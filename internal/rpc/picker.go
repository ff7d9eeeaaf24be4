package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm defines how an RPC endpoint is selected.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"

	// Discard nodes more than this many blocks behind the best.
	staleBlockThreshold = 3
	// Cache winner for this duration before probing again.
	cacheTTL = 5 * time.Minute
)

// ParseAlgorithm validates a configured algorithm name. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	default:
		return "", fmt.Errorf("unknown rpc algorithm %q (want fastest, round-robin or failover)", s)
	}
}

// Endpoint is a node URL with what the last probe measured.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Healthy     bool // meaningful only when Checked == true
	Checked     bool // true when the endpoint has been probed
}

// Picker selects an RPC endpoint according to the configured algorithm.
type Picker struct {
	algo        Algorithm
	probe       func(ctx context.Context, urls []string) []Result
	mu          sync.Mutex
	rrIndex     int
	cachedURL   string
	cacheExpiry time.Time
}

// NewPicker creates a new Picker with the given algorithm.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo, probe: Probe}
}

// Select returns the node to use among urls. A single URL is returned
// without probing. For the fastest algorithm the winner is cached for
// cacheTTL so repeated calls do not re-probe every node.
func (p *Picker) Select(ctx context.Context, urls []string) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	if url, ok := p.cached(urls); ok {
		return url, nil
	}

	endpoints := ToEndpoints(p.probe(ctx, urls))
	winner, err := p.Pick(endpoints)
	if err != nil {
		return "", err
	}
	logx.WithContext(ctx).Debugw("rpc node selected",
		logx.Field("url", winner.URL),
		logx.Field("algorithm", string(p.algo)),
		logx.Field("latency", winner.Latency.String()),
		logx.Field("block", winner.BlockNumber))
	return winner.URL, nil
}

func (p *Picker) cached(urls []string) (string, bool) {
	if p.algo != AlgorithmFastest && p.algo != "" {
		return "", false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cachedURL == "" || time.Now().After(p.cacheExpiry) {
		return "", false
	}
	for _, u := range urls {
		if u == p.cachedURL {
			return u, true
		}
	}
	return "", false
}

// Pick selects an endpoint from already probed endpoints.
func (p *Picker) Pick(endpoints []Endpoint) (*Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoHealthyRPC
	}

	switch p.algo {
	case AlgorithmRoundRobin:
		return p.pickRoundRobin(endpoints)
	case AlgorithmFailover:
		return pickFailover(endpoints)
	default:
		return p.pickFastest(endpoints)
	}
}

// pickFastest scores every fresh healthy endpoint and remembers the winner.
func (p *Picker) pickFastest(endpoints []Endpoint) (*Endpoint, error) {
	var bestBlock uint64
	for _, e := range endpoints {
		if e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var (
		winner    *Endpoint
		bestScore float64
	)
	for _, e := range healthyEndpoints(endpoints) {
		if isStale(e.BlockNumber, bestBlock) {
			continue
		}
		if s := score(e, bestBlock); winner == nil || s > bestScore {
			winner, bestScore = e, s
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}

	p.mu.Lock()
	p.cachedURL = winner.URL
	p.cacheExpiry = time.Now().Add(cacheTTL)
	p.mu.Unlock()
	return winner, nil
}

// pickRoundRobin cycles through all healthy endpoints.
func (p *Picker) pickRoundRobin(endpoints []Endpoint) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	healthy := healthyEndpoints(endpoints)
	if len(healthy) == 0 {
		return nil, ErrNoHealthyRPC
	}

	idx := p.rrIndex % len(healthy)
	p.rrIndex = (idx + 1) % len(healthy)
	return healthy[idx], nil
}

// pickFailover takes the first endpoint in configured order that is not
// known to be down.
func pickFailover(endpoints []Endpoint) (*Endpoint, error) {
	for i := range endpoints {
		if e := &endpoints[i]; !e.Checked || e.Healthy {
			return e, nil
		}
	}
	return nil, ErrNoHealthyRPC
}

// --- scoring ---

func isStale(block, bestBlock uint64) bool {
	return bestBlock > block && bestBlock-block > staleBlockThreshold
}

// score favours low latency, with a bonus of up to 10 for being at the tip.
func score(e *Endpoint, bestBlock uint64) float64 {
	var s float64
	if ms := e.Latency.Milliseconds(); ms > 0 {
		s += 1000.0 / float64(ms)
	} else if e.Latency > 0 {
		s += 1000.0
	}
	if bestBlock > 0 {
		s += float64(10 - int64(bestBlock-e.BlockNumber))
	}
	return s
}

// healthyEndpoints returns endpoints eligible for selection. When nothing
// has been probed every endpoint is a candidate.
func healthyEndpoints(endpoints []Endpoint) []*Endpoint {
	var out []*Endpoint
	for i := range endpoints {
		if e := &endpoints[i]; !e.Checked || e.Healthy {
			out = append(out, e)
		}
	}
	return out
}
