package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// healthTimeout bounds a single probe.
const healthTimeout = 5 * time.Second

// Result holds the outcome of probing one node.
type Result struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Ping dials url and asks for the head block number.
func Ping(ctx context.Context, url string) (time.Duration, uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	start := time.Now()
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return 0, 0, err
	}
	defer client.Close()

	block, err := client.BlockNumber(ctx)
	if err != nil {
		return 0, 0, err
	}
	return time.Since(start), block, nil
}

// Probe pings all urls in parallel. Results keep the order of urls.
func Probe(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			latency, block, err := Ping(ctx, u)
			results[idx] = Result{URL: u, Latency: latency, BlockNumber: block, Err: err}
		}(i, url)
	}

	wg.Wait()
	return results
}

// ToEndpoints converts probe results to picker endpoints, all marked Checked.
func ToEndpoints(results []Result) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

// Health is the outcome of checking one node.
type Health struct {
	Endpoint
	Err   error // set when the node did not answer
	Stale bool  // answered but lags the best head by more than staleBlockThreshold
}

// HealthCheck probes urls in parallel and judges each node against the
// best head among them. Results keep the order of urls.
func HealthCheck(ctx context.Context, urls []string) []Health {
	results := Probe(ctx, urls)

	var bestBlock uint64
	for _, r := range results {
		if r.Err == nil && r.BlockNumber > bestBlock {
			bestBlock = r.BlockNumber
		}
	}

	out := make([]Health, len(results))
	for i, ep := range ToEndpoints(results) {
		stale := ep.Healthy && isStale(ep.BlockNumber, bestBlock)
		ep.Healthy = ep.Healthy && !stale
		out[i] = Health{Endpoint: ep, Err: results[i].Err, Stale: stale}
	}
	return out
}
