// Failtest hammers the failover proxy with concurrent getSlot requests
// and reports the success/failure split plus the final pool status.
// Flip a mockrpc node into the failing state mid-run to watch the
// proxy move traffic to the next endpoint.
//
// Usage:
//
//	go run ./scripts/failtest -url http://localhost:8545 -n 200 -c 10
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	proxyURL := flag.String("url", "http://localhost:8545", "proxy base URL")
	total := flag.Int("n", 200, "total requests")
	concurrency := flag.Int("c", 10, "concurrent workers")
	flag.Parse()

	payload := []byte(`{"jsonrpc":"2.0","id":1,"method":"getSlot"}`)
	client := &http.Client{Timeout: 15 * time.Second}

	var ok, failed atomic.Int64
	jobs := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				res, err := client.Post(*proxyURL, "application/json", bytes.NewReader(payload))
				if err != nil {
					failed.Add(1)
					continue
				}
				io.Copy(io.Discard, res.Body)
				res.Body.Close()
				if res.StatusCode == http.StatusOK {
					ok.Add(1)
				} else {
					failed.Add(1)
				}
			}
		}()
	}

	start := time.Now()
	for i := 0; i < *total; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Printf("requests: %d ok, %d failed in %s (%.1f req/s)\n",
		ok.Load(), failed.Load(), elapsed, float64(*total)/elapsed.Seconds())

	res, err := client.Get(*proxyURL + "/status")
	if err != nil {
		log.Fatalf("fetching status: %v", err)
	}
	defer res.Body.Close()
	status, _ := io.ReadAll(res.Body)
	fmt.Printf("pool status: %s\n", status)
}
