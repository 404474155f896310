// Mockrpc is a fake JSON-RPC node used for failover testing. It serves
// getSlot with an incrementing slot and can be flipped into a failing
// state at runtime.
//
// Usage:
//
//	go run ./scripts/mockrpc -port 8899
//	curl -X POST localhost:8899/toggle     # start/stop failing
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Method  string `json:"method"`
}

func main() {
	port := flag.Int("port", 8899, "listen port")
	startFailing := flag.Bool("fail", false, "start in the failing state")
	flag.Parse()

	var failing atomic.Bool
	failing.Store(*startFailing)

	var slot atomic.Uint64
	slot.Store(250_000_000)

	http.HandleFunc("/toggle", func(w http.ResponseWriter, r *http.Request) {
		now := !failing.Load()
		failing.Store(now)
		log.Printf("failing=%v", now)
		fmt.Fprintf(w, "failing=%v\n", now)
	})

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "node unavailable", http.StatusServiceUnavailable)
			return
		}

		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		log.Printf("%s from %s", req.Method, r.RemoteAddr)

		switch req.Method {
		case "getSlot", "getBlockHeight":
			writeResult(w, req.ID, slot.Add(1))
		case "getHealth":
			writeResult(w, req.ID, "ok")
		default:
			writeResult(w, req.ID, map[string]any{"mock": true})
		}
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock RPC node listening on %s (failing=%v)", addr, failing.Load())
	log.Fatal(http.ListenAndServe(addr, nil))
}

func writeResult(w http.ResponseWriter, id any, result any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}
