// upstream is a simple test HTTP service for running behind the gateway.
// It echoes request bodies back with a unique ID and can be told to fail
// on demand to exercise the circuit breaker.
//
// Usage:
//
//	go run ./scripts/upstream -port 8081
//
// Toggle failure mode at runtime:
//
//	curl -X POST localhost:8081/toggle-failure
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
)

type echoResponse struct {
	ID      string `json:"id"`
	Service string `json:"service"`
	Echo    string `json:"echo"`
}

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	failing := flag.Bool("failing", false, "start in failure mode")
	flag.Parse()

	var failMode atomic.Bool
	failMode.Store(*failing)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if failMode.Load() {
			http.Error(w, "simulated failure", http.StatusInternalServerError)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		// log request for visibility when running multiple upstreams
		log.Printf("request: method=%s path=%s from=%s body=%s", r.Method, r.URL.Path, r.RemoteAddr, string(body))

		resp := echoResponse{
			ID:      uuid.NewString(),
			Service: r.Header.Get("X-Gateway-Service"),
			Echo:    string(body),
		}

		b, _ := json.Marshal(resp)
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	})

	mux.HandleFunc("/toggle-failure", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		now := !failMode.Load()
		failMode.Store(now)
		log.Printf("failure mode: %v", now)
		fmt.Fprintf(w, "failing=%v\n", now)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting upstream on %s (failing=%v)", addr, *failing)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
