// cbdrill verifies circuit breaker behavior against a running gateway by
// driving a service through failure, fail-fast, and recovery phases. It
// expects the upstream test server from scripts/upstream behind the
// target service name.
//
// Usage:
//
//	go run ./scripts/cbdrill -gw http://localhost:8080 -service EchoService -upstream http://localhost:8081
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func main() {
	var (
		gwURL       = flag.String("gw", "http://localhost:8080", "Gateway URL")
		serviceName = flag.String("service", "EchoService", "Service name to drill")
		upstreamURL = flag.String("upstream", "http://localhost:8081", "Upstream test server URL")
		requests    = flag.Int("requests", 10, "Requests per phase")
		cooldown    = flag.Duration("cooldown", 30*time.Second, "Configured breaker cooldown")
	)
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	fmt.Println(colorCyan + "━━━ CIRCUIT BREAKER DRILL ━━━" + colorReset)
	fmt.Println()

	fmt.Println(colorBlue + "━━━ PHASE 1: Normal Operation ━━━" + colorReset)
	ok := countStatuses(client, *gwURL, *serviceName, *requests)
	if ok[http.StatusOK] == 0 {
		fmt.Println(colorRed + "  ✗ No successful responses. Is the gateway running and the service registered?" + colorReset)
		os.Exit(1)
	}
	fmt.Printf(colorGreen+"  ✓ %d/%d requests succeeded\n"+colorReset, ok[http.StatusOK], *requests)
	fmt.Println()

	fmt.Println(colorBlue + "━━━ PHASE 2: Upstream Failure ━━━" + colorReset)
	if err := toggleFailure(client, *upstreamURL); err != nil {
		fmt.Printf(colorRed+"  ✗ Could not toggle upstream failure mode: %v\n"+colorReset, err)
		os.Exit(1)
	}
	fmt.Println("  Upstream now failing; sending requests until the breaker opens...")

	statuses := countStatuses(client, *gwURL, *serviceName, *requests)
	fmt.Printf("  502 (handler failure): %d\n", statuses[http.StatusBadGateway])
	fmt.Printf("  503 (circuit open):    %d\n", statuses[http.StatusServiceUnavailable])
	if statuses[http.StatusServiceUnavailable] > 0 {
		fmt.Println(colorGreen + "  ✓ Breaker opened and failed fast" + colorReset)
	} else {
		fmt.Println(colorYellow + "  ⚠ Breaker did not open; raise -requests above the failure threshold" + colorReset)
	}
	fmt.Println()

	fmt.Println(colorBlue + "━━━ PHASE 3: Recovery ━━━" + colorReset)
	if err := toggleFailure(client, *upstreamURL); err != nil {
		fmt.Printf(colorRed+"  ✗ Could not restore upstream: %v\n"+colorReset, err)
		os.Exit(1)
	}
	fmt.Printf("  Upstream healthy again; waiting out the %s cooldown...\n", *cooldown)
	time.Sleep(*cooldown + time.Second)

	statuses = countStatuses(client, *gwURL, *serviceName, *requests)
	if statuses[http.StatusOK] == *requests {
		fmt.Println(colorGreen + "  ✓ Breaker closed after the half-open trial; service recovered" + colorReset)
	} else {
		fmt.Printf(colorYellow+"  ⚠ %d/%d requests succeeded after cooldown\n"+colorReset, statuses[http.StatusOK], *requests)
	}
}

func countStatuses(client *http.Client, gwURL, serviceName string, n int) map[int]int {
	statuses := make(map[int]int)
	for i := 0; i < n; i++ {
		resp, err := client.Post(
			fmt.Sprintf("%s/api/%s", gwURL, serviceName),
			"text/plain",
			strings.NewReader(fmt.Sprintf("drill-%d", i)),
		)
		if err != nil {
			fmt.Printf(colorRed+"  Request %d: ERROR - %v\n"+colorReset, i+1, err)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		statuses[resp.StatusCode]++
	}
	return statuses
}

func toggleFailure(client *http.Client, upstreamURL string) error {
	resp, err := client.Post(upstreamURL+"/toggle-failure", "text/plain", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
