// Package main provides a CLI tool for validating findash server endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

type endpoint struct {
	path        string
	method      string
	status      int
	asUser      bool
	contentType string
	contains    []string
	paths       []string // JSONPath expressions that must resolve
}

var endpoints = []endpoint{
	// API
	{path: "/api/health", method: "GET", status: http.StatusOK, contentType: "application/json", contains: []string{`"status":"ok"`}},
	{path: "/metrics", method: "GET", status: http.StatusOK, contentType: "text/plain", contains: []string{"findash_"}},

	// Dashboard
	{path: "/api/dashboard", method: "GET", status: http.StatusOK, asUser: true, contentType: "application/json",
		paths: []string{"$.range.days", "$.accounting.metrics.income", "$.accounting.comparatives", "$.financialPosture.netWorth", "$.gating.tier"}},
	{path: "/api/dashboard?preset=year-to-date&mode=percent", method: "GET", status: http.StatusOK, asUser: true, contentType: "application/json",
		paths: []string{"$.accounting.comparatives[0].mode"}},
	{path: "/api/dashboard?preset=forever", method: "GET", status: http.StatusBadRequest, asUser: true, contentType: "application/json",
		contains: []string{`"error":"InvalidRange"`}},
	{path: "/api/dashboard", method: "GET", status: http.StatusBadRequest, contentType: "application/json",
		contains: []string{`"error":"InvalidUser"`}},

	// Tax
	{path: "/api/tax?preset=last-year", method: "GET", status: http.StatusOK, asUser: true, contentType: "application/json",
		paths: []string{"$.tax.totalTax", "$.hmrcBalance.net", "$.obligations"}},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
	body     string
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	user := flag.String("user", "", "User ID sent in the X-User-ID header")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	flag.Parse()

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
	}

	fmt.Printf("Validating server at %s\n", *url)
	fmt.Printf("Testing %d endpoints...\n\n", len(endpoints))

	var passed, failed, skipped int

	for _, ep := range endpoints {
		if ep.asUser && *user == "" {
			skipped++
			if *verbose {
				fmt.Printf("SKIP %s %s (no -user)\n", ep.method, ep.path)
			}
			continue
		}

		r := validateEndpoint(client, *url, *user, ep)

		if r.err != nil {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Error: %v\n", r.err)
		} else if r.status != ep.status {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Status: %d (expected %d)\n", r.status, ep.status)
		} else {
			passed++
			if *verbose {
				fmt.Printf("PASS %s %s (%v)\n", ep.method, ep.path, r.duration)
			}
		}
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Results: %d passed, %d failed, %d skipped\n", passed, failed, skipped)

	if failed > 0 {
		os.Exit(1)
	}
}

func validateEndpoint(client *http.Client, baseURL, user string, ep endpoint) result {
	start := time.Now()

	req, err := http.NewRequest(ep.method, baseURL+ep.path, nil)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to create request: %w", err)}
	}
	if ep.asUser {
		req.Header.Set("X-User-ID", user)
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: time.Since(start),
		body:     string(body),
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("wrong content type: got %q, expected %q", ct, ep.contentType)
		return r
	}

	if ep.contentType == "application/json" {
		var doc any
		if err := json.Unmarshal(body, &doc); err != nil {
			r.err = fmt.Errorf("invalid JSON: %w", err)
			return r
		}
		for _, expr := range ep.paths {
			if _, err := jsonpath.Get(expr, doc); err != nil {
				r.err = fmt.Errorf("missing %s: %w", expr, err)
				return r
			}
		}
	}

	for _, needle := range ep.contains {
		if !strings.Contains(r.body, needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}
