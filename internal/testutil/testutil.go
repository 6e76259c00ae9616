// Package testutil provides testing utilities for the findash application.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// TestUserID is the user seeded by SeedDataDir
const TestUserID = "5f8e2c1a-9b7d-4e3f-8a6b-2c4d6e8f0a1b"

// TestServer wraps httptest.Server with convenience methods
type TestServer struct {
	Server  *httptest.Server
	BaseURL string
	Headers map[string]string
	t       *testing.T
}

// ProjectRoot returns the root directory of the project.
// It works by finding the go.mod file.
func ProjectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		panic("could not get caller info")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("could not find project root (go.mod)")
		}
		dir = parent
	}
}

var fixtures = map[string]string{
	"users/" + TestUserID + "/transactions/current.csv": `Date,Description,Amount,Category,Account
2025-01-03,Landlord,-1200.00,Rent,acc-current
2025-01-10,TESCO STORES,-85.20,Groceries,acc-current
2025-01-10,TESCO STORES,-85.20,Groceries,acc-card
2025-01-24,ACME LTD PAYROLL,3200.00,Salary,acc-current
2025-01-28,Vanguard dividend,150.00,Investments,acc-current
2025-02-03,Landlord,-1200.00,Rent,acc-current
2025-02-14,Dishoom,-64.50,Eating Out,acc-card
2025-02-24,ACME LTD PAYROLL,3200.00,Salary,acc-current
2025-02-27,HMRC SELF ASSESSMENT,-400.00,Tax Payment,acc-current
2025-03-03,Landlord,-1200.00,Rent,acc-current
2025-03-12,Stocks and Shares ISA,-500.00,Savings,acc-current
2025-03-24,ACME LTD PAYROLL,3200.00,Salary,acc-current
not-a-date,Mystery,-1.00,Other,acc-current
`,
	"users/" + TestUserID + "/accounts.json": `[
  {"id": "acc-current", "name": "Current account", "type": "cash", "balance": 2450.10},
  {"id": "acc-saver", "name": "Easy access", "type": "savings", "balance": 8000},
  {"id": "acc-card", "name": "Credit card", "type": "credit", "balance": -310.45}
]`,
	"users/" + TestUserID + "/holdings.json": `[
  {"symbol": "VWRL", "qty": 40, "assetClass": "Equity", "lastPrice": 105},
  {"symbol": "IGLT", "qty": 100, "assetClass": "Bonds", "lastPrice": 11.2}
]`,
	"users/" + TestUserID + "/profile.json": `{
  "userId": "` + TestUserID + `",
  "tier": "premium",
  "preferences": {"deltaMode": "absolute"},
  "wealthPlan": {
    "assets": [{"name": "Pension pot", "value": 42000, "monthlyContribution": 250}],
    "liabilities": [{"name": "Student loan", "value": 18000}]
  }
}`,
	"prices/VWRL.json": `{"symbol": "VWRL", "data": [
  {"date": "2024-12-31T00:00:00Z", "price": 100},
  {"date": "2025-01-31T00:00:00Z", "price": 102},
  {"date": "2025-02-28T00:00:00Z", "price": 101},
  {"date": "2025-03-31T00:00:00Z", "price": 104}
]}`,
	"prices/IGLT.json": `{"symbol": "IGLT", "data": [
  {"date": "2024-12-31T00:00:00Z", "price": 11},
  {"date": "2025-03-31T00:00:00Z", "price": 11.1}
]}`,
}

// SeedDataDir writes a small data directory for TestUserID into a temp dir
// and returns its path
func SeedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range fixtures {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("seed %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("seed %s: %v", rel, err)
		}
	}
	return dir
}

// SetTestEnv points the FINDASH_* environment at dataDir for the test
func SetTestEnv(t *testing.T, dataDir string) {
	t.Helper()
	t.Setenv("FINDASH_DATA_DIR", dataDir)
	t.Setenv("FINDASH_LISTEN_ADDR", ":0")
	t.Setenv("FINDASH_LOG_LEVEL", "error")
	t.Setenv("FINDASH_TIMEZONE", "UTC")
}

// NewTestServer creates a new test server using the application's router
func NewTestServer(t *testing.T, router http.Handler) *TestServer {
	t.Helper()

	server := httptest.NewServer(router)

	return &TestServer{
		Server:  server,
		BaseURL: server.URL,
		Headers: map[string]string{},
		t:       t,
	}
}

// AsUser sends the user header on every subsequent request
func (ts *TestServer) AsUser(userID string) *TestServer {
	ts.Headers["X-User-ID"] = userID
	return ts
}

// GET performs a GET request to the given path
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.BaseURL+path, nil)
	if err != nil {
		ts.t.Fatalf("GET %s: %v", path, err)
	}
	for k, v := range ts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// GETWithQuery performs a GET request with query parameters
func (ts *TestServer) GETWithQuery(path string, query map[string]string) *http.Response {
	ts.t.Helper()

	if len(query) > 0 {
		values := url.Values{}
		for k, v := range query {
			values.Set(k, v)
		}
		path += "?" + values.Encode()
	}
	return ts.GET(path)
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// ReadBody reads and returns the response body as a string
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(body)
}
