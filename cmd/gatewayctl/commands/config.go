package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/v-shakthi/aigateway/internal/auth"
	"github.com/v-shakthi/aigateway/internal/budget"
)

var (
	budgetManager *budget.Manager
	adminIssuer   *auth.AdminTokenIssuer
	apiURL        string
	apiKey        string
	adminToken    string
	outputJSON    bool
	verbose       bool
)

// SetBudgetManager wires a locally-constructed budget manager for direct
// access mode (run on the same host as the gateway, sharing its backend).
func SetBudgetManager(m *budget.Manager) {
	budgetManager = m
}

// SetAdminIssuer wires a locally-constructed admin token issuer for direct
// access mode, letting the operator mint bearer tokens from the gateway's
// own JWT secret without a running server.
func SetAdminIssuer(i *auth.AdminTokenIssuer) {
	adminIssuer = i
}

// SetAPIConfig configures remote tenant-scoped access to a running gateway.
func SetAPIConfig(url, key string) {
	apiURL = url
	apiKey = key
}

// SetAdminAPIConfig configures remote admin access to a running gateway
// using a bearer token minted by AdminTokenIssuer.
func SetAdminAPIConfig(url, token string) {
	apiURL = url
	adminToken = token
}

func SetOutputJSON(v bool) { outputJSON = v }
func SetVerbose(v bool)    { verbose = v }

// HTTPClient is the configured client used for remote API calls.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

// APIRequest makes an authenticated request against a running gateway.
func APIRequest(method, endpoint string, body interface{}) (*http.Response, error) {
	if apiURL == "" || apiKey == "" {
		return nil, fmt.Errorf("api-url and api-key are required for remote operations")
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, apiURL+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	if verbose {
		fmt.Printf("%s %s\n", method, apiURL+endpoint)
	}

	return HTTPClient.Do(req)
}

// AdminAPIRequest makes a bearer-token-authenticated request against a
// running gateway's admin routes.
func AdminAPIRequest(method, endpoint string, body interface{}) (*http.Response, error) {
	if apiURL == "" || adminToken == "" {
		return nil, fmt.Errorf("api-url and admin-token are required for remote admin operations")
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, apiURL+endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Header.Set("Content-Type", "application/json")

	if verbose {
		fmt.Printf("%s %s\n", method, apiURL+endpoint)
	}

	return HTTPClient.Do(req)
}

// IsDirectAccess reports whether a local budget manager is wired.
func IsDirectAccess() bool { return budgetManager != nil }

// IsAPIAccess reports whether remote API credentials are configured.
func IsAPIAccess() bool { return apiURL != "" && apiKey != "" }

// IsAdminDirectAccess reports whether a local admin token issuer is wired.
func IsAdminDirectAccess() bool { return adminIssuer != nil }

// IsAdminAPIAccess reports whether remote admin bearer credentials are configured.
func IsAdminAPIAccess() bool { return apiURL != "" && adminToken != "" }

// OutputJSON prints data as indented JSON.
func OutputJSON(data interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding JSON: %v\n", err)
	}
}

// OutputTable prints data as a tab-aligned table, or JSON if requested.
func OutputTable(headers []string, rows [][]string) {
	if outputJSON {
		var jsonRows []map[string]string
		for _, row := range rows {
			jsonRow := make(map[string]string)
			for i, cell := range row {
				if i < len(headers) {
					jsonRow[headers[i]] = cell
				}
			}
			jsonRows = append(jsonRows, jsonRow)
		}
		OutputJSON(jsonRows)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			_, _ = fmt.Fprint(w, "\t")
		}
		_, _ = fmt.Fprint(w, h)
	}
	_, _ = fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				_, _ = fmt.Fprint(w, "\t")
			}
			_, _ = fmt.Fprint(w, cell)
		}
		_, _ = fmt.Fprintln(w)
	}
	_ = w.Flush()
}
