package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmehta/tally-bridge/internal/tally"
)

// newTestRouter wires the handler against a stub ledger server that answers
// every request with the given XML.
func newTestRouter(t *testing.T, responseXML string) *mux.Router {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(responseXML))
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := tally.NewClient(u.Hostname(), port, logger)

	router := mux.NewRouter()
	New(client, logger).Register(router)
	return router
}

func TestTestConnectionEndpoint(t *testing.T) {
	router := newTestRouter(t, "<ENVELOPE></ENVELOPE>")

	req := httptest.NewRequest(http.MethodGet, "/api/tally/test-connection", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestCompaniesEndpoint(t *testing.T) {
	router := newTestRouter(t, `<ENVELOPE><BODY><DATA><COLLECTION>
		<COMPANY><NAME>Alpha Traders</NAME></COMPANY>
	</COLLECTION></DATA></BODY></ENVELOPE>`)

	req := httptest.NewRequest(http.MethodGet, "/api/tally/companies", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Alpha Traders"}, resp.Data)
}

func TestLedgersEndpointValidation(t *testing.T) {
	router := newTestRouter(t, "<ENVELOPE></ENVELOPE>")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tally/ledgers", bytes.NewReader([]byte(`{}`)))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "company name is required")
}

func TestCreateVoucherEndpointValidation(t *testing.T) {
	router := newTestRouter(t, "<ENVELOPE></ENVELOPE>")

	payload := map[string]any{
		"voucherType": "Payment",
		"date":        "20240305",
		"companyName": "Test Co",
		"ledgerEntries": []map[string]any{
			{"ledgerName": "Only One Leg", "amount": "10", "isDeemedPositive": "No"},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tally/create-voucher", bytes.NewReader(body))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 2 ledger entries")
}

func TestBulkVouchersEndpoint(t *testing.T) {
	router := newTestRouter(t, "<ENVELOPE></ENVELOPE>")

	payload := map[string]any{
		"vouchers": []map[string]any{
			{
				"voucherType": "Payment",
				"date":        "20240305",
				"companyName": "Test Co",
				"ledgerEntries": []map[string]any{
					{"ledgerName": "Fuel", "amount": "10", "isDeemedPositive": "No"},
					{"ledgerName": "Bank Account", "amount": "10", "isDeemedPositive": "Yes"},
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tally/bulk-vouchers", bytes.NewReader(body))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data tally.ImportReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Successful)
	assert.Equal(t, "100.00%", resp.Data.SuccessRate)
}
