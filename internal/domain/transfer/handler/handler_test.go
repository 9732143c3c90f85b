package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmehta/tally-bridge/internal/domain/statement/voucher"
	"github.com/bmehta/tally-bridge/internal/domain/transfer"
	"github.com/bmehta/tally-bridge/internal/tally"
)

type stubLedgerClient struct {
	created []voucher.Voucher
	entries []tally.LedgerVoucher
}

func (s *stubLedgerClient) CreateVoucher(ctx context.Context, v voucher.Voucher) error {
	s.created = append(s.created, v)
	return nil
}

func (s *stubLedgerClient) AlterVoucher(ctx context.Context, companyName string, v voucher.Voucher) error {
	return nil
}

func (s *stubLedgerClient) LedgerEntries(ctx context.Context, companyName, ledgerName, fromDate, toDate string) ([]tally.LedgerVoucher, error) {
	return s.entries, nil
}

func newTestRouter(client transfer.LedgerClient) *mux.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(transfer.NewService(client, logger), logger)
	router := mux.NewRouter()
	h.Register(router)
	return router
}

func postJSON(t *testing.T, router *mux.Router, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateEntryEndpoint(t *testing.T) {
	t.Run("creates a journal entry", func(t *testing.T) {
		client := &stubLedgerClient{}
		router := newTestRouter(client)

		rec := postJSON(t, router, "/api/ledger-transfer/create-transfer-entry", map[string]any{
			"companyName": "Test Co",
			"fromLedger":  "Suspense Account",
			"toLedger":    "Fuel",
			"amount":      "500",
			"date":        "20240305",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, client.created, 1)
		assert.Equal(t, voucher.TypeJournal, client.created[0].VoucherType)

		var resp struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Transfer entry created successfully", resp.Message)
	})

	t.Run("same ledger is a bad request", func(t *testing.T) {
		router := newTestRouter(&stubLedgerClient{})

		rec := postJSON(t, router, "/api/ledger-transfer/create-transfer-entry", map[string]any{
			"companyName": "Test Co",
			"fromLedger":  "A",
			"toLedger":    "A",
			"amount":      "500",
			"date":        "20240305",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non positive amount is a bad request", func(t *testing.T) {
		router := newTestRouter(&stubLedgerClient{})

		rec := postJSON(t, router, "/api/ledger-transfer/create-transfer-entry", map[string]any{
			"companyName": "Test Co",
			"fromLedger":  "A",
			"toLedger":    "B",
			"amount":      "0",
			"date":        "20240305",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing date is a bad request", func(t *testing.T) {
		router := newTestRouter(&stubLedgerClient{})

		rec := postJSON(t, router, "/api/ledger-transfer/create-transfer-entry", map[string]any{
			"companyName": "Test Co",
			"fromLedger":  "A",
			"toLedger":    "B",
			"amount":      "500",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(&stubLedgerClient{})

		req := httptest.NewRequest(http.MethodPost, "/api/ledger-transfer/create-transfer-entry", bytes.NewReader([]byte("{")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBulkEndpoint(t *testing.T) {
	client := &stubLedgerClient{}
	router := newTestRouter(client)

	empty := postJSON(t, router, "/api/ledger-transfer/bulk-transfer", map[string]any{
		"companyName": "Test Co",
	})
	assert.Equal(t, http.StatusBadRequest, empty.Code)

	rec := postJSON(t, router, "/api/ledger-transfer/bulk-transfer", map[string]any{
		"companyName": "Test Co",
		"transfers": []map[string]any{
			{"fromLedger": "A", "toLedger": "B", "amount": "10", "date": "20240305"},
			{"fromLedger": "A", "toLedger": "B", "amount": "20", "date": "20240306"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, client.created, 2)

	var resp struct {
		Data transfer.BulkReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Summary.Successful)
	assert.Equal(t, "100.00%", resp.Data.Summary.SuccessRate)
}

func TestEntriesEndpoint(t *testing.T) {
	client := &stubLedgerClient{entries: []tally.LedgerVoucher{
		{MasterID: "77", VoucherNumber: "7", Narration: "NEFT-JOHN"},
	}}
	router := newTestRouter(client)

	rec := postJSON(t, router, "/api/ledger-transfer/entries", map[string]any{
		"companyName": "Test Co",
		"ledgerName":  "Suspense Account",
		"fromDate":    "20240101",
		"toDate":      "20241231",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data transfer.EntriesResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "Suspense Account", resp.Data.LedgerName)
}

func TestMoveEntriesEndpoint(t *testing.T) {
	router := newTestRouter(&stubLedgerClient{})

	rec := postJSON(t, router, "/api/ledger-transfer/transfer-entries", map[string]any{
		"companyName": "Test Co",
		"fromLedger":  "Suspense Account",
		"toLedger":    "Fuel",
		"selectedEntries": []map[string]any{
			{
				"masterID":      "77",
				"guid":          "g-77",
				"date":          "20240305",
				"voucherType":   "Payment",
				"voucherNumber": "7",
				"narration":     "NEFT-JOHN",
				"allLedgerEntries": []map[string]any{
					{"ledgerName": "Suspense Account", "amount": "-1500.50", "isDeemedPositive": "No"},
					{"ledgerName": "Bank Account", "amount": "1500.50", "isDeemedPositive": "Yes"},
				},
			},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data transfer.MoveReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Summary.Successful)
	assert.Equal(t, "Fuel", resp.Data.ToLedger)
}
