// Package handler exposes ledger transfer operations over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bmehta/tally-bridge/internal/domain/transfer"
	"github.com/bmehta/tally-bridge/internal/tally"
	"github.com/bmehta/tally-bridge/pkg/api"
)

// Handler serves the ledger transfer endpoints.
type Handler struct {
	svc    *transfer.Service
	logger *slog.Logger
}

func New(svc *transfer.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the transfer routes on the router.
func (h *Handler) Register(r *mux.Router) {
	sub := r.PathPrefix("/api/ledger-transfer").Subrouter()
	sub.HandleFunc("/create-transfer-entry", h.CreateEntry).Methods(http.MethodPost)
	sub.HandleFunc("/bulk-transfer", h.Bulk).Methods(http.MethodPost)
	sub.HandleFunc("/entries", h.Entries).Methods(http.MethodPost)
	sub.HandleFunc("/transfer-entries", h.MoveEntries).Methods(http.MethodPost)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

// CreateEntry creates one journal voucher moving an amount between ledgers.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req transfer.Request
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}

	v, err := h.svc.CreateEntry(r.Context(), req)
	if err != nil {
		api.Error(w, transferStatus(err), err)
		return
	}
	api.SuccessMessage(w, "Transfer entry created successfully", v)
}

type bulkRequest struct {
	CompanyName string              `json:"companyName"`
	Transfers   []transfer.BulkItem `json:"transfers"`
}

// Bulk creates journal vouchers for a batch of transfers.
func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}

	report, err := h.svc.Bulk(r.Context(), req.CompanyName, req.Transfers)
	if err != nil {
		api.Error(w, transferStatus(err), err)
		return
	}
	api.Success(w, report)
}

type entriesRequest struct {
	CompanyName string `json:"companyName"`
	LedgerName  string `json:"ledgerName"`
	FromDate    string `json:"fromDate"`
	ToDate      string `json:"toDate"`
}

// Entries lists the vouchers involving a ledger within a date range.
func (h *Handler) Entries(w http.ResponseWriter, r *http.Request) {
	var req entriesRequest
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.svc.Entries(r.Context(), req.CompanyName, req.LedgerName, req.FromDate, req.ToDate)
	if err != nil {
		api.Error(w, transferStatus(err), err)
		return
	}
	api.Success(w, result)
}

type moveEntriesRequest struct {
	CompanyName     string                `json:"companyName"`
	FromLedger      string                `json:"fromLedger"`
	ToLedger        string                `json:"toLedger"`
	SelectedEntries []tally.LedgerVoucher `json:"selectedEntries"`
}

// MoveEntries re-points the selected vouchers from one ledger to another.
func (h *Handler) MoveEntries(w http.ResponseWriter, r *http.Request) {
	var req moveEntriesRequest
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}

	report, err := h.svc.MoveEntries(r.Context(), req.CompanyName, req.FromLedger, req.ToLedger, req.SelectedEntries)
	if err != nil {
		api.Error(w, transferStatus(err), err)
		return
	}
	api.Success(w, report)
}

func transferStatus(err error) int {
	var verr *transfer.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
