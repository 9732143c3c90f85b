// Package handler exposes the ledger system connection over HTTP: connection
// checks, company and ledger lookups, and raw voucher submission.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/bmehta/tally-bridge/internal/domain/statement/voucher"
	"github.com/bmehta/tally-bridge/internal/tally"
	"github.com/bmehta/tally-bridge/pkg/api"
)

// Handler serves the ledger system endpoints.
type Handler struct {
	client *tally.Client
	logger *slog.Logger
}

func New(client *tally.Client, logger *slog.Logger) *Handler {
	return &Handler{client: client, logger: logger}
}

// Register mounts the routes on the router.
func (h *Handler) Register(r *mux.Router) {
	sub := r.PathPrefix("/api/tally").Subrouter()
	sub.HandleFunc("/test-connection", h.TestConnection).Methods(http.MethodGet)
	sub.HandleFunc("/companies", h.Companies).Methods(http.MethodGet)
	sub.HandleFunc("/ledgers", h.Ledgers).Methods(http.MethodPost)
	sub.HandleFunc("/create-ledger", h.CreateLedger).Methods(http.MethodPost)
	sub.HandleFunc("/create-voucher", h.CreateVoucher).Methods(http.MethodPost)
	sub.HandleFunc("/vouchers", h.Vouchers).Methods(http.MethodPost)
	sub.HandleFunc("/bulk-vouchers", h.BulkVouchers).Methods(http.MethodPost)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

// TestConnection checks the ledger system is reachable.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.client.TestConnection(r.Context()); err != nil {
		api.Error(w, http.StatusInternalServerError, err)
		return
	}
	api.SuccessMessage(w, "Tally connection successful", nil)
}

// Companies lists the companies loaded in the ledger system.
func (h *Handler) Companies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.client.Companies(r.Context())
	if err != nil {
		api.Error(w, http.StatusInternalServerError, err)
		return
	}
	api.Success(w, companies)
}

// Ledgers lists the ledgers of a company.
func (h *Handler) Ledgers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyName string `json:"companyName"`
	}
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}
	if req.CompanyName == "" {
		api.Error(w, http.StatusBadRequest, errors.New("company name is required"))
		return
	}

	ledgers, err := h.client.Ledgers(r.Context(), req.CompanyName)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, err)
		return
	}
	api.Success(w, ledgers)
}

type createLedgerRequest struct {
	Name           string          `json:"name"`
	Parent         string          `json:"parent"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CompanyName    string          `json:"companyName"`
}

// CreateLedger creates a ledger under a parent group.
func (h *Handler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	var req createLedgerRequest
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" || req.Parent == "" || req.CompanyName == "" {
		api.Error(w, http.StatusBadRequest, errors.New("name, parent, and company name are required"))
		return
	}

	err := h.client.CreateLedger(r.Context(), tally.LedgerSpec{
		Name:           req.Name,
		Parent:         req.Parent,
		OpeningBalance: req.OpeningBalance,
		CompanyName:    req.CompanyName,
	})
	if err != nil {
		api.Error(w, http.StatusInternalServerError, err)
		return
	}
	api.SuccessMessage(w, "Ledger created successfully", nil)
}

// CreateVoucher submits one voucher directly.
func (h *Handler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var v voucher.Voucher
	if err := decodeBody(r, &v); err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}
	if v.VoucherType == "" || v.Date == "" || v.CompanyName == "" || len(v.LedgerEntries) == 0 {
		api.Error(w, http.StatusBadRequest, errors.New("voucher type, date, ledger entries, and company name are required"))
		return
	}
	if len(v.LedgerEntries) < 2 {
		api.Error(w, http.StatusBadRequest, errors.New("at least 2 ledger entries are required for a voucher"))
		return
	}

	if err := h.client.CreateVoucher(r.Context(), v); err != nil {
		api.Error(w, http.StatusInternalServerError, err)
		return
	}
	api.SuccessMessage(w, "Voucher created successfully", v)
}

type vouchersRequest struct {
	CompanyName string `json:"companyName"`
	FromDate    string `json:"fromDate"`
	ToDate      string `json:"toDate"`
}

// Vouchers fetches the vouchers of a company in a date range.
func (h *Handler) Vouchers(w http.ResponseWriter, r *http.Request) {
	var req vouchersRequest
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}
	if req.CompanyName == "" || req.FromDate == "" || req.ToDate == "" {
		api.Error(w, http.StatusBadRequest, errors.New("company name, from date, and to date are required"))
		return
	}

	vouchers, err := h.client.Vouchers(r.Context(), req.CompanyName, req.FromDate, req.ToDate)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, err)
		return
	}
	api.Success(w, vouchers)
}

// BulkVouchers submits a voucher batch with per-voucher error isolation.
func (h *Handler) BulkVouchers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vouchers []voucher.Voucher `json:"vouchers"`
	}
	if err := decodeBody(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Vouchers) == 0 {
		api.Error(w, http.StatusBadRequest, errors.New("vouchers array is required"))
		return
	}

	report, err := h.client.ImportVouchers(r.Context(), req.Vouchers)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, err)
		return
	}
	api.Success(w, report)
}
