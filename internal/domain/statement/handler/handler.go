// Package handler exposes the bank statement pipeline over HTTP.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
	"github.com/bmehta/tally-bridge/internal/domain/statement/service"
	"github.com/bmehta/tally-bridge/internal/domain/statement/voucher"
	"github.com/bmehta/tally-bridge/internal/tally"
	"github.com/bmehta/tally-bridge/pkg/api"
)

// maxUploadSize caps statement uploads at 10MB.
const maxUploadSize = 10 << 20

const uploadField = "bankStatement"

var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".json": true,
	".pdf":  true,
}

// VoucherImporter submits voucher batches to the ledger system.
type VoucherImporter interface {
	ImportVouchers(ctx context.Context, vouchers []voucher.Voucher) (*tally.ImportReport, error)
}

// Handler serves the bank statement endpoints.
type Handler struct {
	svc      *service.Service
	importer VoucherImporter
	logger   *slog.Logger
}

func New(svc *service.Service, importer VoucherImporter, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, importer: importer, logger: logger}
}

// Register mounts the statement routes on the router.
func (h *Handler) Register(r *mux.Router) {
	sub := r.PathPrefix("/api/bank-statement").Subrouter()
	sub.HandleFunc("/upload", h.Upload).Methods(http.MethodPost)
	sub.HandleFunc("/preview", h.Preview).Methods(http.MethodPost)
	sub.HandleFunc("/import", h.Import).Methods(http.MethodPost)
	sub.HandleFunc("/supported-banks", h.SupportedBanks).Methods(http.MethodGet)
}

type uploadedFile struct {
	name string
	size int64
	ext  string
	data []byte
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*uploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, fmt.Errorf("file too large or malformed upload: %w", err)
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, errors.New("no file uploaded")
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, errors.New("invalid file type, only CSV, Excel, JSON and PDF files are allowed")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return &uploadedFile{
		name: header.Filename,
		size: header.Size,
		ext:  strings.TrimPrefix(ext, "."),
		data: data,
	}, nil
}

func formValue(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

// Upload parses a statement and returns the canonical transactions.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	upload, err := h.readUpload(w, r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return
	}
	bankType := formValue(r, "bankType", "generic")

	result, err := h.svc.ParseFile(r.Context(), upload.data, upload.ext, bankType)
	if err != nil {
		api.Error(w, parseStatus(err), err)
		return
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, t := range result.Transactions {
		totalDebit = totalDebit.Add(t.Debit)
		totalCredit = totalCredit.Add(t.Credit)
	}

	var from, to string
	if n := len(result.Transactions); n > 0 {
		from = result.Transactions[0].Date
		to = result.Transactions[n-1].Date
	}

	api.Success(w, map[string]any{
		"fileName":         upload.name,
		"fileSize":         upload.size,
		"transactionCount": len(result.Transactions),
		"transactions":     result.Transactions,
		"ocrUsed":          result.OCRUsed,
		"summary": map[string]any{
			"totalDebit":  totalDebit,
			"totalCredit": totalCredit,
			"dateRange":   map[string]string{"from": from, "to": to},
		},
	})
}

// conversionParams are the voucher options shared by preview and import.
type conversionParams struct {
	companyName    string
	bankLedger     string
	expenseLedger  string
	incomeLedger   string
	suspenseLedger string
	autoCategorize bool
}

func readConversionParams(r *http.Request) (conversionParams, error) {
	p := conversionParams{
		companyName:    r.FormValue("companyName"),
		bankLedger:     formValue(r, "bankLedgerName", voucher.DefaultBankLedger),
		expenseLedger:  formValue(r, "defaultExpenseLedger", voucher.DefaultExpenseLedger),
		incomeLedger:   formValue(r, "defaultIncomeLedger", voucher.DefaultIncomeLedger),
		suspenseLedger: formValue(r, "suspenseLedger", voucher.DefaultSuspenseLedger),
		autoCategorize: formValue(r, "autoCategorize", "true") == "true",
	}
	if p.companyName == "" {
		return p, errors.New("company name is required")
	}
	return p, nil
}

func (h *Handler) parseAndConvert(w http.ResponseWriter, r *http.Request) (*uploadedFile, *service.ParseResult, []voucher.Voucher, bool) {
	upload, err := h.readUpload(w, r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return nil, nil, nil, false
	}
	params, err := readConversionParams(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err)
		return nil, nil, nil, false
	}
	bankType := formValue(r, "bankType", "generic")

	result, err := h.svc.ParseFile(r.Context(), upload.data, upload.ext, bankType)
	if err != nil {
		api.Error(w, parseStatus(err), err)
		return nil, nil, nil, false
	}

	var vouchers []voucher.Voucher
	if result.PDFSource {
		// Low confidence rows go to a suspense ledger for manual review.
		vouchers = voucher.ConvertToSuspenseVouchers(result.Transactions, voucher.SuspenseOptions{
			CompanyName:    params.companyName,
			BankLedgerName: params.bankLedger,
			SuspenseLedger: params.suspenseLedger,
		})
	} else {
		vouchers = voucher.ConvertToVouchers(result.Transactions, voucher.Options{
			CompanyName:          params.companyName,
			BankLedgerName:       params.bankLedger,
			DefaultExpenseLedger: params.expenseLedger,
			DefaultIncomeLedger:  params.incomeLedger,
			AutoCategorize:       params.autoCategorize,
		})
	}
	return upload, result, vouchers, true
}

// Preview converts a statement to vouchers without importing them.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	upload, result, vouchers, ok := h.parseAndConvert(w, r)
	if !ok {
		return
	}

	payments, receipts := 0, 0
	totalAmount := decimal.Zero
	for _, v := range vouchers {
		switch v.VoucherType {
		case voucher.TypePayment:
			payments++
		case voucher.TypeReceipt:
			receipts++
		}
		if len(v.LedgerEntries) > 0 {
			totalAmount = totalAmount.Add(v.LedgerEntries[0].Amount)
		}
	}

	api.Success(w, map[string]any{
		"fileName":         upload.name,
		"transactionCount": len(result.Transactions),
		"voucherCount":     len(vouchers),
		"vouchers":         vouchers,
		"summary": map[string]any{
			"payments":    payments,
			"receipts":    receipts,
			"totalAmount": totalAmount,
		},
	})
}

// Import converts a statement to vouchers and submits them to the ledger
// system, reporting per-voucher outcomes.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	upload, result, vouchers, ok := h.parseAndConvert(w, r)
	if !ok {
		return
	}

	report, err := h.importer.ImportVouchers(r.Context(), vouchers)
	if err != nil {
		api.Error(w, http.StatusInternalServerError, err)
		return
	}

	api.Success(w, map[string]any{
		"fileName":          upload.name,
		"totalTransactions": len(result.Transactions),
		"results":           report.Results,
		"errors":            report.Errors,
		"summary": map[string]any{
			"total":       report.Total,
			"successful":  report.Successful,
			"failed":      report.Failed,
			"successRate": report.SuccessRate,
		},
	})
}

// SupportedBanks lists the known bank formats and upload limits.
func (h *Handler) SupportedBanks(w http.ResponseWriter, r *http.Request) {
	api.Success(w, map[string]any{
		"banks":       h.svc.SupportedBanks(),
		"fileFormats": []string{"CSV", "Excel (.xlsx, .xls)", "JSON", "PDF"},
		"maxFileSize": "10MB",
	})
}

func parseStatus(err error) int {
	switch {
	case errors.Is(err, statement.ErrUnsupportedFormat),
		errors.Is(err, statement.ErrNoTransactionsFound),
		errors.Is(err, statement.ErrDecodeFailed):
		return http.StatusBadRequest
	case errors.Is(err, statement.ErrOCRInsufficientText):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
