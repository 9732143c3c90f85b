package tally

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bmehta/tally-bridge/internal/domain/statement/voucher"
)

// ImportResult records the outcome of one voucher within a batch.
type ImportResult struct {
	Index         int    `json:"index"`
	VoucherNumber string `json:"voucherNumber"`
	Narration     string `json:"narration"`
	Status        string `json:"status"`
}

// ImportError records a voucher the target system rejected.
type ImportError struct {
	Index         int    `json:"index"`
	VoucherNumber string `json:"voucherNumber"`
	Narration     string `json:"narration"`
	Error         string `json:"error"`
}

// ImportReport summarizes a batch import.
type ImportReport struct {
	BatchID     string         `json:"batchId"`
	Total       int            `json:"total"`
	Successful  int            `json:"successful"`
	Failed      int            `json:"failed"`
	SuccessRate string         `json:"successRate"`
	Results     []ImportResult `json:"results"`
	Errors      []ImportError  `json:"errors"`
}

// ImportVouchers submits a batch sequentially. A rejected voucher does not
// abort the batch; it is recorded and the import moves on. Only a context
// cancellation stops the loop early.
func (c *Client) ImportVouchers(ctx context.Context, vouchers []voucher.Voucher) (*ImportReport, error) {
	report := &ImportReport{
		BatchID: uuid.NewString(),
		Total:   len(vouchers),
		Results: []ImportResult{},
		Errors:  []ImportError{},
	}

	for i, v := range vouchers {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := c.CreateVoucher(ctx, v); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, ImportError{
				Index:         i,
				VoucherNumber: v.VoucherNumber,
				Narration:     v.Narration,
				Error:         err.Error(),
			})
			c.logger.Warn("voucher import failed",
				slog.String("batch_id", report.BatchID),
				slog.Int("index", i),
				slog.String("voucher_number", v.VoucherNumber),
				slog.Any("error", err))
			continue
		}
		report.Successful++
		report.Results = append(report.Results, ImportResult{
			Index:         i,
			VoucherNumber: v.VoucherNumber,
			Narration:     v.Narration,
			Status:        "created",
		})
	}

	report.SuccessRate = successRate(report.Successful, report.Total)
	c.logger.Info("voucher batch imported",
		slog.String("batch_id", report.BatchID),
		slog.Int("total", report.Total),
		slog.Int("successful", report.Successful),
		slog.Int("failed", report.Failed))
	return report, nil
}

func successRate(successful, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(successful)/float64(total)*100)
}
