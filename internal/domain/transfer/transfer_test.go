package transfer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmehta/tally-bridge/internal/domain/statement/voucher"
	"github.com/bmehta/tally-bridge/internal/tally"
)

// mockLedgerClient records calls and fails on demand.
type mockLedgerClient struct {
	created  []voucher.Voucher
	altered  []voucher.Voucher
	entries  []tally.LedgerVoucher
	failWhen func(v voucher.Voucher) error
}

func (m *mockLedgerClient) CreateVoucher(ctx context.Context, v voucher.Voucher) error {
	if m.failWhen != nil {
		if err := m.failWhen(v); err != nil {
			return err
		}
	}
	m.created = append(m.created, v)
	return nil
}

func (m *mockLedgerClient) AlterVoucher(ctx context.Context, companyName string, v voucher.Voucher) error {
	if m.failWhen != nil {
		if err := m.failWhen(v); err != nil {
			return err
		}
	}
	m.altered = append(m.altered, v)
	return nil
}

func (m *mockLedgerClient) LedgerEntries(ctx context.Context, companyName, ledgerName, fromDate, toDate string) ([]tally.LedgerVoucher, error) {
	return m.entries, nil
}

func newTestService(client LedgerClient) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(client, logger)
	svc.now = func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateEntry(t *testing.T) {
	t.Run("builds a balanced journal voucher", func(t *testing.T) {
		mock := &mockLedgerClient{}
		svc := newTestService(mock)

		v, err := svc.CreateEntry(context.Background(), Request{
			CompanyName: "Test Co",
			FromLedger:  "Suspense Account",
			ToLedger:    "Fuel",
			Amount:      decimal.NewFromInt(500),
			Date:        "20240305",
		})
		require.NoError(t, err)
		require.Len(t, mock.created, 1)

		assert.Equal(t, voucher.TypeJournal, v.VoucherType)
		assert.Equal(t, "Transfer from Suspense Account to Fuel", v.Narration)
		require.Len(t, v.LedgerEntries, 2)
		// Receiving ledger is debited, source ledger credited.
		assert.Equal(t, "Fuel", v.LedgerEntries[0].LedgerName)
		assert.Equal(t, voucher.DebitLeg, v.LedgerEntries[0].IsDeemedPositive)
		assert.Equal(t, "Suspense Account", v.LedgerEntries[1].LedgerName)
		assert.Equal(t, voucher.CreditLeg, v.LedgerEntries[1].IsDeemedPositive)
		assert.True(t, v.LedgerEntries[0].Amount.Equal(v.LedgerEntries[1].Amount))
	})

	t.Run("custom narration is kept", func(t *testing.T) {
		mock := &mockLedgerClient{}
		svc := newTestService(mock)

		v, err := svc.CreateEntry(context.Background(), Request{
			CompanyName: "Test Co",
			FromLedger:  "A",
			ToLedger:    "B",
			Amount:      decimal.NewFromInt(1),
			Date:        "20240305",
			Narration:   "month end adjustment",
		})
		require.NoError(t, err)
		assert.Equal(t, "month end adjustment", v.Narration)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestService(&mockLedgerClient{})

		_, err := svc.CreateEntry(context.Background(), Request{
			CompanyName: "Test Co", FromLedger: "A", ToLedger: "A",
			Amount: decimal.NewFromInt(1), Date: "20240305",
		})
		assert.ErrorIs(t, err, ErrSameLedger)

		_, err = svc.CreateEntry(context.Background(), Request{FromLedger: "A", ToLedger: "B"})
		assert.ErrorIs(t, err, ErrMissingFields)

		// Every validation failure carries ValidationError so the HTTP
		// layer answers 400.
		var verr *ValidationError
		_, err = svc.CreateEntry(context.Background(), Request{
			CompanyName: "Test Co", FromLedger: "A", ToLedger: "B",
			Amount: decimal.NewFromInt(-5), Date: "20240305",
		})
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "amount must be positive", verr.Reason)

		_, err = svc.CreateEntry(context.Background(), Request{
			CompanyName: "Test Co", FromLedger: "A", ToLedger: "B",
			Amount: decimal.NewFromInt(5),
		})
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "date is required", verr.Reason)
	})
}

func TestBulk(t *testing.T) {
	mock := &mockLedgerClient{failWhen: func(v voucher.Voucher) error {
		if v.Narration == "boom" {
			return errors.New("rejected")
		}
		return nil
	}}
	svc := newTestService(mock)

	items := []BulkItem{
		{FromLedger: "A", ToLedger: "B", Amount: decimal.NewFromInt(10), Date: "20240305"},
		{FromLedger: "A", ToLedger: "B", Amount: decimal.NewFromInt(20), Date: "20240305", Narration: "boom"},
		{FromLedger: "A", ToLedger: "B", Amount: decimal.NewFromInt(30), Date: "20240305"},
	}

	_, err := svc.Bulk(context.Background(), "Test Co", nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	report, err := svc.Bulk(context.Background(), "Test Co", items)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Successful)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, "66.67%", report.Summary.SuccessRate)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Index)
	assert.Len(t, mock.created, 2)
}

func TestEntriesDefaultsToCurrentYear(t *testing.T) {
	mock := &mockLedgerClient{entries: []tally.LedgerVoucher{{MasterID: "1"}}}
	svc := newTestService(mock)

	result, err := svc.Entries(context.Background(), "Test Co", "Suspense Account", "", "")
	require.NoError(t, err)
	assert.Equal(t, "20240101", result.FromDate)
	assert.Equal(t, "20241231", result.ToDate)
	assert.Equal(t, 1, result.Count)
}

func TestMoveEntries(t *testing.T) {
	amount := decimal.NewFromFloat(1500.50)
	selected := []tally.LedgerVoucher{{
		MasterID:      "77",
		GUID:          "g-77",
		Date:          "20240305",
		VoucherType:   voucher.TypePayment,
		VoucherNumber: "7",
		Narration:     "NEFT-JOHN",
		AllLedgerEntries: []tally.Entry{
			{LedgerName: "suspense account", Amount: amount.Neg(), IsDeemedPositive: voucher.DebitLeg},
			{LedgerName: "Bank Account", Amount: amount, IsDeemedPositive: voucher.CreditLeg},
		},
	}}

	t.Run("re-points matching legs case-insensitively", func(t *testing.T) {
		mock := &mockLedgerClient{}
		svc := newTestService(mock)

		report, err := svc.MoveEntries(context.Background(), "Test Co", "Suspense Account", "Fuel", selected)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Summary.Successful)

		require.Len(t, mock.altered, 1)
		altered := mock.altered[0]
		assert.Equal(t, "77", altered.MasterID)
		assert.Equal(t, "g-77", altered.GUID)
		require.Len(t, altered.LedgerEntries, 2)
		assert.Equal(t, "Fuel", altered.LedgerEntries[0].LedgerName)
		// The untouched leg keeps its name, amount and sign.
		assert.Equal(t, "Bank Account", altered.LedgerEntries[1].LedgerName)
		assert.True(t, altered.LedgerEntries[1].Amount.Equal(amount))
		assert.Equal(t, voucher.CreditLeg, altered.LedgerEntries[1].IsDeemedPositive)
	})

	t.Run("same ledger rejected", func(t *testing.T) {
		svc := newTestService(&mockLedgerClient{})
		_, err := svc.MoveEntries(context.Background(), "Test Co", "A", "A", selected)
		assert.ErrorIs(t, err, ErrSameLedger)
	})

	t.Run("per voucher failures are isolated", func(t *testing.T) {
		mock := &mockLedgerClient{failWhen: func(v voucher.Voucher) error {
			return errors.New("rejected")
		}}
		svc := newTestService(mock)

		report, err := svc.MoveEntries(context.Background(), "Test Co", "Suspense Account", "Fuel", selected)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Summary.Successful)
		assert.Equal(t, 1, report.Summary.Failed)
	})
}
