package normalizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmehta/tally-bridge/internal/domain/statement"
)

func TestNormalizeHDFC(t *testing.T) {
	records := []statement.RawRecord{
		{
			"Date":            "05/03/2024",
			"Narration":       "NEFT-JOHN DOE",
			"Withdrawal Amt.": 1500.50,
			"Deposit Amt.":    nil,
			"Balance":         10000.00,
			"Chq./Ref.No.":    "N123",
		},
		{
			"Date":         "06/03/2024",
			"Narration":    "SALARY CREDIT",
			"Deposit Amt.": 50000.0,
			"Balance":      60000.50,
		},
	}

	txns := Normalize(records, "hdfc")
	require.Len(t, txns, 2)

	debit := txns[0]
	assert.Equal(t, "20240305", debit.Date)
	assert.Equal(t, "NEFT-JOHN DOE", debit.Description)
	assert.True(t, debit.Debit.Equal(decimal.NewFromFloat(1500.50)))
	assert.True(t, debit.Credit.IsZero())
	assert.True(t, debit.Amount.Equal(decimal.NewFromFloat(1500.50)))
	assert.Equal(t, statement.TypePayment, debit.TransactionType)
	assert.Equal(t, "N123", debit.ChequeNo)
	assert.True(t, debit.IsPayment())

	credit := txns[1]
	assert.Equal(t, statement.TypeReceipt, credit.TransactionType)
	assert.True(t, credit.Credit.Equal(decimal.NewFromInt(50000)))
	assert.False(t, credit.IsPayment())
}

func TestNormalizeICICI(t *testing.T) {
	records := []statement.RawRecord{
		{
			"Transaction Date":        "10/01/2024",
			"Transaction Remarks":     "UPI PAYMENT",
			"Withdrawal Amount (INR )": "2,500.00",
			"Deposit Amount (INR )":    "",
			"Balance (INR )":           "7,500.00",
		},
	}

	txns := Normalize(records, "icici")
	require.Len(t, txns, 1)
	assert.Equal(t, "20240110", txns[0].Date)
	assert.True(t, txns[0].Debit.Equal(decimal.NewFromInt(2500)))
	assert.True(t, txns[0].Balance.Equal(decimal.NewFromInt(7500)))
}

func TestNormalizeAxis(t *testing.T) {
	records := []statement.RawRecord{
		{
			"Tran Date":   "15/02/2024",
			"Particulars": "CHQ DEPOSIT",
			"Cr Amount":   1200.0,
			"Chq No":      "000341",
		},
	}

	txns := Normalize(records, "AXIS")
	require.Len(t, txns, 1)
	assert.Equal(t, statement.TypeReceipt, txns[0].TransactionType)
	assert.Equal(t, "000341", txns[0].ChequeNo)
}

func TestNormalizeDropsUnusableRows(t *testing.T) {
	t.Run("zero amounts", func(t *testing.T) {
		records := []statement.RawRecord{
			{"Date": "05/03/2024", "Narration": "opening balance", "Balance": 100.0},
		}
		assert.Empty(t, Normalize(records, "hdfc"))
	})

	t.Run("unparseable date", func(t *testing.T) {
		records := []statement.RawRecord{
			{"Date": "not a date", "Narration": "x", "Withdrawal Amt.": 10.0},
		}
		assert.Empty(t, Normalize(records, "hdfc"))
	})

	t.Run("missing date column", func(t *testing.T) {
		records := []statement.RawRecord{
			{"Narration": "x", "Withdrawal Amt.": 10.0},
		}
		assert.Empty(t, Normalize(records, "hdfc"))
	})
}

func TestNormalizeGeneric(t *testing.T) {
	t.Run("standard columns", func(t *testing.T) {
		records := []statement.RawRecord{
			{
				"Transaction Date": "12/04/2024",
				"Description":      "ATM WITHDRAWAL",
				"Debit":            500.0,
				"Credit":           0.0,
				"Balance":          4500.0,
			},
		}

		txns := Normalize(records, "generic")
		require.Len(t, txns, 1)
		assert.Equal(t, "20240412", txns[0].Date)
		assert.Equal(t, "ATM WITHDRAWAL", txns[0].Description)
		assert.True(t, txns[0].Debit.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, statement.TypePayment, txns[0].TransactionType)
	})

	t.Run("alternate column names", func(t *testing.T) {
		records := []statement.RawRecord{
			{
				"Txn Date":   "01/06/2024",
				"Particulars": "INTEREST CREDIT",
				"Deposit":    "312.45",
			},
		}

		txns := Normalize(records, "generic")
		require.Len(t, txns, 1)
		assert.Equal(t, "20240601", txns[0].Date)
		assert.Equal(t, "INTEREST CREDIT", txns[0].Description)
		assert.True(t, txns[0].Credit.Equal(decimal.NewFromFloat(312.45)))
	})

	t.Run("unknown bank code falls back to generic", func(t *testing.T) {
		records := []statement.RawRecord{
			{"Date": "01/06/2024", "Description": "X", "Debit": 10.0},
		}
		assert.Len(t, Normalize(records, "nosuchbank"), 1)
	})

	t.Run("negative amounts come out absolute", func(t *testing.T) {
		records := []statement.RawRecord{
			{"Date": "01/06/2024", "Description": "REVERSAL", "Debit": -250.0},
		}
		txns := Normalize(records, "generic")
		require.Len(t, txns, 1)
		assert.True(t, txns[0].Debit.Equal(decimal.NewFromInt(250)))
	})
}

func TestSupportedBanks(t *testing.T) {
	banks := SupportedBanks()
	require.Len(t, banks, 5)
	codes := make([]string, 0, len(banks))
	for _, b := range banks {
		codes = append(codes, b.Code)
		// Every advertised code must be resolvable in the registry.
		_, ok := registry[b.Code]
		assert.True(t, ok, "bank %s not registered", b.Code)
	}
	assert.Equal(t, []string{"hdfc", "icici", "sbi", "axis", "generic"}, codes)
}
