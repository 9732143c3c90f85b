// Package tally is the client for the external ledger system that vouchers
// are submitted to. It speaks the system's XML envelope protocol over HTTP
// and treats each voucher submission as an atomic operation; deduplication
// is the target system's concern.
package tally

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bmehta/tally-bridge/internal/domain/statement/voucher"
)

const requestTimeout = 30 * time.Second

var lineErrorPattern = regexp.MustCompile(`<LINEERROR>(.*?)</LINEERROR>`)

// Client talks to one Tally instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the Tally HTTP port (conventionally 9000).
func NewClient(host string, port int, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d/", host, port),
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// send posts a marshaled envelope and returns the raw response body.
func (c *Client) send(ctx context.Context, env envelope) ([]byte, error) {
	payload, err := xml.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("building request envelope: %w", err)
	}
	payload = append([]byte(xml.Header), payload...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w (make sure Tally is running and the XML API is enabled)", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tally responded with status %d", resp.StatusCode)
	}
	// Tally reports import failures inside a 200 response.
	if m := lineErrorPattern.FindSubmatch(body); m != nil {
		return nil, fmt.Errorf("tally rejected request: %s", strings.TrimSpace(string(m[1])))
	}
	return body, nil
}

// TestConnection verifies the instance is reachable and answering.
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.send(ctx, exportEnvelope("CompanyList", staticVariables{
		ExportFormat: "$$SysName:XML",
	}, nil))
	return err
}

// Companies lists the companies loaded in the instance.
func (c *Client) Companies(ctx context.Context) ([]string, error) {
	body, err := c.send(ctx, exportEnvelope("CompanyList", staticVariables{
		ExportFormat: "$$SysName:XML",
	}, nil))
	if err != nil {
		return nil, err
	}

	var resp respEnvelope
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing company list: %w", err)
	}
	names := make([]string, 0, len(resp.Body.Data.Collection.Companies))
	for _, company := range resp.Body.Data.Collection.Companies {
		names = append(names, company.Name)
	}
	return names, nil
}

// Ledger is one account bucket known to the target company.
type Ledger struct {
	Name           string `json:"name"`
	Parent         string `json:"parent"`
	ClosingBalance string `json:"closingBalance"`
}

// Ledgers lists the ledgers of a company.
func (c *Client) Ledgers(ctx context.Context, companyName string) ([]Ledger, error) {
	body, err := c.send(ctx, exportEnvelope("LedgerList", staticVariables{
		ExportFormat:   "$$SysName:XML",
		CurrentCompany: companyName,
	}, &tdl{Message: tdlMessage{
		Collection: &tdlCollection{
			Name:  "LedgerList",
			Type:  "Ledger",
			Fetch: "Name, Parent, ClosingBalance",
		},
	}}))
	if err != nil {
		return nil, err
	}

	var resp respEnvelope
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing ledger list: %w", err)
	}
	ledgers := make([]Ledger, 0, len(resp.Body.Data.Collection.Ledgers))
	for _, l := range resp.Body.Data.Collection.Ledgers {
		ledgers = append(ledgers, Ledger{Name: l.Name, Parent: l.Parent, ClosingBalance: l.ClosingBalance})
	}
	return ledgers, nil
}

// CreateVoucher submits one voucher for creation in its company context.
func (c *Client) CreateVoucher(ctx context.Context, v voucher.Voucher) error {
	env := importEnvelope("Vouchers", v.CompanyName, reqData{TallyMessage: tallyMessage{
		Voucher: &voucherXML{
			VchType:         v.VoucherType,
			Action:          "Create",
			Date:            v.Date,
			VoucherTypeName: v.VoucherType,
			VoucherNumber:   v.VoucherNumber,
			Narration:       v.Narration,
			LedgerEntries:   toEntryXML(v.LedgerEntries),
		},
	}})
	_, err := c.send(ctx, env)
	return err
}

// AlterVoucher rewrites an existing voucher, addressed by its master id and
// key, keeping the voucher number.
func (c *Client) AlterVoucher(ctx context.Context, companyName string, v voucher.Voucher) error {
	env := importEnvelope("Vouchers", companyName, reqData{TallyMessage: tallyMessage{
		Voucher: &voucherXML{
			VchType:         v.VoucherType,
			Action:          "Alter",
			RemoteID:        v.MasterID,
			VchKey:          v.GUID,
			MasterID:        v.MasterID,
			Date:            v.Date,
			VoucherTypeName: v.VoucherType,
			VoucherNumber:   v.VoucherNumber,
			Narration:       v.Narration,
			LedgerEntries:   toEntryXML(v.LedgerEntries),
		},
	}})
	_, err := c.send(ctx, env)
	return err
}

// LedgerSpec describes a ledger to create.
type LedgerSpec struct {
	Name           string
	Parent         string
	OpeningBalance decimal.Decimal
	CompanyName    string
}

// CreateLedger creates a ledger under the given parent group.
func (c *Client) CreateLedger(ctx context.Context, spec LedgerSpec) error {
	env := importEnvelope("Ledgers", spec.CompanyName, reqData{TallyMessage: tallyMessage{
		Ledger: &ledgerXML{
			NameAttr:       spec.Name,
			Action:         "Create",
			Name:           spec.Name,
			Parent:         spec.Parent,
			OpeningBalance: spec.OpeningBalance.String(),
		},
	}})
	_, err := c.send(ctx, env)
	return err
}

// Entry is one leg of a voucher as reported back by the ledger system.
type Entry struct {
	LedgerName       string          `json:"ledgerName"`
	Amount           decimal.Decimal `json:"amount"`
	IsDeemedPositive string          `json:"isDeemedPositive"`
}

// LedgerVoucher is a voucher fetched back from the ledger system, seen from
// the perspective of one queried ledger.
type LedgerVoucher struct {
	MasterID         string          `json:"masterID"`
	GUID             string          `json:"guid"`
	Date             string          `json:"date"`
	VoucherType      string          `json:"voucherType"`
	VoucherNumber    string          `json:"voucherNumber"`
	Narration        string          `json:"narration"`
	Amount           decimal.Decimal `json:"amount"`
	IsDeemedPositive string          `json:"isDeemedPositive"`
	AllLedgerEntries []Entry         `json:"allLedgerEntries"`
}

// LedgerEntries fetches the vouchers involving a specific ledger within a
// date range (dates in YYYYMMDD form).
func (c *Client) LedgerEntries(ctx context.Context, companyName, ledgerName, fromDate, toDate string) ([]LedgerVoucher, error) {
	env := exportEnvelope("LedgerVouchers", staticVariables{
		ExportFormat:   "$$SysName:XML",
		CurrentCompany: companyName,
		FromDate:       fromDate,
		ToDate:         toDate,
	}, &tdl{Message: tdlMessage{
		Collection: &tdlCollection{
			Name:   "LedgerVouchers",
			Type:   "Voucher",
			Fetch:  "DATE, VOUCHERTYPENAME, VOUCHERNUMBER, NARRATION, MASTERID, GUID, ALLLEDGERENTRIES.LIST",
			Filter: "LedgerFilter",
		},
		System: &tdlSystem{
			Type:    "Formulae",
			Name:    "LedgerFilter",
			Formula: fmt.Sprintf(`$$FilterByLedger:$ALLLEDGERENTRIES.LIST:LEDGERNAME:"%s"`, ledgerName),
		},
	}})

	body, err := c.send(ctx, env)
	if err != nil {
		return nil, err
	}

	var resp respEnvelope
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing ledger vouchers: %w", err)
	}

	entries := make([]LedgerVoucher, 0, len(resp.Body.Data.Collection.Vouchers))
	for _, rv := range resp.Body.Data.Collection.Vouchers {
		lv := LedgerVoucher{
			MasterID:         rv.MasterID,
			GUID:             rv.GUID,
			Date:             rv.Date,
			VoucherType:      rv.VoucherTypeName,
			VoucherNumber:    rv.VoucherNumber,
			Narration:        rv.Narration,
			IsDeemedPositive: voucher.DebitLeg,
		}
		for _, re := range rv.LedgerEntries {
			amount := parseAmount(re.Amount)
			lv.AllLedgerEntries = append(lv.AllLedgerEntries, Entry{
				LedgerName:       re.LedgerName,
				Amount:           amount,
				IsDeemedPositive: re.IsDeemedPositive,
			})
			if strings.EqualFold(re.LedgerName, ledgerName) {
				lv.Amount = amount.Abs()
				lv.IsDeemedPositive = re.IsDeemedPositive
			}
		}
		entries = append(entries, lv)
	}
	return entries, nil
}

// Vouchers fetches all vouchers of a company within a date range.
func (c *Client) Vouchers(ctx context.Context, companyName, fromDate, toDate string) ([]LedgerVoucher, error) {
	body, err := c.send(ctx, exportEnvelope("VoucherList", staticVariables{
		ExportFormat:   "$$SysName:XML",
		CurrentCompany: companyName,
		FromDate:       fromDate,
		ToDate:         toDate,
	}, nil))
	if err != nil {
		return nil, err
	}

	var resp respEnvelope
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing voucher list: %w", err)
	}

	vouchers := make([]LedgerVoucher, 0, len(resp.Body.Data.Collection.Vouchers))
	for _, rv := range resp.Body.Data.Collection.Vouchers {
		lv := LedgerVoucher{
			MasterID:      rv.MasterID,
			GUID:          rv.GUID,
			Date:          rv.Date,
			VoucherType:   rv.VoucherTypeName,
			VoucherNumber: rv.VoucherNumber,
			Narration:     rv.Narration,
		}
		for _, re := range rv.LedgerEntries {
			lv.AllLedgerEntries = append(lv.AllLedgerEntries, Entry{
				LedgerName:       re.LedgerName,
				Amount:           parseAmount(re.Amount),
				IsDeemedPositive: re.IsDeemedPositive,
			})
		}
		vouchers = append(vouchers, lv)
	}
	return vouchers, nil
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func toEntryXML(entries []voucher.LedgerEntry) []voucherEntry {
	out := make([]voucherEntry, 0, len(entries))
	for _, e := range entries {
		pos := e.IsDeemedPositive
		if pos == "" {
			pos = voucher.DebitLeg
		}
		out = append(out, voucherEntry{
			LedgerName:       e.LedgerName,
			IsDeemedPositive: pos,
			Amount:           e.Amount.String(),
		})
	}
	return out
}

func exportEnvelope(id string, vars staticVariables, t *tdl) envelope {
	return envelope{
		Header: reqHeader{Version: 1, TallyRequest: "Export", Type: "Data", ID: id},
		Body:   reqBody{Desc: reqDesc{StaticVariables: vars, TDL: t}},
	}
}

func importEnvelope(id, companyName string, data reqData) envelope {
	return envelope{
		Header: reqHeader{Version: 1, TallyRequest: "Import", Type: "Data", ID: id},
		Body: reqBody{
			Desc: reqDesc{StaticVariables: staticVariables{CurrentCompany: companyName}},
			Data: &data,
		},
	}
}
