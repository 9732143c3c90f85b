package tally

import "encoding/xml"

// Request envelope structures for the Tally XML interface. The envelope
// shape is fixed by the target system: HEADER selects the operation, DESC
// carries static variables and optional TDL collection definitions, DATA
// carries import payloads.

type envelope struct {
	XMLName xml.Name  `xml:"ENVELOPE"`
	Header  reqHeader `xml:"HEADER"`
	Body    reqBody   `xml:"BODY"`
}

type reqHeader struct {
	Version      int    `xml:"VERSION"`
	TallyRequest string `xml:"TALLYREQUEST"`
	Type         string `xml:"TYPE"`
	ID           string `xml:"ID"`
}

type reqBody struct {
	Desc reqDesc  `xml:"DESC"`
	Data *reqData `xml:"DATA,omitempty"`
}

type reqDesc struct {
	StaticVariables staticVariables `xml:"STATICVARIABLES"`
	TDL             *tdl            `xml:"TDL,omitempty"`
}

type staticVariables struct {
	ExportFormat   string `xml:"SVEXPORTFORMAT,omitempty"`
	CurrentCompany string `xml:"SVCURRENTCOMPANY,omitempty"`
	FromDate       string `xml:"SVFROMDATE,omitempty"`
	ToDate         string `xml:"SVTODATE,omitempty"`
}

type tdl struct {
	Message tdlMessage `xml:"TDLMESSAGE"`
}

type tdlMessage struct {
	Collection *tdlCollection `xml:"COLLECTION,omitempty"`
	System     *tdlSystem     `xml:"SYSTEM,omitempty"`
}

type tdlCollection struct {
	Name   string `xml:"NAME,attr"`
	Type   string `xml:"TYPE"`
	Fetch  string `xml:"FETCH"`
	Filter string `xml:"FILTER,omitempty"`
}

type tdlSystem struct {
	Type    string `xml:"TYPE,attr"`
	Name    string `xml:"NAME,attr"`
	Formula string `xml:",chardata"`
}

type reqData struct {
	TallyMessage tallyMessage `xml:"TALLYMESSAGE"`
}

type tallyMessage struct {
	Voucher *voucherXML `xml:"VOUCHER,omitempty"`
	Ledger  *ledgerXML  `xml:"LEDGER,omitempty"`
}

type voucherXML struct {
	VchType         string         `xml:"VCHTYPE,attr"`
	Action          string         `xml:"ACTION,attr"`
	RemoteID        string         `xml:"REMOTEID,attr,omitempty"`
	VchKey          string         `xml:"VCHKEY,attr,omitempty"`
	MasterID        string         `xml:"MASTERID,omitempty"`
	Date            string         `xml:"DATE"`
	VoucherTypeName string         `xml:"VOUCHERTYPENAME"`
	VoucherNumber   string         `xml:"VOUCHERNUMBER"`
	Narration       string         `xml:"NARRATION"`
	LedgerEntries   []voucherEntry `xml:"ALLLEDGERENTRIES.LIST"`
}

type voucherEntry struct {
	LedgerName       string `xml:"LEDGERNAME"`
	IsDeemedPositive string `xml:"ISDEEMEDPOSITIVE"`
	Amount           string `xml:"AMOUNT"`
}

type ledgerXML struct {
	NameAttr       string `xml:"NAME,attr"`
	Action         string `xml:"ACTION,attr"`
	Name           string `xml:"NAME"`
	Parent         string `xml:"PARENT"`
	OpeningBalance string `xml:"OPENINGBALANCE"`
}

// Response structures. The export responses wrap collections of vouchers,
// ledgers or companies; only the fetched fields are populated.

type respEnvelope struct {
	XMLName xml.Name `xml:"ENVELOPE"`
	Body    respBody `xml:"BODY"`
}

type respBody struct {
	Data respData `xml:"DATA"`
}

type respData struct {
	Collection respCollection `xml:"COLLECTION"`
}

type respCollection struct {
	Vouchers  []respVoucher `xml:"VOUCHER"`
	Ledgers   []respLedger  `xml:"LEDGER"`
	Companies []respCompany `xml:"COMPANY"`
}

type respVoucher struct {
	MasterID        string      `xml:"MASTERID"`
	GUID            string      `xml:"GUID"`
	Date            string      `xml:"DATE"`
	VoucherTypeName string      `xml:"VOUCHERTYPENAME"`
	VoucherNumber   string      `xml:"VOUCHERNUMBER"`
	Narration       string      `xml:"NARRATION"`
	LedgerEntries   []respEntry `xml:"ALLLEDGERENTRIES.LIST"`
}

type respEntry struct {
	LedgerName       string `xml:"LEDGERNAME"`
	IsDeemedPositive string `xml:"ISDEEMEDPOSITIVE"`
	Amount           string `xml:"AMOUNT"`
}

type respLedger struct {
	Name           string `xml:"NAME"`
	Parent         string `xml:"PARENT"`
	ClosingBalance string `xml:"CLOSINGBALANCE"`
}

type respCompany struct {
	Name string `xml:"NAME"`
}
