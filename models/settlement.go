package models

import (
	"github.com/shopspring/decimal"
)

// Error tags on settlement detail rows. These surface to the end user for
// manual correction, so the downstream literals are kept verbatim.
const (
	SettlementErrorDataMissing = "데이터 누락"
	SettlementErrorNoProduct   = "상품정보 없음"
)

// ReceivingSummary aggregates the marketplace receiving report: per-SKU
// received quantity, total received quantity, and the summed sales amount
// across all rows (SKU-less rows still contribute to sales).
type ReceivingSummary struct {
	SkuQty     map[string]decimal.Decimal `json:"sku_qty"`
	SkuOrder   []string                   `json:"-"`
	TotalQty   decimal.Decimal            `json:"total_qty"`
	TotalSales decimal.Decimal            `json:"total_sales"`
}

// LedgerRow is one row of a wholesale purchase ledger. Rate is file-scoped:
// every row of one ledger carries the same conversion rate, read once from
// the file's first data row. The OK flags distinguish "no number in the cell"
// from a genuine zero, which decides the data-missing error tag downstream.
type LedgerRow struct {
	Sku         string
	UnitPrice   decimal.Decimal
	UnitPriceOK bool
	ShippingFee decimal.Decimal
	ShippingOK  bool
	Qty         decimal.Decimal
	Rate        decimal.Decimal
	RateOK      bool
	SourceFile  string
}

// SettlementRecord is the per-SKU reconciliation outcome. JSON keys match the
// settlement detail sheet headers so the API payload and the workbook agree.
type SettlementRecord struct {
	Sku            string          `json:"SKU"`
	ReceivedQty    decimal.Decimal `json:"입고수량"`
	UnitPrice      decimal.Decimal `json:"구매단가"`
	ShippingFee    decimal.Decimal `json:"중국배송비"`
	Rate           decimal.Decimal `json:"위안가"`
	PurchaseAmount decimal.Decimal `json:"매입금액"`
	SourceFile     string          `json:"파일"`
	ErrorTag       string          `json:"오류,omitempty"`
}

type SettlementSummary struct {
	TotalSales    decimal.Decimal `json:"매출"`
	TotalPurchase decimal.Decimal `json:"매입"`
	LogisticsCost decimal.Decimal `json:"입출고비용"`
	Profit        decimal.Decimal `json:"순이익"`
	ProfitRate    string          `json:"이익률"`
	TotalQty      decimal.Decimal `json:"총수량"`
}

type SettlementResult struct {
	Summary    SettlementSummary  `json:"summary"`
	SkuDetails []SettlementRecord `json:"skuDetails"`
}
