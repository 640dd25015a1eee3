package workflow

import (
	"errors"

	"bitbucket.org/mmdatafocus/seller_backend/config"
	"bitbucket.org/mmdatafocus/seller_backend/models"
	"bitbucket.org/mmdatafocus/seller_backend/sheet"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Ranked header candidates for the two settlement inputs. First candidate
// that matches any header wins; the reports come from different systems and
// rename columns between exports, so matching is by substring.
var receivingColumnSpecs = []sheet.ColumnSpec{
	{Field: "sku", Candidates: []string{"SKU번호", "SKU", "sku"}},
	{Field: "qty", Candidates: []string{"수량", "qty"}},
	{Field: "price", Candidates: []string{"총단가", "총공급가액"}},
}

var ledgerColumnSpecs = []sheet.ColumnSpec{
	{Field: "rate", Candidates: []string{"위안"}},
	{Field: "sku", Candidates: []string{"상품코드", "SKU"}},
	{Field: "unit", Candidates: []string{"구매1개단가", "구매단가"}},
	{Field: "ship", Candidates: []string{"중국배송비", "배송비"}},
	{Field: "qty", Candidates: []string{"수량"}},
}

// User-facing: these surface directly in API responses.
var (
	ErrReceivingColumnsMissing = errors.New("입고내역서에 SKU/수량 컬럼이 없습니다.")
	ErrNoLedgerData            = errors.New("루트로지스 데이터가 비어있습니다.")
)

// ParseReceivingReport aggregates the marketplace receiving report. The first
// row is the header; per-SKU quantities accumulate across rows, and the sales
// column is summed over every row whether or not the row names a SKU.
func ParseReceivingReport(data []byte) (*models.ReceivingSummary, error) {
	s, err := sheet.Open(data)
	if err != nil {
		return nil, err
	}
	header := headerRow(s)
	cols := sheet.ResolveColumns(header, receivingColumnSpecs)
	if cols["sku"] < 0 || cols["qty"] < 0 {
		return nil, ErrReceivingColumnsMissing
	}

	summary := &models.ReceivingSummary{
		SkuQty: make(map[string]decimal.Decimal),
	}
	for r := 1; r < s.Rows(); r++ {
		sku := sheet.NormalizeSKU(s.Cell(r, cols["sku"]))
		qty := sheet.NormalizeNumber(s.Cell(r, cols["qty"]))
		if sku != "" && !qty.IsZero() {
			if _, seen := summary.SkuQty[sku]; !seen {
				summary.SkuOrder = append(summary.SkuOrder, sku)
			}
			summary.SkuQty[sku] = summary.SkuQty[sku].Add(qty)
		}
		if cols["price"] >= 0 {
			summary.TotalSales = summary.TotalSales.Add(sheet.NormalizeNumber(s.Cell(r, cols["price"])))
		}
	}
	for _, qty := range summary.SkuQty {
		summary.TotalQty = summary.TotalQty.Add(qty)
	}
	return summary, nil
}

// ParseLedgerFiles reads every wholesale ledger into flat rows. Each file
// carries one conversion rate, taken from its first data row and applied to
// all of its rows. A broken file is skipped and reported; the rest of the
// batch continues.
func ParseLedgerFiles(logger *logrus.Logger, files []InputFile) ([]*models.LedgerRow, []string) {
	var rows []*models.LedgerRow
	var failures []string
	for _, file := range files {
		fileRows, err := parseLedgerFile(file)
		if err != nil {
			config.LogError(logger, "settlementWorkflow.go", "ParseLedgerFiles", "parsing "+file.Name, nil, err)
			failures = append(failures, file.Name)
			continue
		}
		rows = append(rows, fileRows...)
	}
	return rows, failures
}

func parseLedgerFile(file InputFile) ([]*models.LedgerRow, error) {
	s, err := sheet.Open(file.Data)
	if err != nil {
		return nil, err
	}
	header := headerRow(s)
	cols := sheet.ResolveColumns(header, ledgerColumnSpecs)
	if cols["sku"] < 0 || cols["unit"] < 0 || cols["ship"] < 0 {
		return nil, errors.New("ledger is missing required columns (SKU/단가/배송비)")
	}

	// One rate per file, from the first data row. The cell may carry a
	// trailing currency word ("190위안"), which ParseNumber tolerates.
	var rate decimal.Decimal
	rateOK := false
	if cols["rate"] >= 0 {
		rate, rateOK = sheet.ParseNumber(s.Cell(1, cols["rate"]))
	}

	var rows []*models.LedgerRow
	for r := 1; r < s.Rows(); r++ {
		sku := sheet.NormalizeSKU(s.Cell(r, cols["sku"]))
		unit, unitOK := sheet.ParseNumber(s.Cell(r, cols["unit"]))
		ship, shipOK := sheet.ParseNumber(s.Cell(r, cols["ship"]))
		if sku == "" && !unitOK && !shipOK {
			continue
		}
		row := &models.LedgerRow{
			Sku:         sku,
			UnitPrice:   unit,
			UnitPriceOK: unitOK,
			ShippingFee: ship,
			ShippingOK:  shipOK,
			Rate:        rate,
			RateOK:      rateOK,
			SourceFile:  file.Name,
		}
		if cols["qty"] >= 0 {
			row.Qty = sheet.NormalizeNumber(s.Cell(r, cols["qty"]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// CalculateSettlement reconciles the receiving report against the ledgers.
// Every receiving-report SKU yields exactly one detail record: priced when
// its first matching ledger row has complete numbers and a positive rate,
// error-tagged (amount zero) otherwise. Error rows stay in the output for
// manual correction.
func CalculateSettlement(recv *models.ReceivingSummary, rows []*models.LedgerRow) (*models.SettlementResult, error) {
	if len(rows) == 0 {
		return nil, ErrNoLedgerData
	}

	// First matching ledger row wins, in file order then row order.
	firstBySku := make(map[string]*models.LedgerRow, len(rows))
	for _, row := range rows {
		if row.Sku == "" {
			continue
		}
		if _, ok := firstBySku[row.Sku]; !ok {
			firstBySku[row.Sku] = row
		}
	}

	var totalPurchase decimal.Decimal
	details := make([]models.SettlementRecord, 0, len(recv.SkuOrder))
	for _, sku := range recv.SkuOrder {
		receivedQty := recv.SkuQty[sku]
		row, found := firstBySku[sku]
		if !found {
			details = append(details, models.SettlementRecord{
				Sku:         sku,
				ReceivedQty: receivedQty,
				SourceFile:  "-",
				ErrorTag:    models.SettlementErrorNoProduct,
			})
			continue
		}

		rec := models.SettlementRecord{
			Sku:         sku,
			ReceivedQty: receivedQty,
			UnitPrice:   row.UnitPrice,
			ShippingFee: row.ShippingFee,
			Rate:        row.Rate,
			SourceFile:  row.SourceFile,
		}
		if row.UnitPriceOK && row.ShippingOK && row.RateOK && row.Rate.IsPositive() {
			// (unit purchase price × received qty + shipping fee) × rate
			rec.PurchaseAmount = row.UnitPrice.Mul(receivedQty).Add(row.ShippingFee).Mul(row.Rate)
			totalPurchase = totalPurchase.Add(rec.PurchaseAmount)
		} else {
			rec.ErrorTag = models.SettlementErrorDataMissing
		}
		details = append(details, rec)
	}

	logisticsCost := recv.TotalQty.Mul(decimal.NewFromInt(config.LogisticsUnitCost()))
	profit := recv.TotalSales.Sub(totalPurchase).Sub(logisticsCost)
	profitRate := "0%"
	if recv.TotalSales.IsPositive() {
		profitRate = profit.Div(recv.TotalSales).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
	}

	return &models.SettlementResult{
		Summary: models.SettlementSummary{
			TotalSales:    recv.TotalSales,
			TotalPurchase: totalPurchase,
			LogisticsCost: logisticsCost,
			Profit:        profit,
			ProfitRate:    profitRate,
			TotalQty:      recv.TotalQty,
		},
		SkuDetails: details,
	}, nil
}

func headerRow(s sheet.Sheet) []string {
	header := make([]string, s.Cols())
	for c := 0; c < s.Cols(); c++ {
		header[c] = s.Cell(0, c)
	}
	return header
}
