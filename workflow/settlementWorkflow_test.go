package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/seller_backend/models"
	"github.com/shopspring/decimal"
)

func receivingSummary(totalSales string, skus ...[2]string) *models.ReceivingSummary {
	r := &models.ReceivingSummary{
		SkuQty:     make(map[string]decimal.Decimal),
		TotalSales: dec(totalSales),
	}
	for _, pair := range skus {
		r.SkuOrder = append(r.SkuOrder, pair[0])
		r.SkuQty[pair[0]] = dec(pair[1])
		r.TotalQty = r.TotalQty.Add(dec(pair[1]))
	}
	return r
}

func ledgerRow(sku, unit, ship, rate, file string) *models.LedgerRow {
	return &models.LedgerRow{
		Sku:         sku,
		UnitPrice:   dec(unit),
		UnitPriceOK: true,
		ShippingFee: dec(ship),
		ShippingOK:  true,
		Rate:        dec(rate),
		RateOK:      true,
		SourceFile:  file,
	}
}

func TestCalculateSettlement(t *testing.T) {
	// One SKU, 10 received, 50,000 KRW sales. Ledger: unit 5 CNY, shipping
	// 20 CNY, rate 190. Purchase = (5*10 + 20) * 190 = 13,300.
	recv := receivingSummary("50000", [2]string{"A1", "10"})
	rows := []*models.LedgerRow{ledgerRow("A1", "5", "20", "190", "도매장부.xlsx")}

	result, err := CalculateSettlement(recv, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := result.Summary
	if !s.TotalPurchase.Equal(dec("13300")) {
		t.Fatalf("purchase = %s, want 13300", s.TotalPurchase)
	}
	if !s.LogisticsCost.Equal(dec("6000")) {
		t.Fatalf("logistics = %s, want 6000 (10 units x 600)", s.LogisticsCost)
	}
	if !s.Profit.Equal(dec("30700")) {
		t.Fatalf("profit = %s, want 30700", s.Profit)
	}
	if s.ProfitRate != "61.40%" {
		t.Fatalf("profit rate = %q, want 61.40%%", s.ProfitRate)
	}
	if !s.TotalQty.Equal(dec("10")) {
		t.Fatalf("total qty = %s", s.TotalQty)
	}

	if len(result.SkuDetails) != 1 {
		t.Fatalf("details = %d", len(result.SkuDetails))
	}
	d := result.SkuDetails[0]
	if d.ErrorTag != "" {
		t.Fatalf("error tag = %q", d.ErrorTag)
	}
	if !d.PurchaseAmount.Equal(dec("13300")) || d.SourceFile != "도매장부.xlsx" {
		t.Fatalf("detail = %+v", d)
	}
}

func TestCalculateSettlementNoProduct(t *testing.T) {
	recv := receivingSummary("10000", [2]string{"A1", "4"}, [2]string{"B2", "6"})
	rows := []*models.LedgerRow{ledgerRow("A1", "2", "0", "190", "f.xlsx")}

	result, err := CalculateSettlement(recv, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.SkuDetails) != 2 {
		t.Fatalf("details = %d", len(result.SkuDetails))
	}

	missing := result.SkuDetails[1]
	if missing.Sku != "B2" {
		t.Fatalf("sku = %q", missing.Sku)
	}
	if missing.ErrorTag != models.SettlementErrorNoProduct {
		t.Fatalf("error tag = %q", missing.ErrorTag)
	}
	if missing.SourceFile != "-" {
		t.Fatalf("source file = %q", missing.SourceFile)
	}
	if !missing.PurchaseAmount.IsZero() {
		t.Fatalf("amount = %s, want 0", missing.PurchaseAmount)
	}

	// Only the matched SKU contributes to purchase: (2*4 + 0) * 190 = 1520.
	if !result.Summary.TotalPurchase.Equal(dec("1520")) {
		t.Fatalf("purchase = %s", result.Summary.TotalPurchase)
	}
	// Logistics still counts the unmatched quantity: 10 units x 600.
	if !result.Summary.LogisticsCost.Equal(dec("6000")) {
		t.Fatalf("logistics = %s", result.Summary.LogisticsCost)
	}
}

func TestCalculateSettlementDataMissing(t *testing.T) {
	recv := receivingSummary("10000", [2]string{"A1", "5"}, [2]string{"B2", "5"})

	noPrice := ledgerRow("A1", "0", "3", "190", "f.xlsx")
	noPrice.UnitPriceOK = false
	noRate := ledgerRow("B2", "2", "3", "0", "f.xlsx")

	result, err := CalculateSettlement(recv, []*models.LedgerRow{noPrice, noRate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range result.SkuDetails {
		if d.ErrorTag != models.SettlementErrorDataMissing {
			t.Fatalf("sku %s: error tag = %q", d.Sku, d.ErrorTag)
		}
		if !d.PurchaseAmount.IsZero() {
			t.Fatalf("sku %s: amount = %s, want 0", d.Sku, d.PurchaseAmount)
		}
	}
	if !result.Summary.TotalPurchase.IsZero() {
		t.Fatalf("purchase = %s", result.Summary.TotalPurchase)
	}
}

func TestCalculateSettlementFirstMatchWins(t *testing.T) {
	recv := receivingSummary("10000", [2]string{"A1", "1"})
	rows := []*models.LedgerRow{
		ledgerRow("A1", "10", "0", "100", "first.xlsx"),
		ledgerRow("A1", "99", "0", "100", "second.xlsx"),
	}

	result, err := CalculateSettlement(recv, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := result.SkuDetails[0]
	if d.SourceFile != "first.xlsx" || !d.PurchaseAmount.Equal(dec("1000")) {
		t.Fatalf("detail = %+v", d)
	}
}

func TestCalculateSettlementNoRows(t *testing.T) {
	recv := receivingSummary("0")
	if _, err := CalculateSettlement(recv, nil); err != ErrNoLedgerData {
		t.Fatalf("err = %v, want ErrNoLedgerData", err)
	}
}

func TestCalculateSettlementZeroSalesProfitRate(t *testing.T) {
	recv := receivingSummary("0", [2]string{"A1", "1"})
	rows := []*models.LedgerRow{ledgerRow("A1", "1", "0", "100", "f.xlsx")}

	result, err := CalculateSettlement(recv, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.ProfitRate != "0%" {
		t.Fatalf("profit rate = %q", result.Summary.ProfitRate)
	}
}

func TestParseReceivingReport(t *testing.T) {
	data := buildWorkbook(t, map[string]interface{}{
		"A1": "SKU번호", "B1": "상품명", "C1": "수량", "D1": "총단가",
		"A2": "A1", "B2": "허브티", "C2": "4", "D2": "20000",
		"A3": "B2", "B3": "비타민", "C3": "6", "D3": "25000",
		// Repeated SKU accumulates.
		"A4": "A1", "B4": "허브티", "C4": "6", "D4": "5000",
		// Sales sum counts rows without a usable SKU/quantity too.
		"B5": "배송비 조정", "D5": "-1000",
	})

	recv, err := ParseReceivingReport(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !recv.SkuQty["A1"].Equal(dec("10")) || !recv.SkuQty["B2"].Equal(dec("6")) {
		t.Fatalf("sku qty = %v", recv.SkuQty)
	}
	if len(recv.SkuOrder) != 2 || recv.SkuOrder[0] != "A1" || recv.SkuOrder[1] != "B2" {
		t.Fatalf("sku order = %v", recv.SkuOrder)
	}
	if !recv.TotalQty.Equal(dec("16")) {
		t.Fatalf("total qty = %s", recv.TotalQty)
	}
	if !recv.TotalSales.Equal(dec("49000")) {
		t.Fatalf("total sales = %s", recv.TotalSales)
	}
}

func TestParseReceivingReportMissingColumns(t *testing.T) {
	data := buildWorkbook(t, map[string]interface{}{
		"A1": "순번", "B1": "상품명",
		"A2": "1", "B2": "허브티",
	})
	if _, err := ParseReceivingReport(data); err != ErrReceivingColumnsMissing {
		t.Fatalf("err = %v, want ErrReceivingColumnsMissing", err)
	}
}

func TestParseLedgerFiles(t *testing.T) {
	good := buildWorkbook(t, map[string]interface{}{
		"A1": "상품코드", "B1": "구매1개단가", "C1": "중국배송비", "D1": "위안", "E1": "수량",
		"A2": "A1", "B2": "5", "C2": "20", "D2": "190위안", "E2": "10",
		// Rate comes from the first data row only.
		"A3": "B2", "B3": "2.5", "C3": "0", "D3": "",
	})
	missingCols := buildWorkbook(t, map[string]interface{}{
		"A1": "상품코드", "B1": "비고",
		"A2": "A1", "B2": "x",
	})

	rows, failures := ParseLedgerFiles(testLogger(), []InputFile{
		{Name: "good.xlsx", Data: good},
		{Name: "broken.xlsx", Data: missingCols},
	})

	if len(failures) != 1 || failures[0] != "broken.xlsx" {
		t.Fatalf("failures = %v", failures)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}

	first := rows[0]
	if first.Sku != "A1" || !first.UnitPrice.Equal(dec("5")) || !first.ShippingFee.Equal(dec("20")) {
		t.Fatalf("row = %+v", first)
	}
	if !first.RateOK || !first.Rate.Equal(dec("190")) {
		t.Fatalf("rate = %s ok=%v", first.Rate, first.RateOK)
	}
	if !first.Qty.Equal(dec("10")) {
		t.Fatalf("qty = %s", first.Qty)
	}
	if first.SourceFile != "good.xlsx" {
		t.Fatalf("source = %q", first.SourceFile)
	}

	// Second row inherits the file's rate even though its own rate cell is
	// empty.
	second := rows[1]
	if !second.RateOK || !second.Rate.Equal(dec("190")) {
		t.Fatalf("second rate = %s ok=%v", second.Rate, second.RateOK)
	}
}
