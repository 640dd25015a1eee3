package workflow

import (
	"path/filepath"
	"testing"

	"bitbucket.org/mmdatafocus/seller_backend/models"
	"github.com/xuri/excelize/v2"
)

func TestFilenames(t *testing.T) {
	key := models.GroupKey{FulfillmentCenter: "고양1", ExpectedDeliveryDate: "20250831"}
	if got := ShipmentManifestFilename(key); got != "쉽먼트 일괄 양식_고양1_20250831.xlsx" {
		t.Fatalf("got %q", got)
	}
	if got := SettlementFilename("2025-08-31"); got != "정산서_2025-08-31.xlsx" {
		t.Fatalf("got %q", got)
	}
	if OrderConfirmationFilename != "발주 확정 양식.xlsx" {
		t.Fatalf("got %q", OrderConfirmationFilename)
	}
}

func TestWriteOrderConfirmation(t *testing.T) {
	path := filepath.Join(t.TempDir(), OrderConfirmationFilename)
	items := []*models.OrderLineItem{
		{
			OrderId:              "PO1",
			FulfillmentCenter:    "고양1",
			ProductCode:          "12345678",
			ProductBarcode:       "R900001",
			ProductName:          "허브티 70g",
			OrderedQty:           10,
			ConfirmedQty:         10,
			UnitCost:             dec("1000"),
			SupplyPrice:          dec("1000"),
			Vat:                  dec("100"),
			TotalCost:            dec("10000"),
			ExpectedDeliveryDate: "20250831",
			ReturnContact:        models.ReturnContact{Name: "홍길동", Phone: "010-1234-5678", Address: "서울"},
		},
	}
	if err := WriteOrderConfirmation(items, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if len(rows[0]) < 22 {
		t.Fatalf("header has %d columns, want 22", len(rows[0]))
	}
	if rows[0][0] != "발주번호" || rows[0][21] != "발주등록일시" {
		t.Fatalf("header = %v", rows[0])
	}

	row := rows[1]
	if row[0] != "PO1" || row[2] != "쉽먼트" || row[3] != "거래처확인요청" {
		t.Fatalf("row = %v", row)
	}
	if row[5] != "R900001" || row[20] != "20250831" {
		t.Fatalf("row = %v", row)
	}
}

func TestWriteShipmentWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.xlsx")
	items := []*models.ShipmentLineItem{
		{
			OrderId:              "PO1",
			FulfillmentCenter:    "고양1",
			TransportType:        models.TransportTypeShipment,
			ExpectedDeliveryDate: "20250831",
			ProductCode:          "12345678",
			ProductBarcode:       "R900001",
			ProductName:          "허브티 70g",
			ConfirmedQty:         10,
			InvoiceNumber:        "001234567890",
			ShippedQty:           10,
		},
	}
	if err := WriteShipmentWorkbook(items, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = f.Close() }()

	// Sheet order matters to the downstream importer.
	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != "상품목록" || sheets[1] != "송장번호입력" || sheets[2] != "입력방법" {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows("상품목록")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if rows[0][0] != "발주번호(PO ID)" || rows[0][11] != "주의사항" {
		t.Fatalf("header = %v", rows[0])
	}

	// The invoice cell must keep its leading zero: text cell, not numeric.
	inv, err := f.GetCellValue("상품목록", "I2")
	if err != nil {
		t.Fatalf("invoice cell: %v", err)
	}
	if inv != "001234567890" {
		t.Fatalf("invoice = %q, leading zero lost", inv)
	}
}

func TestWriteShipmentManifests(t *testing.T) {
	dir := t.TempDir()
	groups := GroupShipments([]*models.ShipmentLineItem{
		shipItem("PO1", "고양1", "20250831"),
		shipItem("PO2", "인천4", "20250901"),
	}, &seqInvoiceGenerator{})

	files, err := WriteShipmentManifests(groups, dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	if files[0] != "쉽먼트 일괄 양식_고양1_20250831.xlsx" {
		t.Fatalf("files = %v", files)
	}
	for _, name := range files {
		if _, err := excelize.OpenFile(filepath.Join(dir, name)); err != nil {
			t.Fatalf("reopen %s: %v", name, err)
		}
	}
}

func TestWriteSettlementWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "정산서_2025-08-31.xlsx")
	result := &models.SettlementResult{
		Summary: models.SettlementSummary{
			TotalSales:    dec("50000"),
			TotalPurchase: dec("13300"),
			LogisticsCost: dec("6000"),
			Profit:        dec("30700"),
			ProfitRate:    "61.40%",
			TotalQty:      dec("10"),
		},
		SkuDetails: []models.SettlementRecord{
			{Sku: "A1", ReceivedQty: dec("10"), UnitPrice: dec("5"), ShippingFee: dec("20"), Rate: dec("190"), PurchaseAmount: dec("13300"), SourceFile: "도매장부.xlsx"},
			{Sku: "B2", ReceivedQty: dec("3"), SourceFile: "-", ErrorTag: models.SettlementErrorNoProduct},
		},
	}
	if err := WriteSettlementWorkbook(result, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "정산 요약" || sheets[1] != "SKU 상세" {
		t.Fatalf("sheets = %v", sheets)
	}

	rate, err := f.GetCellValue("정산 요약", "B6")
	if err != nil {
		t.Fatalf("rate cell: %v", err)
	}
	if rate != "61.40%" {
		t.Fatalf("profit rate cell = %q", rate)
	}

	rows, err := f.GetRows("SKU 상세")
	if err != nil {
		t.Fatalf("detail rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("detail rows = %d", len(rows))
	}
	errCol := len(rows[2]) - 1
	if rows[2][errCol] != "상품정보 없음" {
		t.Fatalf("error tag cell = %q", rows[2][errCol])
	}
}
