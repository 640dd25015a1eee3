package workflow

import (
	"fmt"
	"path/filepath"

	"bitbucket.org/mmdatafocus/seller_backend/models"
	"github.com/xuri/excelize/v2"
)

// Column orders below are the downstream marketplace's import contract.
// Header text, ordering, and sheet names must not change.

var orderConfirmationColumns = []string{
	"발주번호", "물류센터", "입고유형", "발주상태", "상품번호", "상품바코드",
	"상품이름", "발주수량", "확정수량", "유통(소비기한)", "제조일자", "생산년도",
	"납품부족사유", "회송담당자", "회송담당자 연락처", "회송지주소",
	"매입가", "공급가", "부가세", "총발주매입금", "입고예정일", "발주등록일시",
}

var orderConfirmationWidths = []float64{
	15, 12, 10, 15, 12, 15, 40, 10, 10, 12, 12, 10, 25, 12, 15, 30, 12, 12, 10, 15, 12, 18,
}

var shipmentColumns = []string{
	"발주번호(PO ID)", "물류센터(FC)", "입고유형(Transport Type)", "입고예정일(EDD)",
	"상품번호(SKU ID)", "상품바코드(SKU Barcode)", "상품이름(SKU Name)",
	"확정수량(Confirmed Qty)", "송장번호(Invoice Number)", "납품수량(Shipped Qty)",
	"Unnamed: 10", "주의사항",
}

var shipmentWidths = []float64{15, 12, 18, 12, 15, 18, 40, 15, 18, 15, 10, 15}

const (
	shipmentProductSheet      = "상품목록"
	shipmentInvoiceEntrySheet = "송장번호입력"
	shipmentInstructionSheet  = "입력방법"
	settlementSummarySheet    = "정산 요약"
	settlementDetailSheet     = "SKU 상세"
)

// Invoice numbers keep leading zeros, so the column is written as text cells
// with the text number format.
const textNumFmt = 49

// OrderConfirmationFilename is the fixed document name the downstream system
// imports. ShipmentManifestFilename varies per group.
const OrderConfirmationFilename = "발주 확정 양식.xlsx"

func ShipmentManifestFilename(key models.GroupKey) string {
	return fmt.Sprintf("쉽먼트 일괄 양식_%s_%s.xlsx", key.FulfillmentCenter, key.ExpectedDeliveryDate)
}

func SettlementFilename(date string) string {
	return fmt.Sprintf("정산서_%s.xlsx", date)
}

// WriteOrderConfirmation renders the flat confirmation table, one row per
// order line item, to path.
func WriteOrderConfirmation(items []*models.OrderLineItem, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheetName := "Sheet1"

	setHeaderRow(f, sheetName, orderConfirmationColumns)
	setColumnWidths(f, sheetName, orderConfirmationWidths)

	rowNo := 2
	for _, item := range items {
		setRow(f, sheetName, rowNo, []interface{}{
			item.OrderId,
			item.FulfillmentCenter,
			models.TransportTypeShipment,
			models.OrderStatusVendorConfirm,
			item.ProductCode,
			item.ProductBarcode,
			item.ProductName,
			item.OrderedQty,
			item.ConfirmedQty,
			item.ExpiryDate,
			item.ManufactureDate,
			"", // production year
			item.ShortageReason,
			item.ReturnContact.Name,
			item.ReturnContact.Phone,
			item.ReturnContact.Address,
			item.UnitCost.InexactFloat64(),
			item.SupplyPrice.InexactFloat64(),
			item.Vat.InexactFloat64(),
			item.TotalCost.InexactFloat64(),
			item.ExpectedDeliveryDate,
			"", // registration timestamp
		})
		rowNo++
	}

	return f.SaveAs(path)
}

// WriteShipmentManifests writes one manifest per group into outputDir,
// returning the generated filenames in group order.
func WriteShipmentManifests(groups []*models.ShipmentGroup, outputDir string) ([]string, error) {
	filenames := make([]string, 0, len(groups))
	for _, group := range groups {
		filename := ShipmentManifestFilename(group.Key)
		if err := WriteShipmentWorkbook(group.Items, filepath.Join(outputDir, filename)); err != nil {
			return filenames, fmt.Errorf("write manifest %s: %w", filename, err)
		}
		filenames = append(filenames, filename)
	}
	return filenames, nil
}

// WriteShipmentWorkbook renders one shipment manifest: the product list sheet
// followed by the two empty template sheets the downstream importer expects,
// in that order.
func WriteShipmentWorkbook(items []*models.ShipmentLineItem, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", shipmentProductSheet); err != nil {
		return err
	}

	setHeaderRow(f, shipmentProductSheet, shipmentColumns)
	setColumnWidths(f, shipmentProductSheet, shipmentWidths)

	textStyle, err := f.NewStyle(&excelize.Style{NumFmt: textNumFmt})
	if err != nil {
		return err
	}

	rowNo := 2
	for _, item := range items {
		setRow(f, shipmentProductSheet, rowNo, []interface{}{
			item.OrderId,
			item.FulfillmentCenter,
			item.TransportType,
			item.ExpectedDeliveryDate,
			item.ProductCode,
			item.ProductBarcode,
			item.ProductName,
			item.ConfirmedQty,
			nil, // invoice number: written as a text cell below
			item.ShippedQty,
			"", // reserved blank column
			"", // caution notes
		})
		cell := "I" + fmt.Sprint(rowNo)
		_ = f.SetCellStyle(shipmentProductSheet, cell, cell, textStyle)
		_ = f.SetCellStr(shipmentProductSheet, cell, item.InvoiceNumber)
		rowNo++
	}

	if _, err := f.NewSheet(shipmentInvoiceEntrySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(shipmentInstructionSheet); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// WriteSettlementWorkbook renders the profit summary sheet and the per-SKU
// detail sheet, error-tagged rows included.
func WriteSettlementWorkbook(result *models.SettlementResult, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", settlementSummarySheet); err != nil {
		return err
	}

	summary := result.Summary
	summaryRows := [][]interface{}{
		{"항목", "금액"},
		{"매출", summary.TotalSales.InexactFloat64()},
		{"매입", summary.TotalPurchase.InexactFloat64()},
		{"입출고비용", summary.LogisticsCost.InexactFloat64()},
		{"순이익", summary.Profit.InexactFloat64()},
		{"이익률", summary.ProfitRate},
		{"총수량", summary.TotalQty.InexactFloat64()},
	}
	for i, row := range summaryRows {
		setRow(f, settlementSummarySheet, i+1, row)
	}

	if _, err := f.NewSheet(settlementDetailSheet); err != nil {
		return err
	}
	setHeaderRow(f, settlementDetailSheet, []string{
		"SKU", "입고수량", "구매단가", "중국배송비", "위안가", "매입금액", "파일", "오류",
	})
	rowNo := 2
	for _, rec := range result.SkuDetails {
		setRow(f, settlementDetailSheet, rowNo, []interface{}{
			rec.Sku,
			rec.ReceivedQty.InexactFloat64(),
			rec.UnitPrice.InexactFloat64(),
			rec.ShippingFee.InexactFloat64(),
			rec.Rate.InexactFloat64(),
			rec.PurchaseAmount.InexactFloat64(),
			rec.SourceFile,
			rec.ErrorTag,
		})
		rowNo++
	}

	return f.SaveAs(path)
}

func setHeaderRow(f *excelize.File, sheetName string, headers []string) {
	col := 'A'
	for _, h := range headers {
		_ = f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}
}

func setRow(f *excelize.File, sheetName string, rowNo int, values []interface{}) {
	col := 'A'
	for _, value := range values {
		if value != nil {
			_ = f.SetCellValue(sheetName, string(col)+fmt.Sprint(rowNo), value)
		}
		col++
	}
}

func setColumnWidths(f *excelize.File, sheetName string, widths []float64) {
	col := 'A'
	for _, w := range widths {
		_ = f.SetColWidth(sheetName, string(col), string(col), w)
		col++
	}
}
