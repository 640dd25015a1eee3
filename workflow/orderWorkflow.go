package workflow

import (
	"errors"
	"regexp"
	"strings"

	"bitbucket.org/mmdatafocus/seller_backend/config"
	"bitbucket.org/mmdatafocus/seller_backend/models"
	"bitbucket.org/mmdatafocus/seller_backend/sheet"
	"github.com/sirupsen/logrus"
)

// InputFile is one uploaded spreadsheet, already read off the wire. Name is
// the uploader's original filename and is what failure lists report.
type InputFile struct {
	Name string
	Data []byte
}

// OrderExtractResult is the batch outcome: the concatenated line items of
// every file that parsed, plus the filenames that did not.
type OrderExtractResult struct {
	Orders    []*models.OrderLineItem
	Shipments []*models.ShipmentLineItem
	Failures  []string
}

// Label-scan bounds of the vendor purchase-order form header block.
const (
	orderScanMaxRow = 40
	orderScanMaxCol = 15
)

// Field descriptors for the form header. Each field is located by label scan
// first, falling back to the fixed cell the known layout uses. The
// fulfillment center has no label on the form, only a fixed cell.
var (
	orderIdField    = sheet.FieldSpec{Label: "발주번호", FallbackRow: 9, FallbackCol: 2}
	centerField     = sheet.FieldSpec{FallbackRow: 12, FallbackCol: 2}
	eddField        = sheet.FieldSpec{Label: "입고예정일", FallbackRow: 12, FallbackCol: 5}
	returnMgrField  = sheet.FieldSpec{Label: "회송담당자", FallbackRow: 13, FallbackCol: 2}
	returnTelField  = sheet.FieldSpec{Label: "연락처", FallbackRow: 13, FallbackCol: 6}
	returnAddrField = sheet.FieldSpec{Label: "회송지", FallbackRow: 14, FallbackCol: 2}
)

// Fixed column offsets of the line-item table.
const (
	colLeading     = 0
	colSku         = 1
	colProductName = 2
	colQty         = 6
	colUnitCost    = 9
	colSupplyPrice = 10
	colVat         = 11
	colTotalCost   = 12
	colDateFlag    = 16
	colDateValue   = 17
)

const (
	productNameHeaderLabel = "상품명"
	totalRowMarker         = "합계"
)

var barcodePattern = regexp.MustCompile(`^R\d+$`)
var allDigitsPattern = regexp.MustCompile(`^\d+$`)

var errOrderFormIncomplete = errors.New("order form is missing required header fields")
var errHeaderRowNotFound = errors.New("product table header row not found")

// ParseOrderFiles extracts order and shipment line items from a batch of
// purchase-order spreadsheets. Files are independent: a malformed file lands
// in Failures and the rest of the batch continues. Shipment items come back
// without invoice numbers; GroupShipments assigns those.
func ParseOrderFiles(logger *logrus.Logger, files []InputFile) *OrderExtractResult {
	result := &OrderExtractResult{}
	for _, file := range files {
		orders, ships, err := parseOrderFile(file)
		if err != nil {
			config.LogError(logger, "orderWorkflow.go", "ParseOrderFiles", "parsing "+file.Name, nil, err)
			result.Failures = append(result.Failures, file.Name)
			continue
		}
		result.Orders = append(result.Orders, orders...)
		result.Shipments = append(result.Shipments, ships...)
	}
	return result
}

// fileHeader carries the file-level fields stamped onto every line item of
// one purchase order.
type fileHeader struct {
	orderId string
	center  string
	edd     string
	contact models.ReturnContact
}

func parseOrderFile(file InputFile) ([]*models.OrderLineItem, []*models.ShipmentLineItem, error) {
	s, err := sheet.Open(file.Data)
	if err != nil {
		return nil, nil, err
	}

	hdr, err := resolveFileHeader(s)
	if err != nil {
		return nil, nil, err
	}

	headerRow, ok := findProductHeaderRow(s)
	if !ok {
		return nil, nil, errHeaderRowNotFound
	}

	var orders []*models.OrderLineItem
	var ships []*models.ShipmentLineItem
	for r := headerRow + 1; r < s.Rows(); r++ {
		res := classifyRow(s, r, hdr)
		switch res.action {
		case rowStop:
			return orders, ships, nil
		case rowBarcode:
			// A barcode row annotates the immediately preceding emitted
			// item; it never introduces a line item of its own.
			if n := len(orders); n > 0 {
				orders[n-1].ProductBarcode = res.barcode
				ships[n-1].ProductBarcode = res.barcode
			}
		case rowItem:
			orders = append(orders, res.order)
			ships = append(ships, res.ship)
		}
	}
	return orders, ships, nil
}

func resolveFileHeader(s sheet.Sheet) (fileHeader, error) {
	hdr := fileHeader{
		orderId: orderIdField.Resolve(s, orderScanMaxRow, orderScanMaxCol),
		center:  centerField.Resolve(s, orderScanMaxRow, orderScanMaxCol),
	}
	rawEdd := eddField.Resolve(s, orderScanMaxRow, orderScanMaxCol)
	if hdr.orderId == "" || hdr.center == "" || rawEdd == "" {
		return hdr, errOrderFormIncomplete
	}
	hdr.edd = sheet.FormatDate(rawEdd)
	if len(hdr.edd) != 8 {
		return hdr, errOrderFormIncomplete
	}
	hdr.contact = models.ReturnContact{
		Name:    returnMgrField.Resolve(s, orderScanMaxRow, orderScanMaxCol),
		Phone:   returnTelField.Resolve(s, orderScanMaxRow, orderScanMaxCol),
		Address: returnAddrField.Resolve(s, orderScanMaxRow, orderScanMaxCol),
	}
	return hdr, nil
}

// findProductHeaderRow locates the first row whose product-name column cell
// contains the product-name label.
func findProductHeaderRow(s sheet.Sheet) (int, bool) {
	for r := 0; r < s.Rows(); r++ {
		if strings.Contains(s.Cell(r, colProductName), productNameHeaderLabel) {
			return r, true
		}
	}
	return 0, false
}

type rowAction int

const (
	rowSkip rowAction = iota
	rowStop
	rowBarcode
	rowItem
)

// rowResult is the explicit outcome of classifying one table row. Barcode
// back-fill is expressed as a result value instead of a mutable
// last-emitted-index shared across loop iterations.
type rowResult struct {
	action  rowAction
	barcode string
	order   *models.OrderLineItem
	ship    *models.ShipmentLineItem
}

func classifyRow(s sheet.Sheet, r int, hdr fileHeader) rowResult {
	leading := strings.TrimSpace(s.Cell(r, colLeading))
	name := strings.TrimSpace(s.Cell(r, colProductName))

	// The totals row ends the table; nothing below it is order data.
	if leading == totalRowMarker || strings.Contains(name, totalRowMarker) {
		return rowResult{action: rowStop}
	}

	if barcodePattern.MatchString(name) {
		return rowResult{action: rowBarcode, barcode: name}
	}

	sku := strings.TrimSpace(s.Cell(r, colSku))
	if sku == "" {
		return rowResult{action: rowSkip}
	}
	// Stray header/footer rows carry text in the SKU column; genuine SKUs are
	// all digits.
	if !allDigitsPattern.MatchString(sku) {
		return rowResult{action: rowSkip}
	}

	qty := int(sheet.NormalizeNumber(s.Cell(r, colQty)).IntPart())

	// Manufacture date is gated by this row's flag; expiry date by the NEXT
	// row's flag and date cells. The form really is laid out that way.
	mfgDate := ""
	if strings.EqualFold(strings.TrimSpace(s.Cell(r, colDateFlag)), "Y") {
		mfgDate = sheet.FormatDate(s.Cell(r, colDateValue))
	}
	expDate := ""
	if strings.EqualFold(strings.TrimSpace(s.Cell(r+1, colDateFlag)), "Y") {
		expDate = sheet.FormatDate(s.Cell(r+1, colDateValue))
	}

	order := &models.OrderLineItem{
		OrderId:              hdr.orderId,
		FulfillmentCenter:    hdr.center,
		ProductCode:          sku,
		ProductName:          name,
		OrderedQty:           qty,
		ConfirmedQty:         qty,
		ExpiryDate:           expDate,
		ManufactureDate:      mfgDate,
		UnitCost:             sheet.NormalizeNumber(s.Cell(r, colUnitCost)),
		SupplyPrice:          sheet.NormalizeNumber(s.Cell(r, colSupplyPrice)),
		Vat:                  sheet.NormalizeNumber(s.Cell(r, colVat)),
		TotalCost:            sheet.NormalizeNumber(s.Cell(r, colTotalCost)),
		ExpectedDeliveryDate: hdr.edd,
		ReturnContact:        hdr.contact,
	}
	ship := &models.ShipmentLineItem{
		OrderId:              hdr.orderId,
		FulfillmentCenter:    hdr.center,
		TransportType:        models.TransportTypeShipment,
		ExpectedDeliveryDate: hdr.edd,
		ProductCode:          sku,
		ProductName:          name,
		ConfirmedQty:         qty,
		ShippedQty:           qty,
	}
	return rowResult{action: rowItem, order: order, ship: ship}
}
