package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/seller_backend/config"
	"bitbucket.org/mmdatafocus/seller_backend/models"
	"bitbucket.org/mmdatafocus/seller_backend/sheet"
	"bitbucket.org/mmdatafocus/seller_backend/utils"
	"bitbucket.org/mmdatafocus/seller_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// flexInt tolerates browser extensions sending numeric fields as either JSON
// numbers or strings ("3", 3, "3개").
type flexInt int

func (v *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*v = 0
		return nil
	}
	d, ok := sheet.ParseNumber(s)
	if !ok {
		*v = 0
		return nil
	}
	*v = flexInt(d.IntPart())
	return nil
}

// flexDecimal is the decimal counterpart of flexInt.
type flexDecimal struct {
	decimal.Decimal
}

func (v *flexDecimal) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		v.Decimal = decimal.Zero
		return nil
	}
	d, ok := sheet.ParseNumber(s)
	if !ok {
		v.Decimal = decimal.Zero
		return nil
	}
	v.Decimal = d
	return nil
}

// orderPayload is one order row as sent by the extension. Several fields have
// two accepted names because different capture paths label them differently.
type orderPayload struct {
	PoNumber           string      `json:"poNumber"`
	OrderNumber        string      `json:"orderNumber"`
	Center             string      `json:"center"`
	FulfillmentCenter  string      `json:"fulfillmentCenter"`
	ProductCode        string      `json:"productCode"`
	ProductId          string      `json:"productId"`
	Barcode            string      `json:"barcode"`
	Sku                string      `json:"sku"`
	ProductName        string      `json:"productName"`
	Quantity           flexInt     `json:"quantity"`
	ConfirmedQuantity  flexInt     `json:"confirmedQuantity"`
	PurchasePrice      flexDecimal `json:"purchasePrice"`
	SupplyPrice        flexDecimal `json:"supplyPrice"`
	ExpectedDate       string      `json:"expectedDate"`
	ExpirationDate     string      `json:"expirationDate"`
	ManufacturingDate  string      `json:"manufacturingDate"`
	ShortageReason     string      `json:"shortageReason"`
	ReturnManager      string      `json:"returnManager"`
	ReturnManagerPhone string      `json:"returnManagerPhone"`
	ReturnAddress      string      `json:"returnAddress"`
}

func (o *orderPayload) orderId() string {
	if o.PoNumber != "" {
		return o.PoNumber
	}
	return o.OrderNumber
}

func (o *orderPayload) center() string {
	if o.Center != "" {
		return o.Center
	}
	return o.FulfillmentCenter
}

func (o *orderPayload) productCode() string {
	if o.ProductCode != "" {
		return o.ProductCode
	}
	return o.ProductId
}

func (o *orderPayload) barcode() string {
	if o.Barcode != "" {
		return o.Barcode
	}
	return o.Sku
}

func (o *orderPayload) confirmedQty() int {
	if o.ConfirmedQuantity != 0 {
		return int(o.ConfirmedQuantity)
	}
	return int(o.Quantity)
}

type confirmationRequest struct {
	Orders []orderPayload `json:"orders" binding:"required,min=1"`
}

type shipmentsRequest struct {
	OrdersByCenter map[string][]orderPayload `json:"ordersByCenter" binding:"required"`
}

// Capture artifacts: rows whose "product" is really a page label from the
// marketplace UI. Matching rows are dropped before rendering.
var invalidRowKeywords = []string{
	"메시지 카테고리", "카테고리 코드", "유형", "필수", "선택", "SKU ID", "운송장", "차량번호",
}

func isCaptureArtifact(o *orderPayload) bool {
	for _, kw := range invalidRowKeywords {
		if strings.Contains(o.productCode(), kw) || strings.Contains(o.ProductName, kw) {
			return true
		}
	}
	return false
}

var eightDigits = regexp.MustCompile(`^\d{8}$`)

// dashedDate turns YYYYMMDD into YYYY-MM-DD; anything else passes through.
func dashedDate(s string) string {
	if eightDigits.MatchString(s) {
		return s[:4] + "-" + s[4:6] + "-" + s[6:8]
	}
	return s
}

// compactDate strips dashes so YYYY-MM-DD becomes YYYYMMDD.
func compactDate(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

var vatRate = decimal.NewFromFloat(0.1)

// generateConfirmationHandler renders a confirmation workbook from order rows
// the extension already parsed out of the marketplace UI.
func generateConfirmationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req confirmationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			resp := gin.H{"success": false, "error": "발주 데이터가 없습니다"}
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				resp["details"] = utils.ProcessValidationErrors(err)
			}
			c.JSON(http.StatusBadRequest, resp)
			return
		}

		items := make([]*models.OrderLineItem, 0, len(req.Orders))
		for i := range req.Orders {
			o := &req.Orders[i]
			if isCaptureArtifact(o) {
				continue
			}
			qty := int(o.Quantity)
			supply := o.SupplyPrice.Decimal
			price := o.PurchasePrice.Decimal
			items = append(items, &models.OrderLineItem{
				OrderId:              o.orderId(),
				FulfillmentCenter:    o.center(),
				ProductCode:          o.productCode(),
				ProductBarcode:       o.barcode(),
				ProductName:          o.ProductName,
				OrderedQty:           qty,
				ConfirmedQty:         o.confirmedQty(),
				ExpiryDate:           o.ExpirationDate,
				ManufactureDate:      o.ManufacturingDate,
				ShortageReason:       o.ShortageReason,
				UnitCost:             price,
				SupplyPrice:          supply,
				Vat:                  supply.Mul(vatRate),
				TotalCost:            price.Mul(decimal.NewFromInt(int64(qty))),
				ExpectedDeliveryDate: dashedDate(o.ExpectedDate),
				ReturnContact: models.ReturnContact{
					Name:    o.ReturnManager,
					Phone:   o.ReturnManagerPhone,
					Address: o.ReturnAddress,
				},
			})
		}

		filename := fmt.Sprintf("발주 확정 양식_%s.xlsx", time.Now().Format("20060102"))
		path := filepath.Join(config.OutputDir(), filename)
		if err := workflow.WriteOrderConfirmation(items, path); err != nil {
			config.LogError(logger, "ordersapi", "generateConfirmationHandler", "write confirmation", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		fileData, err := encodeFile(path)
		if err != nil {
			config.LogError(logger, "ordersapi", "generateConfirmationHandler", "encode confirmation", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"filename":   filename,
			"filePath":   path,
			"fileData":   fileData,
			"orderCount": len(req.Orders),
		})
	}
}

type shipmentFileResult struct {
	Center        string `json:"center"`
	Filename      string `json:"filename"`
	FilePath      string `json:"filePath"`
	FileData      string `json:"fileData"`
	OrderCount    int    `json:"orderCount"`
	ExpectedDate  string `json:"expectedDate"`
	InvoiceNumber string `json:"invoiceNumber"`
}

// generateShipmentsHandler renders one shipment manifest per fulfillment
// center from pre-grouped order rows. Every row in a center's file carries the
// same invoice number, minted once per center.
func generateShipmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req shipmentsRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.OrdersByCenter) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "센터별 발주 데이터가 없습니다"})
			return
		}

		// Deterministic file order regardless of JSON map iteration.
		centers := make([]string, 0, len(req.OrdersByCenter))
		for center := range req.OrdersByCenter {
			centers = append(centers, center)
		}
		sort.Strings(centers)

		timestamp := time.Now().Format("20060102")
		outputDir := config.OutputDir()

		results := make([]shipmentFileResult, 0, len(centers))
		for _, center := range centers {
			orders := req.OrdersByCenter[center]
			if len(orders) == 0 {
				continue
			}

			expectedDate := compactDate(orders[0].ExpectedDate)
			invoiceNumber := invoiceGen.Next(models.GroupKey{
				FulfillmentCenter:    center,
				ExpectedDeliveryDate: expectedDate,
			})

			items := make([]*models.ShipmentLineItem, 0, len(orders))
			for i := range orders {
				o := &orders[i]
				qty := o.confirmedQty()
				if qty == 0 {
					continue
				}
				edd := compactDate(o.ExpectedDate)
				if edd == "" {
					edd = expectedDate
				}
				items = append(items, &models.ShipmentLineItem{
					OrderId:              o.orderId(),
					FulfillmentCenter:    center,
					TransportType:        models.TransportTypeShipment,
					ExpectedDeliveryDate: edd,
					ProductCode:          o.productCode(),
					ProductBarcode:       o.barcode(),
					ProductName:          o.ProductName,
					ConfirmedQty:         qty,
					InvoiceNumber:        invoiceNumber,
					ShippedQty:           qty,
				})
			}
			if len(items) == 0 {
				continue
			}

			filename := fmt.Sprintf("쉽먼트 일괄 양식_%s_%s.xlsx", center, timestamp)
			path := filepath.Join(outputDir, filename)
			if err := workflow.WriteShipmentWorkbook(items, path); err != nil {
				config.LogError(logger, "ordersapi", "generateShipmentsHandler", "write shipment workbook", center, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
				return
			}
			fileData, err := encodeFile(path)
			if err != nil {
				config.LogError(logger, "ordersapi", "generateShipmentsHandler", "encode shipment workbook", center, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
				return
			}

			results = append(results, shipmentFileResult{
				Center:        center,
				Filename:      filename,
				FilePath:      path,
				FileData:      fileData,
				OrderCount:    len(items),
				ExpectedDate:  expectedDate,
				InvoiceNumber: invoiceNumber,
			})
		}

		files := make([]string, 0, len(results))
		for _, r := range results {
			files = append(files, r.Filename)
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"files":     files,
			"shipments": results,
		})
	}
}

func encodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
