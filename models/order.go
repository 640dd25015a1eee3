package models

import (
	"github.com/shopspring/decimal"
)

// Intake/status literals the downstream marketplace expects verbatim on
// confirmation and shipment documents.
const (
	TransportTypeShipment    = "쉽먼트"
	OrderStatusVendorConfirm = "거래처확인요청"
)

type ReturnContact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// OrderLineItem is one purchased SKU within one purchase order, as extracted
// from a vendor purchase-order form. TotalCost is the source-provided value;
// it is never recomputed from UnitCost * OrderedQty.
type OrderLineItem struct {
	OrderId              string          `json:"order_id"`
	FulfillmentCenter    string          `json:"fulfillment_center"`
	ProductCode          string          `json:"product_code"`
	ProductBarcode       string          `json:"product_barcode"`
	ProductName          string          `json:"product_name"`
	OrderedQty           int             `json:"ordered_qty"`
	ConfirmedQty         int             `json:"confirmed_qty"`
	ExpiryDate           string          `json:"expiry_date"`
	ManufactureDate      string          `json:"manufacture_date"`
	ShortageReason       string          `json:"shortage_reason"`
	UnitCost             decimal.Decimal `json:"unit_cost"`
	SupplyPrice          decimal.Decimal `json:"supply_price"`
	Vat                  decimal.Decimal `json:"vat"`
	TotalCost            decimal.Decimal `json:"total_cost"`
	ExpectedDeliveryDate string          `json:"expected_delivery_date"`
	ReturnContact        ReturnContact   `json:"return_contact"`
}

// ShipmentLineItem is the same purchase projected to the shipment manifest
// schema. InvoiceNumber is assigned by the grouper, one per
// (fulfillment center, expected delivery date) group.
type ShipmentLineItem struct {
	OrderId              string `json:"order_id"`
	FulfillmentCenter    string `json:"fulfillment_center"`
	TransportType        string `json:"transport_type"`
	ExpectedDeliveryDate string `json:"expected_delivery_date"`
	ProductCode          string `json:"product_code"`
	ProductBarcode       string `json:"product_barcode"`
	ProductName          string `json:"product_name"`
	ConfirmedQty         int    `json:"confirmed_qty"`
	InvoiceNumber        string `json:"invoice_number"`
	ShippedQty           int    `json:"shipped_qty"`
}

type GroupKey struct {
	FulfillmentCenter    string
	ExpectedDeliveryDate string
}

func (s *ShipmentLineItem) Group() GroupKey {
	return GroupKey{
		FulfillmentCenter:    s.FulfillmentCenter,
		ExpectedDeliveryDate: s.ExpectedDeliveryDate,
	}
}

// ShipmentGroup owns every shipment line bound for one fulfillment center on
// one expected delivery date, under exactly one invoice number. The invoice
// number is fixed at creation and never reassigned within a run.
type ShipmentGroup struct {
	Key           GroupKey            `json:"key"`
	InvoiceNumber string              `json:"invoice_number"`
	Items         []*ShipmentLineItem `json:"items"`
}
