package workflow

import (
	"math/rand"

	"bitbucket.org/mmdatafocus/seller_backend/models"
)

// InvoiceGenerator mints the invoice number for a shipment group the first
// time its key is seen. Injected so a collision-checked or monotonic
// allocator can replace the default without touching the grouping.
type InvoiceGenerator interface {
	Next(key models.GroupKey) string
}

// RandomInvoiceGenerator returns 12 random decimal digits, leading zeros
// allowed. Numbers are per-run only: nothing is persisted and there is no
// cross-run uniqueness check. Callers needing global uniqueness must supply
// their own generator.
type RandomInvoiceGenerator struct{}

func (RandomInvoiceGenerator) Next(models.GroupKey) string {
	digits := make([]byte, 12)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}

// GroupShipments partitions shipment line items by (fulfillment center,
// expected delivery date) and stamps one invoice number per group onto every
// member. Groups come back in first-seen order.
func GroupShipments(items []*models.ShipmentLineItem, gen InvoiceGenerator) []*models.ShipmentGroup {
	byKey := make(map[models.GroupKey]*models.ShipmentGroup)
	var groups []*models.ShipmentGroup
	for _, item := range items {
		key := item.Group()
		group, ok := byKey[key]
		if !ok {
			group = &models.ShipmentGroup{
				Key:           key,
				InvoiceNumber: gen.Next(key),
			}
			byKey[key] = group
			groups = append(groups, group)
		}
		item.InvoiceNumber = group.InvoiceNumber
		group.Items = append(group.Items, item)
	}
	return groups
}
