package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/procura/internal/rfq/domain"
)

func composeTitle(buyerTitle, vendorLabel string, itemCount int) string {
	return fmt.Sprintf("%s (%s, %d items)", buyerTitle, vendorLabel, itemCount)
}

// composeMessage concatenates the non-empty sections for one vendor:
// private note, shared delivery block, then special notes, separated by
// blank lines. When every section is empty the message is absent rather
// than an empty string.
func composeMessage(privateNote string, common domain.CommonRequest) *string {
	var sections []string

	if note := strings.TrimSpace(privateNote); note != "" {
		sections = append(sections, note)
	}

	var delivery []string
	if common.DeliveryDate != nil && strings.TrimSpace(*common.DeliveryDate) != "" {
		delivery = append(delivery, "Requested delivery date: "+strings.TrimSpace(*common.DeliveryDate))
	}
	if common.DeliveryLocation != nil && strings.TrimSpace(*common.DeliveryLocation) != "" {
		delivery = append(delivery, "Delivery location: "+strings.TrimSpace(*common.DeliveryLocation))
	}
	if len(delivery) > 0 {
		sections = append(sections, strings.Join(delivery, "\n"))
	}

	if common.SpecialNotes != nil && strings.TrimSpace(*common.SpecialNotes) != "" {
		sections = append(sections, strings.TrimSpace(*common.SpecialNotes))
	}

	if len(sections) == 0 {
		return nil
	}
	msg := strings.Join(sections, "\n\n")
	return &msg
}

// buildSnapshot freezes the vendor-visible view of the request. The
// snapshot is written once inside the transaction and never updated.
func buildSnapshot(title string, createdAt time.Time, currency string, common domain.CommonRequest, items []domain.QuoteItem) domain.Snapshot {
	snapItems := make([]domain.SnapshotItem, 0, len(items))
	for _, item := range items {
		snapItems = append(snapItems, domain.SnapshotItem{
			ID:            item.ID.String(),
			LineNo:        item.LineNo,
			Name:          item.ProductName,
			Brand:         item.Brand,
			CatalogNumber: item.CatalogNumber,
			Quantity:      item.Quantity,
			Unit:          item.Unit,
			PriceHint:     item.UnitPrice,
			Notes:         item.Notes,
		})
	}

	return domain.Snapshot{
		Version:   domain.SnapshotVersion,
		Title:     title,
		CreatedAt: createdAt,
		Currency:  currency,
		Delivery: domain.SnapshotDelivery{
			Date:     common.DeliveryDate,
			Location: common.DeliveryLocation,
		},
		Items: snapItems,
	}
}
