package service

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/procura/internal/rfq/domain"
)

const (
	maxItems           = 500
	minExpiresDays     = 1
	maxExpiresDays     = 90
	defaultExpiresDays = 14
	defaultUnit        = "ea"
)

// validatedItem is a normalized line item with its resolved vendor key.
type validatedItem struct {
	ProductName   string
	Brand         string
	CatalogNumber string
	Key           domain.VendorKey
	Quantity      int
	Unit          string
	UnitPrice     *float64
	Currency      string
	Notes         string
}

type validatedRequest struct {
	Items       []validatedItem
	Common      domain.CommonRequest
	Messages    map[string]string
	ExpiresDays int
}

// validate checks every field rule before any side effect. All failures
// are collected so the buyer sees the full list at once.
func validate(req domain.DistributeRequest) (*validatedRequest, error) {
	var details []domain.FieldError

	if len(req.Items) == 0 {
		details = append(details, domain.FieldError{
			Field:   "items",
			Code:    "required",
			Message: "at least one item is required",
		})
	}
	if len(req.Items) > maxItems {
		details = append(details, domain.FieldError{
			Field:   "items",
			Code:    "too_many",
			Message: fmt.Sprintf("at most %d items per request", maxItems),
		})
	}

	if strings.TrimSpace(req.CommonRequest.Title) == "" {
		details = append(details, domain.FieldError{
			Field:   "commonRequest.title",
			Code:    "required",
			Message: "title is required",
		})
	}

	expiresDays := defaultExpiresDays
	if req.ExpiresInDays != nil {
		expiresDays = *req.ExpiresInDays
		if expiresDays < minExpiresDays || expiresDays > maxExpiresDays {
			details = append(details, domain.FieldError{
				Field:   "expiresInDays",
				Code:    "out_of_range",
				Message: fmt.Sprintf("expiresInDays must be between %d and %d", minExpiresDays, maxExpiresDays),
			})
		}
	}

	items := make([]validatedItem, 0, len(req.Items))
	for i, item := range req.Items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		if strings.TrimSpace(item.ProductName) == "" {
			details = append(details, domain.FieldError{
				Field:   field("productName"),
				Code:    "required",
				Message: "productName is required",
			})
		}
		if item.Quantity < 1 {
			details = append(details, domain.FieldError{
				Field:   field("quantity"),
				Code:    "out_of_range",
				Message: "quantity must be a positive integer",
			})
		}
		if strings.TrimSpace(item.Currency) == "" {
			details = append(details, domain.FieldError{
				Field:   field("currency"),
				Code:    "required",
				Message: "currency is required",
			})
		}

		// vendorId wins when both identities are present.
		var vendorID *snowflake.ID
		if item.VendorID != nil && strings.TrimSpace(*item.VendorID) != "" {
			id, err := snowflake.ParseString(strings.TrimSpace(*item.VendorID))
			if err != nil {
				details = append(details, domain.FieldError{
					Field:   field("vendorId"),
					Code:    "invalid",
					Message: "vendorId is not a valid id",
				})
			} else {
				vendorID = &id
			}
		} else if strings.TrimSpace(item.VendorName) == "" {
			details = append(details, domain.FieldError{
				Field:   field("vendor"),
				Code:    "required",
				Message: "either vendorId or vendorName is required",
			})
		}

		unit := strings.TrimSpace(item.Unit)
		if unit == "" {
			unit = defaultUnit
		}

		items = append(items, validatedItem{
			ProductName:   strings.TrimSpace(item.ProductName),
			Brand:         strings.TrimSpace(item.Brand),
			CatalogNumber: strings.TrimSpace(item.CatalogNumber),
			Key:           domain.VendorKeyFromItem(vendorID, item.VendorName),
			Quantity:      item.Quantity,
			Unit:          unit,
			UnitPrice:     item.UnitPrice,
			Currency:      strings.ToUpper(strings.TrimSpace(item.Currency)),
			Notes:         strings.TrimSpace(item.Notes),
		})
	}

	if len(details) > 0 {
		return nil, &domain.ValidationError{Details: details}
	}

	return &validatedRequest{
		Items:       items,
		Common:      req.CommonRequest,
		Messages:    req.VendorMessages,
		ExpiresDays: expiresDays,
	}, nil
}
