package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/procura/internal/rfq/domain"
	vendordomain "github.com/smallbiznis/procura/internal/vendors/domain"
)

const maxConcurrentLookups = 4

// resolvedVendor is the contact resolution for one vendor group.
type resolvedVendor struct {
	VendorID    *snowflake.ID
	Label       string
	Email       string
	Deliverable bool
}

// resolveVendors looks up every group's contact with bounded parallelism.
// Resolution runs strictly before the write transaction so no locks are
// held during directory lookups. Unresolved vendors get a synthetic
// non-deliverable address so every persisted record has a contact field.
func (s *Service) resolveVendors(ctx context.Context, groups []vendorGroup) ([]resolvedVendor, error) {
	resolved := make([]resolvedVendor, len(groups))
	errs := make([]error, len(groups))

	sem := make(chan struct{}, maxConcurrentLookups)
	var wg sync.WaitGroup

	for i, group := range groups {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, key domain.VendorKey) {
			defer wg.Done()
			defer func() { <-sem }()
			resolved[i], errs[i] = s.resolveOne(ctx, key)
		}(i, group.Key)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func (s *Service) resolveOne(ctx context.Context, key domain.VendorKey) (resolvedVendor, error) {
	switch key.Kind {
	case domain.VendorKeyByID:
		vendor, err := s.directory.FindByID(ctx, key.ID)
		if err != nil {
			if errors.Is(err, vendordomain.ErrVendorNotFound) {
				return undeliverable(key.ID.String()), nil
			}
			return resolvedVendor{}, err
		}
		id := vendor.ID
		return resolvedVendor{
			VendorID:    &id,
			Label:       vendor.Name,
			Email:       vendor.Email,
			Deliverable: true,
		}, nil

	case domain.VendorKeyByName:
		vendor, err := s.directory.FindByName(ctx, key.Name)
		if err != nil {
			if errors.Is(err, vendordomain.ErrVendorNotFound) {
				return undeliverable(key.Name), nil
			}
			return resolvedVendor{}, err
		}
		id := vendor.ID
		return resolvedVendor{
			VendorID:    &id,
			Label:       vendor.Name,
			Email:       vendor.Email,
			Deliverable: true,
		}, nil

	default:
		return undeliverable("unknown vendor"), nil
	}
}

func undeliverable(label string) resolvedVendor {
	return resolvedVendor{
		Label:       label,
		Email:       fmt.Sprintf("rfq-undeliverable+%s@invalid.local", slug.Make(label)),
		Deliverable: false,
	}
}
