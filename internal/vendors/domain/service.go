package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrVendorNotFound = errors.New("vendor_not_found")
	ErrInvalidVendor  = errors.New("invalid_vendor")
)

type CreateVendorRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// Directory resolves vendor references for outbound distribution.
type Directory interface {
	Create(ctx context.Context, req CreateVendorRequest) (*Vendor, error)
	List(ctx context.Context) ([]Vendor, error)
	FindByID(ctx context.Context, id snowflake.ID) (*Vendor, error)
	FindByName(ctx context.Context, name string) (*Vendor, error)
}
