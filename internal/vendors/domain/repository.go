package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, vendor *Vendor) error
	List(ctx context.Context) ([]Vendor, error)
	FindByID(ctx context.Context, id snowflake.ID) (*Vendor, error)
	FindByName(ctx context.Context, name string) (*Vendor, error)
}
