package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/procura/internal/vendors/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, vendor *domain.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *repository) List(ctx context.Context) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&vendors).Error
	if err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// FindByName matches case-insensitively. When several vendors share a name
// the oldest entry wins so resolution stays deterministic.
func (r *repository) FindByName(ctx context.Context, name string) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := r.db.WithContext(ctx).
		Where("lower(name) = ?", strings.ToLower(name)).
		Order("created_at ASC, id ASC").
		First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}
