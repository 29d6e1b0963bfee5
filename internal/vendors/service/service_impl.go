package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/procura/internal/clock"
	"github.com/smallbiznis/procura/internal/vendors/domain"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Directory {
	return &Service{
		log:   log.Named("vendor.service"),
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateVendorRequest) (*domain.Vendor, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		return nil, domain.ErrInvalidVendor
	}

	now := s.clock.Now()
	vendor := &domain.Vendor{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		return nil, err
	}

	s.log.Info("vendor created", zap.String("vendor_id", vendor.ID.String()))
	return vendor, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Vendor, error) {
	return s.repo.List(ctx)
}

func (s *Service) FindByID(ctx context.Context, id snowflake.ID) (*domain.Vendor, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) FindByName(ctx context.Context, name string) (*domain.Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrVendorNotFound
	}
	return s.repo.FindByName(ctx, name)
}
