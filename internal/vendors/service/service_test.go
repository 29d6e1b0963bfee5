package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/procura/internal/clock"
	"github.com/smallbiznis/procura/internal/vendors/domain"
	"github.com/smallbiznis/procura/internal/vendors/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newDirectory(t *testing.T) (domain.Directory, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Vendor{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))

	return New(zap.NewNop(), repository.New(conn), node, clk), clk
}

func TestCreateAndFindByID(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()

	created, err := dir.Create(ctx, domain.CreateVendorRequest{Name: "Sigma-Aldrich", Email: "quotes@sigma.test"})
	require.NoError(t, err)

	found, err := dir.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sigma-Aldrich", found.Name)

	_, err = dir.FindByID(ctx, created.ID+1)
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)
}

func TestCreateRejectsBlankFields(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()

	_, err := dir.Create(ctx, domain.CreateVendorRequest{Name: " ", Email: "a@b.test"})
	assert.ErrorIs(t, err, domain.ErrInvalidVendor)
	_, err = dir.Create(ctx, domain.CreateVendorRequest{Name: "Acme", Email: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidVendor)
}

func TestFindByNameCaseInsensitive(t *testing.T) {
	dir, _ := newDirectory(t)
	ctx := context.Background()

	_, err := dir.Create(ctx, domain.CreateVendorRequest{Name: "Sigma-Aldrich", Email: "quotes@sigma.test"})
	require.NoError(t, err)

	for _, name := range []string{"sigma-aldrich", "SIGMA-ALDRICH", "Sigma-Aldrich"} {
		found, err := dir.FindByName(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, "quotes@sigma.test", found.Email)
	}

	_, err = dir.FindByName(ctx, "nonexistent")
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)
	_, err = dir.FindByName(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)
}

func TestFindByNameOldestWins(t *testing.T) {
	dir, clk := newDirectory(t)
	ctx := context.Background()

	first, err := dir.Create(ctx, domain.CreateVendorRequest{Name: "Acme", Email: "first@acme.test"})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = dir.Create(ctx, domain.CreateVendorRequest{Name: "ACME", Email: "second@acme.test"})
	require.NoError(t, err)

	found, err := dir.FindByName(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "first@acme.test", found.Email)
}
