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
	"github.com/smallbiznis/procura/internal/organization/domain"
	"github.com/smallbiznis/procura/internal/organization/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Organization{}, &domain.OrganizationMember{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))

	svc := New(zap.NewNop(), conn, repository.New(conn), node, clk)
	return svc, conn, node
}

func TestCreateOrganization(t *testing.T) {
	svc, conn, node := newService(t)
	userID := node.Generate()

	resp, err := svc.Create(context.Background(), userID, domain.CreateOrganizationRequest{Name: "Acme Labs Inc."})
	require.NoError(t, err)
	assert.Equal(t, "Acme Labs Inc.", resp.Name)
	assert.Equal(t, "acme-labs-inc", resp.Slug)

	// The creator becomes the owner in the same transaction.
	var member domain.OrganizationMember
	require.NoError(t, conn.First(&member, "user_id = ?", userID).Error)
	assert.Equal(t, domain.RoleOwner, member.Role)
	assert.Equal(t, resp.ID, member.OrgID.String())
}

func TestCreateOrganizationRejectsBlankName(t *testing.T) {
	svc, _, node := newService(t)

	_, err := svc.Create(context.Background(), node.Generate(), domain.CreateOrganizationRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestResolveAttributionHonorsMembership(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	userID := node.Generate()

	created, err := svc.Create(ctx, userID, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	orgID, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)

	resolved, err := svc.ResolveAttribution(ctx, userID, &orgID)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, orgID, *resolved)
}

func TestResolveAttributionIgnoresForeignOrg(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	userID := node.Generate()
	outsider := node.Generate()

	mine, err := svc.Create(ctx, userID, domain.CreateOrganizationRequest{Name: "Mine"})
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, outsider, domain.CreateOrganizationRequest{Name: "Theirs"})
	require.NoError(t, err)
	theirOrgID, err := snowflake.ParseString(theirs.ID)
	require.NoError(t, err)

	// Requesting an org the user is not a member of falls back to their
	// own first membership instead of erroring.
	resolved, err := svc.ResolveAttribution(ctx, userID, &theirOrgID)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, mine.ID, resolved.String())
}

func TestResolveAttributionNoMemberships(t *testing.T) {
	svc, _, node := newService(t)

	resolved, err := svc.ResolveAttribution(context.Background(), node.Generate(), nil)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestResolveAttributionFirstMembershipWins(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	userID := node.Generate()

	first, err := svc.Create(ctx, userID, domain.CreateOrganizationRequest{Name: "First"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, userID, domain.CreateOrganizationRequest{Name: "Second"})
	require.NoError(t, err)

	resolved, err := svc.ResolveAttribution(ctx, userID, nil)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, first.ID, resolved.String())
}

func TestListOrganizationsByUser(t *testing.T) {
	svc, _, node := newService(t)
	ctx := context.Background()
	userID := node.Generate()

	_, err := svc.Create(ctx, userID, domain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, node.Generate(), domain.CreateOrganizationRequest{Name: "Other"})
	require.NoError(t, err)

	items, err := svc.ListOrganizationsByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme", items[0].Name)
	assert.Equal(t, domain.RoleOwner, items[0].Role)
}
