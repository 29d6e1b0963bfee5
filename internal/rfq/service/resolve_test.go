package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/procura/internal/rfq/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVendorsPlaceholderForUnknownName(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.svc.(*Service)

	resolved, err := svc.resolveVendors(context.Background(), []vendorGroup{
		{Key: byName("No Such Vendor Ltd.")},
	})
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	assert.False(t, resolved[0].Deliverable)
	assert.Nil(t, resolved[0].VendorID)
	assert.Equal(t, "No Such Vendor Ltd.", resolved[0].Label)
	assert.Equal(t, "rfq-undeliverable+no-such-vendor-ltd@invalid.local", resolved[0].Email)
}

func TestResolveVendorsDirectoryHit(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.svc.(*Service)

	for id, vendor := range f.directory.byID {
		resolved, err := svc.resolveVendors(context.Background(), []vendorGroup{{Key: byID(id)}})
		require.NoError(t, err)
		require.Len(t, resolved, 1)

		assert.True(t, resolved[0].Deliverable)
		require.NotNil(t, resolved[0].VendorID)
		assert.Equal(t, id, *resolved[0].VendorID)
		assert.Equal(t, vendor.Email, resolved[0].Email)
	}
}

func TestResolveVendorsUnknownIDGetsPlaceholder(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.svc.(*Service)
	missing := f.node.Generate()

	resolved, err := svc.resolveVendors(context.Background(), []vendorGroup{{Key: byID(missing)}})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.False(t, resolved[0].Deliverable)
	assert.Equal(t, missing.String(), resolved[0].Label)
}

func TestResolveVendorsUnknownKind(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.svc.(*Service)

	resolved, err := svc.resolveVendors(context.Background(), []vendorGroup{
		{Key: domain.VendorKey{Kind: domain.VendorKeyUnknown}},
	})
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.False(t, resolved[0].Deliverable)
	assert.Equal(t, "unknown vendor", resolved[0].Label)
	assert.Equal(t, "rfq-undeliverable+unknown-vendor@invalid.local", resolved[0].Email)
}

func TestResolveVendorsPreservesGroupOrder(t *testing.T) {
	f := newFixture(t, nil)
	svc := f.svc.(*Service)

	groups := []vendorGroup{
		{Key: byName("Alpha")},
		{Key: byName("Beta")},
		{Key: byName("Gamma")},
	}
	resolved, err := svc.resolveVendors(context.Background(), groups)
	require.NoError(t, err)
	require.Len(t, resolved, 3)
	assert.Equal(t, "Alpha", resolved[0].Label)
	assert.Equal(t, "Beta", resolved[1].Label)
	assert.Equal(t, "Gamma", resolved[2].Label)
}
