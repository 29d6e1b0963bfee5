package service

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/procura/internal/rfq/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemFor(name string, key domain.VendorKey) validatedItem {
	return validatedItem{
		ProductName: name,
		Key:         key,
		Quantity:    1,
		Unit:        "ea",
		Currency:    "USD",
	}
}

func byName(name string) domain.VendorKey {
	return domain.VendorKey{Kind: domain.VendorKeyByName, Name: name}
}

func byID(id snowflake.ID) domain.VendorKey {
	return domain.VendorKey{Kind: domain.VendorKeyByID, ID: id}
}

func TestPartitionCompleteAndDisjoint(t *testing.T) {
	items := []validatedItem{
		itemFor("Trypsin", byName("Sigma")),
		itemFor("FBS", byID(1)),
		itemFor("Pipette tips", byName("Sigma")),
		itemFor("Gloves", byName("VWR")),
		itemFor("Tubes", domain.VendorKey{Kind: domain.VendorKeyUnknown}),
	}

	groups := partitionByVendor(items)

	total := 0
	seen := map[string]bool{}
	for _, group := range groups {
		total += len(group.Items)
		for _, item := range group.Items {
			require.False(t, seen[item.ProductName], "item %s in two groups", item.ProductName)
			seen[item.ProductName] = true
		}
	}
	assert.Equal(t, len(items), total)
	for _, item := range items {
		assert.True(t, seen[item.ProductName], "item %s missing from partition", item.ProductName)
	}
}

func TestPartitionIdAndNameNeverMerge(t *testing.T) {
	// "Sigma" by name and vendor 1 by id stay separate even if they are
	// the same real vendor.
	items := []validatedItem{
		itemFor("Trypsin", byName("Sigma")),
		itemFor("FBS", byID(1)),
		itemFor("Pipette tips", byName("Sigma")),
	}

	groups := partitionByVendor(items)

	require.Len(t, groups, 2)
	assert.Equal(t, "name:sigma", groups[0].Key.String())
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "id:1", groups[1].Key.String())
	assert.Len(t, groups[1].Items, 1)
}

func TestPartitionNameCaseInsensitive(t *testing.T) {
	items := []validatedItem{
		itemFor("A", byName("Sigma")),
		itemFor("B", byName("SIGMA")),
		itemFor("C", byName("sigma")),
	}

	groups := partitionByVendor(items)

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Items, 3)
}

func TestPartitionPreservesOrder(t *testing.T) {
	items := []validatedItem{
		itemFor("A", byName("Zeta")),
		itemFor("B", byName("Alpha")),
		itemFor("C", byName("Zeta")),
	}

	groups := partitionByVendor(items)

	require.Len(t, groups, 2)
	assert.Equal(t, "name:zeta", groups[0].Key.String())
	assert.Equal(t, "name:alpha", groups[1].Key.String())
	assert.Equal(t, []string{"A", "C"}, []string{groups[0].Items[0].ProductName, groups[0].Items[1].ProductName})
}

func TestPartitionUnknownBucket(t *testing.T) {
	items := []validatedItem{
		itemFor("A", domain.VendorKey{Kind: domain.VendorKeyUnknown}),
		itemFor("B", domain.VendorKey{Kind: domain.VendorKeyUnknown}),
	}

	groups := partitionByVendor(items)

	require.Len(t, groups, 1)
	assert.Equal(t, "unknown", groups[0].Key.String())
	assert.Len(t, groups[0].Items, 2)
}
