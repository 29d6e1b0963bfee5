package service

import "github.com/smallbiznis/procura/internal/rfq/domain"

// vendorGroup is one partition of items keyed by vendor identity.
type vendorGroup struct {
	Key   domain.VendorKey
	Items []validatedItem
}

// partitionByVendor groups items by canonical vendor key. The partition is
// total and disjoint: every item lands in exactly one group. Groups keep
// the order in which their key first appeared, and items keep submission
// order within their group. Id and name keys never merge, even when they
// refer to the same real vendor.
func partitionByVendor(items []validatedItem) []vendorGroup {
	groups := make([]vendorGroup, 0)
	index := make(map[string]int)

	for _, item := range items {
		key := item.Key.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, vendorGroup{Key: item.Key})
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	return groups
}
