package domain

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

// VendorKeyKind discriminates how a line item referenced its vendor.
type VendorKeyKind int

const (
	VendorKeyUnknown VendorKeyKind = iota
	VendorKeyByID
	VendorKeyByName
)

// VendorKey is the tagged vendor identity of a line item. Items carry a
// vendor id, a vendor name, or neither; id wins when both are present.
// Keys of different kinds never merge, even when they point at the same
// real vendor.
type VendorKey struct {
	Kind VendorKeyKind
	ID   snowflake.ID
	Name string
}

func VendorKeyFromItem(vendorID *snowflake.ID, vendorName string) VendorKey {
	if vendorID != nil && *vendorID != 0 {
		return VendorKey{Kind: VendorKeyByID, ID: *vendorID}
	}
	name := strings.TrimSpace(vendorName)
	if name != "" {
		return VendorKey{Kind: VendorKeyByName, Name: name}
	}
	return VendorKey{Kind: VendorKeyUnknown}
}

// String returns the canonical partition key. Name keys are lowercased so
// that case variants of the same name land in one group.
func (k VendorKey) String() string {
	switch k.Kind {
	case VendorKeyByID:
		return "id:" + k.ID.String()
	case VendorKeyByName:
		return "name:" + strings.ToLower(k.Name)
	default:
		return "unknown"
	}
}

// MessageKeys lists the forms under which a private vendor message may be
// addressed to this key: the canonical form plus the raw spellings a buyer
// would plausibly type.
func (k VendorKey) MessageKeys() []string {
	switch k.Kind {
	case VendorKeyByID:
		return []string{k.String(), k.ID.String()}
	case VendorKeyByName:
		keys := []string{k.String(), strings.ToLower(k.Name)}
		if k.Name != strings.ToLower(k.Name) {
			keys = append(keys, k.Name)
		}
		return keys
	default:
		return []string{"unknown"}
	}
}
