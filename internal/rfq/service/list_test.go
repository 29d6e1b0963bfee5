package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/procura/internal/rfq/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func distributeN(t *testing.T, f *fixture, userID snowflake.ID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.svc.Distribute(context.Background(), userID, domain.DistributeRequest{
			Items: []domain.LineItemInput{{
				ProductName: fmt.Sprintf("Item %d", i),
				VendorName:  fmt.Sprintf("Vendor %d", i),
				Quantity:    1,
				Currency:    "USD",
			}},
			CommonRequest: domain.CommonRequest{Title: fmt.Sprintf("Batch %d", i)},
		})
		require.NoError(t, err)
	}
}

func TestListQuotesPagination(t *testing.T) {
	f := newFixture(t, nil)
	userID := f.node.Generate()
	distributeN(t, f, userID, 5)

	first, err := f.svc.ListQuotes(context.Background(), domain.ListQuotesRequest{UserID: userID, Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Quotes, 3)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.svc.ListQuotes(context.Background(), domain.ListQuotesRequest{
		UserID: userID,
		Limit:  3,
		Cursor: first.NextCursor,
	})
	require.NoError(t, err)
	require.Len(t, second.Quotes, 2)
	assert.Empty(t, second.NextCursor)

	// Newest first with no overlap between pages.
	seen := map[string]bool{}
	var all []domain.QuoteListItem
	all = append(all, first.Quotes...)
	all = append(all, second.Quotes...)
	for i, item := range all {
		assert.False(t, seen[item.QuoteID], "quote %s listed twice", item.QuoteID)
		seen[item.QuoteID] = true
		if i > 0 {
			assert.True(t, all[i-1].QuoteID > item.QuoteID, "list must be newest first")
		}
	}
}

func TestListQuotesScopedToUser(t *testing.T) {
	f := newFixture(t, nil)
	mine := f.node.Generate()
	other := f.node.Generate()
	distributeN(t, f, mine, 2)
	distributeN(t, f, other, 1)

	result, err := f.svc.ListQuotes(context.Background(), domain.ListQuotesRequest{UserID: mine})
	require.NoError(t, err)
	assert.Len(t, result.Quotes, 2)
}

func TestListQuotesDerivesExpiry(t *testing.T) {
	f := newFixture(t, nil)
	userID := f.node.Generate()
	distributeN(t, f, userID, 1)

	before, err := f.svc.ListQuotes(context.Background(), domain.ListQuotesRequest{UserID: userID})
	require.NoError(t, err)
	require.Len(t, before.Quotes, 1)
	assert.Equal(t, domain.StatusSent, before.Quotes[0].Status)

	f.clock.Advance(15 * 24 * time.Hour)
	after, err := f.svc.ListQuotes(context.Background(), domain.ListQuotesRequest{UserID: userID})
	require.NoError(t, err)
	require.Len(t, after.Quotes, 1)
	assert.Equal(t, domain.StatusExpired, after.Quotes[0].Status)

	// The stored row still says SENT; expiry is a read-time view.
	var stored domain.QuoteVendorRequest
	require.NoError(t, f.db.First(&stored).Error)
	assert.Equal(t, domain.StatusSent, stored.Status)
}

func TestListQuotesBadCursor(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.ListQuotes(context.Background(), domain.ListQuotesRequest{
		UserID: f.node.Generate(),
		Cursor: "not-a-cursor",
	})
	require.Error(t, err)
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
}

func TestCancelVendorRequest(t *testing.T) {
	f := newFixture(t, nil)
	userID := f.node.Generate()
	distributeN(t, f, userID, 1)

	var request domain.QuoteVendorRequest
	require.NoError(t, f.db.First(&request).Error)

	require.NoError(t, f.svc.CancelVendorRequest(context.Background(), userID, request.ID.String()))

	var stored domain.QuoteVendorRequest
	require.NoError(t, f.db.First(&stored, "id = ?", request.ID).Error)
	assert.Equal(t, domain.StatusCancelled, stored.Status)

	// Cancelling again is rejected; only SENT requests can transition.
	err := f.svc.CancelVendorRequest(context.Background(), userID, request.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotCancellable)
}

func TestCancelVendorRequestForeignOwner(t *testing.T) {
	f := newFixture(t, nil)
	owner := f.node.Generate()
	stranger := f.node.Generate()
	distributeN(t, f, owner, 1)

	var request domain.QuoteVendorRequest
	require.NoError(t, f.db.First(&request).Error)

	// Another buyer's request is indistinguishable from a missing one.
	err := f.svc.CancelVendorRequest(context.Background(), stranger, request.ID.String())
	assert.ErrorIs(t, err, domain.ErrVendorRequestNotFound)

	var stored domain.QuoteVendorRequest
	require.NoError(t, f.db.First(&stored, "id = ?", request.ID).Error)
	assert.Equal(t, domain.StatusSent, stored.Status)
}

func TestCancelVendorRequestMalformedID(t *testing.T) {
	f := newFixture(t, nil)
	err := f.svc.CancelVendorRequest(context.Background(), f.node.Generate(), "garbage")
	assert.ErrorIs(t, err, domain.ErrVendorRequestNotFound)
}
