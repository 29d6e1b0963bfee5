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
	rfqdomain "github.com/smallbiznis/procura/internal/rfq/domain"
	"github.com/smallbiznis/procura/internal/rfq/repository"
	rfqservice "github.com/smallbiznis/procura/internal/rfq/service"
	"github.com/smallbiznis/procura/internal/vendorportal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc     domain.Service
	db      *gorm.DB
	clock   *clock.FakeClock
	node    *snowflake.Node
	token   string
	request rfqdomain.QuoteVendorRequest
	quote   rfqdomain.Quote
	items   []rfqdomain.QuoteItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&rfqdomain.Quote{},
		&rfqdomain.QuoteItem{},
		&rfqdomain.QuoteVendorRequest{},
		&rfqdomain.QuoteVendorResponseLine{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC))
	now := clk.Now()

	message := "Please quote bulk pricing."
	quote := rfqdomain.Quote{
		ID:        node.Generate(),
		CreatedBy: node.Generate(),
		Title:     "Lab restock (Sigma, 2 items)",
		Message:   &message,
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}
	items := []rfqdomain.QuoteItem{
		{ID: node.Generate(), QuoteID: quote.ID, LineNo: 1, ProductName: "Trypsin", Quantity: 2, Unit: "ea", Currency: "USD"},
		{ID: node.Generate(), QuoteID: quote.ID, LineNo: 2, ProductName: "FBS", Quantity: 1, Unit: "bottle", Currency: "USD"},
	}

	snap := rfqdomain.Snapshot{
		Version:   rfqdomain.SnapshotVersion,
		Title:     quote.Title,
		CreatedAt: now,
		Currency:  "USD",
	}
	for _, item := range items {
		snap.Items = append(snap.Items, rfqdomain.SnapshotItem{
			ID:       item.ID.String(),
			LineNo:   item.LineNo,
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		})
	}
	encoded, err := snap.Encode()
	require.NoError(t, err)

	token := "test-token-" + node.Generate().String()
	request := rfqdomain.QuoteVendorRequest{
		ID:          node.Generate(),
		QuoteID:     quote.ID,
		VendorKey:   "name:sigma",
		VendorLabel: "Sigma",
		VendorEmail: "quotes@sigma.test",
		Deliverable: true,
		TokenHash:   rfqservice.HashToken(token),
		Status:      rfqdomain.StatusSent,
		Snapshot:    encoded,
		ExpiresAt:   now.Add(14 * 24 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	require.NoError(t, conn.Create(&quote).Error)
	require.NoError(t, conn.Create(&items).Error)
	require.NoError(t, conn.Create(&request).Error)

	svc := New(zap.NewNop(), conn, repository.New(conn), nil, node, clk)

	return &fixture{
		svc:     svc,
		db:      conn,
		clock:   clk,
		node:    node,
		token:   token,
		request: request,
		quote:   quote,
		items:   items,
	}
}

func (f *fixture) submitLine(itemIdx int, price float64) domain.SubmitLine {
	return domain.SubmitLine{
		QuoteItemID: f.items[itemIdx].ID.String(),
		UnitPrice:   &price,
		Currency:    "usd",
	}
}

func TestGetByTokenServesSnapshot(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.GetByToken(context.Background(), f.token)
	require.NoError(t, err)

	assert.Equal(t, rfqdomain.StatusSent, view.VendorRequest.Status)
	require.NotNil(t, view.VendorRequest.Message)
	assert.Equal(t, "Please quote bulk pricing.", *view.VendorRequest.Message)
	assert.Equal(t, "Lab restock (Sigma, 2 items)", view.Quote.Title)
	assert.Equal(t, "USD", view.Quote.Currency)
	require.Len(t, view.Items, 2)
	assert.Equal(t, f.items[0].ID.String(), view.Items[0].ID)
	assert.Equal(t, "bottle", view.Items[1].Unit)
	assert.Nil(t, view.Items[0].ExistingResponse)
}

func TestGetByTokenSurvivesQuoteEdits(t *testing.T) {
	f := newFixture(t)

	// Edits after distribution must not leak into what the vendor sees.
	require.NoError(t, f.db.Model(&rfqdomain.Quote{}).
		Where("id = ?", f.quote.ID).
		Update("title", "Completely different title").Error)
	require.NoError(t, f.db.Delete(&rfqdomain.QuoteItem{}, "id = ?", f.items[1].ID).Error)

	view, err := f.svc.GetByToken(context.Background(), f.token)
	require.NoError(t, err)
	assert.Equal(t, "Lab restock (Sigma, 2 items)", view.Quote.Title)
	assert.Len(t, view.Items, 2)
}

func TestGetByTokenFailsClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for name, token := range map[string]string{
		"empty":     "",
		"blank":     "   ",
		"unknown":   "no-such-token",
		"malformed": "!!not base64url!!",
	} {
		_, err := f.svc.GetByToken(ctx, token)
		assert.ErrorIs(t, err, rfqdomain.ErrVendorRequestNotFound, name)
	}

	// Expired and cancelled links are indistinguishable from unknown ones.
	f.clock.Advance(15 * 24 * time.Hour)
	_, err := f.svc.GetByToken(ctx, f.token)
	assert.ErrorIs(t, err, rfqdomain.ErrVendorRequestNotFound)

	f.clock.Advance(-15 * 24 * time.Hour)
	require.NoError(t, f.db.Model(&rfqdomain.QuoteVendorRequest{}).
		Where("id = ?", f.request.ID).
		Update("status", rfqdomain.StatusCancelled).Error)
	_, err = f.svc.GetByToken(ctx, f.token)
	assert.ErrorIs(t, err, rfqdomain.ErrVendorRequestNotFound)
}

func TestSubmitResponsePersistsLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	name := "Alice at Sigma"
	err := f.svc.SubmitResponse(ctx, f.token, domain.SubmitRequest{
		Items:      []domain.SubmitLine{f.submitLine(0, 12.5), f.submitLine(1, 80)},
		VendorName: &name,
	})
	require.NoError(t, err)

	var stored rfqdomain.QuoteVendorRequest
	require.NoError(t, f.db.First(&stored, "id = ?", f.request.ID).Error)
	assert.Equal(t, rfqdomain.StatusResponded, stored.Status)
	require.NotNil(t, stored.RespondedAt)
	require.NotNil(t, stored.RespondentName)
	assert.Equal(t, name, *stored.RespondentName)

	var lines []rfqdomain.QuoteVendorResponseLine
	require.NoError(t, f.db.Order("quote_item_id").Find(&lines).Error)
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, "USD", line.Currency)
	}

	// The portal now shows the submitted values alongside each item.
	view, err := f.svc.GetByToken(ctx, f.token)
	require.NoError(t, err)
	assert.Equal(t, rfqdomain.StatusResponded, view.VendorRequest.Status)
	require.NotNil(t, view.Items[0].ExistingResponse)
	require.NotNil(t, view.Items[0].ExistingResponse.UnitPrice)
	assert.Equal(t, 12.5, *view.Items[0].ExistingResponse.UnitPrice)
}

func TestSubmitResponseOnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := domain.SubmitRequest{Items: []domain.SubmitLine{f.submitLine(0, 10)}}
	require.NoError(t, f.svc.SubmitResponse(ctx, f.token, req))

	err := f.svc.SubmitResponse(ctx, f.token, req)
	assert.ErrorIs(t, err, rfqdomain.ErrAlreadyResponded)

	var count int64
	f.db.Model(&rfqdomain.QuoteVendorResponseLine{}).Count(&count)
	assert.Equal(t, int64(1), count, "second submit must not add lines")
}

func TestSubmitResponseAfterExpiry(t *testing.T) {
	f := newFixture(t)

	f.clock.Advance(15 * 24 * time.Hour)
	err := f.svc.SubmitResponse(context.Background(), f.token, domain.SubmitRequest{
		Items: []domain.SubmitLine{f.submitLine(0, 10)},
	})
	assert.ErrorIs(t, err, rfqdomain.ErrRequestExpired)

	// Expiry is derived at read time; the row still says SENT.
	var stored rfqdomain.QuoteVendorRequest
	require.NoError(t, f.db.First(&stored, "id = ?", f.request.ID).Error)
	assert.Equal(t, rfqdomain.StatusSent, stored.Status)
}

func TestSubmitResponseCancelled(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Model(&rfqdomain.QuoteVendorRequest{}).
		Where("id = ?", f.request.ID).
		Update("status", rfqdomain.StatusCancelled).Error)

	err := f.svc.SubmitResponse(context.Background(), f.token, domain.SubmitRequest{
		Items: []domain.SubmitLine{f.submitLine(0, 10)},
	})
	assert.ErrorIs(t, err, rfqdomain.ErrRequestCancelled)
}

func TestSubmitDropsEmptyLines(t *testing.T) {
	f := newFixture(t)

	err := f.svc.SubmitResponse(context.Background(), f.token, domain.SubmitRequest{
		Items: []domain.SubmitLine{
			f.submitLine(0, 10),
			{QuoteItemID: f.items[1].ID.String()},
		},
	})
	require.NoError(t, err)

	var count int64
	f.db.Model(&rfqdomain.QuoteVendorResponseLine{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubmitAllEmptyRejected(t *testing.T) {
	f := newFixture(t)

	err := f.svc.SubmitResponse(context.Background(), f.token, domain.SubmitRequest{
		Items: []domain.SubmitLine{
			{QuoteItemID: f.items[0].ID.String()},
			{QuoteItemID: f.items[1].ID.String()},
		},
	})
	require.Error(t, err)

	ve, ok := rfqdomain.AsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Details, 1)
	assert.Equal(t, "items", ve.Details[0].Field)
	assert.Equal(t, "empty", ve.Details[0].Code)

	var stored rfqdomain.QuoteVendorRequest
	require.NoError(t, f.db.First(&stored, "id = ?", f.request.ID).Error)
	assert.Equal(t, rfqdomain.StatusSent, stored.Status, "rejected submit must not consume the request")
}

func TestSubmitRejectsForeignAndDuplicateItems(t *testing.T) {
	f := newFixture(t)
	price := 10.0

	err := f.svc.SubmitResponse(context.Background(), f.token, domain.SubmitRequest{
		Items: []domain.SubmitLine{
			{QuoteItemID: f.node.Generate().String(), UnitPrice: &price},
			{QuoteItemID: "garbage", UnitPrice: &price},
			f.submitLine(0, 10),
			f.submitLine(0, 11),
		},
	})
	require.Error(t, err)

	ve, ok := rfqdomain.AsValidationError(err)
	require.True(t, ok)
	codes := map[string]string{}
	for _, d := range ve.Details {
		codes[d.Field] = d.Code
	}
	assert.Equal(t, "unknown", codes["items[0].quoteItemId"])
	assert.Equal(t, "invalid", codes["items[1].quoteItemId"])
	assert.Equal(t, "duplicate", codes["items[3].quoteItemId"])

	var count int64
	f.db.Model(&rfqdomain.QuoteVendorResponseLine{}).Count(&count)
	assert.Zero(t, count)
}
