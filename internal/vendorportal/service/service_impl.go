package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/procura/internal/clock"
	"github.com/smallbiznis/procura/internal/observability/metrics"
	rfqdomain "github.com/smallbiznis/procura/internal/rfq/domain"
	rfqservice "github.com/smallbiznis/procura/internal/rfq/service"
	"github.com/smallbiznis/procura/internal/vendorportal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	log     *zap.Logger
	db      *gorm.DB
	repo    rfqdomain.Repository
	metrics *metrics.Metrics
	genID   *snowflake.Node
	clock   clock.Clock
}

func New(log *zap.Logger, conn *gorm.DB, repo rfqdomain.Repository, m *metrics.Metrics, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:     log.Named("vendorportal.service"),
		db:      conn,
		repo:    repo,
		metrics: m,
		genID:   genID,
		clock:   clk,
	}
}

// GetByToken serves the frozen snapshot for a live token. Unknown,
// malformed, expired, and cancelled tokens all come back as the same
// not-found error so the response gives no oracle for token guessing.
func (s *Service) GetByToken(ctx context.Context, rawToken string) (*domain.PortalView, error) {
	request, err := s.lookup(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	status := request.DerivedStatus(s.clock.Now())
	if status == rfqdomain.StatusExpired || status == rfqdomain.StatusCancelled {
		return nil, rfqdomain.ErrVendorRequestNotFound
	}

	snapshot, err := rfqdomain.DecodeSnapshot(request.Snapshot)
	if err != nil {
		return nil, err
	}

	quote, err := s.repo.GetQuote(ctx, request.QuoteID)
	if err != nil {
		return nil, err
	}

	existing := map[string]domain.ResponseLineView{}
	if status == rfqdomain.StatusResponded {
		lines, err := s.repo.GetResponseLines(ctx, request.ID)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			existing[line.QuoteItemID.String()] = domain.ResponseLineView{
				UnitPrice:    line.UnitPrice,
				Currency:     line.Currency,
				LeadTimeDays: line.LeadTimeDays,
				MOQ:          line.MOQ,
				VendorSku:    line.VendorSku,
				Notes:        line.Notes,
			}
		}
	}

	items := make([]domain.ItemView, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		view := domain.ItemView{
			ID:            item.ID,
			Name:          item.Name,
			Brand:         item.Brand,
			CatalogNumber: item.CatalogNumber,
			Quantity:      item.Quantity,
			Unit:          item.Unit,
		}
		if line, ok := existing[item.ID]; ok {
			lineCopy := line
			view.ExistingResponse = &lineCopy
		}
		items = append(items, view)
	}

	return &domain.PortalView{
		VendorRequest: domain.VendorRequestView{
			Status:      status,
			Message:     quote.Message,
			ExpiresAt:   request.ExpiresAt,
			RespondedAt: request.RespondedAt,
		},
		Quote: domain.QuoteView{
			Title:    snapshot.Title,
			Currency: snapshot.Currency,
		},
		Items: items,
	}, nil
}

// SubmitResponse accepts a vendor's one and only submission. The response
// lines and the SENT to RESPONDED transition commit atomically; the
// conditional status update makes a concurrent double submit lose cleanly.
func (s *Service) SubmitResponse(ctx context.Context, rawToken string, req domain.SubmitRequest) error {
	request, err := s.lookup(ctx, rawToken)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	switch request.DerivedStatus(now) {
	case rfqdomain.StatusResponded:
		return rfqdomain.ErrAlreadyResponded
	case rfqdomain.StatusExpired:
		return rfqdomain.ErrRequestExpired
	case rfqdomain.StatusCancelled:
		return rfqdomain.ErrRequestCancelled
	}

	lines, err := s.buildLines(request, req, now)
	if err != nil {
		return err
	}

	var respondentName *string
	if req.VendorName != nil && strings.TrimSpace(*req.VendorName) != "" {
		name := strings.TrimSpace(*req.VendorName)
		respondentName = &name
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.MarkResponded(ctx, request.ID, now, respondentName); err != nil {
			return err
		}
		return repo.CreateResponseLines(ctx, lines)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordVendorResponse(ctx)
	s.log.Info("vendor response accepted",
		zap.String("vendor_request_id", request.ID.String()),
		zap.Int("lines", len(lines)),
	)
	return nil
}

// lookup fails closed: malformed tokens never reach the database and look
// identical to unknown ones.
func (s *Service) lookup(ctx context.Context, rawToken string) (*rfqdomain.QuoteVendorRequest, error) {
	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, rfqdomain.ErrVendorRequestNotFound
	}
	return s.repo.GetVendorRequestByTokenHash(ctx, rfqservice.HashToken(token))
}

// buildLines validates the partial per-line response against the frozen
// snapshot. Lines with no populated field are dropped silently; a request
// that keeps zero lines is a validation error rather than an empty accept.
func (s *Service) buildLines(request *rfqdomain.QuoteVendorRequest, req domain.SubmitRequest, now time.Time) ([]rfqdomain.QuoteVendorResponseLine, error) {
	snapshot, err := rfqdomain.DecodeSnapshot(request.Snapshot)
	if err != nil {
		return nil, err
	}

	validItems := make(map[string]struct{}, len(snapshot.Items))
	for _, item := range snapshot.Items {
		validItems[item.ID] = struct{}{}
	}

	var details []rfqdomain.FieldError
	seen := make(map[snowflake.ID]struct{})
	lines := make([]rfqdomain.QuoteVendorResponseLine, 0, len(req.Items))

	for i, line := range req.Items {
		if !populated(line) {
			continue
		}

		field := fmt.Sprintf("items[%d].quoteItemId", i)
		itemID, err := snowflake.ParseString(strings.TrimSpace(line.QuoteItemID))
		if err != nil {
			details = append(details, rfqdomain.FieldError{
				Field: field, Code: "invalid", Message: "quoteItemId is not a valid id",
			})
			continue
		}
		if _, ok := validItems[itemID.String()]; !ok {
			details = append(details, rfqdomain.FieldError{
				Field: field, Code: "unknown", Message: "quoteItemId does not belong to this request",
			})
			continue
		}
		if _, dup := seen[itemID]; dup {
			details = append(details, rfqdomain.FieldError{
				Field: field, Code: "duplicate", Message: "quoteItemId appears more than once",
			})
			continue
		}
		seen[itemID] = struct{}{}

		lines = append(lines, rfqdomain.QuoteVendorResponseLine{
			ID:              s.genID.Generate(),
			VendorRequestID: request.ID,
			QuoteItemID:     itemID,
			UnitPrice:       line.UnitPrice,
			Currency:        strings.ToUpper(strings.TrimSpace(line.Currency)),
			LeadTimeDays:    line.LeadTimeDays,
			MOQ:             line.MOQ,
			VendorSku:       strings.TrimSpace(line.VendorSku),
			Notes:           strings.TrimSpace(line.Notes),
			CreatedAt:       now,
		})
	}

	if len(details) > 0 {
		return nil, &rfqdomain.ValidationError{Details: details}
	}
	if len(lines) == 0 {
		return nil, &rfqdomain.ValidationError{Details: []rfqdomain.FieldError{{
			Field: "items", Code: "empty", Message: "at least one line must have a populated field",
		}}}
	}
	return lines, nil
}

func populated(line domain.SubmitLine) bool {
	return line.UnitPrice != nil ||
		line.LeadTimeDays != nil ||
		line.MOQ != nil ||
		strings.TrimSpace(line.VendorSku) != "" ||
		strings.TrimSpace(line.Notes) != ""
}
