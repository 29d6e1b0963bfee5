package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/procura/internal/clock"
	"github.com/smallbiznis/procura/internal/config"
	"github.com/smallbiznis/procura/internal/notification"
	"github.com/smallbiznis/procura/internal/observability/metrics"
	orgdomain "github.com/smallbiznis/procura/internal/organization/domain"
	"github.com/smallbiznis/procura/internal/rfq/domain"
	vendordomain "github.com/smallbiznis/procura/internal/vendors/domain"
	"github.com/smallbiznis/procura/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// txTimeout bounds the distribution transaction. Sized for the worst
// case batch of 500 items; anything slower indicates an oversized write.
const txTimeout = 30 * time.Second

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	log        *zap.Logger
	db         *gorm.DB
	repo       domain.Repository
	orgs       orgdomain.Service
	directory  vendordomain.Directory
	dispatcher notification.Dispatcher
	metrics    *metrics.Metrics
	genID      *snowflake.Node
	clock      clock.Clock
	baseURL    string
}

func New(
	log *zap.Logger,
	cfg config.Config,
	conn *gorm.DB,
	repo domain.Repository,
	orgs orgdomain.Service,
	directory vendordomain.Directory,
	dispatcher notification.Dispatcher,
	m *metrics.Metrics,
	genID *snowflake.Node,
	clk clock.Clock,
) domain.Service {
	return &Service{
		log:        log.Named("rfq.service"),
		db:         conn,
		repo:       repo,
		orgs:       orgs,
		directory:  directory,
		dispatcher: dispatcher,
		metrics:    m,
		genID:      genID,
		clock:      clk,
		baseURL:    strings.TrimRight(cfg.AppBaseURL, "/"),
	}
}

// groupPlan is everything needed to persist one vendor group, assembled
// before the transaction opens.
type groupPlan struct {
	group    vendorGroup
	vendor   resolvedVendor
	quote    domain.Quote
	items    []domain.QuoteItem
	request  domain.QuoteVendorRequest
	rawToken string
}

func (s *Service) Distribute(ctx context.Context, userID snowflake.ID, req domain.DistributeRequest) (*domain.DistributeResult, error) {
	validated, err := validate(req)
	if err != nil {
		return nil, err
	}

	orgID, err := s.resolveAttribution(ctx, userID, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	groups := partitionByVendor(validated.Items)
	resolved, err := s.resolveVendors(ctx, groups)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	expiresAt := now.Add(time.Duration(validated.ExpiresDays) * 24 * time.Hour)

	plans, err := s.buildPlans(groups, resolved, validated, userID, orgID, now, expiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.writeAll(ctx, plans); err != nil {
		return nil, err
	}

	s.metrics.RecordDistribution(ctx, len(plans), len(validated.Items))
	s.log.Info("rfq distributed",
		zap.String("user_id", userID.String()),
		zap.Int("vendors", len(plans)),
		zap.Int("items", len(validated.Items)),
	)

	outcomes := s.dispatcher.Dispatch(ctx, s.intentsFor(plans))
	return s.buildResult(plans, outcomes, len(validated.Items), expiresAt), nil
}

func (s *Service) resolveAttribution(ctx context.Context, userID snowflake.ID, requested *string) (*snowflake.ID, error) {
	var requestedID *snowflake.ID
	if requested != nil && strings.TrimSpace(*requested) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(*requested))
		if err != nil {
			return nil, &domain.ValidationError{Details: []domain.FieldError{{
				Field:   "organizationId",
				Code:    "invalid",
				Message: "organizationId is not a valid id",
			}}}
		}
		requestedID = &id
	}
	return s.orgs.ResolveAttribution(ctx, userID, requestedID)
}

func (s *Service) buildPlans(
	groups []vendorGroup,
	resolved []resolvedVendor,
	validated *validatedRequest,
	userID snowflake.ID,
	orgID *snowflake.ID,
	now time.Time,
	expiresAt time.Time,
) ([]groupPlan, error) {
	plans := make([]groupPlan, 0, len(groups))

	for i, group := range groups {
		vendor := resolved[i]
		title := composeTitle(validated.Common.Title, vendor.Label, len(group.Items))
		message := composeMessage(messageFor(validated.Messages, group.Key), validated.Common)

		quote := domain.Quote{
			ID:               s.genID.Generate(),
			OrgID:            orgID,
			CreatedBy:        userID,
			Title:            title,
			Message:          message,
			Currency:         group.Items[0].Currency,
			DeliveryDate:     validated.Common.DeliveryDate,
			DeliveryLocation: validated.Common.DeliveryLocation,
			SpecialNotes:     validated.Common.SpecialNotes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		items := make([]domain.QuoteItem, 0, len(group.Items))
		for lineNo, item := range group.Items {
			items = append(items, domain.QuoteItem{
				ID:            s.genID.Generate(),
				QuoteID:       quote.ID,
				LineNo:        lineNo + 1,
				ProductName:   item.ProductName,
				Brand:         item.Brand,
				CatalogNumber: item.CatalogNumber,
				Quantity:      item.Quantity,
				Unit:          item.Unit,
				UnitPrice:     item.UnitPrice,
				Currency:      item.Currency,
				Notes:         item.Notes,
				CreatedAt:     now,
			})
		}

		rawToken, err := newToken()
		if err != nil {
			return nil, err
		}

		snapshot := buildSnapshot(title, now, quote.Currency, validated.Common, items)
		encoded, err := snapshot.Encode()
		if err != nil {
			return nil, err
		}

		plans = append(plans, groupPlan{
			group:  group,
			vendor: vendor,
			quote:  quote,
			items:  items,
			request: domain.QuoteVendorRequest{
				ID:          s.genID.Generate(),
				QuoteID:     quote.ID,
				VendorID:    vendor.VendorID,
				VendorKey:   group.Key.String(),
				VendorLabel: vendor.Label,
				VendorEmail: vendor.Email,
				Deliverable: vendor.Deliverable,
				TokenHash:   HashToken(rawToken),
				Status:      domain.StatusSent,
				Snapshot:    encoded,
				ExpiresAt:   expiresAt,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			rawToken: rawToken,
		})
	}

	return plans, nil
}

// writeAll persists every vendor group in one transaction. All groups
// commit or none do; a failure on the last group rolls back the rest.
func (s *Service) writeAll(ctx context.Context, plans []groupPlan) error {
	txCtx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	err := s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i := range plans {
			if err := repo.CreateQuote(txCtx, &plans[i].quote); err != nil {
				return err
			}
			if err := repo.CreateQuoteItems(txCtx, plans[i].items); err != nil {
				return err
			}
			if err := repo.CreateVendorRequest(txCtx, &plans[i].request); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	switch {
	case db.IsForeignKeyErr(err):
		return domain.ErrReferenceIntegrity
	case db.IsTimeoutErr(err) || errors.Is(txCtx.Err(), context.DeadlineExceeded):
		return domain.ErrTransactionTimeout
	default:
		return err
	}
}

func (s *Service) buildResult(plans []groupPlan, outcomes []notification.Outcome, totalItems int, expiresAt time.Time) *domain.DistributeResult {
	quotes := make([]domain.QuoteSummary, 0, len(plans))
	requests := make([]domain.VendorRequestInfo, 0, len(plans))
	emails := make([]domain.EmailResult, 0, len(outcomes))
	sent, failed := 0, 0

	for _, plan := range plans {
		quotes = append(quotes, domain.QuoteSummary{
			QuoteID:    plan.quote.ID.String(),
			VendorKey:  plan.request.VendorKey,
			VendorName: plan.vendor.Label,
			ItemCount:  len(plan.items),
		})
		requests = append(requests, domain.VendorRequestInfo{
			VendorRequestID: plan.request.ID.String(),
			VendorKey:       plan.request.VendorKey,
			VendorName:      plan.vendor.Label,
			VendorEmail:     plan.vendor.Email,
			Token:           plan.rawToken,
			ResponseURL:     fmt.Sprintf("%s/vendor/%s", s.baseURL, plan.rawToken),
			ExpiresAt:       plan.request.ExpiresAt,
		})
	}

	for _, outcome := range outcomes {
		emails = append(emails, domain.EmailResult{
			Email:     outcome.Email,
			Success:   outcome.Success,
			Error:     outcome.Error,
			VendorKey: outcome.VendorKey,
		})
		if outcome.Success {
			sent++
		} else {
			failed++
		}
	}

	return &domain.DistributeResult{
		Message:        fmt.Sprintf("Request distributed to %d vendors", len(plans)),
		Quotes:         quotes,
		VendorRequests: requests,
		EmailResults:   emails,
		Summary: domain.DistributeSummary{
			TotalVendors: len(plans),
			TotalItems:   totalItems,
			EmailsSent:   sent,
			EmailsFailed: failed,
			ExpiresAt:    expiresAt,
		},
	}
}

func (s *Service) intentsFor(plans []groupPlan) []notification.Intent {
	intents := make([]notification.Intent, 0, len(plans))
	for _, plan := range plans {
		intents = append(intents, notification.Intent{
			VendorRequestID: plan.request.ID.String(),
			VendorKey:       plan.request.VendorKey,
			VendorLabel:     plan.vendor.Label,
			Email:           plan.vendor.Email,
			Deliverable:     plan.vendor.Deliverable,
			QuoteTitle:      plan.quote.Title,
			ResponseURL:     fmt.Sprintf("%s/vendor/%s", s.baseURL, plan.rawToken),
			ExpiresAt:       plan.request.ExpiresAt,
		})
	}
	return intents
}

// messageFor finds the private note addressed to a vendor key, accepting
// both the canonical form and the raw spelling the buyer used.
func messageFor(messages map[string]string, key domain.VendorKey) string {
	if len(messages) == 0 {
		return ""
	}
	for _, candidate := range key.MessageKeys() {
		if msg, ok := messages[candidate]; ok {
			return msg
		}
	}
	return ""
}

func (s *Service) ListQuotes(ctx context.Context, req domain.ListQuotesRequest) (*domain.ListQuotesResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var beforeID snowflake.ID
	if strings.TrimSpace(req.Cursor) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.Cursor))
		if err != nil {
			return nil, &domain.ValidationError{Details: []domain.FieldError{{
				Field:   "cursor",
				Code:    "invalid",
				Message: "cursor is not valid",
			}}}
		}
		beforeID = id
	}

	// Fetch one extra row to know whether another page exists.
	rows, err := s.repo.ListQuotesByUser(ctx, req.UserID, req.OrgID, beforeID, limit+1)
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = rows[len(rows)-1].QuoteID.String()
	}

	now := s.clock.Now()
	items := make([]domain.QuoteListItem, 0, len(rows))
	for _, row := range rows {
		status := row.Status
		if status == domain.StatusSent && now.After(row.ExpiresAt) {
			status = domain.StatusExpired
		}
		items = append(items, domain.QuoteListItem{
			QuoteID:     row.QuoteID.String(),
			Title:       row.Title,
			VendorLabel: row.VendorLabel,
			Status:      status,
			ItemCount:   row.ItemCount,
			ExpiresAt:   row.ExpiresAt,
			RespondedAt: row.RespondedAt,
			CreatedAt:   row.CreatedAt,
		})
	}

	return &domain.ListQuotesResult{Quotes: items, NextCursor: nextCursor}, nil
}

func (s *Service) CancelVendorRequest(ctx context.Context, userID snowflake.ID, vendorRequestID string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(vendorRequestID))
	if err != nil {
		return domain.ErrVendorRequestNotFound
	}

	request, err := s.repo.GetVendorRequest(ctx, id)
	if err != nil {
		return err
	}
	quote, err := s.repo.GetQuote(ctx, request.QuoteID)
	if err != nil {
		return err
	}
	if quote.CreatedBy != userID {
		return domain.ErrVendorRequestNotFound
	}

	if err := s.repo.MarkCancelled(ctx, id, s.clock.Now()); err != nil {
		return err
	}

	s.log.Info("vendor request cancelled",
		zap.String("vendor_request_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}
