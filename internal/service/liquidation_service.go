package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateLiquidationRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	TaxType    string `json:"tax_type" binding:"required"`
	Amount     string `json:"amount" binding:"required"` // decimal string
	IssueDate  string `json:"issue_date"`                // YYYY-MM-DD, defaults to today
	DueDate    string `json:"due_date" binding:"required"`
}

type UpdateLiquidationRequest struct {
	CustomerID *string `json:"customer_id"`
	TaxType    *string `json:"tax_type"`
	Amount     *string `json:"amount"`
	IssueDate  *string `json:"issue_date"`
	DueDate    *string `json:"due_date"`
}

type LiquidationFilter struct {
	CustomerID string
	Status     string
	StartDate  string // YYYY-MM-DD, inclusive on issue date
	EndDate    string
	Page       int
	Limit      int
}

type LiquidationResponse struct {
	ID              string  `json:"id"`
	CustomerID      string  `json:"customer_id"`
	CustomerName    string  `json:"customer_name,omitempty"`
	CustomerIFU     string  `json:"customer_ifu,omitempty"`
	TaxType         string  `json:"tax_type"`
	Amount          string  `json:"amount"`
	IssueDate       string  `json:"issue_date"`
	DueDate         string  `json:"due_date"`
	Status          string  `json:"status"`
	HasQRCode       bool    `json:"has_qr_code"`
	QRCodeData      string  `json:"qr_code_data,omitempty"`
	QRImageBase64   string  `json:"qr_image_base64,omitempty"`
	QRType          string  `json:"qr_type,omitempty"`
	MerchantChannel string  `json:"merchant_channel,omitempty"`
	TransactionID   *string `json:"transaction_id,omitempty"`
	QRGeneratedAt   *string `json:"qr_generated_at,omitempty"`
	PenaltyAmount   *string `json:"penalty_amount,omitempty"`
	TotalAmount     *string `json:"total_amount,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

type PenaltyResponse struct {
	LiquidationID string `json:"liquidation_id"`
	DailyRate     string `json:"daily_rate"`
	Penalty       string `json:"penalty"`
	Total         string `json:"total"`
}

// --- Interface ---

type LiquidationService interface {
	Create(ctx context.Context, req CreateLiquidationRequest) (LiquidationResponse, error)
	Get(ctx context.Context, id string) (LiquidationResponse, error)
	List(ctx context.Context, filter LiquidationFilter) ([]LiquidationResponse, int64, error)
	Search(ctx context.Context, term string, page, limit int) ([]LiquidationResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateLiquidationRequest) (LiquidationResponse, error)
	MarkPaid(ctx context.Context, id string) (LiquidationResponse, error)
	Delete(ctx context.Context, id string) error
	PenaltyPreview(ctx context.Context, id string, dailyRate string) (PenaltyResponse, error)
}

type liquidationService struct {
	liqRepo      repository.LiquidationRepository
	customerRepo repository.CustomerRepository
	now          func() time.Time
}

func NewLiquidationService(liqRepo repository.LiquidationRepository, customerRepo repository.CustomerRepository) LiquidationService {
	return &liquidationService{
		liqRepo:      liqRepo,
		customerRepo: customerRepo,
		now:          time.Now,
	}
}

// --- Penalty calculation ---

// CalculatePenalty returns the overdue penalty owed as of today. Zero when
// the rate is not positive, the liquidation is already paid, or the due date
// has not passed. Otherwise amount * dailyRate * overdueDays, rounded to two
// decimal places (half up).
func CalculatePenalty(liq *model.Liquidation, dailyRate decimal.Decimal, today time.Time) decimal.Decimal {
	if liq == nil || !dailyRate.IsPositive() {
		return decimal.Zero
	}
	if liq.Status == model.StatusPaid {
		return decimal.Zero
	}

	due := civilDate(liq.DueDate)
	now := civilDate(today)
	if !now.After(due) {
		return decimal.Zero
	}

	overdueDays := int64(now.Sub(due).Hours() / 24)
	if overdueDays <= 0 {
		return decimal.Zero
	}

	return liq.Amount.
		Mul(dailyRate).
		Mul(decimal.NewFromInt(overdueDays)).
		Round(2)
}

// --- Implementation ---

func (s *liquidationService) Create(ctx context.Context, req CreateLiquidationRequest) (LiquidationResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return LiquidationResponse{}, validationErrorf("invalid customer_id: %v", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LiquidationResponse{}, validationErrorf("customer %s not found", req.CustomerID)
		}
		return LiquidationResponse{}, fmt.Errorf("failed to resolve customer: %w", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return LiquidationResponse{}, validationErrorf("invalid amount: %v", err)
	}
	if !amount.IsPositive() {
		return LiquidationResponse{}, validationErrorf("amount must be positive")
	}

	today := civilDate(s.now())

	issueDate := today
	if req.IssueDate != "" {
		issueDate, err = parseDate(req.IssueDate)
		if err != nil {
			return LiquidationResponse{}, validationErrorf("invalid issue_date: %v", err)
		}
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		return LiquidationResponse{}, validationErrorf("invalid due_date: %v", err)
	}
	if dueDate.Before(issueDate) {
		return LiquidationResponse{}, validationErrorf("due_date must not precede issue_date")
	}

	liquidation := model.Liquidation{
		CustomerID: customer.ID,
		Customer:   customer,
		TaxType:    req.TaxType,
		Amount:     amount,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Status:     statusForDueDate(dueDate, today),
	}

	if err := s.liqRepo.Create(ctx, &liquidation); err != nil {
		return LiquidationResponse{}, fmt.Errorf("failed to create liquidation: %w", err)
	}

	return toLiquidationResponse(liquidation), nil
}

func (s *liquidationService) Get(ctx context.Context, id string) (LiquidationResponse, error) {
	liquidation, err := s.findByID(ctx, id)
	if err != nil {
		return LiquidationResponse{}, err
	}
	return toLiquidationResponse(*liquidation), nil
}

func (s *liquidationService) List(ctx context.Context, filter LiquidationFilter) ([]LiquidationResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.LiquidationListFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}

	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, validationErrorf("invalid customer_id: %v", err)
		}
		repoFilter.CustomerID = &customerID
	}
	if filter.StartDate != "" {
		start, err := parseDate(filter.StartDate)
		if err != nil {
			return nil, 0, validationErrorf("invalid start_date: %v", err)
		}
		repoFilter.StartDate = &start
	}
	if filter.EndDate != "" {
		end, err := parseDate(filter.EndDate)
		if err != nil {
			return nil, 0, validationErrorf("invalid end_date: %v", err)
		}
		repoFilter.EndDate = &end
	}

	liquidations, total, err := s.liqRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list liquidations: %w", err)
	}

	return toLiquidationResponses(liquidations), total, nil
}

func (s *liquidationService) Search(ctx context.Context, term string, page, limit int) ([]LiquidationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	liquidations, total, err := s.liqRepo.SearchByTerm(ctx, term, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search liquidations: %w", err)
	}
	return toLiquidationResponses(liquidations), total, nil
}

func (s *liquidationService) Update(ctx context.Context, id string, req UpdateLiquidationRequest) (LiquidationResponse, error) {
	liquidation, err := s.findByID(ctx, id)
	if err != nil {
		return LiquidationResponse{}, err
	}

	if req.CustomerID != nil {
		customerID, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return LiquidationResponse{}, validationErrorf("invalid customer_id: %v", err)
		}
		customer, err := s.customerRepo.FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return LiquidationResponse{}, validationErrorf("customer %s not found", *req.CustomerID)
			}
			return LiquidationResponse{}, fmt.Errorf("failed to resolve customer: %w", err)
		}
		liquidation.CustomerID = customer.ID
		liquidation.Customer = customer
	}
	if req.TaxType != nil {
		liquidation.TaxType = *req.TaxType
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return LiquidationResponse{}, validationErrorf("invalid amount: %v", err)
		}
		if !amount.IsPositive() {
			return LiquidationResponse{}, validationErrorf("amount must be positive")
		}
		liquidation.Amount = amount
	}
	if req.IssueDate != nil {
		issueDate, err := parseDate(*req.IssueDate)
		if err != nil {
			return LiquidationResponse{}, validationErrorf("invalid issue_date: %v", err)
		}
		liquidation.IssueDate = issueDate
	}
	if req.DueDate != nil {
		dueDate, err := parseDate(*req.DueDate)
		if err != nil {
			return LiquidationResponse{}, validationErrorf("invalid due_date: %v", err)
		}
		liquidation.DueDate = dueDate
	}

	if liquidation.DueDate.Before(liquidation.IssueDate) {
		return LiquidationResponse{}, validationErrorf("due_date must not precede issue_date")
	}

	// PAID is sticky; otherwise the status follows the due date.
	if liquidation.Status != model.StatusPaid {
		liquidation.Status = statusForDueDate(liquidation.DueDate, s.now())
	}

	if err := s.liqRepo.Save(ctx, liquidation); err != nil {
		return LiquidationResponse{}, fmt.Errorf("failed to update liquidation: %w", err)
	}

	return toLiquidationResponse(*liquidation), nil
}

// MarkPaid transitions the liquidation to PAID. Marking an already-paid
// record again is a no-op success.
func (s *liquidationService) MarkPaid(ctx context.Context, id string) (LiquidationResponse, error) {
	liquidation, err := s.findByID(ctx, id)
	if err != nil {
		return LiquidationResponse{}, err
	}

	if liquidation.Status != model.StatusPaid {
		liquidation.Status = model.StatusPaid
		if err := s.liqRepo.Save(ctx, liquidation); err != nil {
			return LiquidationResponse{}, fmt.Errorf("failed to mark liquidation paid: %w", err)
		}
	}

	return toLiquidationResponse(*liquidation), nil
}

func (s *liquidationService) Delete(ctx context.Context, id string) error {
	liquidation, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.liqRepo.Delete(ctx, liquidation.ID); err != nil {
		return fmt.Errorf("failed to delete liquidation: %w", err)
	}
	return nil
}

func (s *liquidationService) PenaltyPreview(ctx context.Context, id string, dailyRate string) (PenaltyResponse, error) {
	liquidation, err := s.findByID(ctx, id)
	if err != nil {
		return PenaltyResponse{}, err
	}

	rate, err := decimal.NewFromString(dailyRate)
	if err != nil {
		return PenaltyResponse{}, validationErrorf("invalid daily_rate: %v", err)
	}

	penalty := CalculatePenalty(liquidation, rate, s.now())
	return PenaltyResponse{
		LiquidationID: liquidation.ID.String(),
		DailyRate:     rate.String(),
		Penalty:       penalty.StringFixed(2),
		Total:         liquidation.Amount.Add(penalty).StringFixed(2),
	}, nil
}

// --- Helpers ---

func (s *liquidationService) findByID(ctx context.Context, id string) (*model.Liquidation, error) {
	liquidationID, err := uuid.Parse(id)
	if err != nil {
		return nil, validationErrorf("invalid liquidation id: %v", err)
	}
	liquidation, err := s.liqRepo.FindByID(ctx, liquidationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load liquidation: %w", err)
	}
	return liquidation, nil
}

func statusForDueDate(dueDate, today time.Time) string {
	if civilDate(today).After(civilDate(dueDate)) {
		return model.StatusOverdue
	}
	return model.StatusPending
}

// civilDate collapses an instant to the UTC midnight of the calendar date it
// reads as in its own zone. Due dates parse as UTC midnights while the clock
// runs in the server zone; comparing civil dates keeps day counts whole.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dateOnly keeps the instant's own zone: it marks the local-midnight day
// boundary used by the generated-today/week/month windows.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func toLiquidationResponses(liquidations []model.Liquidation) []LiquidationResponse {
	result := make([]LiquidationResponse, 0, len(liquidations))
	for _, l := range liquidations {
		result = append(result, toLiquidationResponse(l))
	}
	return result
}

func toLiquidationResponse(l model.Liquidation) LiquidationResponse {
	resp := LiquidationResponse{
		ID:              l.ID.String(),
		CustomerID:      l.CustomerID.String(),
		TaxType:         l.TaxType,
		Amount:          l.Amount.StringFixed(2),
		IssueDate:       l.IssueDate.Format("2006-01-02"),
		DueDate:         l.DueDate.Format("2006-01-02"),
		Status:          l.Status,
		HasQRCode:       l.HasQRCode(),
		QRCodeData:      l.QRCodeData,
		QRImageBase64:   l.QRImageBase64,
		QRType:          l.QRType,
		MerchantChannel: l.MerchantChannel,
		TransactionID:   l.TransactionID,
		CreatedAt:       l.CreatedAt.Format(time.RFC3339),
	}

	if l.Customer != nil {
		resp.CustomerName = l.Customer.FullName()
		resp.CustomerIFU = l.Customer.IFU
	}
	if l.QRGeneratedAt != nil {
		ts := l.QRGeneratedAt.Format(time.RFC3339)
		resp.QRGeneratedAt = &ts
	}
	if l.PenaltyAmount != nil {
		p := l.PenaltyAmount.StringFixed(2)
		resp.PenaltyAmount = &p
	}
	if l.TotalAmount != nil {
		t := l.TotalAmount.StringFixed(2)
		resp.TotalAmount = &t
	}

	return resp
}
