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

type QRStatsResponse struct {
	CountByType    map[string]int64 `json:"count_by_type"`
	TotalWithQR    int64            `json:"total_with_qr"`
	TotalAmount    string           `json:"total_amount"`
	TotalPenalties string           `json:"total_penalties"`
}

// --- Interface ---

// QRDataService is the read/maintenance surface over stored QR artifact
// metadata: filtered listings, time-window queries, aggregates, and bulk
// clear/recompute operations.
type QRDataService interface {
	ListWithQR(ctx context.Context) ([]LiquidationResponse, error)
	ListWithoutQR(ctx context.Context) ([]LiquidationResponse, error)
	ListByQRType(ctx context.Context, qrType string) ([]LiquidationResponse, error)
	ListWithQRByCustomer(ctx context.Context, customerID string) ([]LiquidationResponse, error)
	ListWithQRByStatus(ctx context.Context, status string) ([]LiquidationResponse, error)
	ListWithQRByTaxType(ctx context.Context, taxType string) ([]LiquidationResponse, error)
	ListGeneratedToday(ctx context.Context) ([]LiquidationResponse, error)
	ListGeneratedThisWeek(ctx context.Context) ([]LiquidationResponse, error)
	ListGeneratedThisMonth(ctx context.Context) ([]LiquidationResponse, error)
	ListWithPenalties(ctx context.Context) ([]LiquidationResponse, error)
	ListByTotalAmountRange(ctx context.Context, min, max string) ([]LiquidationResponse, error)
	ListByPenaltyAmountRange(ctx context.Context, min, max string) ([]LiquidationResponse, error)
	FindByTransactionID(ctx context.Context, transactionID string) (LiquidationResponse, error)
	TransactionIDExists(ctx context.Context, transactionID string) (bool, error)
	HasValidQRCode(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (QRStatsResponse, error)
	TotalAmountWithQR(ctx context.Context) (string, error)
	TotalPenalties(ctx context.Context) (string, error)
	ClearQRData(ctx context.Context, id string) error
	ClearQRDataByCustomer(ctx context.Context, customerID string) (int, error)
	ClearQRDataOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	UpdateTotalAmount(ctx context.Context, id string) (LiquidationResponse, error)
	UpdateAllTotalAmounts(ctx context.Context) (int, error)
}

type qrDataService struct {
	liqRepo repository.LiquidationRepository
	txMgr   repository.TransactionManager
	now     func() time.Time
}

func NewQRDataService(liqRepo repository.LiquidationRepository, txMgr repository.TransactionManager) QRDataService {
	return &qrDataService{liqRepo: liqRepo, txMgr: txMgr, now: time.Now}
}

// --- Listings ---

func (s *qrDataService) ListWithQR(ctx context.Context) ([]LiquidationResponse, error) {
	return s.list(s.liqRepo.FindWithQR(ctx))
}

func (s *qrDataService) ListWithoutQR(ctx context.Context) ([]LiquidationResponse, error) {
	return s.list(s.liqRepo.FindWithoutQR(ctx))
}

func (s *qrDataService) ListByQRType(ctx context.Context, qrType string) ([]LiquidationResponse, error) {
	switch qrType {
	case model.QRTypeStatic, model.QRTypeDynamic, model.QRTypeP2P, model.QRTypePenalty:
	default:
		return nil, validationErrorf("unknown qr type %q", qrType)
	}
	return s.list(s.liqRepo.FindByQRType(ctx, qrType))
}

func (s *qrDataService) ListWithQRByCustomer(ctx context.Context, customerID string) ([]LiquidationResponse, error) {
	id, err := uuid.Parse(customerID)
	if err != nil {
		return nil, validationErrorf("invalid customer id: %v", err)
	}
	return s.list(s.liqRepo.FindWithQRByCustomer(ctx, id))
}

func (s *qrDataService) ListWithQRByStatus(ctx context.Context, status string) ([]LiquidationResponse, error) {
	return s.list(s.liqRepo.FindWithQRByStatus(ctx, status))
}

func (s *qrDataService) ListWithQRByTaxType(ctx context.Context, taxType string) ([]LiquidationResponse, error) {
	return s.list(s.liqRepo.FindWithQRByTaxType(ctx, taxType))
}

func (s *qrDataService) ListGeneratedToday(ctx context.Context) ([]LiquidationResponse, error) {
	from := dateOnly(s.now())
	return s.list(s.liqRepo.FindWithQRGeneratedBetween(ctx, from, from.AddDate(0, 0, 1)))
}

// ListGeneratedThisWeek covers Monday through Sunday of the current week.
func (s *qrDataService) ListGeneratedThisWeek(ctx context.Context) ([]LiquidationResponse, error) {
	today := dateOnly(s.now())
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	from := today.AddDate(0, 0, -(weekday - 1))
	return s.list(s.liqRepo.FindWithQRGeneratedBetween(ctx, from, from.AddDate(0, 0, 7)))
}

func (s *qrDataService) ListGeneratedThisMonth(ctx context.Context) ([]LiquidationResponse, error) {
	today := dateOnly(s.now())
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	return s.list(s.liqRepo.FindWithQRGeneratedBetween(ctx, from, from.AddDate(0, 1, 0)))
}

func (s *qrDataService) ListWithPenalties(ctx context.Context) ([]LiquidationResponse, error) {
	return s.list(s.liqRepo.FindWithPenalties(ctx))
}

func (s *qrDataService) ListByTotalAmountRange(ctx context.Context, min, max string) ([]LiquidationResponse, error) {
	lo, hi, err := parseAmountRange(min, max)
	if err != nil {
		return nil, err
	}
	return s.list(s.liqRepo.FindByTotalAmountBetween(ctx, lo, hi))
}

func (s *qrDataService) ListByPenaltyAmountRange(ctx context.Context, min, max string) ([]LiquidationResponse, error) {
	lo, hi, err := parseAmountRange(min, max)
	if err != nil {
		return nil, err
	}
	return s.list(s.liqRepo.FindByPenaltyAmountBetween(ctx, lo, hi))
}

// --- Lookups ---

func (s *qrDataService) FindByTransactionID(ctx context.Context, transactionID string) (LiquidationResponse, error) {
	liq, err := s.liqRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LiquidationResponse{}, ErrNotFound
		}
		return LiquidationResponse{}, fmt.Errorf("failed to find by transaction id: %w", err)
	}
	return toLiquidationResponse(*liq), nil
}

func (s *qrDataService) TransactionIDExists(ctx context.Context, transactionID string) (bool, error) {
	_, err := s.liqRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check transaction id: %w", err)
	}
	return true, nil
}

func (s *qrDataService) HasValidQRCode(ctx context.Context, id string) (bool, error) {
	liq, err := s.findByID(ctx, id)
	if err != nil {
		return false, err
	}
	return liq.HasValidQRCode(), nil
}

// --- Aggregates ---

func (s *qrDataService) Stats(ctx context.Context) (QRStatsResponse, error) {
	counts, err := s.liqRepo.CountByQRType(ctx)
	if err != nil {
		return QRStatsResponse{}, fmt.Errorf("failed to count by qr type: %w", err)
	}

	liquidations, err := s.liqRepo.FindWithQR(ctx)
	if err != nil {
		return QRStatsResponse{}, fmt.Errorf("failed to load liquidations with QR: %w", err)
	}

	total, penalties := sumAmounts(liquidations)
	return QRStatsResponse{
		CountByType:    counts,
		TotalWithQR:    int64(len(liquidations)),
		TotalAmount:    total.StringFixed(2),
		TotalPenalties: penalties.StringFixed(2),
	}, nil
}

func (s *qrDataService) TotalAmountWithQR(ctx context.Context) (string, error) {
	liquidations, err := s.liqRepo.FindWithQR(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load liquidations with QR: %w", err)
	}
	total, _ := sumAmounts(liquidations)
	return total.StringFixed(2), nil
}

func (s *qrDataService) TotalPenalties(ctx context.Context) (string, error) {
	liquidations, err := s.liqRepo.FindWithPenalties(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load liquidations with penalties: %w", err)
	}
	_, penalties := sumAmounts(liquidations)
	return penalties.StringFixed(2), nil
}

// --- Maintenance ---

// ClearQRData wipes the QR sub-state of one liquidation. Clearing a record
// without an artifact succeeds without touching the row.
func (s *qrDataService) ClearQRData(ctx context.Context, id string) error {
	liq, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if !liq.HasQRCode() {
		return nil
	}
	return s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		liq.ClearQRData()
		return s.liqRepo.Save(txCtx, liq)
	})
}

func (s *qrDataService) ClearQRDataByCustomer(ctx context.Context, customerID string) (int, error) {
	id, err := uuid.Parse(customerID)
	if err != nil {
		return 0, validationErrorf("invalid customer id: %v", err)
	}

	liquidations, err := s.liqRepo.FindWithQRByCustomer(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to load liquidations: %w", err)
	}
	return s.clearAll(ctx, liquidations)
}

// ClearQRDataOlderThan wipes artifacts generated strictly before the cutoff.
func (s *qrDataService) ClearQRDataOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	liquidations, err := s.liqRepo.FindWithQRGeneratedBetween(ctx, time.Time{}, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to load liquidations: %w", err)
	}
	return s.clearAll(ctx, liquidations)
}

func (s *qrDataService) clearAll(ctx context.Context, liquidations []model.Liquidation) (int, error) {
	if len(liquidations) == 0 {
		return 0, nil
	}
	err := s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range liquidations {
			liquidations[i].ClearQRData()
		}
		return s.liqRepo.SaveAll(txCtx, liquidations)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear QR data: %w", err)
	}
	return len(liquidations), nil
}

func (s *qrDataService) UpdateTotalAmount(ctx context.Context, id string) (LiquidationResponse, error) {
	liq, err := s.findByID(ctx, id)
	if err != nil {
		return LiquidationResponse{}, err
	}
	liq.UpdateTotalAmount()
	if err := s.liqRepo.Save(ctx, liq); err != nil {
		return LiquidationResponse{}, fmt.Errorf("failed to update total amount: %w", err)
	}
	return toLiquidationResponse(*liq), nil
}

func (s *qrDataService) UpdateAllTotalAmounts(ctx context.Context) (int, error) {
	liquidations, err := s.liqRepo.FindWithQR(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load liquidations with QR: %w", err)
	}
	if len(liquidations) == 0 {
		return 0, nil
	}
	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range liquidations {
			liquidations[i].UpdateTotalAmount()
		}
		return s.liqRepo.SaveAll(txCtx, liquidations)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update total amounts: %w", err)
	}
	return len(liquidations), nil
}

// --- Helpers ---

func (s *qrDataService) list(liquidations []model.Liquidation, err error) ([]LiquidationResponse, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query liquidations: %w", err)
	}
	return toLiquidationResponses(liquidations), nil
}

func (s *qrDataService) findByID(ctx context.Context, id string) (*model.Liquidation, error) {
	liquidationID, err := uuid.Parse(id)
	if err != nil {
		return nil, validationErrorf("invalid liquidation id: %v", err)
	}
	liq, err := s.liqRepo.FindByID(ctx, liquidationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load liquidation: %w", err)
	}
	return liq, nil
}

// sumAmounts totals the effective amount (stored total when present,
// otherwise the base amount) and the stored penalties.
func sumAmounts(liquidations []model.Liquidation) (total, penalties decimal.Decimal) {
	for _, l := range liquidations {
		if l.TotalAmount != nil {
			total = total.Add(*l.TotalAmount)
		} else {
			total = total.Add(l.Amount)
		}
		if l.PenaltyAmount != nil {
			penalties = penalties.Add(*l.PenaltyAmount)
		}
	}
	return total, penalties
}

func parseAmountRange(min, max string) (decimal.Decimal, decimal.Decimal, error) {
	lo, err := decimal.NewFromString(min)
	if err != nil {
		return decimal.Zero, decimal.Zero, validationErrorf("invalid min amount: %v", err)
	}
	hi, err := decimal.NewFromString(max)
	if err != nil {
		return decimal.Zero, decimal.Zero, validationErrorf("invalid max amount: %v", err)
	}
	if hi.LessThan(lo) {
		return decimal.Zero, decimal.Zero, validationErrorf("max amount must not be less than min amount")
	}
	return lo, hi, nil
}
