package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// hasQRCond selects liquidations whose QR sub-state is populated. Presence of
// the payload string alone decides "has QR".
const hasQRCond = "qr_code_data IS NOT NULL AND qr_code_data <> ''"

// LiquidationListFilter narrows a paginated liquidation listing.
type LiquidationListFilter struct {
	CustomerID *uuid.UUID
	Status     string
	StartDate  *time.Time // inclusive, on issue_date
	EndDate    *time.Time // inclusive, on issue_date
	Page       int
	Limit      int
}

type LiquidationRepository interface {
	Create(ctx context.Context, liquidation *model.Liquidation) error
	Save(ctx context.Context, liquidation *model.Liquidation) error
	SaveAll(ctx context.Context, liquidations []model.Liquidation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Liquidation, error)
	FindAll(ctx context.Context) ([]model.Liquidation, error)
	List(ctx context.Context, filter LiquidationListFilter) ([]model.Liquidation, int64, error)
	SearchByTerm(ctx context.Context, term string, page, limit int) ([]model.Liquidation, int64, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Liquidation, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)

	// QR metadata queries
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Liquidation, error)
	FindWithQR(ctx context.Context) ([]model.Liquidation, error)
	FindWithoutQR(ctx context.Context) ([]model.Liquidation, error)
	FindByQRType(ctx context.Context, qrType string) ([]model.Liquidation, error)
	FindWithQRByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Liquidation, error)
	FindWithQRByStatus(ctx context.Context, status string) ([]model.Liquidation, error)
	FindWithQRByTaxType(ctx context.Context, taxType string) ([]model.Liquidation, error)
	FindWithQRGeneratedBetween(ctx context.Context, from, to time.Time) ([]model.Liquidation, error)
	FindWithPenalties(ctx context.Context) ([]model.Liquidation, error)
	FindByTotalAmountBetween(ctx context.Context, min, max decimal.Decimal) ([]model.Liquidation, error)
	FindByPenaltyAmountBetween(ctx context.Context, min, max decimal.Decimal) ([]model.Liquidation, error)
	CountByQRType(ctx context.Context) (map[string]int64, error)
}

type liquidationRepository struct {
	db *gorm.DB
}

func NewLiquidationRepository(db *gorm.DB) LiquidationRepository {
	return &liquidationRepository{db: db}
}

func (r *liquidationRepository) Create(ctx context.Context, liquidation *model.Liquidation) error {
	return GetDB(ctx, r.db).Create(liquidation).Error
}

func (r *liquidationRepository) Save(ctx context.Context, liquidation *model.Liquidation) error {
	return GetDB(ctx, r.db).Save(liquidation).Error
}

func (r *liquidationRepository) SaveAll(ctx context.Context, liquidations []model.Liquidation) error {
	if len(liquidations) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Save(&liquidations).Error
}

func (r *liquidationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Liquidation{}).Error
}

func (r *liquidationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Liquidation, error) {
	var liquidation model.Liquidation
	if err := GetDB(ctx, r.db).Preload("Customer").First(&liquidation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &liquidation, nil
}

func (r *liquidationRepository) FindAll(ctx context.Context) ([]model.Liquidation, error) {
	var liquidations []model.Liquidation
	if err := GetDB(ctx, r.db).Preload("Customer").Find(&liquidations).Error; err != nil {
		return nil, err
	}
	return liquidations, nil
}

func (r *liquidationRepository) List(ctx context.Context, filter LiquidationListFilter) ([]model.Liquidation, int64, error) {
	var liquidations []model.Liquidation
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.StartDate != nil {
			q = q.Where("issue_date >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			q = q.Where("issue_date <= ?", *filter.EndDate)
		}
		return q
	}

	if err := apply(db.Model(&model.Liquidation{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Preload("Customer")).
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&liquidations).Error; err != nil {
		return nil, 0, err
	}

	return liquidations, total, nil
}

func (r *liquidationRepository) SearchByTerm(ctx context.Context, term string, page, limit int) ([]model.Liquidation, int64, error) {
	var liquidations []model.Liquidation
	var total int64

	db := GetDB(ctx, r.db)
	like := "%" + term + "%"
	apply := func(q *gorm.DB) *gorm.DB {
		return q.
			Joins("JOIN customers ON customers.id = liquidations.customer_id").
			Where(`liquidations.tax_type LIKE ? OR liquidations.status LIKE ?
				OR customers.first_name LIKE ? OR customers.last_name LIKE ? OR customers.ifu LIKE ?`,
				like, like, like, like, like)
	}

	if err := apply(db.Model(&model.Liquidation{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db.Model(&model.Liquidation{})).Preload("Customer").
		Order("liquidations.created_at DESC").Offset(offset).Limit(limit).
		Find(&liquidations).Error; err != nil {
		return nil, 0, err
	}

	return liquidations, total, nil
}

func (r *liquidationRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Liquidation, error) {
	var liquidations []model.Liquidation
	if err := GetDB(ctx, r.db).Preload("Customer").
		Where("customer_id = ?", customerID).Find(&liquidations).Error; err != nil {
		return nil, err
	}
	return liquidations, nil
}

func (r *liquidationRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Liquidation{}).
		Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}

func (r *liquidationRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.Liquidation, error) {
	var liquidation model.Liquidation
	if err := GetDB(ctx, r.db).Preload("Customer").
		First(&liquidation, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, err
	}
	return &liquidation, nil
}

func (r *liquidationRepository) FindWithQR(ctx context.Context) ([]model.Liquidation, error) {
	return r.findWhere(ctx, hasQRCond)
}

func (r *liquidationRepository) FindWithoutQR(ctx context.Context) ([]model.Liquidation, error) {
	return r.findWhere(ctx, "qr_code_data IS NULL OR qr_code_data = ''")
}

func (r *liquidationRepository) FindByQRType(ctx context.Context, qrType string) ([]model.Liquidation, error) {
	return r.findWhere(ctx, hasQRCond+" AND qr_type = ?", qrType)
}

func (r *liquidationRepository) FindWithQRByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Liquidation, error) {
	return r.findWhere(ctx, hasQRCond+" AND customer_id = ?", customerID)
}

func (r *liquidationRepository) FindWithQRByStatus(ctx context.Context, status string) ([]model.Liquidation, error) {
	return r.findWhere(ctx, hasQRCond+" AND status = ?", status)
}

func (r *liquidationRepository) FindWithQRByTaxType(ctx context.Context, taxType string) ([]model.Liquidation, error) {
	return r.findWhere(ctx, hasQRCond+" AND tax_type = ?", taxType)
}

func (r *liquidationRepository) FindWithQRGeneratedBetween(ctx context.Context, from, to time.Time) ([]model.Liquidation, error) {
	return r.findWhere(ctx, hasQRCond+" AND qr_generated_at >= ? AND qr_generated_at < ?", from, to)
}

func (r *liquidationRepository) FindWithPenalties(ctx context.Context) ([]model.Liquidation, error) {
	return r.findWhere(ctx, hasQRCond+" AND penalty_amount IS NOT NULL AND penalty_amount > 0")
}

func (r *liquidationRepository) FindByTotalAmountBetween(ctx context.Context, min, max decimal.Decimal) ([]model.Liquidation, error) {
	return r.findWhere(ctx, hasQRCond+" AND total_amount >= ? AND total_amount <= ?", min, max)
}

func (r *liquidationRepository) FindByPenaltyAmountBetween(ctx context.Context, min, max decimal.Decimal) ([]model.Liquidation, error) {
	return r.findWhere(ctx, hasQRCond+" AND penalty_amount >= ? AND penalty_amount <= ?", min, max)
}

func (r *liquidationRepository) CountByQRType(ctx context.Context) (map[string]int64, error) {
	type row struct {
		QRType string
		Count  int64
	}
	var rows []row
	err := GetDB(ctx, r.db).Model(&model.Liquidation{}).
		Select("qr_type, COUNT(*) AS count").
		Where(hasQRCond).
		Group("qr_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.QRType] = r.Count
	}
	return counts, nil
}

func (r *liquidationRepository) findWhere(ctx context.Context, cond string, args ...interface{}) ([]model.Liquidation, error) {
	var liquidations []model.Liquidation
	if err := GetDB(ctx, r.db).Preload("Customer").
		Where(cond, args...).Order("created_at DESC").
		Find(&liquidations).Error; err != nil {
		return nil, err
	}
	return liquidations, nil
}
