package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/config"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/uemoa"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

// QRGenerationResponse describes a freshly generated (or previously stored)
// QR artifact together with the liquidation it belongs to.
type QRGenerationResponse struct {
	LiquidationID   string  `json:"liquidation_id"`
	CustomerName    string  `json:"customer_name"`
	TaxType         string  `json:"tax_type"`
	Amount          string  `json:"amount"`
	PenaltyAmount   *string `json:"penalty_amount,omitempty"`
	TotalAmount     *string `json:"total_amount,omitempty"`
	QRType          string  `json:"qr_type"`
	QRCodeData      string  `json:"qr_code_data"`
	QRImageBase64   string  `json:"qr_image_base64"`
	MerchantChannel string  `json:"merchant_channel"`
	TransactionID   string  `json:"transaction_id"`
	GeneratedAt     string  `json:"generated_at"`
}

type QRValidationResponse struct {
	LiquidationID string `json:"liquidation_id"`
	Eligible      bool   `json:"eligible"`
	Reason        string `json:"reason,omitempty"`
}

// --- Interfaces ---

// QRNotifier receives a JSON event each time a QR artifact is stamped.
// A nil notifier disables publication.
type QRNotifier interface {
	Publish(message []byte)
}

// QRService orchestrates QR artifact generation for liquidations: validate
// the record, map it to payment data, encode through the codec, then stamp
// the artifact onto the row in one transaction.
type QRService interface {
	GenerateStaticQR(ctx context.Context, id string) (QRGenerationResponse, error)
	GenerateDynamicQR(ctx context.Context, id string, transactionReference string) (QRGenerationResponse, error)
	GenerateP2PQR(ctx context.Context, id string, beneficiaryPhone string) (QRGenerationResponse, error)
	GeneratePenaltyQR(ctx context.Context, id string, dailyRate string) (QRGenerationResponse, error)
	GetArtifact(ctx context.Context, id string) (QRGenerationResponse, error)
	TransactionReference(ctx context.Context, id string) (string, error)
	ValidateForQR(ctx context.Context, id string) (QRValidationResponse, error)
}

type qrService struct {
	liqRepo  repository.LiquidationRepository
	txMgr    repository.TransactionManager
	codec    uemoa.Codec
	mapper   *qrMapper
	cfg      config.UemoaConfig
	notifier QRNotifier
	now      func() time.Time
}

func NewQRService(
	liqRepo repository.LiquidationRepository,
	txMgr repository.TransactionManager,
	codec uemoa.Codec,
	cfg config.UemoaConfig,
	notifier QRNotifier,
) QRService {
	return &qrService{
		liqRepo:  liqRepo,
		txMgr:    txMgr,
		codec:    codec,
		mapper:   newQRMapper(cfg),
		cfg:      cfg,
		notifier: notifier,
		now:      time.Now,
	}
}

// --- Generation ---

func (s *qrService) GenerateStaticQR(ctx context.Context, id string) (QRGenerationResponse, error) {
	liq, err := s.loadEligible(ctx, id)
	if err != nil {
		return QRGenerationResponse{}, err
	}

	data, err := s.mapper.Static(liq)
	if err != nil {
		return QRGenerationResponse{}, err
	}

	payload, err := s.codec.EncodeStatic(data)
	if err != nil {
		return QRGenerationResponse{}, &CodecError{Op: "encode", Err: err}
	}

	reference := s.newReference(liq.ID)
	return s.stamp(ctx, liq, stampInput{
		payload:   payload,
		data:      data,
		qrType:    model.QRTypeStatic,
		reference: reference,
	})
}

func (s *qrService) GenerateDynamicQR(ctx context.Context, id string, transactionReference string) (QRGenerationResponse, error) {
	liq, err := s.loadEligible(ctx, id)
	if err != nil {
		return QRGenerationResponse{}, err
	}

	reference := strings.TrimSpace(transactionReference)
	if reference == "" {
		reference = s.newReference(liq.ID)
	}

	data, err := s.mapper.Dynamic(liq, reference)
	if err != nil {
		return QRGenerationResponse{}, err
	}

	payload, err := s.codec.EncodeDynamic(data)
	if err != nil {
		return QRGenerationResponse{}, &CodecError{Op: "encode", Err: err}
	}

	return s.stamp(ctx, liq, stampInput{
		payload:   payload,
		data:      data,
		qrType:    model.QRTypeDynamic,
		reference: reference,
	})
}

func (s *qrService) GenerateP2PQR(ctx context.Context, id string, beneficiaryPhone string) (QRGenerationResponse, error) {
	if strings.TrimSpace(beneficiaryPhone) == "" {
		return QRGenerationResponse{}, validationErrorf("beneficiary phone is required for P2P QR")
	}

	liq, err := s.loadEligible(ctx, id)
	if err != nil {
		return QRGenerationResponse{}, err
	}

	data, reference, err := s.mapper.P2P(liq, beneficiaryPhone)
	if err != nil {
		return QRGenerationResponse{}, err
	}

	payload, err := s.codec.EncodeDynamic(data)
	if err != nil {
		return QRGenerationResponse{}, &CodecError{Op: "encode", Err: err}
	}

	return s.stamp(ctx, liq, stampInput{
		payload:   payload,
		data:      data,
		qrType:    model.QRTypeP2P,
		reference: reference,
	})
}

func (s *qrService) GeneratePenaltyQR(ctx context.Context, id string, dailyRate string) (QRGenerationResponse, error) {
	rate, err := decimal.NewFromString(dailyRate)
	if err != nil {
		return QRGenerationResponse{}, validationErrorf("invalid daily_rate: %v", err)
	}
	if !rate.IsPositive() {
		return QRGenerationResponse{}, validationErrorf("daily_rate must be positive")
	}

	liq, err := s.loadEligible(ctx, id)
	if err != nil {
		return QRGenerationResponse{}, err
	}

	penalty := CalculatePenalty(liq, rate, s.now())
	reference := fmt.Sprintf("PENALTY-%s-%d", liq.ID, s.now().UnixMilli())

	data, err := s.mapper.Penalty(liq, penalty, reference)
	if err != nil {
		return QRGenerationResponse{}, err
	}

	payload, err := s.codec.EncodeDynamic(data)
	if err != nil {
		return QRGenerationResponse{}, &CodecError{Op: "encode", Err: err}
	}

	total := liq.Amount.Add(penalty)
	return s.stamp(ctx, liq, stampInput{
		payload:   payload,
		data:      data,
		qrType:    model.QRTypePenalty,
		reference: reference,
		penalty:   &penalty,
		total:     &total,
	})
}

// --- Queries ---

func (s *qrService) GetArtifact(ctx context.Context, id string) (QRGenerationResponse, error) {
	liq, err := s.findByID(ctx, id)
	if err != nil {
		return QRGenerationResponse{}, err
	}
	if !liq.HasQRCode() {
		return QRGenerationResponse{}, ErrNotFound
	}
	return toQRGenerationResponse(liq), nil
}

func (s *qrService) TransactionReference(ctx context.Context, id string) (string, error) {
	liq, err := s.findByID(ctx, id)
	if err != nil {
		return "", err
	}
	if liq.TransactionID != nil && strings.TrimSpace(*liq.TransactionID) != "" {
		return *liq.TransactionID, nil
	}
	return s.newReference(liq.ID), nil
}

func (s *qrService) ValidateForQR(ctx context.Context, id string) (QRValidationResponse, error) {
	liq, err := s.findByID(ctx, id)
	if err != nil {
		return QRValidationResponse{}, err
	}

	resp := QRValidationResponse{LiquidationID: liq.ID.String()}
	if err := eligibleForQR(liq); err != nil {
		resp.Reason = err.Error()
		return resp, nil
	}
	resp.Eligible = true
	return resp, nil
}

// --- Internals ---

type stampInput struct {
	payload   string
	data      uemoa.PaymentData
	qrType    string
	reference string
	penalty   *decimal.Decimal
	total     *decimal.Decimal
}

// stamp renders the image, checks the transaction reference is free, then
// persists the whole QR sub-state in one transaction. The liquidation row is
// untouched when any step fails.
func (s *qrService) stamp(ctx context.Context, liq *model.Liquidation, in stampInput) (QRGenerationResponse, error) {
	image, err := s.codec.RenderImage(in.data)
	if err != nil {
		return QRGenerationResponse{}, &CodecError{Op: "render", Err: err}
	}

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.liqRepo.FindByTransactionID(txCtx, in.reference)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check transaction id: %w", err)
		}
		if existing != nil && existing.ID != liq.ID {
			return conflictErrorf("transaction id %s is already in use", in.reference)
		}

		generatedAt := s.now()
		liq.QRCodeData = in.payload
		liq.QRImageBase64 = image
		liq.QRType = in.qrType
		liq.MerchantChannel = s.cfg.PaymentSystemID
		liq.TransactionID = &in.reference
		liq.QRGeneratedAt = &generatedAt
		if in.qrType == model.QRTypePenalty {
			liq.PenaltyAmount = in.penalty
			liq.TotalAmount = in.total
		}

		return s.liqRepo.Save(txCtx, liq)
	})
	if err != nil {
		return QRGenerationResponse{}, err
	}

	resp := toQRGenerationResponse(liq)
	s.publish(resp)
	return resp, nil
}

func (s *qrService) publish(resp QRGenerationResponse) {
	if s.notifier == nil {
		return
	}
	event, err := json.Marshal(map[string]interface{}{
		"event": "qr_generated",
		"data":  resp,
	})
	if err != nil {
		return
	}
	s.notifier.Publish(event)
}

// loadEligible loads the liquidation and checks it can carry a QR artifact.
func (s *qrService) loadEligible(ctx context.Context, id string) (*model.Liquidation, error) {
	liq, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := eligibleForQR(liq); err != nil {
		return nil, err
	}
	return liq, nil
}

func eligibleForQR(liq *model.Liquidation) error {
	if liq.Customer == nil {
		return validationErrorf("liquidation %s has no customer", liq.ID)
	}
	if !liq.Amount.IsPositive() {
		return validationErrorf("liquidation amount must be positive")
	}
	if strings.TrimSpace(liq.TaxType) == "" {
		return validationErrorf("liquidation tax type is required")
	}
	if liq.Status == model.StatusPaid {
		return validationErrorf("liquidation %s is already paid", liq.ID)
	}
	return nil
}

func (s *qrService) findByID(ctx context.Context, id string) (*model.Liquidation, error) {
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

// newReference builds a fresh transaction reference unique enough for the
// payment system: liquidation id, second-resolution timestamp, random suffix.
func (s *qrService) newReference(id uuid.UUID) string {
	return fmt.Sprintf("LIQ-%s-%s-%s",
		id,
		s.now().Format("20060102150405"),
		uuid.NewString()[:8])
}

func toQRGenerationResponse(liq *model.Liquidation) QRGenerationResponse {
	resp := QRGenerationResponse{
		LiquidationID:   liq.ID.String(),
		TaxType:         liq.TaxType,
		Amount:          liq.Amount.StringFixed(2),
		QRType:          liq.QRType,
		QRCodeData:      liq.QRCodeData,
		QRImageBase64:   liq.QRImageBase64,
		MerchantChannel: liq.MerchantChannel,
	}
	if liq.Customer != nil {
		resp.CustomerName = liq.Customer.FullName()
	}
	if liq.TransactionID != nil {
		resp.TransactionID = *liq.TransactionID
	}
	if liq.QRGeneratedAt != nil {
		resp.GeneratedAt = liq.QRGeneratedAt.Format(time.RFC3339)
	}
	if liq.PenaltyAmount != nil {
		p := liq.PenaltyAmount.StringFixed(2)
		resp.PenaltyAmount = &p
	}
	if liq.TotalAmount != nil {
		t := liq.TotalAmount.StringFixed(2)
		resp.TotalAmount = &t
	}
	return resp
}
