package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/config"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/linktoken"
	"backend/pkg/uemoa"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type WorkflowGenerateRequest struct {
	ClientInfo   string `json:"client_info" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
	MerchantName string `json:"merchant_name"`
	Dynamic      bool   `json:"dynamic"`
}

type WorkflowGenerateResponse struct {
	ClientInfo    string `json:"client_info"`
	Amount        string `json:"amount"`
	QRCodeData    string `json:"qr_code_data"`
	QRImageBase64 string `json:"qr_image_base64"`
	Link          string `json:"link"`
	GeneratedAt   string `json:"generated_at"`
}

// ClientData is what the scanner side sees about the payer after resolving
// a workflow link.
type ClientData struct {
	ClientInfo    string `json:"client_info"`
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerIFU   string `json:"customer_ifu,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	LiquidationID string `json:"liquidation_id,omitempty"`
}

// TransactionData is the payment attempt synthesized at link resolution.
type TransactionData struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	Type          string `json:"type"`
	PaymentRef    string `json:"payment_ref"`
	Timestamp     string `json:"timestamp"`
}

type WorkflowResolveResponse struct {
	Client      ClientData      `json:"client"`
	Transaction TransactionData `json:"transaction"`
}

// --- Interface ---

// WorkflowService drives the link-token payment workflow: generate a QR with
// an embedded resolution link, then rebuild the payment context when the
// link is followed. No workflow state is persisted between the two calls.
type WorkflowService interface {
	Generate(ctx context.Context, req WorkflowGenerateRequest) (WorkflowGenerateResponse, error)
	ResolveLink(ctx context.Context, token string) (WorkflowResolveResponse, error)
}

type workflowService struct {
	customerRepo repository.CustomerRepository
	liqRepo      repository.LiquidationRepository
	codec        uemoa.Codec
	cfg          config.UemoaConfig
	now          func() time.Time
}

func NewWorkflowService(
	customerRepo repository.CustomerRepository,
	liqRepo repository.LiquidationRepository,
	codec uemoa.Codec,
	cfg config.UemoaConfig,
) WorkflowService {
	return &workflowService{
		customerRepo: customerRepo,
		liqRepo:      liqRepo,
		codec:        codec,
		cfg:          cfg,
		now:          time.Now,
	}
}

// --- Implementation ---

func (s *workflowService) Generate(ctx context.Context, req WorkflowGenerateRequest) (WorkflowGenerateResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return WorkflowGenerateResponse{}, validationErrorf("invalid amount: %v", err)
	}
	if amount.LessThan(decimal.NewFromInt(s.cfg.MinAmount)) ||
		amount.GreaterThan(decimal.NewFromInt(s.cfg.MaxAmount)) {
		return WorkflowGenerateResponse{}, validationErrorf(
			"amount must be between %d and %d", s.cfg.MinAmount, s.cfg.MaxAmount)
	}

	merchantName := strings.TrimSpace(req.MerchantName)
	if merchantName == "" {
		merchantName = s.cfg.MerchantName
	}

	issuedAt := s.now()
	link, err := linktoken.Encode(req.ClientInfo, amount, issuedAt)
	if err != nil {
		if errors.Is(err, linktoken.ErrInvalidClientInfo) {
			return WorkflowGenerateResponse{}, validationErrorf("invalid client_info: %v", err)
		}
		return WorkflowGenerateResponse{}, fmt.Errorf("failed to build workflow link: %w", err)
	}

	data := uemoa.PaymentData{
		Merchant: uemoa.MerchantInfo{
			Name:         merchantName,
			City:         s.cfg.MerchantCity,
			CountryCode:  s.cfg.CountryCode,
			CategoryCode: s.cfg.MerchantCategoryCode,
			Alias:        s.cfg.MerchantAlias,
		},
		Amount:   amount,
		Currency: s.cfg.Currency,
		Type:     uemoa.TypeStatic,
	}

	encode := s.codec.EncodeStatic
	if req.Dynamic {
		data.Type = uemoa.TypeDynamic
		data.TransactionID = fmt.Sprintf("WF-%s-%d", req.ClientInfo, issuedAt.UnixMilli())
		encode = s.codec.EncodeDynamic
	}

	payload, err := encode(data)
	if err != nil {
		return WorkflowGenerateResponse{}, &CodecError{Op: "encode", Err: err}
	}
	image, err := s.codec.RenderImage(data)
	if err != nil {
		return WorkflowGenerateResponse{}, &CodecError{Op: "render", Err: err}
	}

	return WorkflowGenerateResponse{
		ClientInfo:    req.ClientInfo,
		Amount:        amount.StringFixed(2),
		QRCodeData:    payload,
		QRImageBase64: image,
		Link:          link,
		GeneratedAt:   issuedAt.Format(time.RFC3339),
	}, nil
}

// ResolveLink decodes a workflow token and rebuilds the payment context.
// When the client info is a customer id the customer record enriches the
// response; an unknown customer id is terminal, any other client info passes
// through untouched.
func (s *workflowService) ResolveLink(ctx context.Context, token string) (WorkflowResolveResponse, error) {
	wfCtx, err := linktoken.Decode(token)
	if err != nil {
		return WorkflowResolveResponse{}, err
	}

	client := ClientData{ClientInfo: wfCtx.ClientInfo}
	if customerID, parseErr := uuid.Parse(wfCtx.ClientInfo); parseErr == nil {
		customer, err := s.customerRepo.FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return WorkflowResolveResponse{}, ErrNotFound
			}
			return WorkflowResolveResponse{}, fmt.Errorf("failed to resolve customer: %w", err)
		}
		client.CustomerName = customer.FullName()
		client.CustomerIFU = customer.IFU
		client.Email = customer.Email
		client.Phone = customer.Phone

		// Best effort: surface an open liquidation matching the token amount.
		// The decoded client info stays as embedded.
		if liq := s.matchLiquidation(ctx, customer.ID, wfCtx.Amount); liq != nil {
			client.LiquidationID = liq.ID.String()
		}
	}

	return WorkflowResolveResponse{
		Client: client,
		Transaction: TransactionData{
			TransactionID: uuid.NewString(),
			Amount:        wfCtx.Amount.StringFixed(2),
			Status:        model.StatusPending,
			Type:          "UEMOA_QR_PAYMENT",
			PaymentRef:    fmt.Sprintf("UEMOA-%d", s.now().UnixMilli()),
			Timestamp:     wfCtx.IssuedAt.Format(time.RFC3339),
		},
	}, nil
}

func (s *workflowService) matchLiquidation(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) *model.Liquidation {
	liquidations, err := s.liqRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil
	}
	for i := range liquidations {
		l := &liquidations[i]
		if l.Status != model.StatusPaid && l.Amount.Equal(amount) {
			return l
		}
	}
	return nil
}
