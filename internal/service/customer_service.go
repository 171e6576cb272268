package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateCustomerRequest struct {
	LastName  string `json:"last_name" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	Address   string `json:"address" binding:"required"`
	IFU       string `json:"ifu" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

type UpdateCustomerRequest struct {
	LastName  *string `json:"last_name"`
	FirstName *string `json:"first_name"`
	Address   *string `json:"address"`
	IFU       *string `json:"ifu"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" binding:"omitempty,email"`
}

type CustomerResponse struct {
	ID        string `json:"id"`
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Address   string `json:"address"`
	IFU       string `json:"ifu"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type CustomerService interface {
	Create(ctx context.Context, req CreateCustomerRequest) (CustomerResponse, error)
	Get(ctx context.Context, id string) (CustomerResponse, error)
	List(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error)
	Update(ctx context.Context, id string, req UpdateCustomerRequest) (CustomerResponse, error)
	Delete(ctx context.Context, id string) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
	liqRepo      repository.LiquidationRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository, liqRepo repository.LiquidationRepository) CustomerService {
	return &customerService{customerRepo: customerRepo, liqRepo: liqRepo}
}

// --- Implementation ---

func (s *customerService) Create(ctx context.Context, req CreateCustomerRequest) (CustomerResponse, error) {
	if taken, err := s.customerRepo.ExistsByIFU(ctx, req.IFU); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to check IFU: %w", err)
	} else if taken {
		return CustomerResponse{}, conflictErrorf("IFU %s is already in use", req.IFU)
	}

	if taken, err := s.customerRepo.ExistsByEmail(ctx, req.Email); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return CustomerResponse{}, conflictErrorf("email %s is already in use", req.Email)
	}

	customer := model.Customer{
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Address:   req.Address,
		IFU:       req.IFU,
		Phone:     req.Phone,
		Email:     req.Email,
	}

	if err := s.customerRepo.Create(ctx, &customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to create customer: %w", err)
	}

	return toCustomerResponse(customer), nil
}

func (s *customerService) Get(ctx context.Context, id string) (CustomerResponse, error) {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return CustomerResponse{}, err
	}
	return toCustomerResponse(*customer), nil
}

func (s *customerService) List(ctx context.Context, search string, page, limit int) ([]CustomerResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	customers, total, err := s.customerRepo.List(ctx, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	result := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		result = append(result, toCustomerResponse(c))
	}
	return result, total, nil
}

func (s *customerService) Update(ctx context.Context, id string, req UpdateCustomerRequest) (CustomerResponse, error) {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return CustomerResponse{}, err
	}

	// Re-check uniqueness only when the identifying fields change.
	if req.IFU != nil && *req.IFU != customer.IFU {
		if taken, err := s.customerRepo.ExistsByIFU(ctx, *req.IFU); err != nil {
			return CustomerResponse{}, fmt.Errorf("failed to check IFU: %w", err)
		} else if taken {
			return CustomerResponse{}, conflictErrorf("IFU %s is already in use", *req.IFU)
		}
		customer.IFU = *req.IFU
	}
	if req.Email != nil && *req.Email != customer.Email {
		if taken, err := s.customerRepo.ExistsByEmail(ctx, *req.Email); err != nil {
			return CustomerResponse{}, fmt.Errorf("failed to check email: %w", err)
		} else if taken {
			return CustomerResponse{}, conflictErrorf("email %s is already in use", *req.Email)
		}
		customer.Email = *req.Email
	}

	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return CustomerResponse{}, fmt.Errorf("failed to update customer: %w", err)
	}

	return toCustomerResponse(*customer), nil
}

// Delete removes a customer, refusing while liquidations still reference it.
func (s *customerService) Delete(ctx context.Context, id string) error {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.liqRepo.CountByCustomer(ctx, customer.ID)
	if err != nil {
		return fmt.Errorf("failed to count liquidations: %w", err)
	}
	if count > 0 {
		return validationErrorf("customer %s still has %d liquidation(s)", id, count)
	}

	if err := s.customerRepo.Delete(ctx, customer.ID); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}

// --- Helpers ---

func (s *customerService) findByID(ctx context.Context, id string) (*model.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, validationErrorf("invalid customer id: %v", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return customer, nil
}

func toCustomerResponse(c model.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID.String(),
		LastName:  c.LastName,
		FirstName: c.FirstName,
		Address:   c.Address,
		IFU:       c.IFU,
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
