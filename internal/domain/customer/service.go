package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"collection-engine/internal/domain/actor"
	"collection-engine/internal/pkg/apperrors"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
	customerNotFound = "Customer not found by repository"
)

type CustomerService interface {
	GetCustomer(ctx context.Context, who actor.Actor, accountNumber string) (*Customer, error)
	ListCustomers(ctx context.Context, who actor.Actor, filter Filter) ([]*Customer, error)
	AssignCustomers(ctx context.Context, who actor.Actor, callerID string, accountNumbers []string) (int, error)
	RecordResponse(ctx context.Context, who actor.Actor, accountNumber, note string) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo         CustomerRepository
	accountWidth int
	logger       *slog.Logger
}

func NewCustomerService(repo CustomerRepository, accountWidth int, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}
	if accountWidth <= 0 {
		accountWidth = DefaultAccountNumberWidth
	}

	return &customerService{
		repo:         repo,
		accountWidth: accountWidth,
		logger:       logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) GetCustomer(ctx context.Context, who actor.Actor, accountNumber string) (*Customer, error) {
	accountNumber = NormalizeAccountNumber(accountNumber, s.accountWidth)
	logger := s.logger.With(slog.String("accountNumber", accountNumber), slog.String("actor", who.ID))

	if accountNumber == "" {
		return nil, apperrors.NewValidationError("accountNumber", "account number is required")
	}

	cust, err := s.repo.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %s: %w", accountNumber, err)
	}

	if !s.canView(who, cust) {
		logger.WarnContext(ctx, "Actor is not allowed to view customer")
		return nil, fmt.Errorf("%w: customer %s is outside your scope", apperrors.ErrForbidden, accountNumber)
	}
	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context, who actor.Actor, filter Filter) ([]*Customer, error) {
	switch who.Role {
	case actor.RoleSuperAdmin, actor.RoleAdmin:
	case actor.RoleRegionAdmin:
		filter.Region = who.Region
	case actor.RoleRTOMAdmin, actor.RoleSupervisor:
		filter.RTOM = who.RTOM
	case actor.RoleCaller:
		filter.AssignedTo = who.ID
	default:
		return nil, fmt.Errorf("%w: role %q cannot list customers", apperrors.ErrForbidden, who.Role)
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	customers, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.DebugContext(ctx, "Listed customers", slog.Int("count", len(customers)))
	return customers, nil
}

// AssignCustomers hands accounts to a caller. Every account is validated before any is saved.
func (s *customerService) AssignCustomers(ctx context.Context, who actor.Actor, callerID string, accountNumbers []string) (int, error) {
	if !who.IsAdmin() {
		return 0, fmt.Errorf("%w: role %q cannot assign customers", apperrors.ErrForbidden, who.Role)
	}
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return 0, apperrors.NewValidationError("callerId", "caller id is required")
	}
	if len(accountNumbers) == 0 {
		return 0, apperrors.NewValidationError("accountNumbers", "at least one account number is required")
	}

	customers := make([]*Customer, 0, len(accountNumbers))
	for _, raw := range accountNumbers {
		accountNumber := NormalizeAccountNumber(raw, s.accountWidth)
		cust, err := s.repo.FindByAccountNumber(ctx, accountNumber)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return 0, fmt.Errorf("%w: %s", ErrNotFound, accountNumber)
			}
			return 0, fmt.Errorf("failed to load customer %s for assignment: %w", accountNumber, err)
		}
		if !who.CanAccess(cust.Region, cust.RTOM) {
			return 0, fmt.Errorf("%w: customer %s is outside your scope", apperrors.ErrForbidden, accountNumber)
		}
		if cust.Status == StatusCompleted {
			return 0, fmt.Errorf("%w: %s", ErrAlreadySettled, accountNumber)
		}
		customers = append(customers, cust)
	}

	now := time.Now()
	for i, cust := range customers {
		cust.AssignTo(callerID, now)
		if err := s.repo.Save(ctx, cust); err != nil {
			s.logger.ErrorContext(ctx, "Repository failed to save assignment",
				slog.String("accountNumber", cust.AccountNumber), slog.Any("error", err))
			return i, fmt.Errorf("failed to assign customer %s: %w", cust.AccountNumber, err)
		}
	}

	s.logger.InfoContext(ctx, "Assigned customers to caller",
		slog.String("callerID", callerID), slog.Int("count", len(customers)), slog.String("actor", who.ID))
	return len(customers), nil
}

func (s *customerService) RecordResponse(ctx context.Context, who actor.Actor, accountNumber, note string) (*Customer, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.NewValidationError("note", "response note is required")
	}

	cust, err := s.GetCustomer(ctx, who, accountNumber)
	if err != nil {
		return nil, err
	}

	cust.RecordResponse(who.ID, note, time.Now())
	if err := s.repo.Save(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save response",
			slog.String("accountNumber", cust.AccountNumber), slog.Any("error", err))
		return nil, fmt.Errorf("failed to record response for customer %s: %w", cust.AccountNumber, err)
	}

	s.logger.InfoContext(ctx, "Recorded customer response",
		slog.String("accountNumber", cust.AccountNumber), slog.String("status", string(cust.Status)))
	return cust, nil
}

func (s *customerService) canView(who actor.Actor, cust *Customer) bool {
	if who.HasRole(actor.RoleCaller) {
		return cust.AssignedTo != nil && *cust.AssignedTo == who.ID
	}
	return who.CanAccess(cust.Region, cust.RTOM)
}
