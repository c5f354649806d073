package customer

import (
	"context"
	"fmt"

	"collection-engine/internal/pkg/apperrors"
)

var (
	ErrNotFound = fmt.Errorf("customer %w", apperrors.ErrNotFound)

	ErrAccountNumberTaken = fmt.Errorf("account number %w", apperrors.ErrConflict)

	ErrAlreadySettled = fmt.Errorf("%w: customer has no outstanding arrears", apperrors.ErrInvalidArgument)
)

// Filter narrows FindAll. Zero values match everything.
type Filter struct {
	Status     Status
	Region     string
	RTOM       string
	AssignedTo string
	Limit      int
	Offset     int
}

type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByAccountNumber(ctx context.Context, accountNumber string) (*Customer, error)

	FindAll(ctx context.Context, filter Filter) ([]*Customer, error)

	// ApplySettlement records the receipt and persists the customer atomically. It reports
	// false without touching the customer when the receipt was already recorded.
	ApplySettlement(ctx context.Context, customer *Customer, settlement *Settlement) (bool, error)

	IncrementAgeMonths(ctx context.Context) (int64, error)
}
