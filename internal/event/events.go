package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoutingKeyImportCompleted = "import.completed"
	RoutingKeyCustomerSettled = "customer.settled"
)

type EventPublisher interface {
	PublishImportCompleted(ctx context.Context, event ImportCompletedEvent) error
	PublishCustomerSettled(ctx context.Context, event CustomerSettledEvent) error
}

// ImportCompletedEvent summarises one spreadsheet batch.
type ImportCompletedEvent struct {
	BatchID   string    `json:"batchId"`
	Operation string    `json:"operation"`
	FileName  string    `json:"fileName,omitempty"`
	ActorID   string    `json:"actorId"`
	Imported  int       `json:"imported"`
	Marked    int       `json:"marked"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
	Errors    int       `json:"errors"`
	Timestamp time.Time `json:"timestamp"`
}

// CustomerSettledEvent is emitted when a payment clears a customer's arrears.
type CustomerSettledEvent struct {
	BatchID         string          `json:"batchId"`
	AccountNumber   string          `json:"accountNumber"`
	PreviousArrears decimal.Decimal `json:"previousArrears"`
	NewArrears      decimal.Decimal `json:"newArrears"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

var _ EventPublisher = NopPublisher{}

func (NopPublisher) PublishImportCompleted(context.Context, ImportCompletedEvent) error { return nil }

func (NopPublisher) PublishCustomerSettled(context.Context, CustomerSettledEvent) error { return nil }
