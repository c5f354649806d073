package postgres

import (
	"io"
	"log/slog"
	"time"

	"collection-engine/internal/domain/customer"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

const pgxmockExpectationsNotMetMsg = "there were unfulfilled expectations"

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var customerRowColumns = []string{
	"id", "account_number", "name", "contact_number", "mobile_number", "email", "region", "rtom",
	"product_label", "medium", "latest_bill_amount", "arrears", "age_months", "credit_class", "account_manager",
	"status", "assigned_to", "assigned_at", "last_response", "response_history", "created_at", "updated_at",
}

func sampleCustomer() *customer.Customer {
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	return &customer.Customer{
		ID:               7,
		AccountNumber:    "0000012345",
		Name:             "Nimal Perera",
		MobileNumber:     "0771234567",
		Region:           "Western",
		RTOM:             "CO",
		ProductLabel:     "PEO TV",
		LatestBillAmount: decimal.NewFromInt(2500),
		Arrears:          decimal.NewFromInt(1500),
		AgeMonths:        2,
		Status:           customer.StatusOverdue,
		ResponseHistory:  []customer.ContactEntry{},
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func customerRow(rows *pgxmock.Rows, c *customer.Customer, history []byte) *pgxmock.Rows {
	return rows.AddRow(
		c.ID, c.AccountNumber, c.Name, c.ContactNumber, c.MobileNumber, c.Email, c.Region, c.RTOM,
		c.ProductLabel, c.Medium, c.LatestBillAmount, c.Arrears, c.AgeMonths, c.CreditClass, c.AccountManager,
		string(c.Status), c.AssignedTo, c.AssignedAt, c.LastResponse, history, c.CreatedAt, c.UpdatedAt,
	)
}
