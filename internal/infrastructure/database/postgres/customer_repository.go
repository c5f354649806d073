package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"collection-engine/internal/domain/customer"
	"collection-engine/internal/infrastructure/monitoring"
	"collection-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, account_number, name, contact_number, mobile_number, email, region, rtom,
	product_label, medium, latest_bill_amount, arrears, age_months, credit_class, account_manager,
	status, assigned_to, assigned_at, last_response, response_history, created_at, updated_at`

const (
	insertCustomerSQL = `
	INSERT INTO customers (account_number, name, contact_number, mobile_number, email, region, rtom,
		product_label, medium, latest_bill_amount, arrears, age_months, credit_class, account_manager,
		status, assigned_to, assigned_at, last_response, response_history, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
	RETURNING id, created_at, updated_at`

	updateCustomerSQL = `
	UPDATE customers
	SET name = $2, contact_number = $3, mobile_number = $4, email = $5, region = $6, rtom = $7,
		product_label = $8, medium = $9, latest_bill_amount = $10, arrears = $11, age_months = $12,
		credit_class = $13, account_manager = $14, status = $15, assigned_to = $16, assigned_at = $17,
		last_response = $18, response_history = $19, updated_at = NOW()
	WHERE id = $1`

	selectCustomerByAccountSQL = `SELECT ` + customerColumns + ` FROM customers WHERE account_number = $1`

	insertSettlementSQL = `
	INSERT INTO settlements (batch_id, file_digest, row_number, account_number, payment_amount,
		previous_arrears, new_arrears, applied_by, applied_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (file_digest, row_number) DO NOTHING`

	incrementAgeSQL = `UPDATE customers SET age_months = age_months + 1, updated_at = NOW() WHERE arrears > 0`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

// Save inserts a customer without an ID and updates it otherwise.
func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if cust.ID == 0 {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, r.db, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) error {
	history, err := marshalHistory(cust.ResponseHistory)
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.db.QueryRow(ctx, insertCustomerSQL,
		cust.AccountNumber, cust.Name, cust.ContactNumber, cust.MobileNumber, cust.Email,
		cust.Region, cust.RTOM, cust.ProductLabel, cust.Medium, cust.LatestBillAmount,
		cust.Arrears, cust.AgeMonths, cust.CreditClass, cust.AccountManager, string(cust.Status),
		cust.AssignedTo, cust.AssignedAt, cust.LastResponse, history,
	).Scan(&cust.ID, &cust.CreatedAt, &cust.UpdatedAt)
	monitoring.Observe("CreateCustomer", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create customer",
			slog.String("accountNumber", cust.AccountNumber), slog.Any("error", err))
		return translateDBError(ctx, err, customer.ErrNotFound, customer.ErrAccountNumberTaken, r.logger)
	}

	r.logger.DebugContext(ctx, "Customer created", slog.Int64("id", cust.ID), slog.String("accountNumber", cust.AccountNumber))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, db execer, cust *customer.Customer) error {
	history, err := marshalHistory(cust.ResponseHistory)
	if err != nil {
		return err
	}

	start := time.Now()
	tag, err := db.Exec(ctx, updateCustomerSQL,
		cust.ID, cust.Name, cust.ContactNumber, cust.MobileNumber, cust.Email,
		cust.Region, cust.RTOM, cust.ProductLabel, cust.Medium, cust.LatestBillAmount,
		cust.Arrears, cust.AgeMonths, cust.CreditClass, cust.AccountManager, string(cust.Status),
		cust.AssignedTo, cust.AssignedAt, cust.LastResponse, history,
	)
	monitoring.Observe("UpdateCustomer", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update customer",
			slog.Int64("id", cust.ID), slog.Any("error", err))
		return translateDBError(ctx, err, customer.ErrNotFound, customer.ErrAccountNumberTaken, r.logger)
	}
	if tag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Attempted to update non-existent customer", slog.Int64("id", cust.ID))
		return customer.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*customer.Customer, error) {
	start := time.Now()
	cust, err := scanCustomer(r.db.QueryRow(ctx, selectCustomerByAccountSQL, accountNumber))
	monitoring.Observe("FindCustomerByAccountNumber", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to find customer",
			slog.String("accountNumber", accountNumber), slog.Any("error", err))
		return nil, translateDBError(ctx, err, customer.ErrNotFound, customer.ErrAccountNumberTaken, r.logger)
	}
	return cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, filter customer.Filter) ([]*customer.Customer, error) {
	query, args := buildFindAllQuery(filter)

	start := time.Now()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		monitoring.Observe("FindAllCustomers", start, err)
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			monitoring.Observe("FindAllCustomers", start, err)
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, cust)
	}
	err = rows.Err()
	monitoring.Observe("FindAllCustomers", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	return customers, nil
}

func buildFindAllQuery(filter customer.Filter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Status != "" {
		add("status", string(filter.Status))
	}
	if filter.Region != "" {
		add("region", filter.Region)
	}
	if filter.RTOM != "" {
		add("rtom", filter.RTOM)
	}
	if filter.AssignedTo != "" {
		add("assigned_to", filter.AssignedTo)
	}

	var b strings.Builder
	b.WriteString("SELECT " + customerColumns + " FROM customers")
	if len(conditions) > 0 {
		b.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY account_number")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args
}

// ApplySettlement writes the receipt first; when the (file, row) pair is already on record
// the transaction is rolled back and the customer is left as stored.
func (r *CustomerRepository) ApplySettlement(ctx context.Context, cust *customer.Customer, s *customer.Settlement) (bool, error) {
	if cust == nil || s == nil {
		return false, fmt.Errorf("%w: customer and settlement are required", apperrors.ErrInvalidArgument)
	}
	if cust.ID == 0 {
		return false, fmt.Errorf("%w: settlement requires a stored customer", apperrors.ErrInvalidArgument)
	}

	tx, err := beginTx(ctx, r.db, r.logger)
	if err != nil {
		return false, err
	}

	start := time.Now()
	tag, err := tx.Exec(ctx, insertSettlementSQL,
		s.BatchID, s.FileDigest, s.RowNumber, s.AccountNumber, s.PaymentAmount,
		s.PreviousArrears, s.NewArrears, s.AppliedBy, s.AppliedAt,
	)
	monitoring.Observe("InsertSettlement", start, err)
	if err != nil {
		rollbackTx(ctx, tx, r.logger)
		r.logger.ErrorContext(ctx, "Failed to record settlement",
			slog.String("accountNumber", s.AccountNumber), slog.Int("row", s.RowNumber), slog.Any("error", err))
		return false, translateDBError(ctx, err, customer.ErrNotFound, apperrors.ErrConflict, r.logger)
	}

	if tag.RowsAffected() == 0 {
		rollbackTx(ctx, tx, r.logger)
		r.logger.InfoContext(ctx, "Settlement already recorded",
			slog.String("fileDigest", s.FileDigest), slog.Int("row", s.RowNumber))
		return false, nil
	}

	if err := r.updateCustomer(ctx, tx, cust); err != nil {
		rollbackTx(ctx, tx, r.logger)
		return false, err
	}

	if err := commitTx(ctx, tx, r.logger); err != nil {
		return false, err
	}
	return true, nil
}

// IncrementAgeMonths ages every customer that still owes money and returns how many were touched.
func (r *CustomerRepository) IncrementAgeMonths(ctx context.Context) (int64, error) {
	start := time.Now()
	tag, err := r.db.Exec(ctx, incrementAgeSQL)
	monitoring.Observe("IncrementAgeMonths", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to increment customer age", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to increment customer age: %w", apperrors.ErrDatabase, err)
	}
	return tag.RowsAffected(), nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var (
		c       customer.Customer
		status  string
		history []byte
	)
	err := row.Scan(
		&c.ID, &c.AccountNumber, &c.Name, &c.ContactNumber, &c.MobileNumber, &c.Email,
		&c.Region, &c.RTOM, &c.ProductLabel, &c.Medium, &c.LatestBillAmount, &c.Arrears,
		&c.AgeMonths, &c.CreditClass, &c.AccountManager, &status, &c.AssignedTo, &c.AssignedAt,
		&c.LastResponse, &history, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = customer.Status(status)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &c.ResponseHistory); err != nil {
			return nil, fmt.Errorf("decode response history: %w", err)
		}
	}
	return &c, nil
}

func marshalHistory(history []customer.ContactEntry) ([]byte, error) {
	if history == nil {
		history = []customer.ContactEntry{}
	}
	b, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode response history: %w", apperrors.ErrInternalServer, err)
	}
	return b, nil
}
