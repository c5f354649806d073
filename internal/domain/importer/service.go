package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"collection-engine/internal/domain/actor"
	"collection-engine/internal/domain/customer"
	"collection-engine/internal/event"
	"collection-engine/internal/infrastructure/monitoring"
	"collection-engine/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the part of the customer repository the importer needs.
type Store interface {
	FindByAccountNumber(ctx context.Context, accountNumber string) (*customer.Customer, error)
	Save(ctx context.Context, customer *customer.Customer) error
	ApplySettlement(ctx context.Context, customer *customer.Customer, settlement *customer.Settlement) (bool, error)
}

type Service interface {
	ParseFile(ctx context.Context, who actor.Actor, r io.Reader, fileName string) (*Table, error)
	ImportCustomers(ctx context.Context, who actor.Actor, rows []Row, mode Mode) (*Result, error)
	ImportFile(ctx context.Context, who actor.Actor, r io.Reader, fileName string, mode Mode) (*Result, error)
	MarkPaid(ctx context.Context, who actor.Actor, r io.Reader, fileName string) (*Result, error)
}

type Options struct {
	AccountNumberWidth int
	PreviewRowLimit    int
	AllowedRoles       []string
	Columns            *ColumnSet
}

var _ Service = (*importService)(nil)

type importService struct {
	store     Store
	decoder   Decoder
	publisher event.EventPublisher
	columns   *ColumnSet
	policy    actor.Policy
	width     int
	preview   int
	now       func() time.Time
	logger    *slog.Logger
}

func NewImportService(store Store, decoder Decoder, publisher event.EventPublisher, opts Options, logger *slog.Logger) Service {
	if store == nil {
		panic("customer store cannot be nil")
	}
	if decoder == nil {
		panic("file decoder cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewImportService, using default stderr handler")
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	if opts.Columns == nil {
		opts.Columns = DefaultColumnSet()
	}
	if opts.AccountNumberWidth <= 0 {
		opts.AccountNumberWidth = customer.DefaultAccountNumberWidth
	}

	return &importService{
		store:     store,
		decoder:   decoder,
		publisher: publisher,
		columns:   opts.Columns,
		policy:    actor.NewPolicy(opts.AllowedRoles),
		width:     opts.AccountNumberWidth,
		preview:   opts.PreviewRowLimit,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "importService")),
	}
}

func (s *importService) ParseFile(ctx context.Context, who actor.Actor, r io.Reader, fileName string) (*Table, error) {
	if err := s.authorize(who); err != nil {
		return nil, err
	}

	table, err := s.decoder.Decode(r, fileName)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to decode upload", slog.String("fileName", fileName), slog.Any("error", err))
		return nil, err
	}

	if s.preview > 0 && len(table.Rows) > s.preview {
		table.Rows = table.Rows[:s.preview]
	}

	s.logger.InfoContext(ctx, "Parsed upload for preview",
		slog.String("fileName", table.FileName), slog.Int("totalRows", table.TotalRows), slog.String("actor", who.ID))
	return table, nil
}

func (s *importService) ImportFile(ctx context.Context, who actor.Actor, r io.Reader, fileName string, mode Mode) (*Result, error) {
	if err := s.authorize(who); err != nil {
		return nil, err
	}

	table, err := s.decoder.Decode(r, fileName)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to decode upload", slog.String("fileName", fileName), slog.Any("error", err))
		return nil, err
	}

	result := s.importRows(ctx, who, table.Rows, mode)
	result.FileName = table.FileName
	s.finish(ctx, who, result)
	return result, nil
}

func (s *importService) ImportCustomers(ctx context.Context, who actor.Actor, rows []Row, mode Mode) (*Result, error) {
	if err := s.authorize(who); err != nil {
		return nil, err
	}
	if mode != ModeAssignment && mode != ModeBulk {
		return nil, apperrors.NewValidationError("mode", fmt.Sprintf("unknown import mode %q", mode))
	}

	result := s.importRows(ctx, who, rows, mode)
	s.finish(ctx, who, result)
	return result, nil
}

// MarkPaid reconciles a payments file against existing customers. It never creates customers.
func (s *importService) MarkPaid(ctx context.Context, who actor.Actor, r io.Reader, fileName string) (*Result, error) {
	if err := s.authorize(who); err != nil {
		return nil, err
	}

	table, err := s.decoder.Decode(r, fileName)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to decode payments file", slog.String("fileName", fileName), slog.Any("error", err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "Mark-paid upload decoded",
		slog.String("fileName", table.FileName), slog.Int("rowCount", len(table.Rows)))

	// Rows already committed stay committed, so a client going away must not turn the rest into errors.
	ctx = context.WithoutCancel(ctx)
	started := s.now()
	result := &Result{BatchID: uuid.NewString(), Operation: OperationMarkPaid, FileName: table.FileName, Errors: []RowError{}}

	for i, row := range table.Rows {
		rowNumber := i + 1
		o, accountNumber, err := s.markPaidRow(ctx, who, table, rowNumber, row, result.BatchID)
		if err != nil {
			o = outcomeErrored
			s.logger.WarnContext(ctx, "Mark-paid row failed",
				slog.Int("row", rowNumber), slog.String("accountNumber", accountNumber), slog.Any("error", err))
			result.Errors = append(result.Errors, RowError{Row: rowNumber, AccountNumber: accountNumber, Error: apperrors.Cause(err)})
		}
		result.record(o)
		monitoring.RecordImportRow(string(OperationMarkPaid), string(o))
	}

	monitoring.RecordImportBatch(string(OperationMarkPaid), s.now().Sub(started))
	s.finish(ctx, who, result)
	return result, nil
}

func (s *importService) markPaidRow(ctx context.Context, who actor.Actor, table *Table, rowNumber int, row Row, batchID string) (outcome, string, error) {
	f := s.columns.bind(row)

	accountNumber, ok, err := s.resolveAccountNumber(f)
	if err != nil {
		return outcomeErrored, unknownAccount, err
	}
	if !ok {
		return outcomeSkipped, "", nil
	}

	cust, err := s.store.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			s.logger.DebugContext(ctx, "Customer not found for payment row", slog.String("accountNumber", accountNumber))
			return outcomeSkipped, accountNumber, nil
		}
		return outcomeErrored, accountNumber, err
	}
	if err := checkTerritory(who, cust); err != nil {
		return outcomeErrored, accountNumber, err
	}

	var payment *decimal.Decimal
	if raw, ok := f.get(FieldPaymentAmount); ok {
		p, err := parseAmount(raw)
		if err != nil {
			return outcomeErrored, accountNumber, apperrors.NewValidationError("paymentAmount", err.Error())
		}
		payment = &p
	}

	previous := cust.Arrears
	var target decimal.Decimal
	if raw, ok := f.get(FieldNewArrears); ok {
		target, err = parseAmount(raw)
		if err != nil {
			return outcomeErrored, accountNumber, apperrors.NewValidationError("newArrears", err.Error())
		}
	} else if payment != nil && payment.IsPositive() {
		target = decimal.Max(decimal.Zero, previous.Sub(*payment))
	} else {
		target = decimal.Zero
	}

	cust.ReconcileArrears(target)

	applied, err := s.store.ApplySettlement(ctx, cust, &customer.Settlement{
		BatchID:         batchID,
		FileDigest:      table.Digest,
		RowNumber:       rowNumber,
		AccountNumber:   accountNumber,
		PaymentAmount:   payment,
		PreviousArrears: previous,
		NewArrears:      target,
		AppliedBy:       who.ID,
		AppliedAt:       s.now(),
	})
	if err != nil {
		return outcomeErrored, accountNumber, err
	}

	if !applied {
		// Already applied by an earlier upload of this file; the stored arrears are the result.
		s.logger.DebugContext(ctx, "Payment row already applied", slog.String("accountNumber", accountNumber))
		if previous.LessThanOrEqual(decimal.Zero) {
			return outcomeMarked, accountNumber, nil
		}
		return outcomeUpdated, accountNumber, nil
	}

	if !cust.IsSettled() {
		return outcomeUpdated, accountNumber, nil
	}

	settled := event.CustomerSettledEvent{
		BatchID:         batchID,
		AccountNumber:   accountNumber,
		PreviousArrears: previous,
		NewArrears:      target,
		Timestamp:       s.now(),
	}
	if err := s.publisher.PublishCustomerSettled(ctx, settled); err != nil {
		monitoring.RecordEventDropped(event.RoutingKeyCustomerSettled)
		s.logger.ErrorContext(ctx, "Customer settled, but FAILED to publish event",
			slog.String("accountNumber", accountNumber), slog.Any("error", err))
	}
	return outcomeMarked, accountNumber, nil
}

func (s *importService) importRows(ctx context.Context, who actor.Actor, rows []Row, mode Mode) *Result {
	ctx = context.WithoutCancel(ctx)
	started := s.now()
	result := &Result{BatchID: uuid.NewString(), Operation: OperationImport, Errors: []RowError{}}

	for i, row := range rows {
		rowNumber := i + 1
		o, accountNumber, err := s.importRow(ctx, who, row, mode)
		if err != nil {
			o = outcomeErrored
			s.logger.WarnContext(ctx, "Import row failed",
				slog.Int("row", rowNumber), slog.String("accountNumber", accountNumber), slog.Any("error", err))
			result.Errors = append(result.Errors, RowError{Row: rowNumber, AccountNumber: accountNumber, Error: apperrors.Cause(err)})
		}
		result.record(o)
		monitoring.RecordImportRow(string(OperationImport), string(o))
	}

	monitoring.RecordImportBatch(string(OperationImport), s.now().Sub(started))
	return result
}

func (s *importService) importRow(ctx context.Context, who actor.Actor, row Row, mode Mode) (outcome, string, error) {
	f := s.columns.bind(row)

	accountNumber, ok, err := s.resolveAccountNumber(f)
	if err != nil {
		return outcomeErrored, unknownAccount, err
	}
	if !ok {
		return outcomeSkipped, "", nil
	}

	cust, err := s.store.FindByAccountNumber(ctx, accountNumber)
	created := false
	switch {
	case errors.Is(err, customer.ErrNotFound):
		cust = customer.NewCustomer(accountNumber, initialStatus(mode))
		created = true
	case err != nil:
		return outcomeErrored, accountNumber, err
	}
	if !created {
		if err := checkTerritory(who, cust); err != nil {
			return outcomeErrored, accountNumber, err
		}
	}

	if err := applyFields(f, cust, created); err != nil {
		return outcomeErrored, accountNumber, err
	}
	// The row itself may place the account outside the uploader's territory.
	if err := checkTerritory(who, cust); err != nil {
		return outcomeErrored, accountNumber, err
	}

	if err := s.store.Save(ctx, cust); err != nil {
		return outcomeErrored, accountNumber, err
	}
	return outcomeImported, accountNumber, nil
}

func initialStatus(mode Mode) customer.Status {
	if mode == ModeBulk {
		return customer.StatusUnassigned
	}
	return customer.StatusOverdue
}

func applyFields(f *fields, cust *customer.Customer, created bool) error {
	text := []struct {
		field Field
		dst   *string
	}{
		{FieldName, &cust.Name},
		{FieldContactNumber, &cust.ContactNumber},
		{FieldMobileNumber, &cust.MobileNumber},
		{FieldEmail, &cust.Email},
		{FieldRegion, &cust.Region},
		{FieldRTOM, &cust.RTOM},
		{FieldProductLabel, &cust.ProductLabel},
		{FieldMedium, &cust.Medium},
		{FieldCreditClass, &cust.CreditClass},
		{FieldAccountManager, &cust.AccountManager},
	}
	for _, t := range text {
		raw, ok := f.get(t.field)
		if !ok {
			continue
		}
		v, err := cellString(raw)
		if err != nil {
			return apperrors.NewValidationError(string(t.field), err.Error())
		}
		*t.dst = v
	}
	if created && cust.Name == "" {
		return apperrors.NewValidationError(string(FieldName), "customer name is required for new accounts")
	}

	if raw, ok := f.get(FieldLatestBillAmount); ok {
		v, err := parseAmount(raw)
		if err != nil {
			return apperrors.NewValidationError(string(FieldLatestBillAmount), err.Error())
		}
		cust.LatestBillAmount = v
	}

	if raw, ok := f.get(FieldAgeMonths); ok {
		v, err := parseWholeNumber(raw)
		if err != nil {
			return apperrors.NewValidationError(string(FieldAgeMonths), err.Error())
		}
		cust.AgeMonths = v
	}

	arrears := decimal.Zero
	raw, ok := f.get(FieldArrears)
	if ok {
		v, err := parseAmount(raw)
		if err != nil {
			return apperrors.NewValidationError(string(FieldArrears), err.Error())
		}
		arrears = v
	}
	switch {
	case created:
		// New accounts keep the mode's initial status whatever the balance.
		cust.Arrears = arrears
	case ok:
		cust.SetArrears(arrears)
	}
	return nil
}

func (s *importService) resolveAccountNumber(f *fields) (string, bool, error) {
	raw, ok := f.get(FieldAccountNumber)
	if !ok {
		return "", false, nil
	}
	text, err := cellString(raw)
	if err != nil {
		return "", false, apperrors.NewValidationError("accountNumber", err.Error())
	}
	accountNumber := customer.NormalizeAccountNumber(text, s.width)
	return accountNumber, accountNumber != "", nil
}

func (s *importService) authorize(who actor.Actor) error {
	if who.IsZero() {
		return fmt.Errorf("%w: no authenticated actor", apperrors.ErrUnauthorized)
	}
	if !s.policy.Allows(who) {
		return fmt.Errorf("%w: role %q cannot upload customer files", apperrors.ErrForbidden, who.Role)
	}
	return nil
}

// checkTerritory keeps region and RTOM admins to their own accounts. Unscoped roles pass.
func checkTerritory(who actor.Actor, cust *customer.Customer) error {
	if !who.Territorial() || who.CanAccess(cust.Region, cust.RTOM) {
		return nil
	}
	return fmt.Errorf("%w: account %s is outside your territory", apperrors.ErrForbidden, cust.AccountNumber)
}

func (s *importService) finish(ctx context.Context, who actor.Actor, result *Result) {
	s.logger.InfoContext(ctx, "Import batch finished",
		slog.String("batchID", result.BatchID),
		slog.String("operation", string(result.Operation)),
		slog.Int("imported", result.Imported),
		slog.Int("marked", result.Marked),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", result.ErrorCount()),
		slog.String("actor", who.ID),
	)

	completed := event.ImportCompletedEvent{
		BatchID:   result.BatchID,
		Operation: string(result.Operation),
		FileName:  result.FileName,
		ActorID:   who.ID,
		Imported:  result.Imported,
		Marked:    result.Marked,
		Updated:   result.Updated,
		Skipped:   result.Skipped,
		Errors:    result.ErrorCount(),
		Timestamp: s.now(),
	}
	if err := s.publisher.PublishImportCompleted(ctx, completed); err != nil {
		monitoring.RecordEventDropped(event.RoutingKeyImportCompleted)
		s.logger.ErrorContext(ctx, "Batch finished, but FAILED to publish completion event", slog.Any("error", err))
	}
}
