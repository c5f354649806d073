package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"collection-engine/internal/api/handler/dto"
	"collection-engine/internal/domain/customer"
	"collection-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func getAccountNumberFromURL(r *http.Request) (string, error) {
	acct := chi.URLParam(r, "accountNumber")
	if acct == "" {
		return "", fmt.Errorf("%w: accountNumber not found in URL path", apperrors.ErrInvalidArgument)
	}
	return acct, nil
}

func parseFilter(r *http.Request) (customer.Filter, error) {
	q := r.URL.Query()
	filter := customer.Filter{
		Region:     q.Get("region"),
		RTOM:       q.Get("rtom"),
		AssignedTo: q.Get("assignedTo"),
	}

	if raw := q.Get("status"); raw != "" {
		status, err := customer.ParseStatus(raw)
		if err != nil {
			return filter, apperrors.NewValidationError("status", err.Error())
		}
		filter.Status = status
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, apperrors.NewValidationError(p.name, "must be a non-negative integer")
		}
		*p.dst = n
	}
	return filter, nil
}

func (h *CustomerHandler) logServiceError(r *http.Request, msg string, err error) {
	level := slog.LevelWarn
	if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrForbidden) &&
		!errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrInvalidArgument) {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, msg, slog.Any("error", err))
}

// GetCustomer handles GET /api/v1/customers/{accountNumber}
// @Summary Retrieve a customer
// @Description Looks a customer up by account number. Short numeric account numbers are zero padded before the lookup.
// @Tags Customers
// @Produce json
// @Param accountNumber path string true "Account number"
// @Success 200 {object} dto.CustomerResponse "Customer details"
// @Failure 403 {object} dto.ErrorResponse "Customer outside the caller's scope"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{accountNumber} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	acct, err := getAccountNumberFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	cust, err := h.service.GetCustomer(r.Context(), actorFrom(r), acct)
	if err != nil {
		h.logServiceError(r, "Service failed to get customer", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// ListCustomers handles GET /api/v1/customers
// @Summary List customers
// @Description Lists customers visible to the caller. Territorial admins only see their region or RTOM and callers only their own assignments.
// @Tags Customers
// @Produce json
// @Param status query string false "unassigned, overdue, contacted, completed (or paid), pending"
// @Param region query string false "Region"
// @Param rtom query string false "RTOM"
// @Param assignedTo query string false "Caller ID"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} dto.CustomerListResponse "Customers"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 403 {object} dto.ErrorResponse "Role cannot list customers"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, err)
		return
	}

	customers, err := h.service.ListCustomers(r.Context(), actorFrom(r), filter)
	if err != nil {
		h.logServiceError(r, "Service failed to list customers", err)
		respondError(w, err)
		return
	}

	resp := dto.CustomerListResponse{
		Customers: make([]dto.CustomerResponse, len(customers)),
		Count:     len(customers),
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}
	for i, cust := range customers {
		resp.Customers[i] = dto.NewCustomerResponse(cust)
	}
	respondJSON(w, http.StatusOK, resp)
}

// AssignCustomers handles POST /api/v1/customers/assign
// @Summary Assign customers to a caller
// @Description Hands a set of accounts to a caller. Unassigned accounts become overdue. Nothing is saved if any account is invalid.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.AssignCustomersRequest true "Caller and account numbers"
// @Success 200 {object} dto.AssignCustomersResponse "Number of customers assigned"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 403 {object} dto.ErrorResponse "Role cannot assign customers"
// @Failure 404 {object} dto.ErrorResponse "An account does not exist"
// @Router /customers/assign [post]
// @Security BearerAuth
func (h *CustomerHandler) AssignCustomers(w http.ResponseWriter, r *http.Request) {
	var req dto.AssignCustomersRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	n, err := h.service.AssignCustomers(r.Context(), actorFrom(r), req.CallerID, req.AccountNumbers)
	if err != nil {
		h.logServiceError(r, "Service failed to assign customers", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customers assigned", slog.String("callerId", req.CallerID), slog.Int("count", n))
	respondJSON(w, http.StatusOK, dto.AssignCustomersResponse{
		Success:  true,
		Message:  fmt.Sprintf("Assigned %d customers", n),
		Assigned: n,
	})
}

// RecordResponse handles POST /api/v1/customers/{accountNumber}/responses
// @Summary Record a contact outcome
// @Description Stores the caller's note as the latest response and appends it to the history. Overdue accounts become contacted.
// @Tags Customers
// @Accept json
// @Produce json
// @Param accountNumber path string true "Account number"
// @Param request body dto.RecordResponseRequest true "Response note"
// @Success 200 {object} dto.CustomerResponse "Updated customer"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 403 {object} dto.ErrorResponse "Customer not assigned to the caller"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Router /customers/{accountNumber}/responses [post]
// @Security BearerAuth
func (h *CustomerHandler) RecordResponse(w http.ResponseWriter, r *http.Request) {
	acct, err := getAccountNumberFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.RecordResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	cust, err := h.service.RecordResponse(r.Context(), actorFrom(r), acct, req.Note)
	if err != nil {
		h.logServiceError(r, "Service failed to record response", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}
