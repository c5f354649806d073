package dto

import (
	"fmt"
	"strings"
	"time"

	"collection-engine/internal/domain/customer"
)

type AssignCustomersRequest struct {
	CallerID       string   `json:"callerId"`
	AccountNumbers []string `json:"accountNumbers"`
}

func (r *AssignCustomersRequest) Validate() error {
	if strings.TrimSpace(r.CallerID) == "" {
		return fmt.Errorf("callerId cannot be empty")
	}
	if len(r.AccountNumbers) == 0 {
		return fmt.Errorf("accountNumbers cannot be empty")
	}
	return nil
}

type AssignCustomersResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Assigned int    `json:"assigned"`
}

type RecordResponseRequest struct {
	Note string `json:"note"`
}

func (r *RecordResponseRequest) Validate() error {
	if strings.TrimSpace(r.Note) == "" {
		return fmt.Errorf("note cannot be empty")
	}
	return nil
}

type ContactEntryResponse struct {
	CallerID   string    `json:"callerId"`
	Note       string    `json:"note"`
	RecordedAt time.Time `json:"recordedAt"`
}

type CustomerResponse struct {
	ID               int64                  `json:"id"`
	AccountNumber    string                 `json:"accountNumber"`
	Name             string                 `json:"name"`
	ContactNumber    string                 `json:"contactNumber,omitempty"`
	MobileNumber     string                 `json:"mobileNumber,omitempty"`
	Email            string                 `json:"email,omitempty"`
	Region           string                 `json:"region,omitempty"`
	RTOM             string                 `json:"rtom,omitempty"`
	ProductLabel     string                 `json:"productLabel,omitempty"`
	Medium           string                 `json:"medium,omitempty"`
	LatestBillAmount string                 `json:"latestBillAmount"`
	Arrears          string                 `json:"arrears"`
	AgeMonths        int                    `json:"ageMonths"`
	CreditClass      string                 `json:"creditClass,omitempty"`
	AccountManager   string                 `json:"accountManager,omitempty"`
	Status           string                 `json:"status"`
	AssignedTo       *string                `json:"assignedTo,omitempty"`
	AssignedAt       *time.Time             `json:"assignedAt,omitempty"`
	LastResponse     string                 `json:"lastResponse,omitempty"`
	ResponseHistory  []ContactEntryResponse `json:"responseHistory"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// NewCustomerResponse renders money as fixed two-decimal strings.
func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	history := make([]ContactEntryResponse, len(cust.ResponseHistory))
	for i, h := range cust.ResponseHistory {
		history[i] = ContactEntryResponse{CallerID: h.CallerID, Note: h.Note, RecordedAt: h.RecordedAt}
	}

	return CustomerResponse{
		ID:               cust.ID,
		AccountNumber:    cust.AccountNumber,
		Name:             cust.Name,
		ContactNumber:    cust.ContactNumber,
		MobileNumber:     cust.MobileNumber,
		Email:            cust.Email,
		Region:           cust.Region,
		RTOM:             cust.RTOM,
		ProductLabel:     cust.ProductLabel,
		Medium:           cust.Medium,
		LatestBillAmount: cust.LatestBillAmount.StringFixed(2),
		Arrears:          cust.Arrears.StringFixed(2),
		AgeMonths:        cust.AgeMonths,
		CreditClass:      cust.CreditClass,
		AccountManager:   cust.AccountManager,
		Status:           string(cust.Status),
		AssignedTo:       cust.AssignedTo,
		AssignedAt:       cust.AssignedAt,
		LastResponse:     cust.LastResponse,
		ResponseHistory:  history,
		CreatedAt:        cust.CreatedAt,
		UpdatedAt:        cust.UpdatedAt,
	}
}

type CustomerListResponse struct {
	Customers []CustomerResponse `json:"customers"`
	Count     int                `json:"count"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}
