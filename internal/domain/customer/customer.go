package customer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUnassigned Status = "unassigned"
	StatusOverdue    Status = "overdue"
	StatusContacted  Status = "contacted"
	StatusCompleted  Status = "completed"
	StatusPending    Status = "pending"
)

// ParseStatus accepts any casing and treats "paid" as completed.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusUnassigned, StatusOverdue, StatusContacted, StatusCompleted, StatusPending:
		return s, nil
	case "paid":
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("unknown customer status %q", raw)
	}
}

type ContactEntry struct {
	CallerID   string    `json:"callerId"`
	Note       string    `json:"note"`
	RecordedAt time.Time `json:"recordedAt"`
}

type Customer struct {
	ID               int64           `json:"id"`
	AccountNumber    string          `json:"accountNumber"`
	Name             string          `json:"name"`
	ContactNumber    string          `json:"contactNumber"`
	MobileNumber     string          `json:"mobileNumber"`
	Email            string          `json:"email"`
	Region           string          `json:"region"`
	RTOM             string          `json:"rtom"`
	ProductLabel     string          `json:"productLabel"`
	Medium           string          `json:"medium"`
	LatestBillAmount decimal.Decimal `json:"latestBillAmount"`
	Arrears          decimal.Decimal `json:"arrears"`
	AgeMonths        int             `json:"ageMonths"`
	CreditClass      string          `json:"creditClass"`
	AccountManager   string          `json:"accountManager"`
	Status           Status          `json:"status"`
	AssignedTo       *string         `json:"assignedTo,omitempty"`
	AssignedAt       *time.Time      `json:"assignedAt,omitempty"`
	LastResponse     string          `json:"lastResponse"`
	ResponseHistory  []ContactEntry  `json:"responseHistory"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func NewCustomer(accountNumber string, status Status) *Customer {
	now := time.Now()
	return &Customer{
		AccountNumber: accountNumber,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (c *Customer) IsSettled() bool {
	return c.Arrears.LessThanOrEqual(decimal.Zero)
}

// ReconcileArrears applies a payment outcome: a cleared balance completes the account
// and resets its age, anything left over leaves it pending.
func (c *Customer) ReconcileArrears(arrears decimal.Decimal) {
	c.Arrears = arrears
	if c.IsSettled() {
		c.Status = StatusCompleted
		c.AgeMonths = 0
	} else {
		c.Status = StatusPending
	}
	c.UpdatedAt = time.Now()
}

// SetArrears records a figure loaded from an arrears sheet. A completed account with a
// fresh balance is reopened as overdue.
func (c *Customer) SetArrears(arrears decimal.Decimal) {
	c.Arrears = arrears
	switch {
	case c.IsSettled():
		c.Status = StatusCompleted
		c.AgeMonths = 0
	case c.Status == StatusCompleted:
		c.Status = StatusOverdue
	}
	c.UpdatedAt = time.Now()
}

func (c *Customer) AssignTo(callerID string, at time.Time) {
	c.AssignedTo = &callerID
	c.AssignedAt = &at
	if c.Status == StatusUnassigned {
		c.Status = StatusOverdue
	}
	c.UpdatedAt = at
}

func (c *Customer) RecordResponse(callerID, note string, at time.Time) {
	c.LastResponse = note
	c.ResponseHistory = append(c.ResponseHistory, ContactEntry{CallerID: callerID, Note: note, RecordedAt: at})
	if c.Status == StatusOverdue {
		c.Status = StatusContacted
	}
	c.UpdatedAt = at
}

// Settlement is the receipt written for every mark-paid row, keyed by file digest and row number
// so that re-uploading a file cannot apply the same payment twice.
type Settlement struct {
	BatchID         string           `json:"batchId"`
	FileDigest      string           `json:"fileDigest"`
	RowNumber       int              `json:"rowNumber"`
	AccountNumber   string           `json:"accountNumber"`
	PaymentAmount   *decimal.Decimal `json:"paymentAmount,omitempty"`
	PreviousArrears decimal.Decimal  `json:"previousArrears"`
	NewArrears      decimal.Decimal  `json:"newArrears"`
	AppliedBy       string           `json:"appliedBy"`
	AppliedAt       time.Time        `json:"appliedAt"`
}
