package dto

import (
	"fmt"

	"collection-engine/internal/domain/importer"
)

// ImportRequest carries rows previously returned by the parse endpoint, possibly edited by the operator.
type ImportRequest struct {
	Customers []importer.Row `json:"customers"`
	Mode      string         `json:"mode,omitempty" example:"assignment"`
}

func (r *ImportRequest) Validate() error {
	if len(r.Customers) == 0 {
		return fmt.Errorf("customers cannot be empty")
	}
	return nil
}

type TableData struct {
	FileName  string         `json:"fileName"`
	Headers   []string       `json:"headers"`
	Rows      []importer.Row `json:"rows"`
	TotalRows int            `json:"totalRows"`
}

type ParseResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Data    TableData `json:"data"`
}

func NewParseResponse(t *importer.Table) ParseResponse {
	rows := t.Rows
	if rows == nil {
		rows = []importer.Row{}
	}
	return ParseResponse{
		Success: true,
		Message: "File uploaded and parsed successfully",
		Data: TableData{
			FileName:  t.FileName,
			Headers:   t.Headers,
			Rows:      rows,
			TotalRows: t.TotalRows,
		},
	}
}

type RowErrorResponse struct {
	Row           int    `json:"row"`
	AccountNumber string `json:"accountNumber"`
	Error         string `json:"error"`
}

func newRowErrors(in []importer.RowError) []RowErrorResponse {
	out := make([]RowErrorResponse, len(in))
	for i, e := range in {
		out[i] = RowErrorResponse{Row: e.Row, AccountNumber: e.AccountNumber, Error: e.Error}
	}
	return out
}

type ImportResponse struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message"`
	BatchID  string             `json:"batchId"`
	FileName string             `json:"fileName,omitempty"`
	Imported int                `json:"imported"`
	Skipped  int                `json:"skipped"`
	Errors   []RowErrorResponse `json:"errors"`
}

func NewImportResponse(res *importer.Result) ImportResponse {
	return ImportResponse{
		Success:  true,
		Message:  fmt.Sprintf("Imported %d customers", res.Imported),
		BatchID:  res.BatchID,
		FileName: res.FileName,
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Errors:   newRowErrors(res.Errors),
	}
}

type MarkPaidCounts struct {
	Marked  int `json:"marked"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

type MarkPaidResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	BatchID string             `json:"batchId"`
	Data    MarkPaidCounts     `json:"data"`
	Errors  []RowErrorResponse `json:"errors"`
}

func NewMarkPaidResponse(res *importer.Result) MarkPaidResponse {
	return MarkPaidResponse{
		Success: true,
		Message: fmt.Sprintf("Processed %d fully paid customers and %d partial payments", res.Marked, res.Updated),
		BatchID: res.BatchID,
		Data: MarkPaidCounts{
			Marked:  res.Marked,
			Updated: res.Updated,
			Skipped: res.Skipped,
			Errors:  res.ErrorCount(),
		},
		Errors: newRowErrors(res.Errors),
	}
}
