package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"collection-engine/internal/api/handler/dto"
	"collection-engine/internal/domain/importer"
	"collection-engine/internal/pkg/apperrors"
)

const (
	uploadFormField = "file"
	// multipartOverhead leaves room for boundaries and the other form fields.
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

type UploadHandler struct {
	service  importer.Service
	maxBytes int64
	logger   *slog.Logger
}

func NewUploadHandler(s importer.Service, maxUploadBytes int64, l *slog.Logger) *UploadHandler {
	if s == nil {
		panic("import service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &UploadHandler{
		service:  s,
		maxBytes: maxUploadBytes,
		logger:   l.With("component", "UploadHandler"),
	}
}

// readUpload returns the uploaded file part. The caller closes it.
func (h *UploadHandler) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%w: expected a multipart form: %v", apperrors.ErrInvalidArgument, err)
	}

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		return nil, "", apperrors.NewValidationError(uploadFormField, "No file uploaded")
	}
	return file, header.Filename, nil
}

// ParseFile handles POST /api/v1/uploads/parse
// @Summary Preview a spreadsheet
// @Description Decodes a CSV, XLSX or XLS file and returns its headers and rows without saving anything.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet (.csv, .xlsx, .xls)"
// @Success 200 {object} dto.ParseResponse "Parsed table"
// @Failure 400 {object} dto.ErrorResponse "No file uploaded"
// @Failure 403 {object} dto.ErrorResponse "Role not allowed to upload"
// @Failure 415 {object} dto.ErrorResponse "Unsupported file type"
// @Failure 422 {object} dto.ErrorResponse "Empty or unreadable file"
// @Router /uploads/parse [post]
// @Security BearerAuth
func (h *UploadHandler) ParseFile(w http.ResponseWriter, r *http.Request) {
	file, fileName, err := h.readUpload(w, r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Rejected parse upload", slog.Any("error", err))
		respondError(w, err)
		return
	}
	defer file.Close()

	table, err := h.service.ParseFile(r.Context(), actorFrom(r), file, fileName)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to parse upload", slog.String("fileName", fileName), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Upload parsed", slog.String("fileName", fileName), slog.Int("totalRows", table.TotalRows))
	respondJSON(w, http.StatusOK, dto.NewParseResponse(table))
}

// ImportCustomers handles POST /api/v1/uploads/import
// @Summary Import customer rows
// @Description Creates or updates customers from previewed rows. Mode "assignment" (default) creates accounts as overdue, "bulk" as unassigned.
// @Tags Uploads
// @Accept json
// @Produce json
// @Param request body dto.ImportRequest true "Rows and import mode"
// @Success 200 {object} dto.ImportResponse "Batch summary with per-row errors"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 403 {object} dto.ErrorResponse "Role not allowed to import"
// @Router /uploads/import [post]
// @Security BearerAuth
func (h *UploadHandler) ImportCustomers(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	var req dto.ImportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, apperrors.NewValidationError("customers", err.Error()))
		return
	}
	mode, err := importer.ParseMode(req.Mode, importer.ModeAssignment)
	if err != nil {
		respondError(w, apperrors.NewValidationError("mode", err.Error()))
		return
	}

	result, err := h.service.ImportCustomers(r.Context(), actorFrom(r), req.Customers, mode)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewImportResponse(result))
}

// ImportFile handles POST /api/v1/uploads/import-file
// @Summary Bulk import a spreadsheet
// @Description Decodes a file and imports every row in one step. Mode defaults to "bulk", which creates accounts as unassigned.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet (.csv, .xlsx, .xls)"
// @Param mode formData string false "assignment or bulk"
// @Success 200 {object} dto.ImportResponse "Batch summary with per-row errors"
// @Failure 400 {object} dto.ErrorResponse "No file uploaded or bad mode"
// @Failure 403 {object} dto.ErrorResponse "Role not allowed to import"
// @Failure 415 {object} dto.ErrorResponse "Unsupported file type"
// @Failure 422 {object} dto.ErrorResponse "Empty or unreadable file"
// @Router /uploads/import-file [post]
// @Security BearerAuth
func (h *UploadHandler) ImportFile(w http.ResponseWriter, r *http.Request) {
	file, fileName, err := h.readUpload(w, r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Rejected import upload", slog.Any("error", err))
		respondError(w, err)
		return
	}
	defer file.Close()

	mode, err := importer.ParseMode(r.FormValue("mode"), importer.ModeBulk)
	if err != nil {
		respondError(w, apperrors.NewValidationError("mode", err.Error()))
		return
	}

	result, err := h.service.ImportFile(r.Context(), actorFrom(r), file, fileName, mode)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewImportResponse(result))
}

// MarkPaid handles POST /api/v1/uploads/mark-paid
// @Summary Reconcile a payments file
// @Description Applies payments or new arrears to existing customers. Re-uploading the same file does not apply a payment twice.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Payments spreadsheet (.csv, .xlsx, .xls)"
// @Success 200 {object} dto.MarkPaidResponse "Batch summary with per-row errors"
// @Failure 400 {object} dto.ErrorResponse "No file uploaded"
// @Failure 403 {object} dto.ErrorResponse "Role not allowed to upload"
// @Failure 415 {object} dto.ErrorResponse "Unsupported file type"
// @Failure 422 {object} dto.ErrorResponse "Empty or unreadable file"
// @Router /uploads/mark-paid [post]
// @Security BearerAuth
func (h *UploadHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	file, fileName, err := h.readUpload(w, r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Rejected mark-paid upload", slog.Any("error", err))
		respondError(w, err)
		return
	}
	defer file.Close()

	result, err := h.service.MarkPaid(r.Context(), actorFrom(r), file, fileName)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Mark-paid upload processed",
		slog.String("batchId", result.BatchID), slog.Int("marked", result.Marked),
		slog.Int("updated", result.Updated), slog.Int("errors", result.ErrorCount()))
	respondJSON(w, http.StatusOK, dto.NewMarkPaidResponse(result))
}
