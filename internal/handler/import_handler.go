package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"csv-import-service/internal/domain"
	"csv-import-service/internal/logger"
	"csv-import-service/internal/middleware"
	"csv-import-service/internal/service"
	"csv-import-service/internal/templates"
)

// MaxUploadSize caps CSV uploads at 20MB.
const MaxUploadSize = 20 << 20

// ImportHandler handles import-related HTTP requests.
type ImportHandler struct {
	importService service.ImportServiceInterface
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportServiceInterface) *ImportHandler {
	return &ImportHandler{
		importService: importService,
	}
}

// ImportJobResponse represents an import job in the API response.
type ImportJobResponse struct {
	ID           string         `json:"id"`
	TenantID     string         `json:"tenant_id"`
	DataType     string         `json:"data_type"`
	Status       string         `json:"status"`
	TotalRecords int            `json:"total_records"`
	Inserted     int            `json:"inserted"`
	Updated      int            `json:"updated"`
	Skipped      int            `json:"skipped"`
	FailureCount int            `json:"failure_count"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	CompletedAt  *string        `json:"completed_at,omitempty"`
}

// toImportJobResponse converts a domain.ImportJob to an ImportJobResponse.
func toImportJobResponse(job *domain.ImportJob) ImportJobResponse {
	response := ImportJobResponse{
		ID:           job.ID,
		TenantID:     job.TenantID,
		DataType:     job.DataType,
		Status:       string(job.Status),
		TotalRecords: job.TotalRecords,
		Inserted:     job.Inserted,
		Updated:      job.Updated,
		Skipped:      job.Skipped,
		FailureCount: job.FailureCount,
		ErrorMessage: job.ErrorMessage,
		Metadata:     job.Metadata,
		CreatedAt:    job.CreatedAt.Format(TimeFormat),
		UpdatedAt:    job.UpdatedAt.Format(TimeFormat),
	}
	if job.CompletedAt != nil {
		completedAt := job.CompletedAt.Format(TimeFormat)
		response.CompletedAt = &completedAt
	}
	return response
}

// parseImportRequest reads the shared multipart fields used by both
// CreateImport and PreviewImport. It writes the error response itself and
// returns ok=false when the request is malformed.
func parseImportRequest(c *gin.Context) (service.ImportRequest, bool) {
	var req service.ImportRequest

	req.DataType = c.PostForm("data_type")
	if req.DataType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data_type is required"})
		return req, false
	}
	if _, err := templates.Lookup(req.DataType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown data_type: " + req.DataType})
		return req, false
	}

	req.TenantID = c.PostForm("tenant_id")
	if req.TenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required"})
		return req, false
	}
	if _, err := uuid.Parse(req.TenantID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id must be a valid UUID"})
		return req, false
	}

	req.ActorID = c.PostForm("actor_id")
	if req.ActorID != "" {
		if _, err := uuid.Parse(req.ActorID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "actor_id must be a valid UUID"})
			return req, false
		}
	}

	if raw := c.PostForm("field_mappings"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.FieldMappings); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "field_mappings must be a JSON object of header to field"})
			return req, false
		}
	}

	if raw := c.PostForm("resolutions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Resolutions); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resolutions must be a JSON array"})
			return req, false
		}
		for _, r := range req.Resolutions {
			if !domain.IsValidResolutionAction(r.Action) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "resolution action must be one of: merge, create_new, skip"})
				return req, false
			}
		}
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return req, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return req, false
	}
	if len(data) > MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the 20MB upload limit"})
		return req, false
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded file is empty"})
		return req, false
	}

	req.Data = data
	req.Filename = header.Filename
	req.RequestID = middleware.GetRequestID(c)
	return req, true
}

// CreateImport handles POST /api/v1/imports
func (h *ImportHandler) CreateImport(c *gin.Context) {
	req, ok := parseImportRequest(c)
	if !ok {
		return
	}

	req.IdempotencyToken = c.PostForm("idempotency_token")
	if req.IdempotencyToken == "" {
		req.IdempotencyToken = uuid.New().String()
	}
	if _, err := uuid.Parse(req.IdempotencyToken); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idempotency_token must be a valid UUID"})
		return
	}

	job, err := h.importService.StartImport(c.Request.Context(), req)
	if err != nil {
		logger.Error("Failed to start import",
			slog.String("request_id", req.RequestID),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process import request"})
		return
	}

	c.JSON(http.StatusAccepted, toImportJobResponse(job))
}

// PreviewImport handles POST /api/v1/imports/preview
func (h *ImportHandler) PreviewImport(c *gin.Context) {
	req, ok := parseImportRequest(c)
	if !ok {
		return
	}

	preview, err := h.importService.Preview(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, templates.ErrUnknownDataType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to preview import",
			slog.String("request_id", req.RequestID),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to preview import"})
		return
	}

	c.JSON(http.StatusOK, preview)
}

// GetImport handles GET /api/v1/imports/:id
func (h *ImportHandler) GetImport(c *gin.Context) {
	id := c.Param("id")

	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a valid UUID"})
		return
	}

	job, err := h.importService.GetImportJob(c.Request.Context(), id)
	if err != nil {
		logger.Error("Failed to get import job",
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.String("job_id", id),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve import job"})
		return
	}

	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "import job not found"})
		return
	}

	c.JSON(http.StatusOK, toImportJobResponse(job))
}
