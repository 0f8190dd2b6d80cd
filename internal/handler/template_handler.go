package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"csv-import-service/internal/domain"
	"csv-import-service/internal/logger"
	"csv-import-service/internal/middleware"
	"csv-import-service/internal/templates"
)

// TemplateHandler serves the import template registry: the list of importable
// data types, their field definitions, and downloadable starter CSVs.
type TemplateHandler struct{}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler() *TemplateHandler {
	return &TemplateHandler{}
}

// TemplateFieldResponse represents one template field in the API response.
type TemplateFieldResponse struct {
	Name        string `json:"name"`
	DBField     string `json:"db_field"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
	Example     string `json:"example,omitempty"`
	LookupTable string `json:"lookup_table,omitempty"`
}

// TemplateResponse represents a full template in the API response.
type TemplateResponse struct {
	DataType             string                  `json:"data_type"`
	DisplayName          string                  `json:"display_name"`
	Description          string                  `json:"description"`
	Fields               []TemplateFieldResponse `json:"fields"`
	RequiredFields       []string                `json:"required_fields"`
	DuplicateMatchFields []string                `json:"duplicate_match_fields"`
}

func toTemplateResponse(t *domain.CSVTemplate) TemplateResponse {
	resp := TemplateResponse{
		DataType:             t.DataType,
		DisplayName:          t.DisplayName,
		Description:          t.Description,
		Fields:               make([]TemplateFieldResponse, 0, len(t.Fields)),
		DuplicateMatchFields: templates.MatchFields(t),
	}
	for _, f := range t.Fields {
		fr := TemplateFieldResponse{
			Name:        f.Name,
			DBField:     f.DBField,
			Type:        string(f.Type),
			Required:    f.Required,
			Description: f.Description,
			Example:     f.Example,
		}
		if f.IsLookup() {
			fr.LookupTable = f.Lookup.Table
		}
		resp.Fields = append(resp.Fields, fr)
	}
	for _, f := range templates.RequiredFields(t) {
		resp.RequiredFields = append(resp.RequiredFields, f.Name)
	}
	return resp
}

// ListTemplates handles GET /api/v1/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": templates.List()})
}

// GetTemplate handles GET /api/v1/templates/:dataType
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	t, err := templates.Lookup(c.Param("dataType"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	c.JSON(http.StatusOK, toTemplateResponse(t))
}

// DownloadTemplate handles GET /api/v1/templates/:dataType/download
func (h *TemplateHandler) DownloadTemplate(c *gin.Context) {
	t, err := templates.Lookup(c.Param("dataType"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	data, err := templates.TemplateCSV(t)
	if err != nil {
		logger.Error("Failed to render template CSV",
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.String("data_type", t.DataType),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render template"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", templates.TemplateFilename(t)))
	c.Data(http.StatusOK, "text/csv", data)
}
