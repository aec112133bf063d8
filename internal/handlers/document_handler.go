// internal/handlers/document_handler.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/plantcert/pvp-backend/internal/i18n"
	"github.com/plantcert/pvp-backend/internal/services"
	"github.com/plantcert/pvp-backend/internal/utils"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload stores a document against an application. Uploading a document
// whose type matches an open document task completes that task.
// POST /api/v1/applications/:id/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing file upload", nil)
		return
	}
	defer file.Close()

	req := services.UploadDocumentRequest{
		DocType: c.PostForm("doc_type"),
		Title:   c.PostForm("title"),
	}
	if req.DocType == "" {
		utils.BadRequestResponse(c, "doc_type is required", nil)
		return
	}
	if termIDStr := c.PostForm("renewal_term_id"); termIDStr != "" {
		termID, err := uuid.Parse(termIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid renewal_term_id", nil)
			return
		}
		req.RenewalTermID = &termID
	}

	document, err := h.documentService.Upload(scope, applicationID, file, header, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "application")
		case errors.Is(err, services.ErrRenewalTermNotFound):
			utils.NotFoundResponse(c, "renewal")
		case errors.Is(err, services.ErrFileTooLarge), errors.Is(err, services.ErrFileTypeNotAllowed):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		}
		return
	}

	utils.CreatedResponse(c, document)
}

// List returns an application's documents, newest first.
// GET /api/v1/applications/:id/documents
func (h *DocumentHandler) List(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	applicationID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	documents, err := h.documentService.List(scope, applicationID)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			utils.NotFoundResponse(c, "application")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, documents)
}

// Delete removes a document record.
// DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	scope, ok := scopeFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
		return
	}

	documentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.Delete(scope, documentID); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			utils.NotFoundResponse(c, "document")
			return
		}
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyErrorInternal))
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Document deleted"})
}
