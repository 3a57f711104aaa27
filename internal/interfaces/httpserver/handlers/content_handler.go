package handlers

import (
	"fmt"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"shareboard/internal/config"
	"shareboard/internal/domain/content"
	"shareboard/internal/interfaces/httpserver/responses"
)

// ContentHandler exposes the board feed and recycle bin endpoints.
type ContentHandler struct {
	cfg     *config.Config
	service *content.Service
	log     zerolog.Logger
}

func NewContentHandler(cfg *config.Config, service *content.Service, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "content-handler").Logger(),
	}
}

type batchRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// List returns active records, newest first.
func (h *ContentHandler) List(c *gin.Context) {
	records, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list contents")
		return
	}
	if records == nil {
		records = []content.ContentRecord{}
	}
	responses.OK(c, records)
}

// ListDeleted returns recycle bin records, most recently deleted first.
func (h *ContentHandler) ListDeleted(c *gin.Context) {
	records, err := h.service.ListDeleted(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list deleted contents")
		return
	}
	if records == nil {
		records = []content.ContentRecord{}
	}
	responses.OK(c, records)
}

// Create ingests a multipart post: optional text field plus files parts.
func (h *ContentHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		responses.HandleValidationError(c, "invalid multipart form")
		return
	}

	req := content.CreateRequest{Text: c.PostForm("text")}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["file"]
	}

	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, header := range fileHeaders {
		if header.Size > h.cfg.MaxUploadBytes {
			responses.HandleValidationError(c,
				fmt.Sprintf("file %s exceeds the %d byte upload limit", header.Filename, h.cfg.MaxUploadBytes))
			return
		}
		file, err := header.Open()
		if err != nil {
			responses.HandleValidationError(c, "unable to read uploaded file")
			return
		}
		opened = append(opened, file)
		req.Files = append(req.Files, content.UploadedFile{
			Filename: header.Filename,
			Mimetype: header.Header.Get("Content-Type"),
			Size:     header.Size,
			Reader:   file,
		})
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		responses.HandleError(c, err, "failed to create content")
		return
	}
	responses.OK(c, created)
}

// Delete moves a record into the recycle bin.
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete content")
		return
	}
	responses.OKMessage(c, "content moved to recycle bin", nil)
}

// Restore moves a recycle bin record back into the feed.
func (h *ContentHandler) Restore(c *gin.Context) {
	if err := h.service.Restore(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to restore content")
		return
	}
	responses.OKMessage(c, "content restored", nil)
}

// PermanentlyDelete erases a recycle bin record and its payload.
func (h *ContentHandler) PermanentlyDelete(c *gin.Context) {
	if err := h.service.PermanentlyDelete(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to permanently delete content")
		return
	}
	responses.OKMessage(c, "content permanently deleted", nil)
}

// BatchRestore restores every listed id still present in the recycle bin.
func (h *ContentHandler) BatchRestore(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "ids array is required")
		return
	}
	restored, err := h.service.BatchRestore(c.Request.Context(), req.IDs)
	if err != nil {
		responses.HandleError(c, err, "failed to restore contents")
		return
	}
	responses.OKMessage(c, fmt.Sprintf("restored %d items", restored), gin.H{"restored": restored})
}

// BatchPermanentlyDelete erases every listed id still present in the bin.
func (h *ContentHandler) BatchPermanentlyDelete(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleValidationError(c, "ids array is required")
		return
	}
	removed, err := h.service.BatchPermanentlyDelete(c.Request.Context(), req.IDs)
	if err != nil {
		responses.HandleError(c, err, "failed to permanently delete contents")
		return
	}
	responses.OKMessage(c, fmt.Sprintf("permanently deleted %d items", removed), gin.H{"deleted": removed})
}
