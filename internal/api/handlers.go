// Package api exposes the record lifecycle over HTTP for the embedded
// frontend. All user-facing messages are in Spanish, matching the UI.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prochap/qrgen/internal/export"
	"github.com/prochap/qrgen/internal/importer"
	"github.com/prochap/qrgen/internal/jobs"
	"github.com/prochap/qrgen/internal/models"
	"github.com/prochap/qrgen/internal/service"
	"github.com/prochap/qrgen/internal/storage"
)

// User-facing dialog messages.
const (
	msgMissingFields  = "Por favor ingrese un código y una descripción."
	msgCreateFailed   = "No se pudo guardar el QR en la base de datos."
	msgCreated        = "QR generado y guardado correctamente."
	msgDeleteFailed   = "No se pudieron borrar los códigos QR."
	msgDeleted        = "Todos los códigos QR han sido borrados."
	msgBusy           = "Hay una operación en curso. Espere a que termine."
	msgNothingToShare = "No hay códigos QR para exportar a PDF."
	msgMissingColumns = "Debes seleccionar las columnas 'Código' y 'Descripción'."
	msgUploadExpired  = "El archivo importado ya no está disponible. Vuelve a seleccionarlo."
)

// maxRenderSize caps the raster size a client may request.
const maxRenderSize = 1024

// Handler carries the dependencies of every route.
type Handler struct {
	svc    *service.Records
	runner *jobs.Runner

	mu      sync.Mutex
	tables  map[string]*importer.Table // upload token -> parsed table
	exports map[string]string          // download token -> finished PDF path
}

// NewHandler wires the HTTP handlers over the record service and the
// single-flight job runner.
func NewHandler(svc *service.Records, runner *jobs.Runner) *Handler {
	return &Handler{
		svc:     svc,
		runner:  runner,
		tables:  make(map[string]*importer.Table),
		exports: make(map[string]string),
	}
}

type createRequest struct {
	Code            string `json:"codigo"`
	Description     string `json:"descripcion"`
	Personalization string `json:"personalizacion"`
}

// createRecord handles manual single-record creation.
func (h *Handler) createRecord(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": msgMissingFields})
		return
	}

	record, err := h.svc.Create(c.Request.Context(), req.Code, req.Description, req.Personalization)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			c.JSON(http.StatusBadRequest, gin.H{"mensaje": msgMissingFields})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"mensaje": msgCreateFailed})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"mensaje": msgCreated, "registro": record})
}

// listRecords returns every record in insertion order.
func (h *Handler) listRecords(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"mensaje": "Error al mostrar QRs."})
		return
	}
	if records == nil {
		records = []models.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"registros": records})
}

// deleteRecords removes every record. The frontend gates this behind a
// confirmation dialog; the API itself is a plain DELETE.
func (h *Handler) deleteRecords(c *gin.Context) {
	if err := h.svc.ClearAll(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"mensaje": msgDeleteFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": msgDeleted})
}

// recordQR renders a fresh raster for one record. With ?descargar=1 the
// response is served as a file download, which is the per-card
// "Guardar QR" action.
func (h *Handler) recordQR(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "Identificador inválido."})
		return
	}

	size := 0
	if raw := c.Query("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < 0 || size > maxRenderSize {
			c.JSON(http.StatusBadRequest, gin.H{"mensaje": "Tamaño inválido."})
			return
		}
	}

	data, err := h.svc.Render(c.Request.Context(), id, size)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"mensaje": "El código QR no existe."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"mensaje": "No se pudo generar la imagen QR."})
		return
	}

	if c.Query("descargar") == "1" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=qr-%d.png", id))
	}
	c.Data(http.StatusOK, "image/png", data)
}

// inspectImport receives the spreadsheet upload, parses it and answers
// with the available columns so the user can pick the mapping. The
// parsed table is kept in memory under a token until the import starts.
func (h *Handler) inspectImport(c *gin.Context) {
	file, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": "Archivo Excel no encontrado."})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": fmt.Sprintf("Error al abrir el archivo Excel: %v", err)})
		return
	}
	defer src.Close()

	table, err := importer.Read(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": fmt.Sprintf("Error al abrir el archivo Excel: %v", err)})
		return
	}

	token := uuid.NewString()
	h.mu.Lock()
	h.tables[token] = table
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"token":           token,
		"columnas":        table.Columns,
		"personalizacion": importer.DetectPersonalization(table.Columns),
		"filas":           len(table.Rows),
	})
}

type importRequest struct {
	Token       string `json:"token"`
	Code        string `json:"codigo"`
	Description string `json:"descripcion"`
}

// startImport launches the import job for a previously inspected upload.
func (h *Handler) startImport(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" || req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": msgMissingColumns})
		return
	}

	h.mu.Lock()
	table, ok := h.tables[req.Token]
	delete(h.tables, req.Token)
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": msgUploadExpired})
		return
	}

	mapping := importer.Mapping{Code: req.Code, Description: req.Description}
	// Reject bad mappings synchronously, before a job starts.
	if err := importer.ValidateMapping(table, mapping); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": msgMissingColumns})
		return
	}

	// Fire-and-forget: the job outlives the request, so it must not
	// inherit the request context.
	id, err := h.runner.Start("importar", func(report func(current, total int)) (any, error) {
		result, err := h.svc.Import(context.Background(), table, mapping, report)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
	if errors.Is(err, jobs.ErrBusy) {
		c.JSON(http.StatusConflict, gin.H{"mensaje": msgBusy})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"trabajo": id})
}

// startExport launches the PDF export job. The finished document is
// fetched through downloadExport, which is where the browser's save
// dialog plays the role of the desktop path chooser.
func (h *Handler) startExport(c *gin.Context) {
	count, err := h.svc.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"mensaje": "No se pudo exportar a PDF."})
		return
	}
	if count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"mensaje": msgNothingToShare})
		return
	}

	// The download token is independent of the job ID so the worker
	// never races with Start's return value.
	token := uuid.NewString()
	jobID, err := h.runner.Start("exportar", func(report func(current, total int)) (any, error) {
		path := filepath.Join(os.TempDir(), "qrgen-"+token+".pdf")
		out, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create export file: %w", err)
		}

		if err := h.svc.ExportPDF(context.Background(), out, report); err != nil {
			out.Close()
			os.Remove(path)
			if errors.Is(err, export.ErrNoRecords) {
				return nil, errors.New(msgNothingToShare)
			}
			return nil, err
		}
		if err := out.Close(); err != nil {
			os.Remove(path)
			return nil, fmt.Errorf("failed to finish export file: %w", err)
		}

		h.mu.Lock()
		h.exports[token] = path
		h.mu.Unlock()

		return gin.H{"descarga": "/api/export/" + token + "/download"}, nil
	})
	if errors.Is(err, jobs.ErrBusy) {
		c.JSON(http.StatusConflict, gin.H{"mensaje": msgBusy})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"trabajo": jobID})
}

// downloadExport serves a finished PDF exactly once and removes it.
func (h *Handler) downloadExport(c *gin.Context) {
	id := c.Param("id")

	h.mu.Lock()
	path, ok := h.exports[id]
	delete(h.exports, id)
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"mensaje": "El PDF ya no está disponible."})
		return
	}

	c.FileAttachment(path, "codigos_qr.pdf")
	if err := os.Remove(path); err != nil {
		slog.Warn("Failed to remove served export", "path", path, "error", err)
	}
}

// currentJob reports the progress snapshot the frontend polls while the
// progress bar is visible.
func (h *Handler) currentJob(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Snapshot())
}

// health is a liveness probe.
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
