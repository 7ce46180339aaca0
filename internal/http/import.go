package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/registry"
	"github.com/mrima/records-portal/internal/services"
	"github.com/mrima/records-portal/internal/tasks"
	"github.com/mrima/records-portal/internal/utils"
)

type ImportController struct {
	importer Importer
	queue    TaskQueue
	spoolDir string
}

// NewImportController creates an import controller. queue may be nil, in
// which case async imports answer 503.
func NewImportController(importer Importer, queue TaskQueue, spoolDir string) *ImportController {
	return &ImportController{
		importer: importer,
		queue:    queue,
		spoolDir: spoolDir,
	}
}

// ValidateRequest describes an upload the client has not sent yet.
type ValidateRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// AsyncImportResponse is returned when an import is queued.
type AsyncImportResponse struct {
	TaskID   string `json:"task_id"`
	Domain   string `json:"domain"`
	FileName string `json:"file_name"`
	Status   string `json:"status"`
}

// Import handles POST /api/import/:domain
// Runs the uploaded CSV through the pipeline and returns the import result.
func (ic *ImportController) Import(c *gin.Context) {
	domain, ok := ic.lookup(c)
	if !ok {
		return
	}

	info, content, ok := ic.readUpload(c)
	if !ok {
		return
	}

	result, err := ic.importer.Import(c.Request.Context(), services.ImportRequest{
		Domain:   domain.Name,
		FileName: info.Name,
		Content:  content,
		UserID:   GetUserID(c),
	}, nil)

	status := importStatus(result, err)
	if status == http.StatusInternalServerError || result == nil {
		respondDomainError(c, err, "import "+domain.Name)
		return
	}
	c.JSON(status, result)
}

// ImportAsync handles POST /api/import/:domain/async
// Spools the upload and queues it for a background worker.
func (ic *ImportController) ImportAsync(c *gin.Context) {
	if ic.queue == nil {
		respondError(c, http.StatusServiceUnavailable, "background imports are disabled")
		return
	}

	domain, ok := ic.lookup(c)
	if !ok {
		return
	}

	info, content, ok := ic.readUpload(c)
	if !ok {
		return
	}

	path, err := tasks.SpoolFile(ic.spoolDir, domain.Name, content)
	if err != nil {
		respondInternalError(c, err, "spool "+domain.Name+" upload")
		return
	}

	taskID, err := ic.queue.Enqueue(c.Request.Context(), tasks.ImportFileTask{
		Domain:   domain.Name,
		FileName: info.Name,
		Path:     path,
		UserID:   GetUserID(c),
	})
	if err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			log.Printf("[IMPORT] Failed to remove spooled file %s: %v", path, rmErr)
		}
		respondInternalError(c, err, "enqueue "+domain.Name+" import")
		return
	}

	log.Printf("[IMPORT] Queued %s import of %q as task %s", domain.Name, info.Name, taskID)
	respondAccepted(c, AsyncImportResponse{
		TaskID:   taskID,
		Domain:   domain.Name,
		FileName: info.Name,
		Status:   "pending",
	})
}

// Validate handles POST /api/import/:domain/validate
// Accepts either a multipart "file" or a JSON ValidateRequest.
func (ic *ImportController) Validate(c *gin.Context) {
	domain, ok := ic.lookup(c)
	if !ok {
		return
	}

	var info importers.FileInfo
	if fh, err := c.FormFile("file"); err == nil {
		info = importers.FileInfo{
			Name:        utils.SanitizeFilename(fh.Filename),
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
		}
	} else {
		var req ValidateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "file or file_name is required")
			return
		}
		info = importers.FileInfo{Name: utils.SanitizeFilename(req.FileName), Size: req.Size, ContentType: req.ContentType}
	}

	validation, err := ic.importer.Validate(GetUserID(c), domain.Name, info)
	if err != nil {
		respondDomainError(c, err, "validate "+domain.Name)
		return
	}
	c.JSON(http.StatusOK, validation)
}

// Progress handles GET /api/import/:domain/progress
// Returns the latest run of the domain, running or finished.
func (ic *ImportController) Progress(c *gin.Context) {
	domain, ok := ic.lookup(c)
	if !ok {
		return
	}

	run, err := ic.importer.LatestRun(domain.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "import run")
			return
		}
		respondInternalError(c, err, "progress "+domain.Name)
		return
	}
	c.JSON(http.StatusOK, run)
}

// Template handles GET /api/import/:domain/template
// Downloads a sample CSV with the canonical headers of the domain.
func (ic *ImportController) Template(c *gin.Context) {
	domain, ok := ic.lookup(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := ic.importer.WriteTemplate(&buf, domain.Name); err != nil {
		respondDomainError(c, err, "template "+domain.Name)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", domain.Name+"_template.csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (ic *ImportController) lookup(c *gin.Context) (registry.Domain, bool) {
	domain, err := registry.Lookup(c.Param("domain"))
	if err != nil {
		respondDomainError(c, err, "lookup domain")
		return registry.Domain{}, false
	}
	return domain, true
}

// readUpload reads the multipart "file" field after the cheap checks on
// its name, type and size.
func (ic *ImportController) readUpload(c *gin.Context) (importers.FileInfo, []byte, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "file is required")
		return importers.FileInfo{}, nil, false
	}

	info := importers.FileInfo{
		Name:        utils.SanitizeFilename(fh.Filename),
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	}
	maxSize := ic.importer.MaxFileSize()
	if validation := importers.ValidateFile(info, maxSize); !validation.Valid {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validation.Error, Code: "invalid_file"})
		return info, nil, false
	}

	f, err := fh.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return info, nil, false
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		respondInternalError(c, err, "read upload")
		return info, nil, false
	}
	return info, content, true
}
