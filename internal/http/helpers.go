package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrima/records-portal/internal/auth"
	"github.com/mrima/records-portal/internal/importers"
	"github.com/mrima/records-portal/internal/registry"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 200
)

// GetUserID extracts the staff user ID from the Gin context.
// Returns auth.DefaultUserID (0) when the staff guard is disabled.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (import result, etc.)
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

func newPaginatedResponse(data any, total int64, limit, offset int) PaginatedResponse {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+limit) < total,
		TotalPages: pages,
	}
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, data)
}

// respondDomainError answers an unknown registry domain with 404 and
// anything else with 500.
func respondDomainError(c *gin.Context, err error, context string) {
	if errors.Is(err, registry.ErrUnknownDomain) {
		respondError(c, http.StatusNotFound, err.Error())
		return
	}
	respondInternalError(c, err, context)
}

// importStatus maps the outcome of an import to an HTTP status.
func importStatus(result *importers.Result, err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, registry.ErrUnknownDomain):
		return http.StatusNotFound
	case errors.Is(err, importers.ErrImportInProgress):
		return http.StatusConflict
	case importers.IsPrecondition(err):
		return http.StatusBadRequest
	case result != nil && result.Cancelled:
		// The client went away; the partial result is still reported.
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// --- Parameter Parsing ---

// parsePagination reads limit and offset query parameters. Invalid values
// fall back to the defaults; limit is capped at maxPageLimit.
func parsePagination(c *gin.Context, fallback int) (limit, offset int) {
	if fallback <= 0 {
		fallback = defaultPageLimit
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = fallback
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset, err = strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
