package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrima/records-portal/internal/database/records"
	"github.com/mrima/records-portal/internal/registry"
)

// RegistryController serves the public, read-only view of imported records.
type RegistryController struct {
	store      RecordSearcher
	minQuality int
	pageSize   int
}

func NewRegistryController(store RecordSearcher, minQuality, pageSize int) *RegistryController {
	return &RegistryController{
		store:      store,
		minQuality: minQuality,
		pageSize:   pageSize,
	}
}

// DomainInfo describes one configured registry.
type DomainInfo struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Table        string   `json:"table"`
	Fields       []string `json:"fields"`
	SearchFields []string `json:"search_fields"`
	StatsFields  []string `json:"stats_fields"`
	BatchSize    int      `json:"batch_size"`
}

// StatsResponse is the result of a grouped count.
type StatsResponse struct {
	Domain     string          `json:"domain"`
	Column     string          `json:"column"`
	MinQuality int             `json:"min_quality"`
	Counts     []records.Count `json:"counts"`
}

// ListDomains handles GET /api/domains
func (rc *RegistryController) ListDomains(c *gin.Context) {
	all := registry.All()
	domains := make([]DomainInfo, 0, len(all))
	for _, d := range all {
		domains = append(domains, DomainInfo{
			Name:         d.Name,
			Label:        d.Label,
			Table:        d.Table,
			Fields:       d.Targets(),
			SearchFields: d.SearchColumns,
			StatsFields:  d.StatsColumns,
			BatchSize:    d.BatchSize,
		})
	}
	c.JSON(http.StatusOK, gin.H{"domains": domains})
}

// Search handles GET /api/registry/:domain?q=&limit=&offset=
// Only records at or above the quality threshold are listed.
func (rc *RegistryController) Search(c *gin.Context) {
	domain, err := registry.Lookup(c.Param("domain"))
	if err != nil {
		respondDomainError(c, err, "lookup domain")
		return
	}

	limit, offset := parsePagination(c, rc.pageSize)
	rows, total, err := rc.store.Search(c.Request.Context(), domain.Table, records.Query{
		Term:       strings.TrimSpace(c.Query("q")),
		Columns:    domain.SearchColumns,
		MinQuality: rc.minQuality,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondInternalError(c, err, "search "+domain.Name)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(rows, total, limit, offset))
}

// Stats handles GET /api/registry/:domain/stats?by=<column>
func (rc *RegistryController) Stats(c *gin.Context) {
	domain, err := registry.Lookup(c.Param("domain"))
	if err != nil {
		respondDomainError(c, err, "lookup domain")
		return
	}

	column := c.Query("by")
	if column == "" && len(domain.StatsColumns) > 0 {
		column = domain.StatsColumns[0]
	}
	if !domain.AllowsStats(column) {
		respondBadRequest(c, "statistics are not available for column "+column)
		return
	}

	counts, err := rc.store.CountBy(c.Request.Context(), domain.Table, column, rc.minQuality)
	if err != nil {
		respondInternalError(c, err, "stats "+domain.Name)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Domain:     domain.Name,
		Column:     column,
		MinQuality: rc.minQuality,
		Counts:     counts,
	})
}
