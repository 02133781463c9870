package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
	"github.com/smallbiznis/storecogs/pkg/db/pagination"
)

func parseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parsePagination reads page and limit. Missing values take the defaults;
// malformed or negative ones are rejected.
func parsePagination(c *gin.Context) (pagination.Pagination, error) {
	p := pagination.Pagination{Page: 1, Limit: pagination.DefaultLimit}

	page, err := parseOptionalInt(c.Query("page"))
	if err != nil || (page != nil && *page < 1) {
		return p, newValidationError("page", "invalid_page", "page must be a positive integer")
	}
	if page != nil {
		p.Page = *page
	}

	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil || (limit != nil && *limit < 1) {
		return p, newValidationError("limit", "invalid_limit", "limit must be a positive integer")
	}
	if limit != nil {
		p.Limit = *limit
	}

	return p.Normalize(), nil
}

func parseOptionalDataset(value string) (importlogdomain.Dataset, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch importlogdomain.Dataset(trimmed) {
	case "":
		return "", nil
	case importlogdomain.DatasetCogs, importlogdomain.DatasetStores, importlogdomain.DatasetSales:
		return importlogdomain.Dataset(trimmed), nil
	default:
		return "", importlogdomain.ErrInvalidDataset
	}
}
