package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	importlogdomain "github.com/smallbiznis/storecogs/internal/importlog/domain"
)

func (s *Server) ListImports(c *gin.Context) {
	dataset, err := parseOptionalDataset(c.Query("dataset"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil || (limit != nil && *limit < 1) {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
		return
	}

	req := importlogdomain.ListRequest{Dataset: dataset}
	if limit != nil {
		req.Limit = *limit
	}

	batches, err := s.importSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": batches})
}
