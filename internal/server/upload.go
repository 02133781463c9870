package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/storecogs/internal/observability/context"
	"github.com/smallbiznis/storecogs/internal/spreadsheet"
)

const uploadField = "file"

type uploadedSheet struct {
	FileName string
	spreadsheet.Sheet
}

// readUpload parses the multipart "file" field as an xlsx workbook. The
// configured sheet name and row limit of the ingest policy apply.
func (s *Server) readUpload(c *gin.Context) (uploadedSheet, error) {
	if s.cfg.UploadMaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.UploadMaxBytes)
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return uploadedSheet{}, newValidationError(uploadField, "file_too_large", "the uploaded file is too large")
		}
		return uploadedSheet{}, newValidationError(uploadField, "file_required", "a spreadsheet file is required")
	}

	name := filepath.Base(header.Filename)
	c.Set(obscontext.GinKeyFileName, name)
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return uploadedSheet{}, newValidationError(uploadField, "unsupported_file_type", "only .xlsx workbooks are accepted")
	}

	f, err := header.Open()
	if err != nil {
		return uploadedSheet{}, err
	}
	defer f.Close()

	policy := s.policy.Get()
	sheet, err := spreadsheet.Read(f, spreadsheet.ReadOptions{
		SheetName: policy.SheetName,
		MaxRows:   policy.MaxRows,
	})
	if err != nil {
		return uploadedSheet{}, err
	}

	return uploadedSheet{FileName: name, Sheet: sheet}, nil
}

// uploadRateLimit throttles uploads per client IP when a limiter is
// configured.
func (s *Server) uploadRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}
		res, err := s.limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			if res.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
			}
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}
