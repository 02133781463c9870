package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cogsdomain "github.com/smallbiznis/storecogs/internal/cogs/domain"
	obscontext "github.com/smallbiznis/storecogs/internal/observability/context"
	"github.com/smallbiznis/storecogs/internal/spreadsheet"
	"github.com/smallbiznis/storecogs/internal/tabular"
)

func (s *Server) UploadCogs(c *gin.Context) {
	upload, err := s.readUpload(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.cogsSvc.Ingest(c.Request.Context(), cogsdomain.IngestRequest{
		FileName:   upload.FileName,
		Rows:       upload.Rows,
		RowNumbers: upload.RowNumbers,
	})
	if summary.BatchID != "" {
		c.Set(obscontext.GinKeyBatchID, summary.BatchID)
	}
	if err != nil {
		if isPartialBatchError(err) {
			status, payload := mapError(err)
			c.JSON(status, gin.H{"data": summary, "error": payload})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// decodeJSONObject reads the request body as a JSON object. Numbers stay
// json.Number so large identifiers and amounts keep their precision.
func decodeJSONObject(c *gin.Context) (map[string]any, error) {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil || body == nil {
		return nil, invalidRequestError()
	}
	return body, nil
}

// isPartialBatchError reports whether err ended a batch after some rows
// were already committed.
func isPartialBatchError(err error) bool {
	return errors.Is(err, cogsdomain.ErrBatchAborted) || errors.Is(err, cogsdomain.ErrBatchInterrupted)
}

func (s *Server) ListCogs(c *gin.Context) {
	page, err := parsePagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.cogsSvc.List(c.Request.Context(), cogsdomain.ListRequest{
		Pagination:  page,
		StoreNumber: strings.TrimSpace(c.Query("store_number")),
		WeekPeriod:  strings.TrimSpace(c.Query("week_period")),
		Period:      strings.TrimSpace(c.Query("period")),
		Search:      strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCogsByID(c *gin.Context) {
	report, err := s.cogsSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

type submitCogsRequest struct {
	ID     string         `json:"id"`
	Values map[string]any `json:"values"`
}

// SubmitCogs accepts either {"id": ..., "values": {...}} or a flat object of
// field values. Keys are matched like spreadsheet headers.
func (s *Server) SubmitCogs(c *gin.Context) {
	body, err := decodeJSONObject(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	req := splitSubmitBody(body)
	report, err := s.cogsSvc.Submit(c.Request.Context(), cogsdomain.SubmitRequest{
		ID:     req.ID,
		Values: tabular.RowFromMap(req.Values, cogsdomain.Schema.Headers()),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func splitSubmitBody(body map[string]any) submitCogsRequest {
	req := submitCogsRequest{}
	if id, ok := body["id"]; ok && id != nil {
		req.ID = strings.TrimSpace(tabular.Stringify(id))
	}
	if nested, ok := body["values"].(map[string]any); ok {
		req.Values = nested
		return req
	}

	req.Values = make(map[string]any, len(body))
	for k, v := range body {
		if k == "id" {
			continue
		}
		req.Values[k] = v
	}
	return req
}

func (s *Server) DeleteCogs(c *gin.Context) {
	if err := s.cogsSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetStoreMapping(c *gin.Context) {
	mapping, err := s.cogsSvc.StoreMapping(c.Request.Context(), c.Param("storeNumber"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": mapping})
}

func (s *Server) ExportCogs(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.cogsSvc.Export(c.Request.Context(), &buf); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="cogs.xlsx"`)
	c.Data(http.StatusOK, spreadsheet.ContentType, buf.Bytes())
}

func (s *Server) CogsWeeklyReport(c *gin.Context) {
	storeNumber := strings.TrimSpace(c.Query("store_number"))
	weekPeriod := strings.TrimSpace(c.Query("week_period"))
	if storeNumber == "" {
		AbortWithError(c, newValidationError("store_number", "invalid_store_number", "store_number is required"))
		return
	}
	if weekPeriod == "" {
		AbortWithError(c, newValidationError("week_period", "invalid_week_period", "week_period is required"))
		return
	}

	doc, err := s.cogsSvc.WeeklyReportPDF(c.Request.Context(), storeNumber, weekPeriod)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	data, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="cogs-%s-%s.pdf"`, safeFileToken(storeNumber), safeFileToken(weekPeriod)))
	c.Data(http.StatusOK, "application/pdf", data)
}

func safeFileToken(v string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, v)
}
