package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/storecogs/internal/observability/context"
	salesdomain "github.com/smallbiznis/storecogs/internal/sales/domain"
	"github.com/smallbiznis/storecogs/internal/spreadsheet"
	"github.com/smallbiznis/storecogs/internal/tabular"
)

func (s *Server) UploadSales(c *gin.Context) {
	upload, err := s.readUpload(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.salesSvc.Ingest(c.Request.Context(), salesdomain.IngestRequest{
		FileName:   upload.FileName,
		Rows:       upload.Rows,
		RowNumbers: upload.RowNumbers,
	})
	if resp.BatchID != "" {
		c.Set(obscontext.GinKeyBatchID, resp.BatchID)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateSale(c *gin.Context) {
	body, err := decodeJSONObject(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sale, err := s.salesSvc.Create(c.Request.Context(), salesdomain.CreateRequest{
		Values: tabular.RowFromMap(body, salesdomain.Schema.Headers()),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sale})
}

func (s *Server) ListSales(c *gin.Context) {
	page, err := parsePagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.salesSvc.List(c.Request.Context(), salesdomain.ListRequest{Pagination: page})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSaleByID(c *gin.Context) {
	sale, err := s.salesSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}

func (s *Server) UpdateSale(c *gin.Context) {
	body, err := decodeJSONObject(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	delete(body, "id")

	sale, err := s.salesSvc.Update(c.Request.Context(), salesdomain.UpdateRequest{
		ID:     c.Param("id"),
		Values: tabular.RowFromMap(body, salesdomain.Schema.Headers()),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sale})
}

func (s *Server) DeleteSale(c *gin.Context) {
	if err := s.salesSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ExportSales(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.salesSvc.Export(c.Request.Context(), &buf); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sales.xlsx"`)
	c.Data(http.StatusOK, spreadsheet.ContentType, buf.Bytes())
}
