package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/storecogs/internal/observability/context"
	storedirdomain "github.com/smallbiznis/storecogs/internal/storedir/domain"
)

func (s *Server) UploadStores(c *gin.Context) {
	upload, err := s.readUpload(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.storeSvc.Replace(c.Request.Context(), storedirdomain.ReplaceRequest{
		FileName: upload.FileName,
		Rows:     upload.Rows,
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

func (s *Server) ListStores(c *gin.Context) {
	stores, err := s.storeSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stores})
}

func (s *Server) GetStoreByNumber(c *gin.Context) {
	store, err := s.storeSvc.GetByNumber(c.Request.Context(), c.Param("storeNumber"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": store})
}
