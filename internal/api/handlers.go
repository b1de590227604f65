package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/mwantia/tomodb/pkg/catalog/filter"
	"github.com/mwantia/tomodb/pkg/dataset"
	"github.com/mwantia/tomodb/pkg/form"
)

const maxDraftSize = 1 << 20

type listResponse struct {
	Datasets []dataset.Record `json:"datasets"`
	Count    int              `json:"count"`
	Filter   filter.Spec      `json:"filter"`
}

func (s *Server) listDatasets(c *gin.Context) {
	spec := filter.FromQuery(c.Request.URL.Query())

	records, err := s.catalog.List(c.Request.Context(), spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if records == nil {
		records = []dataset.Record{}
	}
	if s.metrics != nil && spec.Active() {
		s.metrics.FilterResults.Observe(float64(len(records)))
	}

	c.JSON(http.StatusOK, listResponse{Datasets: records, Count: len(records), Filter: spec})
}

func (s *Server) getDataset(c *gin.Context) {
	record, err := s.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) nextID(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tomogram_id": s.catalog.NextID(c.Request.Context())})
}

// createDataset accepts the add-dataset form. With ?draft=<key> the draft
// under that key is cleared once the dataset exists.
func (s *Server) createDataset(c *gin.Context) {
	var state form.State
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := form.Validate(state); err != nil {
		s.respondError(c, err)
		return
	}

	record, err := s.catalog.Create(c.Request.Context(), state.Record())
	if err != nil {
		s.respondError(c, err)
		return
	}

	if key := c.Query("draft"); key != "" && s.drafts != nil {
		if err := s.drafts.Clear(c.Request.Context(), key); err != nil {
			s.log.Warn("Dataset %s created but draft %s was not cleared: %v", record.ID, key, err)
		}
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) filterOptions(c *gin.Context) {
	options, err := s.catalog.Options(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

type savedFilterRequest struct {
	Name        string `json:"name"        binding:"required"`
	Description string `json:"description"`
	Query       string `json:"query"`
}

func (s *Server) listSavedFilters(c *gin.Context) {
	filters, err := s.catalog.SavedFilters(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": filters})
}

func (s *Server) createSavedFilter(c *gin.Context) {
	var req savedFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spec, err := filter.ParseQuery(req.Query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}

	saved, err := s.catalog.SaveFilter(c.Request.Context(), req.Name, req.Description, spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) getSavedFilter(c *gin.Context) {
	saved, err := s.catalog.SavedFilter(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) deleteSavedFilter(c *gin.Context) {
	if err := s.catalog.DeleteSavedFilter(c.Request.Context(), c.Param("name")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) loadDraft(c *gin.Context) {
	value, ok, err := s.drafts.Load(c.Request.Context(), c.Param("key"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no draft saved"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", value)
}

func (s *Server) saveDraft(c *gin.Context) {
	value, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDraftSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(value) > maxDraftSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "draft too large"})
		return
	}
	if !jsoniter.Valid(value) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "draft must be valid JSON"})
		return
	}

	if err := s.drafts.Save(c.Request.Context(), c.Param("key"), value); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearDraft(c *gin.Context) {
	if err := s.drafts.Clear(c.Request.Context(), c.Param("key")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
