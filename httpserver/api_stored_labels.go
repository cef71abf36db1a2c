package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"

	"github.com/UnownHash/Chatot/db_store"
)

// LabelPointsStore is the read side of the labels DB.
type LabelPointsStore interface {
	GetLabelPoint(ctx context.Context, name string) (*db_store.LabelPoint, error)
	GetAllLabelPoints(ctx context.Context) ([]*db_store.LabelPoint, error)
}

type APIStoredLabel struct {
	Name       string             `json:"name"`
	Lat        float64            `json:"lat"`
	Lon        float64            `json:"lon"`
	Area       *float64           `json:"area"`
	Source     *string            `json:"source"`
	Properties geojson.Properties `json:"properties"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type getStoredLabelsResponse struct {
	Labels []*APIStoredLabel `json:"labels"`
}

type getOneStoredLabelResponse struct {
	Label *APIStoredLabel `json:"label"`
}

func labelPointToAPIStoredLabel(lp *db_store.LabelPoint) (*APIStoredLabel, error) {
	props, err := lp.GetProperties()
	if err != nil {
		return nil, err
	}
	return &APIStoredLabel{
		Name:       lp.Name,
		Lat:        lp.Lat,
		Lon:        lp.Lon,
		Area:       lp.Area.Ptr(),
		Source:     lp.Source.Ptr(),
		Properties: props,
		UpdatedAt:  lp.UpdatedTime(),
	}, nil
}

func (srv *HTTPServer) requireLabelsStore(c *gin.Context) bool {
	if srv.labelsStore == nil {
		c.JSON(http.StatusNotFound, APIErrorResponse{
			Error: "no labels db is configured",
		})
		return false
	}
	return true
}

func (srv *HTTPServer) handleGetStoredLabels(c *gin.Context) {
	if !srv.requireLabelsStore(c) {
		return
	}

	lps, err := srv.labelsStore.GetAllLabelPoints(c.Request.Context())
	if err != nil {
		srv.logger.Errorf("GetStoredLabels: %v", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	apiLabels := make([]*APIStoredLabel, 0, len(lps))
	for _, lp := range lps {
		apiLabel, err := labelPointToAPIStoredLabel(lp)
		if err != nil {
			srv.logger.Warnf("GetStoredLabels: skipping: %v", err)
			continue
		}
		apiLabels = append(apiLabels, apiLabel)
	}

	c.JSON(http.StatusOK, getStoredLabelsResponse{apiLabels})
}

func (srv *HTTPServer) handleGetStoredLabel(c *gin.Context) {
	if !srv.requireLabelsStore(c) {
		return
	}

	name := c.Param("name")

	lp, err := srv.labelsStore.GetLabelPoint(c.Request.Context(), name)
	if err != nil {
		srv.logger.Errorf("GetStoredLabel: %v", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	if lp == nil {
		c.JSON(http.StatusNotFound, APIErrorResponse{
			Error: "Label not found",
		})
		return
	}

	apiLabel, err := labelPointToAPIStoredLabel(lp)
	if err != nil {
		srv.logger.Errorf("GetStoredLabel: %v", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	c.JSON(http.StatusOK, getOneStoredLabelResponse{apiLabel})
}
