package httpserver

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/UnownHash/Chatot/areas"
)

type getAreasResponse struct {
	Areas []string `json:"areas"`
}

func (srv *HTTPServer) requireAreas(c *gin.Context) bool {
	if srv.areasLoader == nil {
		c.JSON(http.StatusNotFound, APIErrorResponse{
			Error: "no areas are configured",
		})
		return false
	}
	return true
}

func (srv *HTTPServer) handleGetAreas(c *gin.Context) {
	if !srv.requireAreas(c) {
		return
	}

	names := srv.areasLoader.GetAreaNames(c.Request.Context())
	if names == nil {
		names = []string{}
	}

	c.JSON(http.StatusOK, getAreasResponse{Areas: names})
}

func (srv *HTTPServer) handleGetAreaLabels(c *gin.Context) {
	if !srv.requireAreas(c) {
		return
	}

	builder, err := srv.requestBuilder(c)
	if err != nil {
		srv.rejectRequest(c, http.StatusBadRequest, err.Error())
		return
	}

	features := srv.areasLoader.GetAllAreas(c.Request.Context())

	result, err := builder.BuildFromFeatures(features)
	if err != nil {
		srv.logger.Errorf("GetAreaLabels: %v", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	srv.recordResult(result)
	srv.writeLabels(c, result)
}

func parseCoordinate(s string, limit float64) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}

func (srv *HTTPServer) handleMatchAreas(c *gin.Context) {
	if !srv.requireAreas(c) {
		return
	}

	lat, latOk := parseCoordinate(c.Query("lat"), 90)
	lon, lonOk := parseCoordinate(c.Query("lon"), 180)
	if !latOk || !lonOk {
		srv.rejectRequest(c, http.StatusBadRequest, "'lat' and 'lon' must be valid coordinates")
		return
	}

	matches, err := srv.areasLoader.GetMatchingAreas(c.Request.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, areas.ErrNoAreas) {
			c.JSON(http.StatusServiceUnavailable, APIErrorResponse{
				Error: "areas are not loaded",
			})
			return
		}
		srv.logger.Errorf("MatchAreas: %v", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	c.JSON(http.StatusOK, getAreasResponse{Areas: matches})
}
