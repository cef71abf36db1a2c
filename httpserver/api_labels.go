package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"

	"github.com/UnownHash/Chatot/labeler"
)

type labelsWithStatsResponse struct {
	Labels *geojson.FeatureCollection `json:"labels"`
	Stats  labeler.Stats              `json:"stats"`
}

// requestBuilder applies the per-request 'name_key' and 'placement'
// overrides to the current config.
func (srv *HTTPServer) requestBuilder(c *gin.Context) (*labeler.Builder, error) {
	builder := srv.builderFn()

	nameKeys := c.QueryArray("name_key")
	placement := c.Query("placement")

	if len(nameKeys) == 0 && placement == "" {
		return builder, nil
	}

	config := builder.Config()
	if len(nameKeys) > 0 {
		config.NameKeys = nameKeys
	}
	if placement != "" {
		config.Placement = placement
	}

	return labeler.NewBuilder(config)
}

func (srv *HTTPServer) recordResult(result *labeler.Result) {
	stats := result.Stats
	srv.statsCollector.AddFeaturesProcessed(uint64(stats.Features))
	srv.statsCollector.AddGroupsProcessed(uint64(stats.Groups))
	srv.statsCollector.AddDegenerateFeatures(uint64(stats.DegenerateFeatures))
	srv.statsCollector.AddLabelPointsEmitted(uint64(stats.Points))
}

func (srv *HTTPServer) writeLabels(c *gin.Context, result *labeler.Result) {
	fc := result.FeatureCollection()

	if withStats, _ := strconv.ParseBool(c.Query("stats")); withStats {
		c.JSON(http.StatusOK, labelsWithStatsResponse{
			Labels: fc,
			Stats:  result.Stats,
		})
		return
	}

	c.JSON(http.StatusOK, fc)
}

func (srv *HTTPServer) rejectRequest(c *gin.Context, status int, msg string) {
	srv.statsCollector.AddRejectedRequest()
	c.JSON(status, APIErrorResponse{
		Error: msg,
	})
}

func (srv *HTTPServer) handlePostLabels(c *gin.Context) {
	builder, err := srv.requestBuilder(c)
	if err != nil {
		srv.logger.Warnf("PostLabels: bad overrides: %v", err)
		srv.rejectRequest(c, http.StatusBadRequest, err.Error())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, srv.maxRequestBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			srv.rejectRequest(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		srv.rejectRequest(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		srv.logger.Warnf("PostLabels: malformed feature collection: %v", err)
		srv.rejectRequest(c, http.StatusBadRequest, "body is not a GeoJSON FeatureCollection")
		return
	}

	result, err := builder.Build(fc)
	if err != nil {
		if errors.Is(err, labeler.ErrUnsupportedGeometry) {
			srv.rejectRequest(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		srv.logger.Errorf("PostLabels: %v", err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	srv.recordResult(result)

	srv.logger.Debugf(
		"PostLabels: %d feature(s) -> %d group(s) -> %d label(s) (%d degenerate feature(s), %d dropped group(s))",
		result.Stats.Features,
		result.Stats.Groups,
		result.Stats.Points,
		result.Stats.DegenerateFeatures,
		result.Stats.DroppedGroups,
	)

	srv.writeLabels(c, result)
}
