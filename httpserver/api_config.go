package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UnownHash/Chatot/labeler"
)

func (srv *HTTPServer) handleReload(c *gin.Context) {
	type reloadResponse struct {
		Message string `json:"message"`
	}

	if srv.reloadFn == nil {
		c.JSON(http.StatusNotImplemented, APIErrorResponse{
			Error: "reloading is not supported",
		})
		return
	}

	err := srv.reloadFn()
	if err != nil {
		srv.logger.Error(err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	srv.logger.Infof("config reloaded")

	c.JSON(http.StatusOK, reloadResponse{
		Message: "config has been reloaded",
	})
}

func (srv *HTTPServer) handleGetConfig(c *gin.Context) {
	type configResponse struct {
		LabelerConfig labeler.Config `json:"labeler"`
	}

	type getConfigResponse struct {
		Config configResponse `json:"config"`
	}

	var resp getConfigResponse
	resp.Config.LabelerConfig = srv.builderFn().Config()

	c.JSON(http.StatusOK, resp)
}
