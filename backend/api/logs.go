package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

var errInvalidSince = errors.New("invalid 'since' parameter: must be a non-negative integer")

func (r *Router) getAppLogs(c *gin.Context) {
	var since int64
	if raw := c.Query("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			badRequest(c, errInvalidSince)
			return
		}
		since = v
	}
	c.JSON(http.StatusOK, r.service.GetAppLogs(since))
}
