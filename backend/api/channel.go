package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"proxymanager/backend/channel"
	"proxymanager/backend/domain"
)

func (r *Router) invokeChannel(c *gin.Context) {
	ch := r.service.Channel()
	if name := c.Param("name"); name != ch.Name() {
		r.handleError(c, fmt.Errorf("%w: %s", domain.ErrUnknownChannel, name))
		return
	}
	var call channel.MethodCall
	if err := c.ShouldBindJSON(&call); err != nil {
		badRequest(c, err)
		return
	}
	resp := ch.Invoke(c.Request.Context(), call)
	c.JSON(channelStatusCode(resp), resp)
}

func channelStatusCode(resp channel.Response) int {
	switch resp.Status {
	case channel.StatusSuccess:
		return http.StatusOK
	case channel.StatusNotImplemented:
		return http.StatusNotImplemented
	}
	if resp.Code == channel.CodeInvalidArgument {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
