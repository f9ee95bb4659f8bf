package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"proxymanager/backend/domain"
)

func (r *Router) getPlatformVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": r.service.PlatformVersion()})
}

// getSystemProxy 查询默认连接是否启用了指定代理
func (r *Router) getSystemProxy(c *gin.Context) {
	addr, ok := c.GetQuery("proxy")
	if !ok {
		badRequest(c, fmt.Errorf("%w: missing 'proxy' query parameter", domain.ErrInvalidArgument))
		return
	}
	c.JSON(http.StatusOK, r.service.SystemProxyStatus(domain.ProxyAddress(addr)))
}

type systemProxyRequest struct {
	Proxy *string `json:"proxy"`
}

func (r *Router) setSystemProxy(c *gin.Context) {
	var req systemProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Proxy == nil {
		r.handleError(c, fmt.Errorf("%w: missing 'proxy'", domain.ErrInvalidArgument))
		return
	}
	report := r.service.SetSystemProxy(domain.ProxyAddress(*req.Proxy))
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (r *Router) cleanSystemProxy(c *gin.Context) {
	report := r.service.CleanSystemProxy()
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (r *Router) listProfiles(c *gin.Context) {
	profiles, err := r.service.ConnectionProfiles()
	if err != nil {
		r.handleError(c, fmt.Errorf("enumerate connection profiles: %w", err))
		return
	}
	if profiles == nil {
		profiles = []domain.ConnectionProfile{}
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}
