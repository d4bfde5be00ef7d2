package actions

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"gitlab.com/agentlink-marketplace/attribution_api/httputils"
	"gitlab.com/agentlink-marketplace/attribution_api/logger"
)

// Ping godoc
func Ping(c *gin.Context) {
	c.JSON(200, "pong")
}

func abortWithError(c *gin.Context, code int, message string) {
	l := getlog(c)
	l.Debug().Stack().Int("resp_code", code).Msg(message)
	c.AbortWithStatusJSON(code, httputils.RequestError{Error: message})
}

func getlog(c *gin.Context) zerolog.Logger {
	return logger.GetLogger(c)
}

func getQueryAsInt(c *gin.Context, name string, def int) int {
	val := c.Query(name)
	if val == "" {
		return def
	}
	param, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return param
}

func getQueryAsUint64(c *gin.Context, name string) (uint64, bool) {
	val, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

func getParamAsUint64(c *gin.Context, name string) (uint64, bool) {
	val, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

func getPagination(c *gin.Context) (int, int) {
	page := getQueryAsInt(c, "page", 1)
	limit := getQueryAsInt(c, "limit", 10)
	return page, limit
}

// getIPFromRequest - get the first IP from request
func getIPFromRequest(ip string) string {
	if ip == "" {
		return ip
	}
	return strings.SplitAfter(ip, ",")[0]
}
