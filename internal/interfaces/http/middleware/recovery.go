package middleware

import (
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/paypoint/internal/shared/logger"
	"github.com/orris-inc/paypoint/internal/shared/utils"
)

// Recovery turns a panic into a 500. Requests whose route is a key of
// acknowledged are answered by its responder instead, or by an empty 200
// when the responder is nil, so gateway callbacks are never retried because
// of a server fault.
func Recovery(log logger.Interface, acknowledged map[string]gin.HandlerFunc) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if checkBrokenConnection(recovered) {
			log.Errorw("connection broken during request",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"error", recovered)
			c.Abort()
			return
		}

		httpRequest, _ := httputil.DumpRequest(c.Request, false)
		headers := strings.Split(string(httpRequest), "\r\n")
		for idx, header := range headers {
			current := strings.Split(header, ":")
			if current[0] == "Authorization" {
				headers[idx] = current[0] + ": *"
			}
		}

		log.Errorw("panic recovered",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"headers", headers,
			"error", recovered,
			"stack", string(debug.Stack()))

		if respond, ok := acknowledged[c.FullPath()]; ok {
			if respond != nil {
				respond(c)
			} else {
				utils.EmptyResponse(c, http.StatusOK)
			}
			c.Abort()
			return
		}

		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error occurred")
		c.Abort()
	})
}

// checkBrokenConnection checks if the error is a broken connection
func checkBrokenConnection(err any) bool {
	var brokenConnections = []string{
		"connection reset by peer",
		"broken pipe",
	}

	recoveredErr, ok := err.(error)
	if !ok {
		return false
	}

	var ne *net.OpError
	if errors.As(recoveredErr, &ne) {
		var se *os.SyscallError
		if errors.As(ne.Err, &se) {
			errStr := strings.ToLower(se.Error())
			for _, s := range brokenConnections {
				if strings.Contains(errStr, s) {
					return true
				}
			}
		}
	}
	return false
}
