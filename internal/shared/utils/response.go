package utils

import "github.com/gin-gonic/gin"

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo represents error information in API response
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{Success: true, Data: data, Message: message})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Type: "error", Message: message},
	})
}

// HTMLResponse writes body as a complete text/html document.
func HTMLResponse(c *gin.Context, statusCode int, body string) {
	c.Data(statusCode, "text/html; charset=utf-8", []byte(body))
}

// EmptyResponse writes statusCode with no body.
func EmptyResponse(c *gin.Context, statusCode int) {
	c.Status(statusCode)
	c.Writer.WriteHeaderNow()
}
