package response

import "github.com/gin-gonic/gin"

const (
	CodeOK             = 0
	CodeBadRequest     = 40000
	CodeUnauthorized   = 40100
	CodeNotFound       = 40400
	CodeInternalServer = 50000

	CodeUsernameExists     = 40001
	CodeEmailExists        = 40002
	CodeInvalidCredentials = 40101

	CodeUnsupportedType   = 41001
	CodeUnreadableContent = 41002
	CodePayloadTooLarge   = 41003
	CodeFetchFailed       = 41004
	CodeNoContent         = 41005
	CodeTooLarge          = 41006
	CodeDocumentLimit     = 41007
	CodeEmbeddingDown     = 51001
	CodeSynthesisDown     = 51002
	CodeStorageFailure    = 51003
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails carries an operator-facing detail string alongside the
// short user message.
func ErrorWithDetails(c *gin.Context, httpStatus, code int, message, details string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}
