// Package response defines the JSON envelope every endpoint answers with.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Business codes carried alongside HTTP status. Clients branch on these, not
// on status codes.
const (
	CodeOK          = "OK"
	CodeNeedShare   = "NEED_SHARE"
	CodeRewardLimit = "REWARD_LIMIT"
)

type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Code: CodeOK, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Code: CodeOK, Data: data})
}

// NeedShare tells the client today's free vote is spent and a share would
// unlock another one. HTTP 200: it is an expected outcome, not a failure.
func NeedShare(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success: false,
		Message: "daily vote used, share to unlock another",
		Code:    CodeNeedShare,
		Data:    data,
	})
}

// RewardLimit tells the client the share ladder is exhausted for today.
func RewardLimit(c *gin.Context) {
	c.JSON(http.StatusOK, Envelope{
		Success: false,
		Message: "daily reward limit reached",
		Code:    CodeRewardLimit,
	})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Message: message})
}
