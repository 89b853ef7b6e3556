package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rebooked/campus-service/internal/services"
	"github.com/rebooked/campus-service/internal/utils"
)

const (
	GuestIDHeader = "X-Guest-ID"
	userIDKey     = "user_id"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// ownerKey identifies whose saved calculations a request reads or writes.
// Signed-in users win over the guest header; an empty key means neither was supplied.
func ownerKey(c *gin.Context) string {
	if userID := c.GetString(userIDKey); userID != "" {
		return "user:" + userID
	}
	if guestID := strings.TrimSpace(c.GetHeader(GuestIDHeader)); guestID != "" {
		return "guest:" + guestID
	}
	return ""
}

// requestContext carries the request id into service logs.
func requestContext(c *gin.Context) context.Context {
	return services.WithRequestID(c.Request.Context(), utils.GetRequestID(c))
}
