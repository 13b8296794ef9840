package handler

import (
	"blindpair/backend/internal/api/middleware"
	"blindpair/backend/internal/apperr"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindInvalidState: http.StatusConflict,
	apperr.KindExpired:      http.StatusGone,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindInvalid:      http.StatusBadRequest,
}

// respondError writes a typed error as {"error", "code"}. Anything untyped is an
// internal failure and is logged, not shown.
func (h *Handler) respondError(c *gin.Context, err error) {
	if e := apperr.As(err); e != nil {
		status, ok := statusByKind[e.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": e.Message, "code": e.Code})
		return
	}

	h.Logger.WithFields(logrus.Fields{
		"path":    c.FullPath(),
		"user_id": middleware.UserID(c),
	}).WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "INTERNAL"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "BAD_REQUEST"})
}
