package apihandlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"intentbot/internal/store"
)

// APIError is the body of every error response:
//
//	{ "error": { "code": "bad_request", "message": "text is required" } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError sends a structured error response and stops the handler chain.
func JSONError(ctx *gin.Context, status int, code, msg string) {
	ctx.AbortWithStatusJSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, "bad_request", msg)
}

func NotFound(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusNotFound, "not_found", msg)
}

func Unprocessable(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusUnprocessableEntity, "unprocessable", msg)
}

// Unavailable reports a feature whose backing store or queue is not configured.
func Unavailable(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusServiceUnavailable, "unavailable", msg)
}

// Internal logs the detailed error and returns a generic message, so store
// and driver errors never reach the client.
func Internal(ctx *gin.Context, op string, err error) {
	log.WithError(err).WithField("path", ctx.FullPath()).Errorf("%s failed", op)
	JSONError(ctx, http.StatusInternalServerError, "internal_error", fmt.Sprintf("%s failed", op))
}

// StoreError maps store.ErrNotFound to 404 and anything else to 500.
func StoreError(ctx *gin.Context, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		NotFound(ctx, op+": not found")
		return
	}
	Internal(ctx, op, err)
}
