package controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	services "github.com/Itish41/ReguGuard/service"
	"github.com/Itish41/ReguGuard/workflow"
)

var badRequestErrors = []error{
	workflow.ErrEmptyStepText,
	workflow.ErrDueDateInPast,
	workflow.ErrInvalidStatus,
	workflow.ErrInvalidPriority,
	workflow.ErrInvalidColumn,
	workflow.ErrIndexOutOfRange,
	services.ErrUnsupportedFile,
	services.ErrEmptyDocument,
	services.ErrInvalidDueDate,
	services.ErrEmptyQuery,
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrRuleNotFound), errors.Is(err, workflow.ErrStepNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func respondError(ctx *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %v", op, err)
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
