package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	ValidationAppError   Kind = "validation"
	NotFoundAppError     Kind = "not_found"
	ConflictAppError     Kind = "conflict"
	UnauthorizedAppError Kind = "unauthorized"
	JsonAppError         Kind = "json"
	HttpError            Kind = "http"
	ServerAppError       Kind = "server"
)

type AppError struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func NewError(kind Kind, message string, status int, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) *AppError {
	return NewError(ValidationAppError, message, http.StatusBadRequest, nil)
}

func NotFound(message string, err error) *AppError {
	return NewError(NotFoundAppError, message, http.StatusNotFound, err)
}

func Server(message string, err error) *AppError {
	return NewError(ServerAppError, message, http.StatusInternalServerError, err)
}

func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Respond aborts the request with {"error": msg}. Errors that are not
// AppErrors are logged and hidden behind a generic 500.
func Respond(c *gin.Context, log *logrus.Entry, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			log.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, appErr)
		}
		c.AbortWithStatusJSON(appErr.Status, gin.H{"error": appErr.Message})
		return
	}

	log.Errorf("%s %s: unexpected error - %v", c.Request.Method, c.Request.URL.Path, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "erro interno"})
}

// BindError wraps a gin binding failure.
func BindError(err error) *AppError {
	return NewError(JsonAppError, "dados inválidos", http.StatusBadRequest, err)
}

// InvalidID wraps a malformed path id.
func InvalidID(err error) *AppError {
	return NewError(ValidationAppError, "id inválido", http.StatusBadRequest, err)
}
