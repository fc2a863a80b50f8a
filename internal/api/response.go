package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"habitpact/internal/repository"
	"habitpact/internal/service"
)

// errorBody is the uniform error shape: a machine-checkable code plus a
// human-readable message.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorStatus = map[error]struct {
	status int
	code   string
}{
	service.ErrNotFound:           {http.StatusNotFound, "not_found"},
	repository.ErrNotFound:        {http.StatusNotFound, "not_found"},
	service.ErrAlreadyMarked:      {http.StatusConflict, "already_marked"},
	service.ErrAlreadyConfirmed:   {http.StatusConflict, "already_confirmed"},
	service.ErrInvalidStatus:      {http.StatusBadRequest, "invalid_status"},
	service.ErrNameRequired:       {http.StatusBadRequest, "name_required"},
	service.ErrNoPartner:          {http.StatusForbidden, "partner_required"},
	service.ErrSelfPartner:        {http.StatusBadRequest, "self_partner"},
	service.ErrHasPartner:         {http.StatusConflict, "has_partner"},
	service.ErrRequestPending:     {http.StatusConflict, "request_pending"},
	service.ErrEmailTaken:         {http.StatusConflict, "email_taken"},
	service.ErrUsernameTaken:      {http.StatusConflict, "username_taken"},
	service.ErrInvalidCredentials: {http.StatusUnauthorized, "invalid_credentials"},
}

// respondError maps a domain error to its HTTP shape. Unrecognized
// errors become an opaque 500.
func respondError(c *gin.Context, err error) {
	for sentinel, m := range errorStatus {
		if errors.Is(err, sentinel) {
			c.JSON(m.status, errorBody{Error: m.code, Message: sentinel.Error()})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorBody{
		Error:   "internal_error",
		Message: "something went wrong",
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: "bad_request", Message: message})
}
