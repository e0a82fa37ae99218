package chatapi

import (
	"net/http"

	"github.com/Abraxas-365/debelu/pkg/errx"
)

var apiErrors = errx.NewRegistry("CHATAPI")

var (
	ErrInvalidSession = apiErrors.Register("INVALID_SESSION", errx.TypeValidation, http.StatusBadRequest, "Session id must be 1-128 letters, digits, '-' or '_'")
	ErrInvalidBody    = apiErrors.Register("INVALID_BODY", errx.TypeValidation, http.StatusBadRequest, "Request body must be JSON with a content field")
)
