package handlers

import (
	"errors"
	"net/http"

	"github.com/Spirits-Studio/zakeke-lite/internal/catalog"
	"github.com/Spirits-Studio/zakeke-lite/internal/platform/apierr"
	"github.com/Spirits-Studio/zakeke-lite/internal/services"
)

// toAPIError maps service sentinels onto HTTP status and error code.
func toAPIError(err error) error {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, services.ErrSessionNotFound):
		return apierr.New(http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, catalog.ErrUnknownProduct):
		return apierr.New(http.StatusNotFound, "unknown_product", err)
	case errors.Is(err, services.ErrForbidden):
		return apierr.New(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, services.ErrInvalidToken):
		return apierr.New(http.StatusUnauthorized, "unauthorized", err)
	default:
		return err
	}
}
