package handlers

import (
	"net/http"

	"spendlog-server/src/errs"
)

// storeErrorStatus maps a classified store error to an HTTP status.
// Unclassified errors are internal.
func storeErrorStatus(err error) int {
	switch {
	case errs.Is(err, errs.KindValidation):
		return http.StatusBadRequest
	case errs.Is(err, errs.KindNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.KindConstraint):
		return http.StatusConflict
	case errs.Is(err, errs.KindConnection):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
