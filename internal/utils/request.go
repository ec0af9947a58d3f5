package utils

import (
	"errors"
	"log/slog"
	"net/http"

	appErrors "github.com/aaravmahajanofficial/marketplace-catalog/internal/errors"
	"github.com/aaravmahajanofficial/marketplace-catalog/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func ParseAndValidate(r *http.Request, w http.ResponseWriter, dest any, validate *validator.Validate) bool {

	if err := DecodeJSONBody(r, dest); err != nil {
		slog.Warn("Invalid request", slog.String("error", err.Error()))
		response.Error(w, appErrors.BadRequestError(err.Error()))
		return false
	}

	if err := ValidateStruct(validate, dest); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			response.ValidationError(w, validationErrs)
			return false
		}

		response.Error(w, appErrors.ValidationError("invalid input data"))
		return false
	}

	return true

}

// ParseIDPathValue reads a UUID path parameter, writing a 400 when it is malformed.
func ParseIDPathValue(r *http.Request, w http.ResponseWriter, name string) (uuid.UUID, bool) {

	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		response.Error(w, appErrors.BadRequestError("Invalid "+name+" format"))
		return uuid.Nil, false
	}

	return id, true
}
