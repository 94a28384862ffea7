package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/common"
)

// WriteUseCaseResult writes a successful use case result or its error
func WriteUseCaseResult[T any](w http.ResponseWriter, result common.Result[T], successStatus int) {
	if result.IsFailure() {
		common.WriteUseCaseError(w, result.Error())
		return
	}
	common.WriteSuccess(w, successStatus, result.Value())
}

// WriteQueryResult writes the value of a query or its error
func WriteQueryResult[T any](w http.ResponseWriter, value T, err *common.UseCaseError) {
	if err != nil {
		common.WriteUseCaseError(w, err)
		return
	}
	common.WriteSuccess(w, http.StatusOK, value)
}

// DecodeJSON decodes a JSON request body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// WriteBadRequest writes a 400 with a validation error code
func WriteBadRequest(w http.ResponseWriter, message string) {
	common.WriteUseCaseError(w, common.ValidationError(common.ErrCodeValidationFailed, message, nil))
}

// WriteInvalidBody writes the 400 for an undecodable request body
func WriteInvalidBody(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		common.WriteUseCaseError(w, common.ValidationError(common.ErrCodeValidationFailed,
			"Request body is too large", map[string]any{"limit": tooLarge.Limit}))
		return
	}
	WriteBadRequest(w, "Invalid request body")
}
