package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/stagedb/api/apibatchv1"
	"github.com/fulldump/stagedb/database"
	"github.com/fulldump/stagedb/service"
	"github.com/fulldump/stagedb/staging"
)

var ErrUnavailable = errors.New("temporary unavailable")

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}{
			p.Message,
			p.Description,
		},
	})
}

func (p PrettyError) MarshalTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

func InterceptorUnavailable(db *database.Database) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := db.GetStatus()
			if status == database.StatusOpening {
				box.SetError(ctx, fmt.Errorf("%w: opening", ErrUnavailable))
				return
			}
			if status == database.StatusClosing {
				box.SetError(ctx, fmt.Errorf("%w: closing", ErrUnavailable))
				return
			}
			next(ctx)
		}
	}
}

func writePrettyError(w http.ResponseWriter, status int, err error, description string) {
	w.WriteHeader(status)
	PrettyError{
		Message:     err.Error(),
		Description: description,
	}.MarshalTo(w)
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)
		r := box.GetRequest(ctx)

		if err == box.ErrResourceNotFound {
			writePrettyError(w, http.StatusNotFound, err, fmt.Sprintf("resource '%s' not found", r.URL.String()))
			return
		}

		if err == box.ErrMethodNotAllowed {
			writePrettyError(w, http.StatusMethodNotAllowed, err, fmt.Sprintf("method '%s' not allowed", r.Method))
			return
		}

		if errors.Is(err, ErrUnavailable) {
			writePrettyError(w, http.StatusServiceUnavailable, err, "database is not operating, retry later")
			return
		}

		if errors.Is(err, apibatchv1.ErrInvalidInput) {
			writePrettyError(w, http.StatusBadRequest, err, "Bad request")
			return
		}

		if errors.Is(err, apibatchv1.ErrMemberNotFound) {
			writePrettyError(w, http.StatusNotFound, err, fmt.Sprintf("member '%s' not found", box.GetUrlParameter(ctx, "memberId")))
			return
		}

		if errors.Is(err, service.ErrorBatchNotFound) {
			writePrettyError(w, http.StatusNotFound, err, fmt.Sprintf("batch '%s' not found", box.GetUrlParameter(ctx, "batchName")))
			return
		}

		if errors.Is(err, service.ErrorBatchAlreadyExists) {
			writePrettyError(w, http.StatusConflict, err, "batch name is already taken")
			return
		}

		if errors.Is(err, staging.ErrRevoked) {
			writePrettyError(w, http.StatusConflict, err, "transaction is no longer usable")
			return
		}

		var syntaxError *json.SyntaxError
		if errors.As(err, &syntaxError) {
			writePrettyError(w, http.StatusBadRequest, err, "Malformed JSON")
			return
		}

		var typeError *json.UnmarshalTypeError
		if errors.As(err, &typeError) {
			writePrettyError(w, http.StatusBadRequest, err, fmt.Sprintf("unexpected type for field '%s'", typeError.Field))
			return
		}

		writePrettyError(w, http.StatusInternalServerError, err, "Unexpected error")
	}
}
