package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps the size of a JSON request body
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON when the request has no body
var ErrEmptyBody = errors.New("request body is empty")

// fieldErrorDeferrer is implemented by inputs embedding validation.Deferred
type fieldErrorDeferrer interface {
	DeferFieldError(field, message string)
}

// DecodeJSON reads a single JSON document from the request body into dst.
// Unknown fields are ignored. When dst can defer field errors, a value of
// the wrong type is recorded on dst instead of failing the decode, and is
// reported later by validation.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}

		var typeErr *json.UnmarshalTypeError
		d, ok := dst.(fieldErrorDeferrer)
		if !ok || !errors.As(err, &typeErr) || typeErr.Field == "" {
			return fmt.Errorf("invalid JSON body: %w", err)
		}
		d.DeferFieldError(typeErr.Field, "must be a JSON "+jsonKind(typeErr.Type.Kind().String()))
	}

	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}

	return nil
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "string"
	case "bool":
		return "boolean"
	case "slice", "array":
		return "array"
	case "map", "struct":
		return "object"
	default:
		return "number"
	}
}
