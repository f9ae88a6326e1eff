package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/domain"
)

// DecodeJSON decodes exactly one JSON object into dst. Unknown fields,
// trailing values and an empty body are rejected; a body cut short by
// BodyLimit reports the size instead of a parse error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return domain.ErrInvalidJSON(errors.New("empty body"))
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeErr(err)
	}

	switch err := dec.Decode(&struct{}{}); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return decodeErr(err)
	default:
		return domain.ErrInvalidJSON(errors.New("multiple JSON values"))
	}
}

func decodeErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.ErrInvalidField("body", "too large")
	}
	if errors.Is(err, io.EOF) {
		return domain.ErrInvalidJSON(errors.New("empty body"))
	}
	return domain.ErrInvalidJSON(err)
}
