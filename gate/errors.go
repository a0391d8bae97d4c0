package gate

import "errors"

// Denials returned by Gate.Authorize and by policies. A nil error is an allow.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrWrongRole       = errors.New("wrong role")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")
)

// Reason returns the short machine name of a denial, or "" for nil and
// for errors that are not denials.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrWrongRole):
		return "wrong_role"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return ""
}
