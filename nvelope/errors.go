package nvelope

import (
	"net/http"
)

// ReturnCode associates an HTTP return code with a error.
// if err is nil, then nil is returned.
func ReturnCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return returnCode{
		cause: err,
		code:  code,
	}
}

type returnCode struct {
	cause error
	code  int
}

func (err returnCode) Cause() error {
	return err.cause
}

func (err returnCode) Unwrap() error {
	return err.cause
}

func (err returnCode) Error() string {
	return err.cause.Error()
}

// NotFound annotates an error has giving 404 HTTP return code
func NotFound(err error) error {
	return ReturnCode(err, http.StatusNotFound)
}

// BadRequest annotates an error has giving 400 HTTP return code
func BadRequest(err error) error {
	return ReturnCode(err, http.StatusBadRequest)
}

// Unauthorized annotates an error has giving 401 HTTP return code
func Unauthorized(err error) error {
	return ReturnCode(err, http.StatusUnauthorized)
}

// Forbidden annotates an error has giving 403 HTTP return code
func Forbidden(err error) error {
	return ReturnCode(err, http.StatusForbidden)
}

// UnsupportedMediaType annotates an error has giving 415 HTTP return code
func UnsupportedMediaType(err error) error {
	return ReturnCode(err, http.StatusUnsupportedMediaType)
}

type causer interface {
	Cause() error
}

type unwrapper interface {
	Unwrap() error
}

// GetReturnCode looks through the error chain (following both
// Cause() and Unwrap()) for a code set with ReturnCode.  The
// default is 500.
func GetReturnCode(err error) int {
	for err != nil {
		if rc, ok := err.(returnCode); ok {
			return rc.code
		}
		switch e := err.(type) {
		case causer:
			err = e.Cause()
		case unwrapper:
			err = e.Unwrap()
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
