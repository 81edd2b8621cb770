package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Code classifies a failure independently of the transport that reports it.
type Code string

const (
	CodeNotFound        Code = "not_found"
	CodeInvalidArgument Code = "invalid_argument"
	CodeConflict        Code = "conflict"
	CodeInternal        Code = "internal"
)

// Error is the coded error returned by the service layer.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Message != "":
		return e.Message
	case e.Op != "":
		return fmt.Sprintf("%s (%s)", e.Op, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string) error {
	return &Error{Code: code, Op: strings.TrimSpace(op), Message: strings.TrimSpace(message)}
}

// Wrap annotates err with a code. A nil err stays nil.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: strings.TrimSpace(op), Message: err.Error(), Cause: err}
}

func NotFound(op, message string) error        { return New(CodeNotFound, op, message) }
func InvalidArgument(op, message string) error { return New(CodeInvalidArgument, op, message) }
func Conflict(op, message string) error        { return New(CodeConflict, op, message) }

// IsCode reports whether err, or anything it wraps, carries code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// CodeOf returns the code carried by err. Uncoded errors are internal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// MessageOf returns the human-readable reason without the operation prefix.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// FromDB classifies a storage failure. Already coded errors pass through.
func FromDB(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Code: CodeNotFound, Op: op, Message: "record not found", Cause: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &Error{Code: CodeConflict, Op: op, Message: uniqueMessage(pgErr), Cause: err}
		case "23502", "22001", "23514": // not_null_violation, string_data_right_truncation, check_violation
			return &Error{Code: CodeInvalidArgument, Op: op, Message: pgErr.Message, Cause: err}
		}
	}
	return Wrap(CodeInternal, op, err)
}

func uniqueMessage(pgErr *pgconn.PgError) string {
	if pgErr.ConstraintName == "patient_oms_number_key" {
		return "a patient with this OMS number already exists"
	}
	return "unique constraint violated: " + pgErr.ConstraintName
}

// HTTPStatus maps a code to the status the HTTP layer reports.
func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
