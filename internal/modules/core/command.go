package core

import (
	"fmt"
	"net/http"
)

type Unit struct{}

type CommandError struct {
	Payload    interface{} `json:"payload"`
	StatusCode int         `json:"status_code"`
	Reason     *string     `json:"reason,omitempty"`
}

type CommandErrorOption func(*CommandError)

func WithReason(reason string) CommandErrorOption {
	return func(e *CommandError) {
		e.Reason = &reason
	}
}

func NewCommandError(statusCode int, payload interface{}, opts ...CommandErrorOption) CommandError {
	e := CommandError{
		StatusCode: statusCode,
		Payload:    payload,
	}

	for _, opt := range opts {
		opt(&e)
	}

	return e
}

func NotFound(err error) CommandError {
	return NewCommandError(http.StatusNotFound, err.Error(), WithReason("not found"))
}

func Conflict(err error) CommandError {
	return NewCommandError(http.StatusConflict, err.Error(), WithReason("conflict"))
}

func BadRequest(err error) CommandError {
	return NewCommandError(http.StatusBadRequest, err.Error(), WithReason("invalid request"))
}

func InternalError(err error) CommandError {
	return NewCommandError(http.StatusInternalServerError, err.Error())
}

func (r CommandError) Error() string {
	var values struct {
		Payload    interface{}
		StatusCode int
		Reason     string
	}

	values.Payload = r.Payload
	values.StatusCode = r.StatusCode

	if r.Reason != nil {
		values.Reason = *r.Reason
	}

	return fmt.Sprintf("%+v", values)
}
