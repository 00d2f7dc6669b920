package core

import (
	"context"
	"strings"

	"github.com/eskrenkovic/mediator-go"
)

type Validator interface {
	Validate() error
}

type ValidationError struct {
	ValidationErrors []error
}

func (e ValidationError) Error() string {
	var b strings.Builder
	for i, err := range e.ValidationErrors {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString("'")
		b.WriteString(err.Error())
		b.WriteString("'")
	}
	return b.String()
}

func (e ValidationError) Unwrap() []error {
	return e.ValidationErrors
}

// Validate collects every non-nil error into a ValidationError.
func Validate(errs ...error) error {
	var found []error
	for _, err := range errs {
		if err != nil {
			found = append(found, err)
		}
	}

	if len(found) == 0 {
		return nil
	}

	return ValidationError{ValidationErrors: found}
}

var _ mediator.PipelineBehavior = (*RequestValidationBehavior)(nil)

type RequestValidationBehavior struct{}

func (b *RequestValidationBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	if request, ok := request.(Validator); ok {
		if err := request.Validate(); err != nil {
			return nil, NewCommandError(400, err.Error(), WithReason("request validation failed"))
		}
	}

	return next(ctx, request)
}
