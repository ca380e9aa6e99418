package handler

import (
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"

    "github.com/iliyamo/exam-seat-allocation/internal/service"
)

// RequestValidator plugs go-playground/validator into echo.  Failures come
// back as *service.ValidationError naming the JSON field, so handlers answer
// every kind of bad input the same way.
type RequestValidator struct {
    v *validator.Validate
}

// NewRequestValidator returns a validator that reports fields by JSON name.
func NewRequestValidator() *RequestValidator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" || name == "" {
            return f.Name
        }
        return name
    })
    return &RequestValidator{v: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i interface{}) error {
    err := rv.v.Struct(i)
    if err == nil {
        return nil
    }
    var verrs validator.ValidationErrors
    if !errors.As(err, &verrs) || len(verrs) == 0 {
        return err
    }
    fe := verrs[0]
    msg := fmt.Sprintf("%s is invalid", fe.Field())
    switch fe.Tag() {
    case "required":
        msg = fmt.Sprintf("%s is required", fe.Field())
    case "max":
        msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
    }
    return &service.ValidationError{Field: fe.Field(), Message: msg}
}
