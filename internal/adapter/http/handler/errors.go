package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"vending-machine-api/internal/adapter/http/dto"
	"vending-machine-api/internal/core/domain"
	"vending-machine-api/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// bindError converts a request binding failure into an AppError.
func bindError(err error) *apperror.AppError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.New(apperror.CodeValidation, "Request body too large", http.StatusRequestEntityTooLarge)
	}

	var notWhole *dto.NotWholeCoinError
	if errors.As(err, &notWhole) {
		return apperror.ErrInvalidCoin(notWhole.Raw)
	}
	if errors.Is(err, domain.ErrAmountOutOfRange) {
		return apperror.Validation(fmt.Sprintf("Amount must be between 0.00 and %s", domain.MaxPrice))
	}

	var sliceErr binding.SliceValidationError
	if errors.As(err, &sliceErr) {
		for _, e := range sliceErr {
			if e != nil {
				return bindError(e)
			}
		}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation("Malformed request body")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "coin" {
			return apperror.ErrInvalidCoin(fieldInt(fe.Value()))
		}
		msgs = append(msgs, describe(fe))
	}
	return apperror.Validation(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "product_id":
		return fmt.Sprintf("%s must be 1-64 letters, digits, '-', '_' or '.'", fe.Field())
	case "gt", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), minFor(fe))
	case "price":
		return fmt.Sprintf("%s must be between 0.00 and %s", fe.Field(), domain.MaxPrice)
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func minFor(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return fe.Param() + " (exclusive)"
	}
	return fe.Param()
}

func fieldInt(v any) int64 {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return 0
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	}
	return 0
}
