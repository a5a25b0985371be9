package dto

import (
	"reflect"
	"regexp"
	"strings"

	"vending-machine-api/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var productIDRe = regexp.MustCompile(`^[A-Za-z0-9_\-\.]{1,64}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("coin", validateCoin)
		_ = v.RegisterValidation("product_id", validateProductID)
		_ = v.RegisterValidation("price", validatePrice)
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// validateCoin accepts only the machine's coin denominations.
func validateCoin(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return domain.Coin(fl.Field().Int()).Valid()
	}
	return false
}

// validatePrice accepts 0 up to the largest storable price.
func validatePrice(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		p := domain.Money(fl.Field().Int())
		return p >= 0 && p <= domain.MaxPrice
	}
	return false
}

// validateProductID allows alphanumeric, underscore, dash, and dot.
func validateProductID(fl validator.FieldLevel) bool {
	return productIDRe.MatchString(fl.Field().String())
}

// jsonFieldName reports fields by their wire name in validation errors.
func jsonFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// SanitizeStruct trims whitespace from every exported string field (including
// *string) of a struct pointer. Fields tagged `sanitize:"-"` are left alone.
func SanitizeStruct(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() || rt.Field(i).Tag.Get("sanitize") == "-" {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			if elem := f.Elem(); elem.Kind() == reflect.String {
				elem.SetString(strings.TrimSpace(elem.String()))
			}
		}
	}
}
