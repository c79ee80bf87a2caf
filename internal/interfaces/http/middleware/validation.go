package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/hearback/backend/internal/domain/tracker"
)

// SetupValidator configures the request validator with custom tags
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// trackercode validates a work item tracker provider code
	_ = v.RegisterValidation("trackercode", func(fl validator.FieldLevel) bool {
		return tracker.Code(fl.Field().String()).IsValid()
	})
}
