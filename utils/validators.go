package utils

import (
	"quicknotes/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("category", ValidateCategoryRule)
}

// NewValidator returns a validator with the note rules registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterCustomValidators(v); err != nil {
		// registration only fails on an empty tag or nil func
		panic(err)
	}
	return v
}

// InitValidator registers the note rules on gin's binding engine.
func InitValidator() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		return RegisterCustomValidators(v)
	}
	return nil
}

func ValidateCategoryRule(fl validator.FieldLevel) bool {
	return model.Category(fl.Field().String()).IsValid()
}
