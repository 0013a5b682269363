package api

import (
	"errors"
	"sync"

	"publazer/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the domain rules used in binding tags to gin's
// validator.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		if err = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
			return models.IsValidRole(fl.Field().String())
		}); err != nil {
			return
		}
		err = v.RegisterValidation("paper_status", func(fl validator.FieldLevel) bool {
			return models.IsValidStatus(fl.Field().String())
		})
	})
	return err
}
