package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/shieldtip/shieldtip-backend/internal/model"
)

// Register installs the domain validation tags on gin's binding validator.
// Safe to call more than once.
func Register() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("txhash", func(fl validator.FieldLevel) bool {
		return model.IsValidTxHash(fl.Field().String())
	})
	v.RegisterValidation("shielded", func(fl validator.FieldLevel) bool {
		return model.IsShieldedAddress(fl.Field().String())
	})
}
