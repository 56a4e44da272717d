package handler

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"acqplan/internal/model"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding rules to gin's validator.
// Binding a DTO that uses one of the tags panics until this has run.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("acquisition_type", validateAcquisitionType); err != nil {
			panic(fmt.Sprintf("register acquisition_type validator: %v", err))
		}
		// Numeric rules (gte, gt) on money fields compare the decimal's float value.
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	})
}

func validateAcquisitionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.AcquisitionPurchase, model.AcquisitionRental, model.AcquisitionRenewal:
		return true
	}
	return false
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}
