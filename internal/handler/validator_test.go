package handler

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"acqplan/internal/model"
	"acqplan/internal/service"
)

func TestRegisterValidators(t *testing.T) {
	assert.NotPanics(t, RegisterValidators)
	assert.NotPanics(t, RegisterValidators, "registration runs once")

	valid := service.RequestItemInput{
		ItemName:        "Notebook",
		AcquisitionType: model.AcquisitionRental,
		Quantity:        1,
		UnitValue:       decimal.RequireFromString("10.50"),
	}
	assert.NoError(t, binding.Validator.ValidateStruct(valid))

	tests := []struct {
		name   string
		mutate func(*service.RequestItemInput)
	}{
		{"unknown acquisition type", func(in *service.RequestItemInput) { in.AcquisitionType = "LEASE" }},
		{"zero quantity", func(in *service.RequestItemInput) { in.Quantity = 0 }},
		{"negative unit value", func(in *service.RequestItemInput) { in.UnitValue = decimal.NewFromInt(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.Error(t, binding.Validator.ValidateStruct(in))
		})
	}
}
