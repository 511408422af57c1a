package utils

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"prepdaily/calendar"
	"prepdaily/model"
)

// RegisterCustomValidators adds the request rules used by the dto package.
func RegisterCustomValidators(v *validator.Validate) {
	v.RegisterValidation("weekday", ValidateWeekdayRule)
	v.RegisterValidation("date", ValidateDateRule)
	v.RegisterValidation("frequency", ValidateFrequencyRule)
	v.RegisterValidation("difficulty", ValidateDifficultyRule)
}

// InitValidator registers the custom rules on gin's binding engine.
func InitValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterCustomValidators(v)
	}
}

func ValidateWeekdayRule(fl validator.FieldLevel) bool {
	d := fl.Field().Int()
	return d >= 0 && d <= 6
}

// ValidateDateRule accepts YYYY-MM-DD; empty strings are left to "required".
func ValidateDateRule(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := calendar.ParseDate(s)
	return err == nil
}

func ValidateFrequencyRule(fl validator.FieldLevel) bool {
	switch model.Frequency(fl.Field().String()) {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyBiweekly,
		model.FrequencyMonthly, model.FrequencyCustom:
		return true
	}
	return false
}

func ValidateDifficultyRule(fl validator.FieldLevel) bool {
	switch model.Difficulty(fl.Field().String()) {
	case "", model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		return true
	}
	return false
}
