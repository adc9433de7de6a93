package validator

import (
	"log"
	"strings"

	"consultlink_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Без правила приложение запускать нельзя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("consultation_type", enumRule(func(s string) bool { return models.ConsultationType(s).IsValid() }))
	mustRegister("consultation_method", enumRule(func(s string) bool { return models.ConsultationMethod(s).IsValid() }))
	mustRegister("payment_method", enumRule(func(s string) bool { return models.PaymentMethod(s).IsValid() }))
	mustRegister("user_role", enumRule(func(s string) bool { return models.UserRole(s).IsValid() }))
	mustRegister("notblank", validateNotBlank)
}

// enumRule - пустые значения пропускаются, для них есть 'required'.
func enumRule(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return valid(value)
	}
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
