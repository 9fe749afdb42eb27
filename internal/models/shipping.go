package models

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ShippingInfo - данные доставки, которые пользователь вводит на первом
// шаге оформления. Все поля обязательны, кроме State: для стран без
// перечислимого списка регионов он остается свободным текстом и может
// быть пустым.
type ShippingInfo struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Country  string `json:"country" validate:"required,len=2,alpha"`
	State    string `json:"state"`
	City     string `json:"city" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Landmark string `json:"landmark" validate:"required"`
}

// phonePatterns - формат телефонного номера по коду страны.
// Для стран вне списка применяется defaultPhonePattern.
var phonePatterns = map[string]*regexp.Regexp{
	"NG": regexp.MustCompile(`^(\+234|0)[789][01]\d{8}$`),
	"US": regexp.MustCompile(`^(\+1)?[2-9]\d{9}$`),
	"CA": regexp.MustCompile(`^(\+1)?[2-9]\d{9}$`),
	"GB": regexp.MustCompile(`^(\+44|0)7\d{9}$`),
	"GH": regexp.MustCompile(`^(\+233|0)[235]\d{8}$`),
	"KE": regexp.MustCompile(`^(\+254|0)[17]\d{8}$`),
	"ZA": regexp.MustCompile(`^(\+27|0)[6-8]\d{8}$`),
}

var defaultPhonePattern = regexp.MustCompile(`^\+?\d{7,15}$`)

// statefulCountries - страны с перечислимым списком регионов.
// Для них поле State обязательно.
var statefulCountries = map[string]bool{
	"NG": true,
	"US": true,
	"CA": true,
	"GH": true,
}

// PhonePattern возвращает шаблон телефона для страны.
func PhonePattern(country string) *regexp.Regexp {
	if p, ok := phonePatterns[country]; ok {
		return p
	}

	return defaultPhonePattern
}

// CountryHasStates сообщает, есть ли у страны перечислимый список регионов.
func CountryHasStates(country string) bool {
	return statefulCountries[country]
}

// shippingStructLevel реализует правила, которые охватывают сразу два поля:
// формат телефона зависит от страны, обязательность региона - тоже.
func shippingStructLevel(sl validator.StructLevel) {
	info := sl.Current().Interface().(ShippingInfo)

	if info.Phone != "" && !PhonePattern(info.Country).MatchString(info.Phone) {
		sl.ReportError(info.Phone, "phone", "Phone", "phone_for_country", "")
	}

	if CountryHasStates(info.Country) && info.State == "" {
		sl.ReportError(info.State, "state", "State", "state_for_country", "")
	}
}

// NewValidator создает валидатор с зарегистрированными правилами доставки.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(shippingStructLevel, ShippingInfo{})

	return v
}
