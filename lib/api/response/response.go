// Package response предоставляет утилиты для формирования стандартных
// JSON-ответов HTTP API витрины. Использование этих хелперов обеспечивает
// единообразие формата ответов во всем приложении.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response - это базовая структура для всех JSON-ответов.
// Она содержит поле `status` ("OK" или "Error") и опциональное
// поле `error` с текстом ошибки.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"` // `omitempty` скрывает поле, если оно пустое.
}

// Константы для стандартизации значений в поле `Status`.
const (
	StatusOK    = "OK"
	StatusError = "Error"
)

// OK создает и возвращает стандартный успешный ответ.
func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

// Error создает и возвращает стандартный ответ с ошибкой.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError форматирует ошибки валидации от `go-playground/validator`
// в читаемый для пользователя вид. Сообщение формируется для каждого
// невалидного поля отдельно.
func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not a valid email", err.Field()))
		case "min":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is below the minimum value", err.Field()))
		case "len":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s has a wrong length", err.Field()))
		case "alphanum":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s must be alphanumeric", err.Field()))
		case "oneof":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s has an unsupported value", err.Field()))
		case "phone_for_country":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s does not match the phone format for the selected country", err.Field()))
		case "state_for_country":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is required for the selected country", err.Field()))
		// Сюда можно добавлять обработку других тегов валидации.
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMsgs, ", "),
	}
}
