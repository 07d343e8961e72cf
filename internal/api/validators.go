package api

import (
	"errors"
	"fmt"
	"sync"

	"ironhouse/gym-api/internal/calendar"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// RegisterValidators adds the "clock" (HH:mm) and "weekday" binding rules to
// gin's validator. Safe to call more than once.
func RegisterValidators() (err error) {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		if err = v.RegisterValidation("clock", validateClock); err != nil {
			return
		}
		err = v.RegisterValidation("weekday", validateWeekday)
	})
	return err
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := calendar.ParseClock(fl.Field().String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	_, err := calendar.ParseWeekday(fl.Field().String())
	return err == nil
}

// validationMessage renders a binding error. When a required field is missing
// and the endpoint has its own wording for that, the wording wins over any
// format error in the same request.
func validationMessage(err error, missing error) string {
	var verrs validator.ValidationErrors
	if missing != nil && errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return missing.Error()
			}
		}
	}
	return fmt.Sprintf("Validation error: %v", err)
}
