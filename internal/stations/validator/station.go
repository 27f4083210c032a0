package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"voltslot/pkg/logger"
	"voltslot/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type StationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewStationValidator(log *logger.Logger) *StationValidator {
	v := validator.New()

	if err := v.RegisterValidation("hhmm", validateClock); err != nil {
		log.Fatal("Failed to register 'hhmm' validator", "error", err)
	}

	return &StationValidator{
		validate: v,
		logger:   log,
	}
}

func validateClock(fl validator.FieldLevel) bool {
	return model.ValidClock(fl.Field().String())
}

func (v *StationValidator) Validate(station *model.Station) error {
	if err := v.validate.Struct(station); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	return ValidateOperatingHours(station.OpeningTime, station.ClosingTime)
}

func (v *StationValidator) ValidateUpdate(update *model.StationUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.OpeningTime != "" && update.ClosingTime != "" {
		return ValidateOperatingHours(update.OpeningTime, update.ClosingTime)
	}
	return nil
}

// ValidateOperatingHours enforces a strictly ordered operating window; equal
// or inverted times leave no room for a single slot.
func ValidateOperatingHours(opening, closing string) error {
	open, err := model.ParseClock(opening)
	if err != nil {
		return ValidationErrors{ValidationError{Field: "OpeningTime", Message: err.Error()}}
	}
	close, err := model.ParseClock(closing)
	if err != nil {
		return ValidationErrors{ValidationError{Field: "ClosingTime", Message: err.Error()}}
	}
	if open >= close {
		return ValidationErrors{ValidationError{
			Field:   "OpeningTime",
			Message: "opening_time must be strictly before closing_time",
		}}
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "hhmm":
			message = fmt.Sprintf("%s must be a wall-clock time in HH:MM format", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
