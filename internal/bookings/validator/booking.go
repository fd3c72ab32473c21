package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	bookingerrors "cleanroom/internal/bookings/errors"
	"cleanroom/pkg/datetime"
	"cleanroom/pkg/logger"
	"cleanroom/pkg/model"

	"github.com/go-playground/validator/v10"
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

func (v ValidationErrors) Unwrap() error {
	return bookingerrors.ErrValidation
}

// Fields lists the offending field names in order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fields
}

// Missing builds the error returned when required values are blank.
func Missing(fields ...string) ValidationErrors {
	var errs ValidationErrors
	for _, f := range fields {
		errs = append(errs, ValidationError{Field: f, Message: fmt.Sprintf("%s is required", f)})
	}
	return errs
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("equipment_code", validateEquipmentCode); err != nil {
		log.Fatal("Failed to register 'equipment_code' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("time_slot", validateTimeSlot); err != nil {
		log.Fatal("Failed to register 'time_slot' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("faculty_id", validateFacultyID); err != nil {
		log.Fatal("Failed to register 'faculty_id' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("department", validateDepartment); err != nil {
		log.Fatal("Failed to register 'department' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("date", validateDate); err != nil {
		log.Fatal("Failed to register 'date' validator",
			"error", err,
		)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateEquipmentCode(fl validator.FieldLevel) bool {
	return model.IsKnownEquipment(fl.Field().String())
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return model.IsKnownTimeSlot(fl.Field().String())
}

func validateFacultyID(fl validator.FieldLevel) bool {
	return model.IsKnownFaculty(fl.Field().String())
}

func validateDepartment(fl validator.FieldLevel) bool {
	return model.IsKnownDepartment(fl.Field().String())
}

func validateDate(fl validator.FieldLevel) bool {
	_, ok := datetime.Parse(fl.Field().String()).Time()
	return ok
}

// Validate checks a tagged request struct and returns ValidationErrors on failure.
func (v *BookingValidator) Validate(req any) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "equipment_code":
			message = fmt.Sprintf("%s must be a known equipment code", err.Field())
		case "time_slot":
			message = fmt.Sprintf("%s must be one of the fixed time slots", err.Field())
		case "faculty_id":
			message = fmt.Sprintf("%s must be a known faculty id", err.Field())
		case "date":
			message = fmt.Sprintf("%s must be a valid date", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
