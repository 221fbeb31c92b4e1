package validator

import (
	"errors"
	"fmt"
	"strings"

	"hostly/pkg/config"
	"hostly/pkg/daterange"
	"hostly/pkg/model"

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

type ReservationValidator struct {
	validate *validator.Validate
	cfg      *config.Config
}

func NewReservationValidator(cfg *config.Config) *ReservationValidator {
	v := validator.New()

	cfg.Log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		cfg:      cfg,
	}
}

// Validate checks the request's struct tags plus the date-range rules the
// tags cannot express. On success it returns the normalized stay range.
func (v *ReservationValidator) Validate(req *model.ReservationRequest) (daterange.DateRange, error) {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return daterange.DateRange{}, v.translateValidationErrors(validationErrs)
		}
		return daterange.DateRange{}, err
	}

	stay, err := daterange.New(req.CheckIn, req.CheckOut)
	if err != nil {
		return daterange.DateRange{}, ValidationErrors{
			ValidationError{
				Field:   "CheckOut",
				Message: "check_out must be after check_in",
			},
		}
	}

	if stay.Nights() > v.cfg.MaxStayNights {
		return daterange.DateRange{}, ValidationErrors{
			ValidationError{
				Field:   "CheckOut",
				Message: fmt.Sprintf("stay length (%d nights) exceeds the maximum of %d", stay.Nights(), v.cfg.MaxStayNights),
			},
		}
	}

	if req.Quantity > v.cfg.MaxUnitsPerRequest {
		return daterange.DateRange{}, ValidationErrors{
			ValidationError{
				Field:   "Quantity",
				Message: fmt.Sprintf("quantity (%d) exceeds the maximum of %d units per request", req.Quantity, v.cfg.MaxUnitsPerRequest),
			},
		}
	}

	return stay, nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "uuid4":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
