package domain

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
)

const (
	MinYear = 2000
	MaxYear = 2099
)

var monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)

// Submission is the raw month/year pair as received from a client.
// Month is expected to be a string; Year may be a number or a numeric string.
type Submission struct {
	Month any
	Year  any
}

// Consultation is a validated, normalized month/year pair.
type Consultation struct {
	Month string `json:"month" validate:"len=2,month"`
	Year  int    `json:"year" validate:"min=2000,max=2099"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
		return monthPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateSubmission checks a raw submission and returns the normalized consultation.
// Every failing field is reported; month failures carry INVALID_FORMAT and year
// failures INVALID_RANGE.
func ValidateSubmission(s Submission) (Consultation, error) {
	var c Consultation
	monthOK, yearOK := true, true

	if month, ok := s.Month.(string); ok {
		c.Month = month
	} else {
		monthOK = false
	}

	if year, ok := coerceYear(s.Year); ok {
		c.Year = year
	} else {
		yearOK = false
	}

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Consultation{}, err
		}
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case "month":
				monthOK = false
			case "year":
				yearOK = false
			}
		}
	}

	if monthOK && yearOK {
		return c, nil
	}

	var issues []FieldIssue
	if !monthOK {
		issues = append(issues, FieldIssue{
			Code:    ErrCodeInvalidFormat,
			Path:    []string{"month"},
			Message: "month must be between 01 and 12",
		})
	}
	if !yearOK {
		issues = append(issues, FieldIssue{
			Code:    ErrCodeInvalidRange,
			Path:    []string{"year"},
			Message: "year must be an integer between 2000 and 2099",
		})
	}
	return Consultation{}, NewValidationError(issues)
}

// coerceYear turns a JSON number, Go number or numeric string into an int.
// Non-integral and non-finite values are rejected.
func coerceYear(v any) (int, bool) {
	var f float64
	switch y := v.(type) {
	case json.Number:
		parsed, err := y.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = y
	case int:
		f = float64(y)
	case int64:
		f = float64(y)
	case string:
		s := strings.TrimSpace(y)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
