// ABOUTME: Input types and validation for repository writes.
// ABOUTME: Uses go-playground/validator with JSON field names in messages.
package workouts

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// NewWorkout is the input for CreateWorkout. A nil Date means today.
type NewWorkout struct {
	Name  string     `json:"name" validate:"required,max=200"`
	Date  *time.Time `json:"date,omitempty"`
	Notes *string    `json:"notes,omitempty" validate:"omitnil,max=2000"`
}

// NewExercise is one entry of an AddExercises batch.
type NewExercise struct {
	Name   string  `json:"name" validate:"required,max=200"`
	Sets   int     `json:"sets" validate:"gte=0"`
	Reps   int     `json:"reps" validate:"gte=0"`
	Weight float64 `json:"weight" validate:"gte=0,lte=99999999.99"`
	Notes  *string `json:"notes,omitempty" validate:"omitnil,max=2000"`
}

// WorkoutUpdate carries the fields to change; nil fields are left alone.
// An empty Notes string clears the notes.
type WorkoutUpdate struct {
	Name  *string    `json:"name,omitempty" validate:"omitnil,max=200"`
	Date  *time.Time `json:"date,omitempty"`
	Notes *string    `json:"notes,omitempty" validate:"omitnil,max=2000"`
}

type profileUpdate struct {
	Username *string `json:"username" validate:"omitnil,max=64"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var reasons = map[string]string{
	"required": "is required",
	"max":      "must be at most %s characters",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
}

// check validates s and converts the first failure into a ValidationError.
// prefix qualifies the field name, e.g. "exercises[2].".
func check(s any, prefix string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: strings.TrimSuffix(prefix, "."), Reason: err.Error()}
	}

	fe := fieldErrs[0]
	reason := fmt.Sprintf("failed %s", fe.Tag())
	if msg, ok := reasons[fe.Tag()]; ok {
		reason = msg
		if strings.Contains(msg, "%s") {
			reason = fmt.Sprintf(msg, fe.Param())
		}
	}
	return &ValidationError{Field: prefix + fe.Field(), Reason: reason}
}

// normalizeNotes trims notes and maps blank text to nil.
func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateWorkout(in *NewWorkout) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = normalizeNotes(in.Notes)
	return check(in, "")
}

// ValidateExercises runs the AddExercises batch checks without writing.
// Front-ends call it before creating a workout so a bad batch leaves
// nothing behind. in is not modified.
func ValidateExercises(in []NewExercise) error {
	batch := make([]NewExercise, len(in))
	copy(batch, in)
	return validateExercises(batch)
}

func validateExercises(in []NewExercise) error {
	for i := range in {
		in[i].Name = strings.TrimSpace(in[i].Name)
		in[i].Notes = normalizeNotes(in[i].Notes)
		if err := check(&in[i], fmt.Sprintf("exercises[%d].", i)); err != nil {
			return err
		}
	}
	return nil
}

func validateUpdate(in *WorkoutUpdate) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return &ValidationError{Field: "name", Reason: "is required"}
		}
		in.Name = &name
	}
	if in.Notes != nil {
		notes := strings.TrimSpace(*in.Notes)
		in.Notes = &notes
	}
	return check(in, "")
}
