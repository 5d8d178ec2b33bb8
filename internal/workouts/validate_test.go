// ABOUTME: Tests for repository input validation.
// ABOUTME: Exercises trimming, field naming and numeric bounds.
package workouts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWorkoutTrims(t *testing.T) {
	in := NewWorkout{Name: "  Legs  ", Notes: strPtr("   ")}
	require.NoError(t, validateWorkout(&in))

	assert.Equal(t, "Legs", in.Name)
	assert.Nil(t, in.Notes, "blank notes are dropped")
}

func TestValidateExercises(t *testing.T) {
	tests := []struct {
		name    string
		input   NewExercise
		field   string
		wantErr bool
	}{
		{"defaults", NewExercise{Name: "Plank"}, "", false},
		{"full", NewExercise{Name: "Squat", Sets: 5, Reps: 5, Weight: 142.5}, "", false},
		{"blank name", NewExercise{Name: " "}, "exercises[0].name", true},
		{"negative sets", NewExercise{Name: "Squat", Sets: -1}, "exercises[0].sets", true},
		{"negative reps", NewExercise{Name: "Squat", Reps: -3}, "exercises[0].reps", true},
		{"negative weight", NewExercise{Name: "Squat", Weight: -10}, "exercises[0].weight", true},
		{"NaN weight", NewExercise{Name: "Squat", Weight: math.NaN()}, "exercises[0].weight", true},
		{"weight overflow", NewExercise{Name: "Squat", Weight: 1e9}, "exercises[0].weight", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateExercises([]NewExercise{tt.input})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
			assert.NotEmpty(t, validationErr.Reason)
		})
	}
}

func TestValidateExercisesLeavesInputAlone(t *testing.T) {
	in := []NewExercise{
		{Name: "  Squat  ", Sets: 5, Reps: 5},
		{Name: "Lunge", Sets: 3, Reps: -12},
	}

	var validationErr *ValidationError
	require.ErrorAs(t, ValidateExercises(in), &validationErr)
	assert.Equal(t, "exercises[1].reps", validationErr.Field)
	assert.Equal(t, "  Squat  ", in[0].Name, "caller's batch is not trimmed in place")

	assert.NoError(t, ValidateExercises(in[:1]))
	assert.NoError(t, ValidateExercises(nil))
}

func TestValidateUpdate(t *testing.T) {
	in := WorkoutUpdate{}
	assert.NoError(t, validateUpdate(&in), "empty update is valid")

	in = WorkoutUpdate{Name: strPtr("  Pull  "), Notes: strPtr("  ")}
	require.NoError(t, validateUpdate(&in))
	assert.Equal(t, "Pull", *in.Name)
	assert.Equal(t, "", *in.Notes)

	in = WorkoutUpdate{Name: strPtr("")}
	var validationErr *ValidationError
	require.ErrorAs(t, validateUpdate(&in), &validationErr)
	assert.Equal(t, "name", validationErr.Field)
	assert.Equal(t, "is required", validationErr.Reason)
}
