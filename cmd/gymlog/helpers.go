// ABOUTME: Shared CLI helpers for parsing flags and rendering output.
// ABOUTME: Exercise specs, dates, table padding, and error notifications.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/workouts"
)

// parseDate accepts a calendar date, a few relative words, or RFC3339.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	today := models.DateOf(time.Now())
	switch strings.ToLower(s) {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return models.DateOf(t), nil
	}
	return time.Time{}, &workouts.ValidationError{Field: "date", Reason: fmt.Sprintf("unrecognized date %q (use YYYY-MM-DD)", s)}
}

// parseExerciseSpec parses name[:SETSxREPS[@WEIGHT]], e.g. "bench press:3x10@62.5".
// Range checks are left to the repository.
func parseExerciseSpec(spec string) (workouts.NewExercise, error) {
	var ex workouts.NewExercise

	name, rest, found := strings.Cut(spec, ":")
	ex.Name = strings.TrimSpace(name)
	if !found {
		return ex, nil
	}

	rest = strings.TrimSpace(rest)
	volume, weight, hasWeight := strings.Cut(rest, "@")
	if hasWeight {
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return ex, &workouts.ValidationError{Field: "weight", Reason: fmt.Sprintf("%q is not a number", weight)}
		}
		ex.Weight = w
	}

	volume = strings.TrimSpace(volume)
	if volume == "" {
		return ex, nil
	}
	sets, reps, ok := strings.Cut(strings.ToLower(volume), "x")
	if !ok {
		return ex, &workouts.ValidationError{Field: "exercise", Reason: fmt.Sprintf("%q should look like 3x10", volume)}
	}

	var err error
	if ex.Sets, err = strconv.Atoi(strings.TrimSpace(sets)); err != nil {
		return ex, &workouts.ValidationError{Field: "sets", Reason: fmt.Sprintf("%q is not a whole number", sets)}
	}
	if ex.Reps, err = strconv.Atoi(strings.TrimSpace(reps)); err != nil {
		return ex, &workouts.ValidationError{Field: "reps", Reason: fmt.Sprintf("%q is not a whole number", reps)}
	}
	return ex, nil
}

func parseExerciseSpecs(specs []string) ([]workouts.NewExercise, error) {
	out := make([]workouts.NewExercise, 0, len(specs))
	for _, spec := range specs {
		ex, err := parseExerciseSpec(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, nil
}

func formatExercise(e *models.Exercise) string {
	s := fmt.Sprintf("%dx%d", e.Sets, e.Reps)
	if e.Weight > 0 {
		s += "@" + strconv.FormatFloat(e.Weight, 'f', -1, 64)
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

var faint = color.New(color.Faint)

// printError renders err as a notification on stderr.
func printError(err error) {
	n := workouts.Notify(err)

	title := color.New(color.FgRed, color.Bold)
	if n.Severity == workouts.SeverityWarning {
		title = color.New(color.FgYellow, color.Bold)
	}

	fmt.Fprintf(os.Stderr, "%s %s\n", title.Sprint("✗ "+n.Title+":"), n.Description)
}
