// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers against a temp SQLite store.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/gymlog/internal/identity"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/harperreed/gymlog/internal/workouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var fixedNow = time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "gymlog.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// setupServer creates a server for user over a shared store.
func setupServer(t *testing.T, db *storage.DB, user string) *Server {
	t.Helper()

	repo := workouts.New(db)
	server, err := NewServer(repo, identity.Identity{UserID: user},
		WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func TestNewServer(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.repo == nil {
		t.Error("Expected non-nil repo")
	}
	if server.window != 5 {
		t.Errorf("Expected default window 5, got %d", server.window)
	}
}

func TestNewServerRequiresUser(t *testing.T) {
	db := setupTestDB(t)
	if _, err := NewServer(workouts.New(db), identity.Identity{}); err == nil {
		t.Error("Expected error for server without a user")
	}
}

func TestHandleAddWorkout(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	tests := []struct {
		name      string
		input     addWorkoutInput
		wantErr   bool
		errSubstr string
		exercises int
	}{
		{
			name:  "name only",
			input: addWorkoutInput{Name: "Push day"},
		},
		{
			name: "with exercises",
			input: addWorkoutInput{
				Name:  "Legs",
				Date:  "2025-01-30",
				Notes: "squats felt heavy",
				Exercises: []exerciseInput{
					{Name: "Squat", Sets: 5, Reps: 5, Weight: 100},
					{Name: "Lunge", Sets: 3, Reps: 12, Weight: 20},
				},
			},
			exercises: 2,
		},
		{
			name:      "empty name",
			input:     addWorkoutInput{Name: "  "},
			wantErr:   true,
			errSubstr: "name is required",
		},
		{
			name:      "bad date",
			input:     addWorkoutInput{Name: "Pull", Date: "last tuesday"},
			wantErr:   true,
			errSubstr: "YYYY-MM-DD",
		},
		{
			name: "negative exercise",
			input: addWorkoutInput{
				Name:      "Arms",
				Exercises: []exerciseInput{{Name: "Curl", Sets: -1}},
			},
			wantErr:   true,
			errSubstr: "exercises[0].sets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := server.handleAddWorkout(ctx, nil, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if out.Workout.Name != tt.input.Name {
				t.Errorf("Name = %q, want %q", out.Workout.Name, tt.input.Name)
			}
			if len(out.Workout.Exercises) != tt.exercises {
				t.Errorf("Expected %d exercises, got %d", tt.exercises, len(out.Workout.Exercises))
			}
			if tt.input.Date != "" && out.Workout.Date != tt.input.Date {
				t.Errorf("Date = %q, want %q", out.Workout.Date, tt.input.Date)
			}
			if len(out.Workout.ShortID) != 8 {
				t.Errorf("Expected 8-char short ID, got %q", out.Workout.ShortID)
			}
		})
	}
}

func TestHandleAddWorkoutInvalidBatchSavesNothing(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	inputs := []addWorkoutInput{
		{Name: "Arms", Exercises: []exerciseInput{{Name: "Curl", Sets: -1}}},
		{Name: "Legs", Exercises: []exerciseInput{{Name: "Squat", Sets: 5, Reps: 5}, {Name: "Lunge", Reps: -3}}},
		{Name: "Back", Exercises: []exerciseInput{{Name: "Row", Weight: -10}}},
		{Name: "Core", Exercises: []exerciseInput{{Name: "  "}}},
	}
	for _, in := range inputs {
		_, _, err := server.handleAddWorkout(ctx, nil, in)
		if err == nil {
			t.Fatalf("Expected error for %s", in.Name)
		}
		if !strings.Contains(err.Error(), "Invalid input") {
			t.Errorf("Error %q should be reported as invalid input", err.Error())
		}
		if strings.Contains(err.Error(), "saved without exercises") {
			t.Errorf("Error %q implies a workout was saved", err.Error())
		}
	}

	_, out, err := server.handleListWorkouts(ctx, nil, listWorkoutsInput{})
	if err != nil {
		t.Fatalf("handleListWorkouts failed: %v", err)
	}
	if out.Count != 0 {
		t.Errorf("Expected no workouts after rejected adds, got %d", out.Count)
	}
}

func TestHandleAddExercises(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	_, created, err := server.handleAddWorkout(ctx, nil, addWorkoutInput{Name: "Push day"})
	if err != nil {
		t.Fatalf("handleAddWorkout failed: %v", err)
	}

	_, out, err := server.handleAddExercises(ctx, nil, addExercisesInput{
		WorkoutID: created.Workout.ShortID,
		Exercises: []exerciseInput{{Name: "Bench press", Sets: 3, Reps: 10, Weight: 60, Notes: "paused"}},
	})
	if err != nil {
		t.Fatalf("handleAddExercises failed: %v", err)
	}
	if len(out.Exercises) != 1 || out.Exercises[0].Notes != "paused" {
		t.Errorf("Unexpected exercises: %+v", out.Exercises)
	}

	_, _, err = server.handleAddExercises(ctx, nil, addExercisesInput{WorkoutID: "ffffffff", Exercises: []exerciseInput{{Name: "x"}}})
	if err == nil || !strings.Contains(err.Error(), "Not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestHandleListWorkouts(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	for _, in := range []addWorkoutInput{
		{Name: "old", Date: "2025-01-01", Exercises: []exerciseInput{{Name: "Row"}}},
		{Name: "new", Date: "2025-01-30", Exercises: []exerciseInput{{Name: "Squat"}, {Name: "Press"}}},
	} {
		if _, _, err := server.handleAddWorkout(ctx, nil, in); err != nil {
			t.Fatalf("handleAddWorkout failed: %v", err)
		}
	}

	_, out, err := server.handleListWorkouts(ctx, nil, listWorkoutsInput{})
	if err != nil {
		t.Fatalf("handleListWorkouts failed: %v", err)
	}
	if out.Count != 2 || out.Workouts[0].Name != "new" {
		t.Errorf("Unexpected list: %+v", out)
	}
	if len(out.Workouts[0].Exercises) != 0 {
		t.Error("Expected exercises omitted by default")
	}

	_, out, err = server.handleListWorkouts(ctx, nil, listWorkoutsInput{Limit: 1, IncludeExercises: true})
	if err != nil {
		t.Fatalf("handleListWorkouts with exercises failed: %v", err)
	}
	if out.Count != 1 {
		t.Errorf("Expected 1 workout with limit, got %d", out.Count)
	}
	if len(out.Workouts[0].Exercises) != 2 {
		t.Errorf("Expected 2 exercises on newest workout, got %d", len(out.Workouts[0].Exercises))
	}
}

func TestHandleListWorkoutsEmpty(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")

	_, out, err := server.handleListWorkouts(context.Background(), nil, listWorkoutsInput{})
	if err != nil {
		t.Fatalf("handleListWorkouts failed: %v", err)
	}
	if out.Count != 0 || out.Message != "No workouts found." {
		t.Errorf("Unexpected empty output: %+v", out)
	}
}

func TestHandleGetWorkout(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	_, created, err := server.handleAddWorkout(ctx, nil, addWorkoutInput{
		Name:      "Push day",
		Exercises: []exerciseInput{{Name: "Bench press", Sets: 3, Reps: 10, Weight: 60}},
	})
	if err != nil {
		t.Fatalf("handleAddWorkout failed: %v", err)
	}

	_, got, err := server.handleGetWorkout(ctx, nil, workoutIDInput{ID: created.Workout.ShortID})
	if err != nil {
		t.Fatalf("handleGetWorkout failed: %v", err)
	}
	if got.ID != created.Workout.ID {
		t.Errorf("ID = %s, want %s", got.ID, created.Workout.ID)
	}
	if len(got.Exercises) != 1 || got.Exercises[0].Weight != 60 {
		t.Errorf("Unexpected exercises: %+v", got.Exercises)
	}
}

func TestHandleUpdateWorkout(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	_, created, err := server.handleAddWorkout(ctx, nil, addWorkoutInput{Name: "Push day", Notes: "tired"})
	if err != nil {
		t.Fatalf("handleAddWorkout failed: %v", err)
	}

	name, date, notes := "Upper", "2025-01-15", ""
	_, out, err := server.handleUpdateWorkout(ctx, nil, updateWorkoutInput{
		ID:    created.Workout.ShortID,
		Name:  &name,
		Date:  &date,
		Notes: &notes,
	})
	if err != nil {
		t.Fatalf("handleUpdateWorkout failed: %v", err)
	}
	if out.Workout.Name != "Upper" || out.Workout.Date != "2025-01-15" || out.Workout.Notes != "" {
		t.Errorf("Unexpected update result: %+v", out.Workout)
	}
}

func TestHandleDeleteWorkoutIsolation(t *testing.T) {
	db := setupTestDB(t)
	alice := setupServer(t, db, "alice")
	bob := setupServer(t, db, "bob")
	ctx := context.Background()

	_, created, err := alice.handleAddWorkout(ctx, nil, addWorkoutInput{Name: "Push day"})
	if err != nil {
		t.Fatalf("handleAddWorkout failed: %v", err)
	}

	// Bob cannot even resolve Alice's prefix
	if _, _, err := bob.handleDeleteWorkout(ctx, nil, workoutIDInput{ID: created.Workout.ShortID}); err == nil {
		t.Error("Expected bob's delete to fail")
	}

	// With the full ID the ownership guard rejects it
	_, _, err = bob.handleDeleteWorkout(ctx, nil, workoutIDInput{ID: created.Workout.ID})
	if err == nil || !strings.Contains(err.Error(), "Not allowed") {
		t.Errorf("Expected authorization error, got %v", err)
	}

	_, out, err := alice.handleListWorkouts(ctx, nil, listWorkoutsInput{})
	if err != nil || out.Count != 1 {
		t.Fatalf("Expected alice's workout to remain, got %+v (%v)", out, err)
	}

	if _, _, err := alice.handleDeleteWorkout(ctx, nil, workoutIDInput{ID: created.Workout.ShortID}); err != nil {
		t.Fatalf("handleDeleteWorkout failed: %v", err)
	}
	_, out, _ = alice.handleListWorkouts(ctx, nil, listWorkoutsInput{})
	if out.Count != 0 {
		t.Errorf("Expected no workouts after delete, got %d", out.Count)
	}
}

func TestHandleGetStats(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	for _, date := range []string{"2025-01-30", "2025-01-25", "2025-01-01", "2024-12-01"} {
		if _, _, err := server.handleAddWorkout(ctx, nil, addWorkoutInput{Name: "w", Date: date}); err != nil {
			t.Fatalf("handleAddWorkout failed: %v", err)
		}
	}

	_, out, err := server.handleGetStats(ctx, nil, getStatsInput{})
	if err != nil {
		t.Fatalf("handleGetStats failed: %v", err)
	}
	if out.ThisWeek != 2 || out.ThisMonth != 3 || out.TotalWorkouts != 4 || out.Lifetime != 4 {
		t.Errorf("Unexpected stats: %+v", out)
	}

	_, out, err = server.handleGetStats(ctx, nil, getStatsInput{Window: 2})
	if err != nil {
		t.Fatalf("handleGetStats with window failed: %v", err)
	}
	if out.TotalWorkouts != 2 || out.Lifetime != 4 || out.Window != 2 {
		t.Errorf("Unexpected windowed stats: %+v", out)
	}
}

func TestHandleProfile(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	_, p, err := server.handleGetProfile(ctx, nil, getProfileInput{})
	if err != nil {
		t.Fatalf("handleGetProfile failed: %v", err)
	}
	if p.DisplayName != "alice" {
		t.Errorf("DisplayName = %q, want alice", p.DisplayName)
	}

	_, updated, err := server.handleUpdateProfile(ctx, nil, updateProfileInput{Username: "lifter"})
	if err != nil {
		t.Fatalf("handleUpdateProfile failed: %v", err)
	}
	if updated.ID != p.ID || updated.Username != "lifter" {
		t.Errorf("Unexpected profile: %+v", updated)
	}
}

func TestHandleRecentResource(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	if _, _, err := server.handleAddWorkout(ctx, nil, addWorkoutInput{
		Name:      "Push day",
		Exercises: []exerciseInput{{Name: "Bench press"}},
	}); err != nil {
		t.Fatalf("handleAddWorkout failed: %v", err)
	}

	result, err := server.handleRecentResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleRecentResource failed: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].URI != "gymlog://recent" {
		t.Fatalf("Unexpected contents: %+v", result.Contents)
	}

	var body struct {
		Workouts []workoutView `json:"workouts"`
		Count    int           `json:"count"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.Count != 1 || len(body.Workouts[0].Exercises) != 1 {
		t.Errorf("Unexpected recent body: %+v", body)
	}
}

func TestHandleSummaryResource(t *testing.T) {
	db := setupTestDB(t)
	server := setupServer(t, db, "alice")
	ctx := context.Background()

	if _, _, err := server.handleAddWorkout(ctx, nil, addWorkoutInput{Name: "Push day", Date: "2025-01-30"}); err != nil {
		t.Fatalf("handleAddWorkout failed: %v", err)
	}

	result, err := server.handleSummaryResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleSummaryResource failed: %v", err)
	}

	var body struct {
		User  string `json:"user"`
		Stats struct {
			TotalWorkouts int `json:"total_workouts"`
			ThisWeek      int `json:"this_week"`
		} `json:"stats"`
		Lifetime int `json:"lifetime"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.User != "alice" || body.Stats.ThisWeek != 1 || body.Lifetime != 1 {
		t.Errorf("Unexpected summary: %+v", body)
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("")
	if err != nil || got != nil {
		t.Errorf("parseDate(\"\") = %v, %v; want nil, nil", got, err)
	}

	got, err = parseDate("2025-01-31")
	if err != nil || got.Format("2006-01-02") != "2025-01-31" {
		t.Errorf("parseDate date = %v, %v", got, err)
	}

	got, err = parseDate("2025-01-31T08:00:00Z")
	if err != nil || got.Day() != 31 {
		t.Errorf("parseDate RFC3339 = %v, %v", got, err)
	}

	var validationErr *workouts.ValidationError
	if _, err := parseDate("soon"); err == nil {
		t.Error("Expected error for bad date")
	} else if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}
