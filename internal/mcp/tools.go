// ABOUTME: MCP tool implementations for workouts, stats and the profile.
// ABOUTME: Each handler runs as the server's signed-in user through the repository.
package mcp

import (
	"context"
	"fmt"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/harperreed/gymlog/internal/workouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// defaultListLimit caps list_workouts when no limit is given.
const defaultListLimit = 20

func (s *Server) registerTools() {
	// add_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_workout",
		Description: "Record a workout, optionally with its exercises",
	}, s.handleAddWorkout)

	// add_exercises
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_exercises",
		Description: "Add exercises to an existing workout",
	}, s.handleAddExercises)

	// list_workouts
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent workouts, newest first",
	}, s.handleListWorkouts)

	// get_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get a workout with all its exercises",
	}, s.handleGetWorkout)

	// update_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_workout",
		Description: "Change a workout's name, date or notes",
	}, s.handleUpdateWorkout)

	// delete_workout
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a workout and its exercises",
	}, s.handleDeleteWorkout)

	// get_stats
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_stats",
		Description: "Workout counts for this week and this month over the recent window",
	}, s.handleGetStats)

	// get_profile
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the signed-in user's profile",
	}, s.handleGetProfile)

	// update_profile
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_profile",
		Description: "Set or clear the signed-in user's username",
	}, s.handleUpdateProfile)
}

// Tool input/output types

type addWorkoutInput struct {
	Name      string          `json:"name" jsonschema:"Workout name, e.g. Push day"`
	Date      string          `json:"date,omitempty" jsonschema:"Calendar date YYYY-MM-DD, defaults to today"`
	Notes     string          `json:"notes,omitempty" jsonschema:"Optional notes"`
	Exercises []exerciseInput `json:"exercises,omitempty" jsonschema:"Exercises performed in this workout"`
}

type workoutOutput struct {
	Workout workoutView `json:"workout"`
	Message string      `json:"message"`
}

type addExercisesInput struct {
	WorkoutID string          `json:"workout_id" jsonschema:"Workout ID or prefix"`
	Exercises []exerciseInput `json:"exercises" jsonschema:"Exercises to add"`
}

type exercisesOutput struct {
	Exercises []exerciseView `json:"exercises"`
	Message   string         `json:"message"`
}

type listWorkoutsInput struct {
	Limit            int  `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
	IncludeExercises bool `json:"include_exercises,omitempty" jsonschema:"Attach each workout's exercises"`
}

type listWorkoutsOutput struct {
	Workouts []workoutView `json:"workouts"`
	Count    int           `json:"count"`
	Message  string        `json:"message,omitempty"`
}

type workoutIDInput struct {
	ID string `json:"id" jsonschema:"Workout ID or prefix"`
}

type updateWorkoutInput struct {
	ID    string  `json:"id" jsonschema:"Workout ID or prefix"`
	Name  *string `json:"name,omitempty" jsonschema:"New name"`
	Date  *string `json:"date,omitempty" jsonschema:"New calendar date YYYY-MM-DD"`
	Notes *string `json:"notes,omitempty" jsonschema:"New notes, empty string clears them"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type getStatsInput struct {
	Window int `json:"window,omitempty" jsonschema:"How many recent workouts to count over"`
}

type statsOutput struct {
	TotalWorkouts int    `json:"total_workouts"`
	ThisWeek      int    `json:"this_week"`
	ThisMonth     int    `json:"this_month"`
	Lifetime      int    `json:"lifetime"`
	Window        int    `json:"window"`
	Message       string `json:"message"`
}

type getProfileInput struct{}

type profileOutput struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type updateProfileInput struct {
	Username string `json:"username" jsonschema:"Display name, empty clears it"`
}

// Tool handlers

func (s *Server) handleAddWorkout(ctx context.Context, req *mcp.CallToolRequest, input addWorkoutInput) (*mcp.CallToolResult, workoutOutput, error) {
	ctx = s.session(ctx)

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, workoutOutput{}, toolError(err)
	}

	exercises := toNewExercises(input.Exercises)
	if err := workouts.ValidateExercises(exercises); err != nil {
		return nil, workoutOutput{}, toolError(err)
	}

	in := newWorkoutInput(input.Name, date, input.Notes)
	w, err := s.repo.CreateWorkout(ctx, s.user.UserID, in)
	if err != nil {
		return nil, workoutOutput{}, toolError(err)
	}

	if len(exercises) > 0 {
		if _, err := s.repo.AddExercises(ctx, w.ID, exercises); err != nil {
			return nil, workoutOutput{}, fmt.Errorf("workout %s was saved without exercises: %w", w.ID.String()[:8], toolError(err))
		}
	}

	stored, err := s.repo.GetExercisesFor(ctx, w.ID)
	if err != nil {
		return nil, workoutOutput{}, toolError(err)
	}

	return nil, workoutOutput{
		Workout: newWorkoutView(w, stored),
		Message: fmt.Sprintf("Added workout %s with %d exercises (ID: %s)", w.Name, len(stored), w.ID.String()[:8]),
	}, nil
}

func (s *Server) handleAddExercises(ctx context.Context, req *mcp.CallToolRequest, input addExercisesInput) (*mcp.CallToolResult, exercisesOutput, error) {
	ctx = s.session(ctx)

	id, err := s.repo.ResolveWorkoutID(ctx, input.WorkoutID)
	if err != nil {
		return nil, exercisesOutput{}, toolError(err)
	}

	added, err := s.repo.AddExercises(ctx, id, toNewExercises(input.Exercises))
	if err != nil {
		return nil, exercisesOutput{}, toolError(err)
	}

	out := exercisesOutput{Exercises: []exerciseView{}}
	for _, e := range added {
		out.Exercises = append(out.Exercises, newExerciseView(e))
	}
	out.Message = fmt.Sprintf("Added %d exercises to workout %s", len(added), id.String()[:8])
	return nil, out, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, listWorkoutsOutput, error) {
	ctx = s.session(ctx)

	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	list, err := s.repo.ListWorkouts(ctx, s.user.UserID, input.Limit)
	if err != nil {
		return nil, listWorkoutsOutput{}, toolError(err)
	}

	out := listWorkoutsOutput{Workouts: []workoutView{}, Count: len(list)}
	if len(list) == 0 {
		out.Message = "No workouts found."
		return nil, out, nil
	}

	if !input.IncludeExercises {
		for _, w := range list {
			out.Workouts = append(out.Workouts, newWorkoutView(w, nil))
		}
		return nil, out, nil
	}

	byWorkout, err := s.repo.ExercisesForWorkouts(ctx, list)
	if err != nil {
		return nil, listWorkoutsOutput{}, toolError(err)
	}
	for _, w := range list {
		out.Workouts = append(out.Workouts, newWorkoutView(w, byWorkout[w.ID]))
	}
	return nil, out, nil
}

func (s *Server) handleGetWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutIDInput) (*mcp.CallToolResult, workoutView, error) {
	ctx = s.session(ctx)

	id, err := s.repo.ResolveWorkoutID(ctx, input.ID)
	if err != nil {
		return nil, workoutView{}, toolError(err)
	}

	w, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return nil, workoutView{}, toolError(err)
	}

	exercises := make([]*models.Exercise, 0, len(w.Exercises))
	for i := range w.Exercises {
		exercises = append(exercises, &w.Exercises[i])
	}
	return nil, newWorkoutView(w, exercises), nil
}

func (s *Server) handleUpdateWorkout(ctx context.Context, req *mcp.CallToolRequest, input updateWorkoutInput) (*mcp.CallToolResult, workoutOutput, error) {
	ctx = s.session(ctx)

	id, err := s.repo.ResolveWorkoutID(ctx, input.ID)
	if err != nil {
		return nil, workoutOutput{}, toolError(err)
	}

	update := workouts.WorkoutUpdate{Name: input.Name, Notes: input.Notes}
	if input.Date != nil {
		date, err := parseDate(*input.Date)
		if err != nil {
			return nil, workoutOutput{}, toolError(err)
		}
		update.Date = date
	}

	w, err := s.repo.UpdateWorkout(ctx, id, update)
	if err != nil {
		return nil, workoutOutput{}, toolError(err)
	}

	return nil, workoutOutput{
		Workout: newWorkoutView(w, nil),
		Message: fmt.Sprintf("Updated workout %s", id.String()[:8]),
	}, nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input workoutIDInput) (*mcp.CallToolResult, simpleOutput, error) {
	ctx = s.session(ctx)

	id, err := s.repo.ResolveWorkoutID(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, toolError(err)
	}

	if err := s.repo.DeleteWorkout(ctx, id); err != nil {
		return nil, simpleOutput{}, toolError(err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted workout: %s", id.String()[:8]),
	}, nil
}

func (s *Server) handleGetStats(ctx context.Context, req *mcp.CallToolRequest, input getStatsInput) (*mcp.CallToolResult, statsOutput, error) {
	ctx = s.session(ctx)

	window := input.Window
	if window <= 0 {
		window = s.window
	}

	summary, err := stats.Summarize(ctx, s.repo, s.user.UserID, window, s.now())
	if err != nil {
		return nil, statsOutput{}, toolError(err)
	}

	return nil, statsOutput{
		TotalWorkouts: summary.TotalWorkouts,
		ThisWeek:      summary.ThisWeek,
		ThisMonth:     summary.ThisMonth,
		Lifetime:      summary.Lifetime,
		Window:        window,
		Message: fmt.Sprintf("%d this week, %d this month (last %d workouts); %d logged in total",
			summary.ThisWeek, summary.ThisMonth, window, summary.Lifetime),
	}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, req *mcp.CallToolRequest, input getProfileInput) (*mcp.CallToolResult, profileOutput, error) {
	p, err := s.repo.Profile(s.session(ctx))
	if err != nil {
		return nil, profileOutput{}, toolError(err)
	}
	return nil, newProfileOutput(p), nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, req *mcp.CallToolRequest, input updateProfileInput) (*mcp.CallToolResult, profileOutput, error) {
	username := input.Username
	p, err := s.repo.UpdateProfile(s.session(ctx), &username)
	if err != nil {
		return nil, profileOutput{}, toolError(err)
	}
	return nil, newProfileOutput(p), nil
}
