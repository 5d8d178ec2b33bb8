// ABOUTME: CLI commands for recording and browsing workouts.
// ABOUTME: Supports add, list, show, edit, delete, and adding exercises.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/workouts"
	"github.com/spf13/cobra"
)

var (
	workoutDate      string
	workoutNotes     string
	workoutExercises []string
	workoutName      string
	workoutLimit     int
	workoutShowAll   bool
	exerciseNotes    string
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Manage workouts",
	Long: `Record workouts and the exercises performed in them.

EXAMPLES:

  gymlog workout add "Leg day" -e "squat:5x5@100" -e "lunge:3x12@20"
  gymlog workout add run --date 2025-01-30 --notes "easy 5k"
  gymlog workout exercise abc123 "calf raise:4x15"
  gymlog workout list --exercises
  gymlog workout show abc123
  gymlog workout edit abc123 --name "Heavy legs"
  gymlog workout delete abc123`,
}

var workoutAddCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"a"},
	Short:   "Record a workout",
	Long: `Record a workout with an optional date, notes and exercises.

Each --exercise takes a spec of the form name:SETSxREPS@WEIGHT. If any
exercise fails to save, the workout itself is kept and reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		exercises, err := parseExerciseSpecs(workoutExercises)
		if err != nil {
			return err
		}
		if err := workouts.ValidateExercises(exercises); err != nil {
			return err
		}

		in := workouts.NewWorkout{Name: strings.Join(args, " ")}
		if workoutDate != "" {
			date, err := parseDate(workoutDate)
			if err != nil {
				return err
			}
			in.Date = &date
		}
		if cmd.Flags().Changed("notes") {
			in.Notes = &workoutNotes
		}

		w, err := repo.CreateWorkout(ctx, user.UserID, in)
		if err != nil {
			return err
		}

		color.Green("✓ Added %s workout", w.Name)
		fmt.Printf("  ID: %s\n", w.ID.String()[:8])
		fmt.Printf("  Date: %s\n", w.Date.Format(models.DateLayout))

		if len(exercises) == 0 {
			return nil
		}
		added, err := repo.AddExercises(ctx, w.ID, exercises)
		if err != nil {
			return fmt.Errorf("workout %s was saved without exercises: %w", w.ID.String()[:8], err)
		}
		for _, e := range added {
			fmt.Printf("  + %s %s\n", e.Name, formatExercise(e))
		}
		return nil
	},
}

var workoutListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List recent workouts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		list, err := repo.ListWorkouts(ctx, user.UserID, workoutLimit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No workouts found.")
			return nil
		}

		var byWorkout map[uuid.UUID][]*models.Exercise
		if workoutShowAll {
			byWorkout, err = repo.ExercisesForWorkouts(ctx, list)
			if err != nil {
				return err
			}
		}

		for _, w := range list {
			notes := ""
			if w.Notes != nil {
				notes = truncate(*w.Notes, 40)
			}
			fmt.Printf("%s  %s  %s  %s\n",
				faint.Sprint(w.ID.String()[:8]),
				w.Date.Format(models.DateLayout),
				padRight(truncate(w.Name, 24), 24),
				faint.Sprint(notes))
			for _, e := range byWorkout[w.ID] {
				fmt.Printf("          - %s %s\n", padRight(e.Name, 20), formatExercise(e))
			}
		}
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a workout with its exercises",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := repo.ResolveWorkoutID(ctx, args[0])
		if err != nil {
			return err
		}
		w, err := repo.GetWorkout(ctx, id)
		if err != nil {
			return err
		}

		color.New(color.Bold).Printf("%s\n", w.Name)
		fmt.Printf("  ID:      %s\n", w.ID)
		fmt.Printf("  Date:    %s\n", w.Date.Format(models.DateLayout))
		if w.Notes != nil {
			fmt.Printf("  Notes:   %s\n", *w.Notes)
		}
		fmt.Printf("  Updated: %s\n", faint.Sprint(w.UpdatedAt.Local().Format("2006-01-02 15:04")))

		if len(w.Exercises) == 0 {
			fmt.Println("\n  No exercises yet.")
			return nil
		}

		fmt.Println("\n  Exercises:")
		for i := range w.Exercises {
			e := &w.Exercises[i]
			line := fmt.Sprintf("    %s %s", padRight(e.Name, 24), formatExercise(e))
			if e.Notes != nil {
				line += "  " + faint.Sprint(*e.Notes)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var workoutEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a workout's name, date or notes",
	Long: `Change a workout's name, date or notes. Only the flags you pass are
changed; pass --notes "" to clear the notes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var update workouts.WorkoutUpdate
		if cmd.Flags().Changed("name") {
			update.Name = &workoutName
		}
		if cmd.Flags().Changed("date") {
			date, err := parseDate(workoutDate)
			if err != nil {
				return err
			}
			update.Date = &date
		}
		if cmd.Flags().Changed("notes") {
			update.Notes = &workoutNotes
		}

		id, err := repo.ResolveWorkoutID(ctx, args[0])
		if err != nil {
			return err
		}
		w, err := repo.UpdateWorkout(ctx, id, update)
		if err != nil {
			return err
		}

		color.Green("✓ Updated %s", w.Name)
		fmt.Printf("  %s %s\n", faint.Sprint(w.ID.String()[:8]), w.Date.Format(models.DateLayout))
		return nil
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a workout and its exercises",
	Long: `Delete a workout by its ID or ID prefix. Its exercises are deleted too.

CAUTION:

  This permanently deletes the workout. There is no undo.
  If the prefix matches multiple workouts, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := repo.ResolveWorkoutID(ctx, args[0])
		if err != nil {
			return err
		}
		w, err := repo.GetWorkout(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.DeleteWorkout(ctx, id); err != nil {
			return err
		}

		color.Yellow("✗ Deleted %s", w.Name)
		fmt.Printf("  %s %s, %d exercises\n",
			faint.Sprint(w.ID.String()[:8]),
			w.Date.Format(models.DateLayout),
			len(w.Exercises))
		return nil
	},
}

var workoutExerciseCmd = &cobra.Command{
	Use:     "exercise <workout-id> <spec>...",
	Aliases: []string{"ex"},
	Short:   "Add exercises to a workout",
	Long: `Add one or more exercises to an existing workout.

Specs use the form name:SETSxREPS@WEIGHT:

  gymlog workout exercise abc123 "bench press:3x10@62.5" "dips:3x12"

The batch is validated before anything is written.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		exercises, err := parseExerciseSpecs(args[1:])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("notes") {
			for i := range exercises {
				exercises[i].Notes = &exerciseNotes
			}
		}

		id, err := repo.ResolveWorkoutID(ctx, args[0])
		if err != nil {
			return err
		}
		added, err := repo.AddExercises(ctx, id, exercises)
		if err != nil {
			return err
		}

		color.Green("✓ Added %d exercises to %s", len(added), id.String()[:8])
		for _, e := range added {
			fmt.Printf("  + %s %s\n", e.Name, formatExercise(e))
		}
		return nil
	},
}

func init() {
	workoutAddCmd.Flags().StringVarP(&workoutDate, "date", "d", "", "workout date (YYYY-MM-DD, today, yesterday)")
	workoutAddCmd.Flags().StringVarP(&workoutNotes, "notes", "n", "", "notes for the workout")
	workoutAddCmd.Flags().StringArrayVarP(&workoutExercises, "exercise", "e", nil, "exercise spec name:SETSxREPS@WEIGHT (repeatable)")

	workoutListCmd.Flags().IntVarP(&workoutLimit, "limit", "l", 20, "max results (0 for all)")
	workoutListCmd.Flags().BoolVarP(&workoutShowAll, "exercises", "x", false, "include each workout's exercises")

	workoutEditCmd.Flags().StringVar(&workoutName, "name", "", "new name")
	workoutEditCmd.Flags().StringVarP(&workoutDate, "date", "d", "", "new date (YYYY-MM-DD)")
	workoutEditCmd.Flags().StringVarP(&workoutNotes, "notes", "n", "", "new notes, empty clears them")

	workoutExerciseCmd.Flags().StringVarP(&exerciseNotes, "notes", "n", "", "notes applied to each exercise")

	workoutCmd.AddCommand(workoutAddCmd)
	workoutCmd.AddCommand(workoutListCmd)
	workoutCmd.AddCommand(workoutShowCmd)
	workoutCmd.AddCommand(workoutEditCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)
	workoutCmd.AddCommand(workoutExerciseCmd)
	rootCmd.AddCommand(workoutCmd)
}
