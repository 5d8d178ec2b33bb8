// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for workouts, exercises, and profiles.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL CHECK (length(trim(name)) > 0),
		date TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id TEXT PRIMARY KEY,
		workout_id TEXT NOT NULL,
		name TEXT NOT NULL CHECK (length(trim(name)) > 0),
		sets INTEGER NOT NULL DEFAULT 0 CHECK (sets >= 0),
		reps INTEGER NOT NULL DEFAULT 0 CHECK (reps >= 0),
		weight REAL NOT NULL DEFAULT 0 CHECK (weight >= 0),
		notes TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL UNIQUE,
		username TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_workouts_owner_date ON workouts(owner_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_exercises_workout ON exercises(workout_id);
	`

	_, err := d.db.Exec(schema)
	return err
}
