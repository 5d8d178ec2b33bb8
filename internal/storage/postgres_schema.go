// ABOUTME: Postgres schema with row-level security policies.
// ABOUTME: Policies compare owner_id to the app.user_id setting of the transaction.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS workouts (
	id UUID PRIMARY KEY,
	seq BIGINT GENERATED ALWAYS AS IDENTITY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL CHECK (length(btrim(name)) > 0),
	date DATE NOT NULL DEFAULT CURRENT_DATE,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS exercises (
	id UUID PRIMARY KEY,
	seq BIGINT GENERATED ALWAYS AS IDENTITY,
	workout_id UUID NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
	name TEXT NOT NULL CHECK (length(btrim(name)) > 0),
	sets INTEGER NOT NULL DEFAULT 0 CHECK (sets >= 0),
	reps INTEGER NOT NULL DEFAULT 0 CHECK (reps >= 0),
	weight NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (weight >= 0),
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	id UUID PRIMARY KEY,
	owner_id TEXT NOT NULL UNIQUE,
	username TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_workouts_owner_date ON workouts(owner_id, date DESC, seq DESC);
CREATE INDEX IF NOT EXISTS idx_exercises_workout ON exercises(workout_id, seq);

ALTER TABLE workouts ENABLE ROW LEVEL SECURITY;
ALTER TABLE exercises ENABLE ROW LEVEL SECURITY;
ALTER TABLE profiles ENABLE ROW LEVEL SECURITY;

DROP POLICY IF EXISTS workouts_owner ON workouts;
CREATE POLICY workouts_owner ON workouts
	USING (owner_id = current_setting('app.user_id', true))
	WITH CHECK (owner_id = current_setting('app.user_id', true));

DROP POLICY IF EXISTS exercises_owner ON exercises;
CREATE POLICY exercises_owner ON exercises
	USING (EXISTS (
		SELECT 1 FROM workouts w
		WHERE w.id = exercises.workout_id
		AND w.owner_id = current_setting('app.user_id', true)))
	WITH CHECK (EXISTS (
		SELECT 1 FROM workouts w
		WHERE w.id = exercises.workout_id
		AND w.owner_id = current_setting('app.user_id', true)));

DROP POLICY IF EXISTS profiles_owner ON profiles;
CREATE POLICY profiles_owner ON profiles
	USING (owner_id = current_setting('app.user_id', true))
	WITH CHECK (owner_id = current_setting('app.user_id', true));

CREATE OR REPLACE FUNCTION gymlog_workout_owner(wid UUID) RETURNS TEXT
	LANGUAGE sql STABLE SECURITY DEFINER
	SET search_path = pg_catalog, public
	AS $$ SELECT owner_id FROM public.workouts WHERE id = wid $$;
`

// EnsureSchema creates tables, policies and the owner lookup function. When
// the store runs under a dedicated role, that role is granted the access the
// policies then narrow down.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if s.role == "" {
		return nil
	}

	role := pgx.Identifier{s.role}.Sanitize()
	grants := []string{
		"GRANT SELECT, INSERT, UPDATE, DELETE ON workouts, exercises, profiles TO " + role,
		"GRANT EXECUTE ON FUNCTION gymlog_workout_owner(UUID) TO " + role,
	}
	for _, g := range grants {
		if _, err := s.pool.Exec(ctx, g); err != nil {
			return fmt.Errorf("grant %s: %w", s.role, err)
		}
	}
	return nil
}
