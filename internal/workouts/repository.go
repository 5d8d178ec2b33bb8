// ABOUTME: Workout repository: the single access point to workout, exercise and profile records.
// ABOUTME: Guards ownership against the context identity before delegating to a storage.Store.
package workouts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/identity"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/observability"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// fetchLimit bounds concurrent exercise fetches in ExercisesForWorkouts.
const fetchLimit = 4

const (
	opCreateWorkout  = "create workout"
	opAddExercises   = "add exercises"
	opListWorkouts   = "list workouts"
	opGetExercises   = "get exercises"
	opDeleteWorkout  = "delete workout"
	opGetWorkout     = "get workout"
	opResolveID      = "resolve workout id"
	opUpdateWorkout  = "update workout"
	opFetchExercises = "fetch exercises"
	opCountWorkouts  = "count workouts"
	opGetProfile     = "get profile"
	opUpdateProfile  = "update profile"
)

// Repository mediates every read and write between front-ends and the store.
type Repository struct {
	store storage.Store
	now   func() time.Time
	log   *logrus.Entry
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock, used for default dates and timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// WithLogger sets the logger entry operations are logged through.
func WithLogger(log *logrus.Entry) Option {
	return func(r *Repository) {
		r.log = log
	}
}

// New creates a Repository over store.
func New(store storage.Store, opts ...Option) *Repository {
	r := &Repository{
		store: store,
		now:   time.Now,
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateWorkout records a new workout for owner. The owner must be the
// authenticated caller.
func (r *Repository) CreateWorkout(ctx context.Context, owner string, in NewWorkout) (w *models.Workout, err error) {
	defer r.observe(opCreateWorkout, time.Now(), &err)

	caller, err := r.caller(ctx, opCreateWorkout)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(owner) {
		return nil, &AuthorizationError{Op: opCreateWorkout, Reason: "owner does not match the signed-in user"}
	}
	if err := validateWorkout(&in); err != nil {
		return nil, err
	}

	now := r.now()
	w = models.NewWorkout(owner, in.Name).WithCreatedAt(r.stamp(now))
	w.Date = models.DateOf(now)
	if in.Date != nil {
		w.WithDate(*in.Date)
	}
	w.Notes = in.Notes

	if err := r.store.CreateWorkout(ctx, w); err != nil {
		return nil, r.storeError(opCreateWorkout, err, false)
	}

	observability.RecordWorkoutCreated(w.CreatedAt)
	r.log.WithFields(logrus.Fields{"op": opCreateWorkout, "owner": owner, "workout_id": w.ID}).Debug("workout created")
	return w, nil
}

// AddExercises appends a batch of exercises to one of the caller's workouts.
// The whole batch is validated before anything is written. A store failure
// is reported as an incomplete save; the workout itself is kept.
func (r *Repository) AddExercises(ctx context.Context, workoutID uuid.UUID, in []NewExercise) (added []*models.Exercise, err error) {
	defer r.observe(opAddExercises, time.Now(), &err)

	caller, err := r.caller(ctx, opAddExercises)
	if err != nil {
		return nil, err
	}

	batch := make([]NewExercise, len(in))
	copy(batch, in)
	if err := validateExercises(batch); err != nil {
		return nil, err
	}

	w, err := r.store.GetWorkout(ctx, caller.UserID, workoutID)
	if err != nil {
		return nil, r.lookupError(opAddExercises, workoutID, err)
	}
	if len(batch) == 0 {
		return []*models.Exercise{}, nil
	}

	created := r.stamp(r.now())
	added = make([]*models.Exercise, 0, len(batch))
	for _, e := range batch {
		ex := models.NewExercise(workoutID, e.Name, e.Sets, e.Reps, e.Weight)
		ex.Notes = e.Notes
		ex.CreatedAt = created
		added = append(added, ex)
	}

	if err := r.store.AddExercises(ctx, caller.UserID, workoutID, added, r.next(w.UpdatedAt)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotFoundError{Kind: "workout", ID: workoutID.String()}
		}
		return nil, r.storeError(opAddExercises, err, true)
	}

	r.log.WithFields(logrus.Fields{"op": opAddExercises, "owner": caller.UserID, "workout_id": workoutID, "count": len(added)}).Debug("exercises added")
	return added, nil
}

// ListWorkouts returns owner's workouts, newest date first. Workouts on the
// same date come back most recently stored first. A limit of zero or less
// returns every workout.
func (r *Repository) ListWorkouts(ctx context.Context, owner string, limit int) (list []*models.Workout, err error) {
	defer r.observe(opListWorkouts, time.Now(), &err)

	caller, err := r.caller(ctx, opListWorkouts)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(owner) {
		return nil, &AuthorizationError{Op: opListWorkouts, Reason: "owner does not match the signed-in user"}
	}

	list, err = r.store.ListWorkouts(ctx, owner, limit)
	if err != nil {
		return nil, r.storeError(opListWorkouts, err, false)
	}
	return list, nil
}

// CountWorkouts returns the lifetime number of workouts owner has recorded.
func (r *Repository) CountWorkouts(ctx context.Context, owner string) (n int, err error) {
	defer r.observe(opCountWorkouts, time.Now(), &err)

	caller, err := r.caller(ctx, opCountWorkouts)
	if err != nil {
		return 0, err
	}
	if !caller.Owns(owner) {
		return 0, &AuthorizationError{Op: opCountWorkouts, Reason: "owner does not match the signed-in user"}
	}

	n, err = r.store.CountWorkouts(ctx, owner)
	if err != nil {
		return 0, r.storeError(opCountWorkouts, err, false)
	}
	return n, nil
}

// GetExercisesFor returns a workout's exercises in the order they were
// added. A workout with no exercises, or one the caller cannot see, yields
// an empty slice.
func (r *Repository) GetExercisesFor(ctx context.Context, workoutID uuid.UUID) (list []*models.Exercise, err error) {
	defer r.observe(opGetExercises, time.Now(), &err)

	caller, err := r.caller(ctx, opGetExercises)
	if err != nil {
		return nil, err
	}

	list, err = r.store.ListExercises(ctx, caller.UserID, workoutID)
	if err != nil {
		return nil, r.storeError(opGetExercises, err, false)
	}
	if list == nil {
		list = []*models.Exercise{}
	}
	return list, nil
}

// ExercisesForWorkouts fetches the exercises of several workouts
// concurrently and returns them keyed by workout ID.
func (r *Repository) ExercisesForWorkouts(ctx context.Context, list []*models.Workout) (byWorkout map[uuid.UUID][]*models.Exercise, err error) {
	defer r.observe(opFetchExercises, time.Now(), &err)

	caller, err := r.caller(ctx, opFetchExercises)
	if err != nil {
		return nil, err
	}

	byWorkout = make(map[uuid.UUID][]*models.Exercise, len(list))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for _, w := range list {
		id := w.ID
		g.Go(func() error {
			exercises, err := r.store.ListExercises(gctx, caller.UserID, id)
			if err != nil {
				return err
			}
			mu.Lock()
			byWorkout[id] = exercises
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, r.storeError(opFetchExercises, err, false)
	}
	return byWorkout, nil
}

// GetWorkout returns one of the caller's workouts with its exercises attached.
func (r *Repository) GetWorkout(ctx context.Context, workoutID uuid.UUID) (w *models.Workout, err error) {
	defer r.observe(opGetWorkout, time.Now(), &err)

	caller, err := r.caller(ctx, opGetWorkout)
	if err != nil {
		return nil, err
	}

	w, err = r.store.GetWorkout(ctx, caller.UserID, workoutID)
	if err != nil {
		return nil, r.lookupError(opGetWorkout, workoutID, err)
	}

	exercises, err := r.store.ListExercises(ctx, caller.UserID, workoutID)
	if err != nil {
		return nil, r.storeError(opGetWorkout, err, false)
	}
	w.Exercises = make([]models.Exercise, 0, len(exercises))
	for _, e := range exercises {
		w.Exercises = append(w.Exercises, *e)
	}
	return w, nil
}

// ResolveWorkoutID expands a full ID or a unique prefix of one of the
// caller's workouts.
func (r *Repository) ResolveWorkoutID(ctx context.Context, idOrPrefix string) (id uuid.UUID, err error) {
	defer r.observe(opResolveID, time.Now(), &err)

	caller, err := r.caller(ctx, opResolveID)
	if err != nil {
		return uuid.Nil, err
	}
	if strings.TrimSpace(idOrPrefix) != "" && !storage.IsIDPrefix(idOrPrefix) {
		return uuid.Nil, &ValidationError{Field: "id", Reason: "may only contain hex digits and hyphens"}
	}

	id, err = r.store.ResolveWorkoutID(ctx, caller.UserID, idOrPrefix)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, storage.ErrNotFound):
		return uuid.Nil, &NotFoundError{Kind: "workout", ID: idOrPrefix}
	case errors.Is(err, storage.ErrAmbiguousID):
		return uuid.Nil, &ValidationError{Field: "id", Reason: "prefix matches more than one workout"}
	default:
		return uuid.Nil, r.storeError(opResolveID, err, false)
	}
}

// UpdateWorkout changes the name, date or notes of one of the caller's workouts.
func (r *Repository) UpdateWorkout(ctx context.Context, workoutID uuid.UUID, in WorkoutUpdate) (w *models.Workout, err error) {
	defer r.observe(opUpdateWorkout, time.Now(), &err)

	caller, err := r.caller(ctx, opUpdateWorkout)
	if err != nil {
		return nil, err
	}
	if err := validateUpdate(&in); err != nil {
		return nil, err
	}
	if err := r.guardOwner(ctx, caller, opUpdateWorkout, workoutID); err != nil {
		return nil, err
	}

	w, err = r.store.GetWorkout(ctx, caller.UserID, workoutID)
	if err != nil {
		return nil, r.lookupError(opUpdateWorkout, workoutID, err)
	}

	if in.Name != nil {
		w.Name = *in.Name
	}
	if in.Date != nil {
		w.WithDate(*in.Date)
	}
	if in.Notes != nil {
		w.Notes = normalizeNotes(in.Notes)
	}
	w.UpdatedAt = r.next(w.UpdatedAt)

	if err := r.store.UpdateWorkout(ctx, w); err != nil {
		return nil, r.lookupError(opUpdateWorkout, workoutID, err)
	}

	r.log.WithFields(logrus.Fields{"op": opUpdateWorkout, "owner": caller.UserID, "workout_id": workoutID}).Debug("workout updated")
	return w, nil
}

// DeleteWorkout removes one of the caller's workouts and all its exercises.
func (r *Repository) DeleteWorkout(ctx context.Context, workoutID uuid.UUID) (err error) {
	defer r.observe(opDeleteWorkout, time.Now(), &err)

	caller, err := r.caller(ctx, opDeleteWorkout)
	if err != nil {
		return err
	}
	if err := r.guardOwner(ctx, caller, opDeleteWorkout, workoutID); err != nil {
		return err
	}

	if err := r.store.DeleteWorkout(ctx, caller.UserID, workoutID); err != nil {
		return r.lookupError(opDeleteWorkout, workoutID, err)
	}

	r.log.WithFields(logrus.Fields{"op": opDeleteWorkout, "owner": caller.UserID, "workout_id": workoutID}).Debug("workout deleted")
	return nil
}

// Profile returns the caller's profile, creating it on first access.
func (r *Repository) Profile(ctx context.Context) (p *models.Profile, err error) {
	defer r.observe(opGetProfile, time.Now(), &err)

	caller, err := r.caller(ctx, opGetProfile)
	if err != nil {
		return nil, err
	}
	return r.profile(ctx, caller)
}

// UpdateProfile sets the caller's username. A nil or blank username clears it.
func (r *Repository) UpdateProfile(ctx context.Context, username *string) (p *models.Profile, err error) {
	defer r.observe(opUpdateProfile, time.Now(), &err)

	caller, err := r.caller(ctx, opUpdateProfile)
	if err != nil {
		return nil, err
	}

	in := profileUpdate{Username: normalizeNotes(username)}
	if err := check(&in, ""); err != nil {
		return nil, err
	}

	p, err = r.profile(ctx, caller)
	if err != nil {
		return nil, err
	}

	p.Username = in.Username
	p.UpdatedAt = r.next(p.UpdatedAt)
	if err := r.store.UpdateProfile(ctx, p); err != nil {
		return nil, r.storeError(opUpdateProfile, err, false)
	}
	return p, nil
}

func (r *Repository) profile(ctx context.Context, caller identity.Identity) (*models.Profile, error) {
	p, err := r.store.GetProfile(ctx, caller.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, r.storeError(opGetProfile, err, false)
	}

	now := r.stamp(r.now())
	p = models.NewProfile(caller.UserID)
	p.CreatedAt, p.UpdatedAt = now, now

	err = r.store.CreateProfile(ctx, p)
	switch {
	case err == nil:
		r.log.WithFields(logrus.Fields{"op": opGetProfile, "owner": caller.UserID}).Debug("profile created")
		return p, nil
	case errors.Is(err, storage.ErrConflict):
		// Created by a concurrent call
		p, err = r.store.GetProfile(ctx, caller.UserID)
		if err != nil {
			return nil, r.storeError(opGetProfile, err, false)
		}
		return p, nil
	default:
		return nil, r.storeError(opGetProfile, err, false)
	}
}

// caller returns the identity on ctx or an AuthorizationError.
func (r *Repository) caller(ctx context.Context, op string) (identity.Identity, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return identity.Identity{}, &AuthorizationError{Op: op, Reason: "not signed in"}
	}
	return id, nil
}

// guardOwner distinguishes a missing workout from a foreign one.
func (r *Repository) guardOwner(ctx context.Context, caller identity.Identity, op string, workoutID uuid.UUID) error {
	owner, err := r.store.WorkoutOwner(ctx, workoutID)
	if err != nil {
		return r.lookupError(op, workoutID, err)
	}
	if !caller.Owns(owner) {
		r.log.WithFields(logrus.Fields{"op": op, "owner": caller.UserID, "workout_id": workoutID}).Warn("rejected access to foreign workout")
		return &AuthorizationError{Op: op, Reason: "workout belongs to another user"}
	}
	return nil
}

func (r *Repository) lookupError(op string, workoutID uuid.UUID, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Kind: "workout", ID: workoutID.String()}
	}
	return r.storeError(op, err, false)
}

func (r *Repository) storeError(op string, err error, incomplete bool) error {
	r.log.WithFields(logrus.Fields{"op": op}).WithError(err).Warn("store operation failed")
	return &StoreError{Op: op, Err: err, Incomplete: incomplete}
}

// stamp normalizes a timestamp to the precision every backend keeps.
func (r *Repository) stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// next returns a timestamp strictly after prev.
func (r *Repository) next(prev time.Time) time.Time {
	now := r.stamp(r.now())
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func (r *Repository) observe(op string, start time.Time, errp *error) {
	result := observability.ResultOK
	if err := *errp; err != nil {
		result = observability.ResultError
		var (
			validationErr *ValidationError
			notFoundErr   *NotFoundError
			authErr       *AuthorizationError
		)
		if errors.As(err, &validationErr) || errors.As(err, &notFoundErr) || errors.As(err, &authErr) {
			result = observability.ResultRejected
		}
	}
	observability.ObserveOperation(metricLabel(op), result, time.Since(start))
}

// metricLabel turns an op name such as "create workout" into the
// snake_case label value "create_workout".
func metricLabel(op string) string {
	return strings.ReplaceAll(op, " ", "_")
}
