// internal/app/features/dashboard/view.go
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	profilestore "github.com/dalemusser/nutrihub/internal/app/store/profiles"
	"github.com/dalemusser/nutrihub/internal/app/system/calendar"
	"github.com/dalemusser/nutrihub/internal/app/system/timeouts"
	"github.com/dalemusser/nutrihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProfileSource loads a user's profile. Missing profiles are reported
// with profilestore.ErrNotFound.
type ProfileSource interface {
	Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error)
}

// NutritionSource loads per-day nutrition records. ByDate returns nil, nil
// when the user has no record for the date.
type NutritionSource interface {
	ByDate(ctx context.Context, userID primitive.ObjectID, date string) (*models.NutritionRecord, error)
	Range(ctx context.Context, userID primitive.ObjectID, from, to string) ([]models.NutritionRecord, error)
}

// Deps are the collaborators a view fetches through.
type Deps struct {
	Profiles  ProfileSource
	Nutrition NutritionSource

	// Location decides what "today" is. Nil means UTC.
	Location *time.Location
	// Now is the clock. Nil means time.Now.
	Now func() time.Time

	// FetchTimeout bounds each fetch. Zero means timeouts.Short().
	FetchTimeout time.Duration
	// MinLoading keeps a freshly mounted view in Loading for at least this long.
	MinLoading time.Duration

	Log *zap.Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) today() calendar.Day {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return calendar.On(d.now(), loc)
}

func (d Deps) fetchTimeout() time.Duration {
	if d.FetchTimeout > 0 {
		return d.FetchTimeout
	}
	return timeouts.Short()
}

func (d Deps) logger() *zap.Logger {
	if d.Log != nil {
		return d.Log
	}
	return zap.NewNop()
}

// Snapshot is a consistent copy of a view's state.
type Snapshot struct {
	ID            string
	Authenticated bool

	Profile  Result[ProfileSummary]
	Today    Result[*models.NutritionRecord]
	Selected Result[*models.NutritionRecord]

	TodayDate    calendar.Day
	SelectedDate calendar.Day

	LoadingUntil time.Time
}

// Settled reports whether no fetch is in flight.
func (s Snapshot) Settled() bool {
	return !s.Profile.Pending() && !s.Today.Pending() && !s.Selected.Pending()
}

// View is one mounted dashboard. Fetch results land in it asynchronously;
// handlers read it through Snapshot and wait on it through WaitFor.
type View struct {
	ID      string
	OwnerID primitive.ObjectID

	deps Deps
	log  *zap.Logger

	mu            sync.Mutex
	authenticated bool
	profile       Result[ProfileSummary]
	today         Result[*models.NutritionRecord]
	selected      Result[*models.NutritionRecord]
	todayDate     calendar.Day
	selectedDate  calendar.Day
	generation    uint64
	loadingUntil  time.Time
	lastSeen      time.Time
	changed       chan struct{}

	inflight sync.WaitGroup
}

// NewView creates an unmounted view. A zero owner means there is no
// session user; such a view never fetches.
func NewView(id string, owner primitive.ObjectID, deps Deps) *View {
	return &View{
		ID:            id,
		OwnerID:       owner,
		deps:          deps,
		log:           deps.logger().With(zap.String("view_id", id)),
		authenticated: !owner.IsZero(),
		lastSeen:      deps.now(),
		changed:       make(chan struct{}),
	}
}

// broadcastLocked wakes everyone blocked in WaitFor. Caller holds mu.
func (v *View) broadcastLocked() {
	close(v.changed)
	v.changed = make(chan struct{})
}

// Mount sets the dates and, for a signed-in owner, starts the profile,
// today and selected-date fetches concurrently. It does not block.
// A zero selected date means today.
func (v *View) Mount(ctx context.Context, selected calendar.Day) {
	now := v.deps.now()
	today := v.deps.today()
	if selected.IsZero() {
		selected = today
	}

	v.mu.Lock()
	v.todayDate = today
	v.selectedDate = selected
	v.lastSeen = now
	if !v.authenticated {
		v.broadcastLocked()
		v.mu.Unlock()
		return
	}
	v.loadingUntil = now.Add(v.deps.MinLoading)
	v.profile = Loading[ProfileSummary]()
	v.today = Loading[*models.NutritionRecord]()
	v.selected = Loading[*models.NutritionRecord]()
	v.generation++
	gen := v.generation
	v.broadcastLocked()
	v.mu.Unlock()

	// Fetch failures are recorded in the slices, never returned, so one
	// failing fetch does not cancel the others.
	var g errgroup.Group
	g.Go(func() error { v.fetchProfile(ctx); return nil })
	g.Go(func() error { v.fetchToday(ctx, today); return nil })
	g.Go(func() error { v.fetchSelected(ctx, selected, gen); return nil })

	v.inflight.Add(1)
	go func() {
		defer v.inflight.Done()
		_ = g.Wait()
		v.log.Debug("dashboard mount fetches settled")
	}()
}

// SelectDate moves the selected date and refetches its record. Selecting
// the date already shown (and fetched) does nothing. It reports whether a
// fetch was started.
func (v *View) SelectDate(ctx context.Context, d calendar.Day) bool {
	if d.IsZero() {
		return false
	}
	return v.move(ctx, func(calendar.Day) calendar.Day { return d })
}

// Next selects the day after the selected date.
func (v *View) Next(ctx context.Context) bool {
	return v.move(ctx, calendar.Day.Next)
}

// Prev selects the day before the selected date.
func (v *View) Prev(ctx context.Context) bool {
	return v.move(ctx, calendar.Day.Prev)
}

// move computes the new selected date from the current one under mu, so
// overlapping Next/Prev calls each take a step.
func (v *View) move(ctx context.Context, to func(calendar.Day) calendar.Day) bool {
	v.mu.Lock()
	v.lastSeen = v.deps.now()
	if !v.authenticated {
		v.mu.Unlock()
		return false
	}
	d := to(v.selectedDate)
	if d.Equal(v.selectedDate) && v.selected.Status != StatusIdle {
		v.mu.Unlock()
		return false
	}
	v.selectedDate = d
	v.selected = Loading[*models.NutritionRecord]()
	v.generation++
	gen := v.generation
	v.broadcastLocked()
	v.mu.Unlock()

	v.inflight.Add(1)
	go func() {
		defer v.inflight.Done()
		v.fetchSelected(ctx, d, gen)
	}()
	return true
}

// SelectedDate returns the current selected date.
func (v *View) SelectedDate() calendar.Day {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selectedDate
}

// Snapshot returns a copy of the view's current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	return Snapshot{
		ID:            v.ID,
		Authenticated: v.authenticated,
		Profile:       v.profile,
		Today:         v.today,
		Selected:      v.selected,
		TodayDate:     v.todayDate,
		SelectedDate:  v.selectedDate,
		LoadingUntil:  v.loadingUntil,
	}
}

// WaitFor blocks until cond holds for the view's state or ctx ends, and
// returns the last snapshot seen with whether cond held.
func (v *View) WaitFor(ctx context.Context, cond func(Snapshot) bool) (Snapshot, bool) {
	for {
		v.mu.Lock()
		snap := v.snapshotLocked()
		ch := v.changed
		v.mu.Unlock()

		if cond(snap) {
			return snap, true
		}
		select {
		case <-ctx.Done():
			return snap, false
		case <-ch:
		}
	}
}

// Wait blocks until every fetch started so far has finished.
func (v *View) Wait() {
	v.inflight.Wait()
}

// Touch records activity so the sweeper keeps the view.
func (v *View) Touch() {
	v.mu.Lock()
	v.lastSeen = v.deps.now()
	v.mu.Unlock()
}

// LastSeen returns when the view was last used.
func (v *View) LastSeen() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// IdleFor reports how long the view has gone unused, measured on the
// view's own clock.
func (v *View) IdleFor() time.Duration {
	now := v.deps.now()
	return now.Sub(v.LastSeen())
}

/*─────────────────────────────────────────────────────────────────────────────*
| fetchers                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (v *View) fetchProfile(parent context.Context) {
	ctx, cancel := timeouts.Detached(parent, v.deps.fetchTimeout())
	defer cancel()

	p, err := v.deps.Profiles.Profile(ctx, v.OwnerID)

	var res Result[ProfileSummary]
	switch {
	case errors.Is(err, profilestore.ErrNotFound):
		v.log.Debug("no profile record", zap.String("user_id", v.OwnerID.Hex()))
		res = Loaded(Summarize(nil))
	case err != nil:
		v.log.Warn("profile fetch failed",
			zap.String("user_id", v.OwnerID.Hex()),
			zap.Error(err))
		res = Failed[ProfileSummary](err)
	default:
		res = Loaded(Summarize(p))
	}

	v.mu.Lock()
	v.profile = res
	v.broadcastLocked()
	v.mu.Unlock()
}

func (v *View) fetchToday(parent context.Context, day calendar.Day) {
	res := v.fetchRecord(parent, day, "today")

	v.mu.Lock()
	v.today = res
	v.broadcastLocked()
	v.mu.Unlock()
}

func (v *View) fetchSelected(parent context.Context, day calendar.Day, gen uint64) {
	res := v.fetchRecord(parent, day, "selected")

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		v.log.Debug("dropping stale selected-date response",
			zap.String("date", day.Format()),
			zap.Uint64("generation", gen),
			zap.Uint64("latest", v.generation))
		return
	}
	v.selected = res
	v.broadcastLocked()
}

func (v *View) fetchRecord(parent context.Context, day calendar.Day, slice string) Result[*models.NutritionRecord] {
	ctx, cancel := timeouts.Detached(parent, v.deps.fetchTimeout())
	defer cancel()

	rec, err := v.deps.Nutrition.ByDate(ctx, v.OwnerID, day.Format())
	if err != nil {
		v.log.Warn("nutrition fetch failed",
			zap.String("slice", slice),
			zap.String("user_id", v.OwnerID.Hex()),
			zap.String("date", day.Format()),
			zap.Error(err))
		return Failed[*models.NutritionRecord](err)
	}
	return Loaded(rec)
}
