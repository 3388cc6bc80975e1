package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/nutrihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fixedNow is the clock every dashboard test runs against.
var fixedNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

type fakeProfiles struct {
	profile *models.UserProfile
	err     error
	gate    chan struct{}
}

func (f *fakeProfiles) Profile(ctx context.Context, _ primitive.ObjectID) (*models.UserProfile, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.profile, f.err
}

type fakeNutrition struct {
	mu      sync.Mutex
	records map[string]*models.NutritionRecord
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   []string
	ranges  [][2]string
}

func newFakeNutrition() *fakeNutrition {
	return &fakeNutrition{
		records: map[string]*models.NutritionRecord{},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
	}
}

// block makes lookups for date wait until the returned func is called.
func (f *fakeNutrition) block(date string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[date] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeNutrition) ByDate(ctx context.Context, _ primitive.ObjectID, date string) (*models.NutritionRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, date)
	gate := f.gates[date]
	rec, err := f.records[date], f.errs[date]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return rec, err
}

func (f *fakeNutrition) Range(_ context.Context, _ primitive.ObjectID, from, to string) ([]models.NutritionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranges = append(f.ranges, [2]string{from, to})
	if err := f.errs["range"]; err != nil {
		return nil, err
	}
	var out []models.NutritionRecord
	for d, rec := range f.records {
		if d >= from && d <= to && rec != nil {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeNutrition) callsFor(date string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == date {
			n++
		}
	}
	return n
}

func (f *fakeNutrition) allCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func completeProfile() *models.UserProfile {
	return &models.UserProfile{
		DisplayName: "Ada Lovelace",
		PhoneNumber: "+1 555 0100",
		Country:     "UK",
		Gender:      "female",
		Age:         36,
		Weight:      58,
		Height:      165,
		Activity:    "moderate",
	}
}

func record(date string, cal, prot, fat, carbs, fiber float64) *models.NutritionRecord {
	return &models.NutritionRecord{
		Date:     date,
		Calories: cal,
		Protein:  prot,
		Fat:      fat,
		Carbs:    carbs,
		Fiber:    fiber,
	}
}

func testDeps(p ProfileSource, n NutritionSource) Deps {
	return Deps{
		Profiles:     p,
		Nutrition:    n,
		Location:     time.UTC,
		Now:          func() time.Time { return fixedNow },
		FetchTimeout: 2 * time.Second,
		Log:          zap.NewNop(),
	}
}

// recordingRenderer captures what the handler asked to render.
type recordingRenderer struct {
	mu    sync.Mutex
	name  string
	data  any
	calls int
}

func (r *recordingRenderer) Render(w http.ResponseWriter, _ *http.Request, name string, data any) {
	r.record(name, data)
	w.WriteHeader(http.StatusOK)
}

func (r *recordingRenderer) RenderSnippet(w http.ResponseWriter, name string, data any) {
	r.record(name, data)
	w.WriteHeader(http.StatusOK)
}

func (r *recordingRenderer) record(name string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.name = name
	r.data = data
	r.calls++
}
