package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/nutrihub/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestSummarize_Defaults(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, DefaultDisplayName, s.DisplayName)
	assert.Equal(t, DefaultPhoneNumber, s.PhoneNumber)
	assert.False(t, s.Complete)
	assert.False(t, s.Found)
	assert.Equal(t, models.RequiredProfileFields, s.Missing)

	s = Summarize(&models.UserProfile{Country: "UK"})
	assert.True(t, s.Found)
	assert.Equal(t, DefaultDisplayName, s.DisplayName)
	assert.Equal(t, DefaultPhoneNumber, s.PhoneNumber)
	assert.False(t, s.Complete)
}

func TestSummarize_StripsMarkup(t *testing.T) {
	p := completeProfile()
	p.DisplayName = "<b>Ada</b><script>alert(1)</script>"
	s := Summarize(p)
	assert.Equal(t, "Ada", s.DisplayName)
	assert.True(t, s.Complete)
}

func TestSummarize_EachMissingFieldIsIncomplete(t *testing.T) {
	clears := map[string]func(*models.UserProfile){
		"phoneNumber": func(p *models.UserProfile) { p.PhoneNumber = "" },
		"country":     func(p *models.UserProfile) { p.Country = "" },
		"gender":      func(p *models.UserProfile) { p.Gender = "" },
		"age":         func(p *models.UserProfile) { p.Age = 0 },
		"weight":      func(p *models.UserProfile) { p.Weight = 0 },
		"height":      func(p *models.UserProfile) { p.Height = 0 },
		"activity":    func(p *models.UserProfile) { p.Activity = "" },
	}
	for field, blank := range clears {
		t.Run(field, func(t *testing.T) {
			p := completeProfile()
			blank(p)
			s := Summarize(p)
			assert.False(t, s.Complete)
			assert.Equal(t, []string{field}, s.Missing)
		})
	}

	// displayName is not part of the gate.
	p := completeProfile()
	p.DisplayName = ""
	assert.True(t, Summarize(p).Complete)
}

func TestResolve_Precedence(t *testing.T) {
	now := fixedNow
	complete := Loaded(Summarize(completeProfile()))
	incomplete := Loaded(Summarize(&models.UserProfile{Country: "UK"}))

	tests := []struct {
		name string
		snap Snapshot
		want State
	}{
		{
			name: "incomplete beats unauthenticated",
			snap: Snapshot{Authenticated: false, Profile: incomplete},
			want: StateProfileIncomplete,
		},
		{
			name: "incomplete beats loading gate",
			snap: Snapshot{Authenticated: true, Profile: incomplete, LoadingUntil: now.Add(time.Minute)},
			want: StateProfileIncomplete,
		},
		{
			name: "failed profile is incomplete",
			snap: Snapshot{Authenticated: true, Profile: Failed[ProfileSummary](errors.New("boom"))},
			want: StateProfileIncomplete,
		},
		{
			name: "no session without profile",
			snap: Snapshot{Authenticated: false},
			want: StateUnauthenticated,
		},
		{
			name: "no session with complete profile",
			snap: Snapshot{Authenticated: false, Profile: complete},
			want: StateUnauthenticated,
		},
		{
			name: "profile in flight",
			snap: Snapshot{Authenticated: true, Profile: Loading[ProfileSummary]()},
			want: StateLoading,
		},
		{
			name: "min loading gate open",
			snap: Snapshot{Authenticated: true, Profile: complete, LoadingUntil: now.Add(time.Second)},
			want: StateLoading,
		},
		{
			name: "ready",
			snap: Snapshot{Authenticated: true, Profile: complete, LoadingUntil: now.Add(-time.Second)},
			want: StateReady,
		},
		{
			name: "ready while nutrition still loading",
			snap: Snapshot{
				Authenticated: true,
				Profile:       complete,
				Today:         Loading[*models.NutritionRecord](),
				Selected:      Loading[*models.NutritionRecord](),
			},
			want: StateReady,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.snap, now))
		})
	}
}

func TestState_RedirectPath(t *testing.T) {
	assert.Equal(t, OnboardingPath, StateProfileIncomplete.RedirectPath())
	assert.Equal(t, HomePath, StateUnauthenticated.RedirectPath())
	assert.Empty(t, StateReady.RedirectPath())
	assert.Empty(t, StateLoading.RedirectPath())
	assert.Equal(t, "profile_incomplete", StateProfileIncomplete.String())
}

func TestResult_Status(t *testing.T) {
	var idle Result[int]
	assert.False(t, idle.Settled())
	assert.False(t, idle.Pending())
	assert.Equal(t, "idle", idle.Status.String())

	assert.True(t, Loading[int]().Pending())
	assert.True(t, Loaded(3).Settled())
	assert.Equal(t, 3, Loaded(3).Value)

	f := Failed[int](errors.New("x"))
	assert.True(t, f.Settled())
	assert.EqualError(t, f.Err, "x")
}
