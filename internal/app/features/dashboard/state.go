// internal/app/features/dashboard/state.go
package dashboard

import (
	"time"

	"github.com/dalemusser/nutrihub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/nutrihub/internal/domain/models"
)

// Header fallbacks when the profile has no value.
const (
	DefaultDisplayName = "User"
	DefaultPhoneNumber = "No phone number"
)

// Redirect targets for the non-rendering states.
const (
	OnboardingPath = "/onboarding"
	HomePath       = "/home"
	EditProfileURL = "/user-form"
)

// IncompleteBanner is the only user-visible trace of a profile problem.
const IncompleteBanner = "Please Complete The Profile To Try The Feature"

// State is what a view shows right now.
type State int

const (
	StateLoading State = iota
	StateReady
	StateProfileIncomplete
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateProfileIncomplete:
		return "profile_incomplete"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// RedirectPath returns where a state sends the browser, or "" for states
// that render in place.
func (s State) RedirectPath() string {
	switch s {
	case StateProfileIncomplete:
		return OnboardingPath
	case StateUnauthenticated:
		return HomePath
	}
	return ""
}

// ProfileSummary is the part of the profile the dashboard header needs.
type ProfileSummary struct {
	DisplayName string
	PhoneNumber string
	Complete    bool
	Found       bool
	Missing     []string
}

// Summarize derives header values and completeness from a profile.
// A nil profile (no record) is incomplete and gets the fallbacks.
func Summarize(p *models.UserProfile) ProfileSummary {
	s := ProfileSummary{
		DisplayName: DefaultDisplayName,
		PhoneNumber: DefaultPhoneNumber,
	}
	if p == nil {
		s.Missing = append([]string(nil), models.RequiredProfileFields...)
		return s
	}
	s.Found = true
	if name := htmlsanitize.PlainText(p.DisplayName); name != "" {
		s.DisplayName = name
	}
	if phone := htmlsanitize.PlainText(p.PhoneNumber); phone != "" {
		s.PhoneNumber = phone
	}
	s.Missing = p.MissingFields()
	s.Complete = len(s.Missing) == 0
	return s
}

// Resolve picks the visible state. Precedence, first match wins:
//
//  1. profile settled and not complete -> ProfileIncomplete
//  2. no session                       -> Unauthenticated
//  3. profile pending or gate open     -> Loading
//  4. otherwise                        -> Ready
//
// A failed profile fetch settles with a zero summary, so it lands in 1.
func Resolve(s Snapshot, now time.Time) State {
	if s.Profile.Settled() && !s.Profile.Value.Complete {
		return StateProfileIncomplete
	}
	if !s.Authenticated {
		return StateUnauthenticated
	}
	if !s.Profile.Settled() || now.Before(s.LoadingUntil) {
		return StateLoading
	}
	return StateReady
}
