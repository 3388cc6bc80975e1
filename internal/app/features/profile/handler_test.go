package profile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/nutrihub/internal/app/features/errors"
	profilestore "github.com/dalemusser/nutrihub/internal/app/store/profiles"
	"github.com/dalemusser/nutrihub/internal/app/system/authutil"
	"github.com/dalemusser/nutrihub/internal/domain/models"
	"github.com/dalemusser/nutrihub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memProfiles struct {
	saved   map[primitive.ObjectID]models.UserProfile
	saveErr error
}

func (m *memProfiles) Profile(_ context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
	p, ok := m.saved[id]
	if !ok {
		return nil, profilestore.ErrNotFound
	}
	return &p, nil
}

func (m *memProfiles) Save(_ context.Context, id primitive.ObjectID, p models.UserProfile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[id] = p
	return nil
}

type memUsers struct {
	user   *models.User
	hashes []string
}

func (m *memUsers) GetByID(context.Context, primitive.ObjectID) (*models.User, error) {
	if m.user == nil {
		return nil, errors.New("not found")
	}
	return m.user, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, _ primitive.ObjectID, hash string) error {
	m.hashes = append(m.hashes, hash)
	return nil
}

func validForm() url.Values {
	return url.Values{
		"display_name": {"  Ada   Lovelace "},
		"phone_number": {"+1 555   0100"},
		"country":      {"UK"},
		"gender":       {"Female"},
		"age":          {"36"},
		"weight":       {"58.5"},
		"height":       {"165"},
		"activity":     {"moderate"},
	}
}

func post(t *testing.T, hf http.HandlerFunc, target string, form url.Values, user testutil.TestUser) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.WithUser(testutil.NewFormRequest(target, form.Encode()), user)
	rec := httptest.NewRecorder()

	// Form re-renders go through the template engine, which may panic in tests.
	func() {
		defer func() { _ = recover() }()
		hf(rec, req)
	}()
	return rec
}

func newHandler(p *memProfiles, u *memUsers) *Handler {
	logger := zap.NewNop()
	return NewHandler(p, u, uierrors.NewErrorLogger(logger), logger)
}

func TestParseProfile_Valid(t *testing.T) {
	p, errs := parseProfile(valuesFromForm(validForm()))
	require.Empty(t, errs)
	assert.Equal(t, "Ada Lovelace", p.DisplayName)
	assert.Equal(t, "+1 555 0100", p.PhoneNumber)
	assert.Equal(t, "female", p.Gender)
	assert.Equal(t, 36, p.Age)
	assert.Equal(t, 58.5, p.Weight)
	assert.True(t, p.IsComplete())
}

func TestParseProfile_Errors(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{"phone_number", "  "},
		{"country", ""},
		{"gender", "robot"},
		{"age", "abc"},
		{"age", "0"},
		{"age", "200"},
		{"weight", "-3"},
		{"height", "tall"},
		{"activity", "extreme"},
	}
	for _, tc := range tests {
		t.Run(tc.field+"="+tc.value, func(t *testing.T) {
			f := validForm()
			f.Set(tc.field, tc.value)
			_, errs := parseProfile(valuesFromForm(f))
			assert.Contains(t, errs, tc.field)
			assert.Len(t, errs, 1)
		})
	}
}

func TestParseProfile_StripsMarkup(t *testing.T) {
	f := validForm()
	f.Set("display_name", "<img src=x onerror=alert(1)>Ada")
	p, errs := parseProfile(valuesFromForm(f))
	require.Empty(t, errs)
	assert.Equal(t, "Ada", p.DisplayName)
}

func TestValuesFromProfile_RoundTrip(t *testing.T) {
	src := testutil.CompleteProfile()
	p, errs := parseProfile(valuesFromProfile(&src))
	require.Empty(t, errs)
	assert.Equal(t, src.Age, p.Age)
	assert.Equal(t, src.Weight, p.Weight)
	assert.Equal(t, src.Height, p.Height)
	assert.Equal(t, formValues{}, valuesFromProfile(nil))
}

func TestHandleOnboarding_SavesAndGoesToDashboard(t *testing.T) {
	profiles := &memProfiles{saved: map[primitive.ObjectID]models.UserProfile{}}
	h := newHandler(profiles, &memUsers{})
	user := testutil.RegularUser()

	rec := post(t, h.HandleOnboarding, "/onboarding", validForm(), user)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	uid, _ := primitive.ObjectIDFromHex(user.ID)
	saved, ok := profiles.saved[uid]
	require.True(t, ok)
	assert.True(t, saved.IsComplete())
}

func TestHandleEdit_RedirectsBackToForm(t *testing.T) {
	profiles := &memProfiles{saved: map[primitive.ObjectID]models.UserProfile{}}
	h := newHandler(profiles, &memUsers{})

	rec := post(t, h.HandleEdit, "/user-form", validForm(), testutil.RegularUser())

	assert.Equal(t, "/user-form?success=profile", rec.Header().Get("Location"))
}

func TestHandleSave_InvalidDoesNotSave(t *testing.T) {
	profiles := &memProfiles{saved: map[primitive.ObjectID]models.UserProfile{}}
	h := newHandler(profiles, &memUsers{})
	f := validForm()
	f.Del("weight")

	rec := post(t, h.HandleOnboarding, "/onboarding", f, testutil.RegularUser())

	assert.Empty(t, profiles.saved)
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
}

func TestHandleSave_StoreFailure(t *testing.T) {
	profiles := &memProfiles{saved: map[primitive.ObjectID]models.UserProfile{}, saveErr: errors.New("write failed")}
	h := newHandler(profiles, &memUsers{})

	rec := post(t, h.HandleOnboarding, "/onboarding", validForm(), testutil.RegularUser())

	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
}

func TestHandleChangePassword(t *testing.T) {
	hash, err := authutil.HashPassword("first-secret")
	require.NoError(t, err)

	form := url.Values{
		"current_password": {"first-secret"},
		"new_password":     {"second-secret"},
		"confirm_password": {"second-secret"},
	}

	t.Run("success", func(t *testing.T) {
		users := &memUsers{user: &models.User{AuthMethod: models.AuthMethodPassword, PasswordHash: &hash}}
		h := newHandler(&memProfiles{saved: map[primitive.ObjectID]models.UserProfile{}}, users)

		rec := post(t, h.HandleChangePassword, "/user-form/password", form, testutil.RegularUser())

		assert.Equal(t, "/user-form?success=password", rec.Header().Get("Location"))
		require.Len(t, users.hashes, 1)
		assert.True(t, authutil.CheckPassword("second-secret", users.hashes[0]))
	})

	t.Run("wrong current password", func(t *testing.T) {
		users := &memUsers{user: &models.User{AuthMethod: models.AuthMethodPassword, PasswordHash: &hash}}
		h := newHandler(&memProfiles{saved: map[primitive.ObjectID]models.UserProfile{}}, users)
		bad := url.Values{"current_password": {"nope"}, "new_password": {"second-secret"}, "confirm_password": {"second-secret"}}

		post(t, h.HandleChangePassword, "/user-form/password", bad, testutil.RegularUser())
		assert.Empty(t, users.hashes)
	})

	t.Run("google account", func(t *testing.T) {
		users := &memUsers{user: &models.User{AuthMethod: models.AuthMethodGoogle}}
		h := newHandler(&memProfiles{saved: map[primitive.ObjectID]models.UserProfile{}}, users)

		post(t, h.HandleChangePassword, "/user-form/password", form, testutil.RegularUser())
		assert.Empty(t, users.hashes)
	})
}

func TestServeForm_Unauthenticated(t *testing.T) {
	h := newHandler(&memProfiles{saved: map[primitive.ObjectID]models.UserProfile{}}, &memUsers{})
	rec := httptest.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.ServeOnboarding(rec, httptest.NewRequest(http.MethodGet, "/onboarding", strings.NewReader("")))
	}()
}
