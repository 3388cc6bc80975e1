package authgoogle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/nutrihub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type memStates struct {
	returns map[string]string
}

func (m *memStates) Save(_ context.Context, state, returnURL string, _ time.Time) error {
	m.returns[state] = returnURL
	return nil
}

func (m *memStates) Validate(_ context.Context, state string) (string, bool, error) {
	ret, ok := m.returns[state]
	delete(m.returns, state)
	return ret, ok, nil
}

type memUsers struct {
	users  []*models.User
	linked map[primitive.ObjectID]string
}

func (m *memUsers) GetByGoogleSub(_ context.Context, sub string) (*models.User, error) {
	for _, u := range m.users {
		if u.GoogleSub != nil && *u.GoogleSub == sub {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	m.users = append(m.users, &u)
	return u, nil
}

func (m *memUsers) LinkGoogle(_ context.Context, id primitive.ObjectID, sub string) error {
	m.linked[id] = sub
	return nil
}

type memSigner struct{ ids []string }

func (s *memSigner) SignIn(_ http.ResponseWriter, _ *http.Request, id string) error {
	s.ids = append(s.ids, id)
	return nil
}

type fixture struct {
	h      *Handler
	states *memStates
	users  *memUsers
	signer *memSigner
}

func newFixture(gu *googleUserInfo) *fixture {
	f := &fixture{
		states: &memStates{returns: map[string]string{}},
		users:  &memUsers{linked: map[primitive.ObjectID]string{}},
		signer: &memSigner{},
	}
	f.h = NewHandler(f.users, f.states, f.signer, "client-id", "client-secret", "https://nutrihub.test", zap.NewNop())
	f.h.identify = func(context.Context, string) (*googleUserInfo, error) { return gu, nil }
	return f
}

func (f *fixture) callback(t *testing.T, state string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.h.ServeCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback?state="+state+"&code=abc", nil))
	return rec
}

func TestServeLogin_NotConfigured(t *testing.T) {
	f := newFixture(nil)
	f.h.ClientID = ""

	rec := httptest.NewRecorder()
	f.h.ServeLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?error=google_not_configured", rec.Header().Get("Location"))
}

func TestServeLogin_RedirectsToGoogle(t *testing.T) {
	f := newFixture(nil)

	rec := httptest.NewRecorder()
	f.h.ServeLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/google?return=/dashboard", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", loc.Host)
	assert.Equal(t, "https://nutrihub.test/auth/google/callback", loc.Query().Get("redirect_uri"))

	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "/dashboard", f.states.returns[state])
}

func TestServeCallback_InvalidState(t *testing.T) {
	f := newFixture(&googleUserInfo{ID: "g1", Email: "a@example.com", EmailVerified: true})

	rec := f.callback(t, "forged")

	assert.Equal(t, "/login?error=invalid_state", rec.Header().Get("Location"))
	assert.Empty(t, f.signer.ids)
}

func TestServeCallback_GoogleDenied(t *testing.T) {
	f := newFixture(nil)
	rec := httptest.NewRecorder()
	f.h.ServeCallback(rec, httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied", nil))
	assert.Equal(t, "/login?error=google_denied", rec.Header().Get("Location"))
}

func TestServeCallback_NewUserGoesToOnboarding(t *testing.T) {
	f := newFixture(&googleUserInfo{ID: "g1", Email: "Ada@Example.com", EmailVerified: true, Name: "Ada"})
	f.states.returns["s1"] = "/dashboard"

	rec := f.callback(t, "s1")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/onboarding", rec.Header().Get("Location"))
	require.Len(t, f.users.users, 1)
	u := f.users.users[0]
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, models.AuthMethodGoogle, u.AuthMethod)
	require.NotNil(t, u.GoogleSub)
	assert.Equal(t, "g1", *u.GoogleSub)
	assert.Equal(t, []string{u.ID.Hex()}, f.signer.ids)

	// State is single use.
	rec = f.callback(t, "s1")
	assert.Equal(t, "/login?error=invalid_state", rec.Header().Get("Location"))
}

func TestServeCallback_LinkedUser(t *testing.T) {
	sub := "g1"
	existing := &models.User{ID: primitive.NewObjectID(), Email: "ada@example.com", AuthMethod: models.AuthMethodGoogle, GoogleSub: &sub}
	f := newFixture(&googleUserInfo{ID: "g1", Email: "ada@example.com", EmailVerified: true})
	f.users.users = append(f.users.users, existing)
	f.states.returns["s1"] = ""

	rec := f.callback(t, "s1")

	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.Equal(t, []string{existing.ID.Hex()}, f.signer.ids)
	assert.Len(t, f.users.users, 1)
}

func TestServeCallback_LinksByVerifiedEmail(t *testing.T) {
	existing := &models.User{ID: primitive.NewObjectID(), Email: "ada@example.com", AuthMethod: models.AuthMethodPassword}
	f := newFixture(&googleUserInfo{ID: "g9", Email: "ada@example.com", EmailVerified: true})
	f.users.users = append(f.users.users, existing)
	f.states.returns["s1"] = ""

	f.callback(t, "s1")

	assert.Equal(t, "g9", f.users.linked[existing.ID])
	assert.Equal(t, []string{existing.ID.Hex()}, f.signer.ids)
}

func TestServeCallback_Rejections(t *testing.T) {
	t.Run("unverified email", func(t *testing.T) {
		f := newFixture(&googleUserInfo{ID: "g2", Email: "x@example.com"})
		f.states.returns["s"] = ""
		rec := f.callback(t, "s")
		assert.Equal(t, "/login?error=unverified_email", rec.Header().Get("Location"))
		assert.Empty(t, f.users.users)
	})

	t.Run("disabled", func(t *testing.T) {
		sub := "g3"
		f := newFixture(&googleUserInfo{ID: "g3", Email: "off@example.com", EmailVerified: true})
		f.users.users = append(f.users.users, &models.User{ID: primitive.NewObjectID(), Email: "off@example.com", GoogleSub: &sub, Status: "disabled"})
		f.states.returns["s"] = ""
		rec := f.callback(t, "s")
		assert.Equal(t, "/login?error=account_disabled", rec.Header().Get("Location"))
		assert.Empty(t, f.signer.ids)
	})
}

func TestFetchGoogleUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/broken") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"123","email":"ada@example.com","verified_email":true,"name":"Ada"}`))
	}))
	defer srv.Close()

	info, err := fetchGoogleUserInfo(context.Background(), srv.Client(), srv.URL+"/userinfo")
	require.NoError(t, err)
	assert.Equal(t, "123", info.ID)
	assert.True(t, info.EmailVerified)

	_, err = fetchGoogleUserInfo(context.Background(), srv.Client(), srv.URL+"/broken")
	assert.Error(t, err)
}

func TestGenerateState_Unique(t *testing.T) {
	a, err := generateState()
	require.NoError(t, err)
	b, err := generateState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}
