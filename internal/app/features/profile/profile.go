// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/nutrihub/internal/app/features/errors"
	profilestore "github.com/dalemusser/nutrihub/internal/app/store/profiles"
	"github.com/dalemusser/nutrihub/internal/app/system/authutil"
	"github.com/dalemusser/nutrihub/internal/app/system/authz"
	"github.com/dalemusser/nutrihub/internal/app/system/timeouts"
	"github.com/dalemusser/nutrihub/internal/app/system/viewdata"
	"github.com/dalemusser/nutrihub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// mode distinguishes first-time onboarding from later edits. Both write the
// same fields; they differ in wording and where the form posts.
type mode struct {
	Path   string
	Title  string
	Intro  string
	Submit string
}

var (
	onboardingMode = mode{
		Path:   "/onboarding",
		Title:  "Complete your profile",
		Intro:  "Tell us a little about yourself to unlock your nutrition dashboard.",
		Submit: "Continue",
	}
	editMode = mode{
		Path:   "/user-form",
		Title:  "Edit profile",
		Intro:  "Keep your details up to date.",
		Submit: "Save",
	}
)

// formData is the view model for the profile form.
type formData struct {
	viewdata.BaseVM
	Mode mode

	Values  formValues
	Errors  map[string]string
	Missing []string

	GenderOptions   []Option
	ActivityOptions []Option

	// Password section (only shown for password accounts on the edit form)
	ShowPasswordSection bool
	PasswordRules       string
	PasswordError       string
	Success             string
}

func (h *Handler) ServeOnboarding(w http.ResponseWriter, r *http.Request) {
	h.serveForm(w, r, onboardingMode)
}

func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	h.serveForm(w, r, editMode)
}

func (h *Handler) HandleOnboarding(w http.ResponseWriter, r *http.Request) {
	h.handleSave(w, r, onboardingMode)
}

func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	h.handleSave(w, r, editMode)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /onboarding, GET /user-form                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) serveForm(w http.ResponseWriter, r *http.Request, m mode) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.Profile(ctx, uid)
	if err != nil && !errors.Is(err, profilestore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "Could not load your profile.", "/")
		return
	}

	data := h.newFormData(ctx, r, uid, m, valuesFromProfile(p))
	if p != nil {
		data.Missing = p.MissingFields()
	}
	switch r.URL.Query().Get("success") {
	case "password":
		data.Success = "Password changed successfully."
	case "profile":
		data.Success = "Profile saved."
	}
	templates.Render(w, r, "profile_form", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /onboarding, POST /user-form                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request, m mode) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", m.Path)
		return
	}

	vals := valuesFromForm(r.PostForm)
	p, errs := parseProfile(vals)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if len(errs) > 0 {
		data := h.newFormData(ctx, r, uid, m, vals)
		data.Errors = errs
		w.WriteHeader(http.StatusUnprocessableEntity)
		templates.Render(w, r, "profile_form", data)
		return
	}

	if err := h.Profiles.Save(ctx, uid, p); err != nil {
		h.ErrLog.LogServerError(w, r, "save profile failed", err, "Could not save your profile.", m.Path)
		return
	}

	h.Log.Info("profile saved",
		zap.String("user_id", uid.Hex()),
		zap.String("form", m.Path))

	if m == onboardingMode {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/user-form?success=profile", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /user-form/password                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/user-form")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	fail := func(msg string) {
		p, _ := h.Profiles.Profile(ctx, uid)
		data := h.newFormData(ctx, r, uid, editMode, valuesFromProfile(p))
		data.PasswordError = msg
		templates.Render(w, r, "profile_form", data)
	}

	if user.AuthMethod != models.AuthMethodPassword {
		fail("Password change is only available for password sign-in.")
		return
	}

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")

	if user.PasswordHash == nil || !authutil.CheckPassword(current, *user.PasswordHash) {
		fail("Current password is incorrect.")
		return
	}
	if err := authutil.ValidatePassword(next); err != nil {
		fail(err.Error())
		return
	}
	if next != r.FormValue("confirm_password") {
		fail("New passwords do not match.")
		return
	}
	if authutil.CheckPassword(next, *user.PasswordHash) {
		fail("New password cannot be the same as your current password.")
		return
	}

	hash, err := authutil.HashPassword(next)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "Failed to update password.", "/user-form")
		return
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "update password failed", err, "Failed to update password.", "/user-form")
		return
	}

	http.Redirect(w, r, "/user-form?success=password", http.StatusSeeOther)
}

func (h *Handler) newFormData(ctx context.Context, r *http.Request, uid primitive.ObjectID, m mode, vals formValues) formData {
	data := formData{
		BaseVM:          viewdata.NewBaseVM(r, m.Title, "/dashboard"),
		Mode:            m,
		Values:          vals,
		Errors:          map[string]string{},
		GenderOptions:   genderOptions,
		ActivityOptions: activityOptions,
		PasswordRules:   authutil.PasswordRules(),
	}
	if m == editMode && h.Users != nil {
		if u, err := h.Users.GetByID(ctx, uid); err == nil {
			data.ShowPasswordSection = u.AuthMethod == models.AuthMethodPassword
		}
	}
	return data
}
