// internal/app/features/dashboard/viewmodel.go
package dashboard

import (
	"net/http"
	"sort"

	"github.com/dalemusser/nutrihub/internal/app/system/calendar"
	"github.com/dalemusser/nutrihub/internal/app/system/viewdata"
	"github.com/dalemusser/nutrihub/internal/domain/models"
	"github.com/gorilla/csrf"
)

// headerVM feeds the profile header: name, phone, today's long date and
// today's record, plus the logout and edit-profile actions.
type headerVM struct {
	Name           string
	Phone          string
	Date           string
	Today          *models.NutritionRecord
	TodayTotal     float64
	EditProfileURL string
	LogoutURL      string
	CSRFToken      string
}

// microVM is one micronutrient row, kept sorted by name for stable output.
type microVM struct {
	Name  string
	Value float64
}

// nutritionVM feeds the nutrition display for the selected date.
type nutritionVM struct {
	ViewID       string
	Data         *models.NutritionRecord
	Micros       []microVM
	SelectedDate string
	SelectedLong string
	Loading      bool
	NextURL      string
	PrevURL      string
	DateURL      string
	PollURL      string
	CSRFToken    string
}

// chartVM feeds one weekly chart widget; the browser loads SeriesURL.
type chartVM struct {
	Kind         string
	Title        string
	SelectedDate string
	SeriesURL    string
}

// chartsVM feeds the chart section. OOB marks it for an out-of-band swap
// when it rides along with the nutrition partial.
type chartsVM struct {
	OOB   bool
	Items []chartVM
}

// navigationVM answers navigation and nutrition polls: the nutrition
// display plus the chart section for the same selected date.
type navigationVM struct {
	Nutrition nutritionVM
	Charts    chartsVM
}

type dashboardData struct {
	viewdata.BaseVM

	ViewID  string
	State   string
	Loading bool
	PollURL string
	Banner  string

	Header    headerVM
	Nutrition nutritionVM
	Charts    chartsVM
}

func viewURL(id string) string { return "/dashboard/views/" + id }

func chartsData(selected calendar.Day, oob bool) chartsVM {
	sel := selected.Format()
	return chartsVM{
		OOB: oob,
		Items: []chartVM{
			{Kind: "macros", Title: "Weekly Macronutrients", SelectedDate: sel, SeriesURL: "/dashboard/weekly?date=" + sel + "&kind=macros"},
			{Kind: "micros", Title: "Weekly Micronutrients", SelectedDate: sel, SeriesURL: "/dashboard/weekly?date=" + sel + "&kind=micros"},
		},
	}
}

func (h *Handler) navigationData(r *http.Request, snap Snapshot) navigationVM {
	return navigationVM{
		Nutrition: h.nutritionData(r, snap),
		Charts:    chartsData(snap.SelectedDate, true),
	}
}

func sortedMicros(rec *models.NutritionRecord) []microVM {
	vals := rec.MicroValues()
	out := make([]microVM, 0, len(vals))
	for k, v := range vals {
		out = append(out, microVM{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (h *Handler) nutritionData(r *http.Request, snap Snapshot) nutritionVM {
	base := viewURL(snap.ID)
	vm := nutritionVM{
		ViewID:       snap.ID,
		SelectedDate: snap.SelectedDate.Format(),
		SelectedLong: snap.SelectedDate.Long(),
		Loading:      snap.Selected.Pending(),
		NextURL:      base + "/next",
		PrevURL:      base + "/prev",
		DateURL:      base + "/date",
		PollURL:      base + "/nutrition",
		CSRFToken:    csrf.Token(r),
	}
	// A failed fetch shows as "no data".
	if snap.Selected.Status == StatusLoaded {
		vm.Data = snap.Selected.Value
		vm.Micros = sortedMicros(vm.Data)
	}
	return vm
}

func (h *Handler) pageData(r *http.Request, snap Snapshot, state State) dashboardData {
	base := viewdata.NewBaseVM(r, "Dashboard", "/")

	data := dashboardData{
		BaseVM:  base,
		ViewID:  snap.ID,
		State:   state.String(),
		Loading: state == StateLoading,
		PollURL: viewURL(snap.ID),
	}
	if state == StateLoading {
		return data
	}

	profile := snap.Profile.Value
	if !profile.Complete {
		data.Banner = IncompleteBanner
	}

	var today *models.NutritionRecord
	if snap.Today.Status == StatusLoaded {
		today = snap.Today.Value
	}
	data.Header = headerVM{
		Name:           profile.DisplayName,
		Phone:          profile.PhoneNumber,
		Date:           snap.TodayDate.Long(),
		Today:          today,
		TodayTotal:     today.MacroTotal(),
		EditProfileURL: EditProfileURL,
		LogoutURL:      "/logout",
		CSRFToken:      base.CSRFToken,
	}
	data.Nutrition = h.nutritionData(r, snap)
	data.Charts = chartsData(snap.SelectedDate, false)
	return data
}
