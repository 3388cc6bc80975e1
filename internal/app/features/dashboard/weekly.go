// internal/app/features/dashboard/weekly.go
package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/nutrihub/internal/app/system/authz"
	"github.com/dalemusser/nutrihub/internal/app/system/calendar"
	"github.com/dalemusser/nutrihub/internal/app/system/timeouts"
	"github.com/dalemusser/nutrihub/internal/domain/models"
	"go.uber.org/zap"
)

// MacroKeys are the series names of the macro chart, in display order.
var MacroKeys = []string{"calories", "protein", "fat", "carbs", "fiber"}

// WeeklySeries is the chart payload: seven days ending at End, each series
// aligned with Days and zero-filled for days without a record.
type WeeklySeries struct {
	End    string               `json:"end"`
	Days   []string             `json:"days"`
	Macros map[string][]float64 `json:"macros,omitempty"`
	Micros map[string][]float64 `json:"micros,omitempty"`
}

// BuildWeekly lays records out over the week ending at end. Records
// outside the week are ignored.
func BuildWeekly(end calendar.Day, recs []models.NutritionRecord) WeeklySeries {
	week := end.Week()
	idx := make(map[string]int, len(week))
	ws := WeeklySeries{
		End:    end.Format(),
		Days:   make([]string, len(week)),
		Macros: make(map[string][]float64, len(MacroKeys)),
		Micros: map[string][]float64{},
	}
	for i, d := range week {
		ws.Days[i] = d.Format()
		idx[d.Format()] = i
	}
	for _, k := range MacroKeys {
		ws.Macros[k] = make([]float64, len(week))
	}

	for i := range recs {
		rec := &recs[i]
		at, ok := idx[rec.Date]
		if !ok {
			continue
		}
		ws.Macros["calories"][at] = rec.Calories
		ws.Macros["protein"][at] = rec.Protein
		ws.Macros["fat"][at] = rec.Fat
		ws.Macros["carbs"][at] = rec.Carbs
		ws.Macros["fiber"][at] = rec.Fiber
		for k, v := range rec.MicroValues() {
			series, ok := ws.Micros[k]
			if !ok {
				series = make([]float64, len(week))
				ws.Micros[k] = series
			}
			series[at] = v
		}
	}
	return ws
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard/weekly?date=&kind= – chart series JSON                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeWeekly(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	_, uid, ok := authz.UserCtx(r)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		return
	}

	end := calendar.ParseOr(strings.TrimSpace(r.URL.Query().Get("date")), h.Deps.today())
	week := end.Week()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "weekly series")
	defer cancel()

	recs, err := h.Deps.Nutrition.Range(ctx, uid, week[0].Format(), end.Format())
	if err != nil {
		h.Log.Warn("weekly series fetch failed",
			zap.String("user_id", uid.Hex()),
			zap.String("end", end.Format()),
			zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "series unavailable"})
		return
	}

	ws := BuildWeekly(end, recs)
	switch r.URL.Query().Get("kind") {
	case "macros":
		ws.Micros = nil
	case "micros":
		ws.Macros = nil
	}
	_ = json.NewEncoder(w).Encode(ws)
}
