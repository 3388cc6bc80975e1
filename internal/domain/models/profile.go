// internal/domain/models/profile.go
package models

// UserProfile holds the user attributes that gate access to the dashboard.
//
// The bson keys are camelCase to match documents written by the web client.
type UserProfile struct {
	DisplayName string  `bson:"displayName,omitempty" json:"displayName,omitempty"`
	PhoneNumber string  `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Country     string  `bson:"country,omitempty" json:"country,omitempty"`
	Gender      string  `bson:"gender,omitempty" json:"gender,omitempty"`
	Age         int     `bson:"age,omitempty" json:"age,omitempty"`
	Weight      float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Height      float64 `bson:"height,omitempty" json:"height,omitempty"`
	Activity    string  `bson:"activity,omitempty" json:"activity,omitempty"`
}

// RequiredProfileFields lists, in display order, the fields that must be
// present for a profile to count as complete.
var RequiredProfileFields = []string{
	"phoneNumber",
	"country",
	"gender",
	"age",
	"weight",
	"height",
	"activity",
}

// MissingFields returns the required fields that are empty (zero valued).
func (p UserProfile) MissingFields() []string {
	present := map[string]bool{
		"phoneNumber": p.PhoneNumber != "",
		"country":     p.Country != "",
		"gender":      p.Gender != "",
		"age":         p.Age != 0,
		"weight":      p.Weight != 0,
		"height":      p.Height != 0,
		"activity":    p.Activity != "",
	}

	var missing []string
	for _, f := range RequiredProfileFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsComplete reports whether every required field is filled in.
func (p UserProfile) IsComplete() bool {
	return len(p.MissingFields()) == 0
}
