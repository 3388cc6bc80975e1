// internal/app/features/profile/form.go
package profile

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/nutrihub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/nutrihub/internal/app/system/normalize"
	"github.com/dalemusser/nutrihub/internal/domain/models"
)

// Option is one entry of a select box.
type Option struct {
	Value string
	Label string
}

var genderOptions = []Option{
	{"female", "Female"},
	{"male", "Male"},
	{"other", "Other"},
}

var activityOptions = []Option{
	{"sedentary", "Sedentary"},
	{"light", "Lightly active"},
	{"moderate", "Moderately active"},
	{"active", "Active"},
	{"very_active", "Very active"},
}

// Bounds for the numeric fields.
const (
	maxAge    = 130
	maxWeight = 700.0 // kg
	maxHeight = 300.0 // cm
	maxText   = 100
)

// formValues echoes what the user typed back into the form.
type formValues struct {
	DisplayName string
	PhoneNumber string
	Country     string
	Gender      string
	Age         string
	Weight      string
	Height      string
	Activity    string
}

func valuesFromProfile(p *models.UserProfile) formValues {
	if p == nil {
		return formValues{}
	}
	v := formValues{
		DisplayName: p.DisplayName,
		PhoneNumber: p.PhoneNumber,
		Country:     p.Country,
		Gender:      p.Gender,
		Activity:    p.Activity,
	}
	if p.Age != 0 {
		v.Age = strconv.Itoa(p.Age)
	}
	if p.Weight != 0 {
		v.Weight = strconv.FormatFloat(p.Weight, 'f', -1, 64)
	}
	if p.Height != 0 {
		v.Height = strconv.FormatFloat(p.Height, 'f', -1, 64)
	}
	return v
}

func valuesFromForm(f url.Values) formValues {
	return formValues{
		DisplayName: f.Get("display_name"),
		PhoneNumber: f.Get("phone_number"),
		Country:     f.Get("country"),
		Gender:      f.Get("gender"),
		Age:         strings.TrimSpace(f.Get("age")),
		Weight:      strings.TrimSpace(f.Get("weight")),
		Height:      strings.TrimSpace(f.Get("height")),
		Activity:    f.Get("activity"),
	}
}

func choose(raw string, opts []Option) (string, bool) {
	v := normalize.Choice(raw)
	for _, o := range opts {
		if o.Value == v {
			return v, true
		}
	}
	return "", false
}

func clean(s string) string {
	s = htmlsanitize.PlainText(normalize.Name(s))
	if len(s) > maxText {
		s = s[:maxText]
	}
	return s
}

// parseProfile validates the submitted form. The returned map is keyed by
// form field name and is empty when the profile is acceptable.
func parseProfile(v formValues) (models.UserProfile, map[string]string) {
	errs := map[string]string{}
	p := models.UserProfile{
		DisplayName: clean(v.DisplayName),
		PhoneNumber: htmlsanitize.PlainText(normalize.Phone(v.PhoneNumber)),
		Country:     clean(v.Country),
	}

	if p.PhoneNumber == "" {
		errs["phone_number"] = "Phone number is required."
	}
	if p.Country == "" {
		errs["country"] = "Country is required."
	}

	if g, ok := choose(v.Gender, genderOptions); ok {
		p.Gender = g
	} else {
		errs["gender"] = "Please choose a gender."
	}
	if a, ok := choose(v.Activity, activityOptions); ok {
		p.Activity = a
	} else {
		errs["activity"] = "Please choose an activity level."
	}

	if age, err := strconv.Atoi(v.Age); err != nil || age < 1 || age > maxAge {
		errs["age"] = "Age must be a whole number between 1 and 130."
	} else {
		p.Age = age
	}
	if w, err := strconv.ParseFloat(v.Weight, 64); err != nil || w <= 0 || w > maxWeight {
		errs["weight"] = "Weight must be a positive number of kilograms."
	} else {
		p.Weight = w
	}
	if h, err := strconv.ParseFloat(v.Height, 64); err != nil || h <= 0 || h > maxHeight {
		errs["height"] = "Height must be a positive number of centimetres."
	} else {
		p.Height = h
	}

	return p, errs
}
