// internal/domain/models/nutrition.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NutritionRecord is one user's nutrient totals for one calendar day.
//
// Date is always formatted yyyy-MM-dd. Any keys beyond the five macros
// (vitamins, minerals, ...) are kept in Micros so they survive a round trip.
type NutritionRecord struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID primitive.ObjectID `bson:"user_id" json:"-"`
	Date   string             `bson:"date" json:"date"`

	Calories float64 `bson:"calories" json:"calories"`
	Protein  float64 `bson:"protein" json:"protein"`
	Fat      float64 `bson:"fat" json:"fat"`
	Carbs    float64 `bson:"carbs" json:"carbs"`
	Fiber    float64 `bson:"fiber" json:"fiber"`

	Micros map[string]interface{} `bson:",inline" json:"micros,omitempty"`

	UpdatedAt time.Time `bson:"updated_at,omitempty" json:"-"`
}

// MacroTotal is the sum shown on the "today's macronutrients" card.
func (n *NutritionRecord) MacroTotal() float64 {
	if n == nil {
		return 0
	}
	return n.Calories + n.Protein + n.Fat + n.Carbs + n.Fiber
}

// MicroValues returns the numeric micronutrient entries, dropping any
// non-numeric keys a client may have stored alongside them.
func (n *NutritionRecord) MicroValues() map[string]float64 {
	out := map[string]float64{}
	if n == nil {
		return out
	}
	for k, v := range n.Micros {
		switch x := v.(type) {
		case float64:
			out[k] = x
		case float32:
			out[k] = float64(x)
		case int32:
			out[k] = float64(x)
		case int64:
			out[k] = float64(x)
		case int:
			out[k] = float64(x)
		}
	}
	return out
}
