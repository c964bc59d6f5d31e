package matching

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
)

// Weights задает вес каждого критерия подбора.
type Weights struct {
	PropertyType  float64 `json:"property_type"`
	District      float64 `json:"district"`
	Budget        float64 `json:"budget"`
	Rooms         float64 `json:"rooms"`
	Area          float64 `json:"area"`
	Floor         float64 `json:"floor"`
	Elevator      float64 `json:"elevator"`
	RepairState   float64 `json:"repair_state"`
	Furniture     float64 `json:"furniture"`
	Appliances    float64 `json:"appliances"`
	Bathrooms     float64 `json:"bathrooms"`
	Heating       float64 `json:"heating"`
	Parking       float64 `json:"parking"`
	Balconies     float64 `json:"balconies"`
	Amenities     float64 `json:"amenities"`
	Views         float64 `json:"views"`
	NearbyObjects float64 `json:"nearby_objects"`
	Legal         float64 `json:"legal"`

	// Только для домов, коттеджей и таунхаусов.
	Yard      float64 `json:"yard"`
	Garage    float64 `json:"garage"`
	Bathhouse float64 `json:"bathhouse"`
	Pool      float64 `json:"pool"`
}

// DefaultWeights - веса, с которыми работает агентство.
func DefaultWeights() Weights {
	return Weights{
		PropertyType:  10,
		District:      9,
		Budget:        8,
		Rooms:         7,
		Area:          6,
		Floor:         5,
		Elevator:      4,
		RepairState:   5,
		Furniture:     5,
		Appliances:    4,
		Bathrooms:     4,
		Heating:       3,
		Parking:       4,
		Balconies:     3,
		Amenities:     4,
		Views:         3,
		NearbyObjects: 3,
		Legal:         4,
		Yard:          3,
		Garage:        3,
		Bathhouse:     2,
		Pool:          2,
	}
}

// Validate запрещает отрицательные веса, иначе оценка может выйти за [0, 1].
func (w Weights) Validate() error {
	v := reflect.ValueOf(w)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).Float() < 0 {
			return fmt.Errorf("weight %q must not be negative", v.Type().Field(i).Tag.Get("json"))
		}
	}
	return nil
}

// LoadWeightsFromFile читает веса из JSON. Незаданные в файле ключи берутся из DefaultWeights.
func LoadWeightsFromFile(path string) (Weights, error) {
	w := DefaultWeights()
	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return DefaultWeights(), fmt.Errorf("unmarshal weights: %w", err)
	}
	if err := w.Validate(); err != nil {
		return DefaultWeights(), err
	}
	return w, nil
}
