package storage

import (
	"fmt"

	"github.com/MegaGrindStone/skyqa"
)

// objectFromProjection decodes a {name, type, distance} row of a graph store.
// A null distance stays nil so that the context builder reports it instead of printing zero.
func objectFromProjection(values map[string]any) (skyqa.SkyObject, error) {
	name, ok := values["name"].(string)
	if !ok {
		return skyqa.SkyObject{}, fmt.Errorf("invalid name type, got %T, want string", values["name"])
	}
	typ, _ := values["type"].(string)

	distance, err := optionalNumber(values["distance"])
	if err != nil {
		return skyqa.SkyObject{}, fmt.Errorf("invalid distance of %q: %w", name, err)
	}

	return skyqa.SkyObject{
		Name:       name,
		Type:       typ,
		DistanceLy: distance,
	}, nil
}

// objectProperties flattens obj into node properties. Absent attributes are left out.
func objectProperties(obj skyqa.SkyObject) map[string]any {
	props := map[string]any{
		"name": obj.Name,
		"type": obj.Type,
	}
	if obj.DistanceLy != nil {
		props["distance_from_earth_ly"] = *obj.DistanceLy
	}
	if obj.SizeKm != nil {
		props["size_km"] = *obj.SizeKm
	}
	if obj.MassKg != nil {
		props["mass_kg"] = *obj.MassKg
	}
	if obj.Coordinates != nil {
		props["right_ascension"] = obj.Coordinates.RA
		props["declination"] = obj.Coordinates.Dec
	}
	return props
}

func optionalNumber(v any) (*float64, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return &n, nil
	case float32:
		f := float64(n)
		return &f, nil
	case int64:
		f := float64(n)
		return &f, nil
	case int32:
		f := float64(n)
		return &f, nil
	case int:
		f := float64(n)
		return &f, nil
	default:
		return nil, fmt.Errorf("got %T, want a number", v)
	}
}
