package storage

import (
	"context"
	"strings"

	"github.com/MegaGrindStone/skyqa"
)

// DefaultObjects returns the built-in catalog, in declaration order.
func DefaultObjects() []skyqa.SkyObject {
	return []skyqa.SkyObject{
		{
			Name:        "Sonne",
			Type:        "star",
			DistanceLy:  skyqa.Float(0.00001581),
			SizeKm:      skyqa.Float(1392700),
			MassKg:      skyqa.Float(1.989e30),
			Coordinates: &skyqa.Coordinates{RA: "00h 00m 00s", Dec: `+00° 00' 00"`},
		},
		{
			Name:        "Sirius",
			Type:        "star",
			DistanceLy:  skyqa.Float(8.6),
			SizeKm:      skyqa.Float(1.711e6),
			MassKg:      skyqa.Float(4.018e30),
			Coordinates: &skyqa.Coordinates{RA: "06h 45m 08.9s", Dec: `-16° 42' 58"`},
		},
		{
			Name:        "Andromeda-Galaxie",
			Type:        "galaxy",
			DistanceLy:  skyqa.Float(2537000),
			SizeKm:      skyqa.Float(220000),
			MassKg:      skyqa.Float(1.5e42),
			Coordinates: &skyqa.Coordinates{RA: "00h 42m 44.3s", Dec: `+41° 16' 09"`},
		},
		{
			Name:        "Orion-Nebel",
			Type:        "nebula",
			DistanceLy:  skyqa.Float(1344),
			SizeKm:      skyqa.Float(24),
			MassKg:      skyqa.Float(2e31),
			Coordinates: &skyqa.Coordinates{RA: "05h 35m 17.3s", Dec: `-05° 23' 28"`},
		},
		{
			Name:        "Jupiter",
			Type:        "planet",
			DistanceLy:  skyqa.Float(0.000082),
			SizeKm:      skyqa.Float(139820),
			MassKg:      skyqa.Float(1.898e27),
			Coordinates: &skyqa.Coordinates{RA: "18h 50m 00s", Dec: `-23° 00' 00"`},
		},
	}
}

// Memory is a fixed, read-only catalog held in memory.
type Memory struct {
	objects []skyqa.SkyObject
}

// NewMemory creates a catalog over objects. The slice is copied; the order is kept for ListNames.
func NewMemory(objects []skyqa.SkyObject) Memory {
	return Memory{objects: append([]skyqa.SkyObject(nil), objects...)}
}

// Lookup scans the catalog for name, ignoring case.
func (m Memory) Lookup(_ context.Context, name string) (skyqa.SkyObject, error) {
	for _, obj := range m.objects {
		if strings.EqualFold(obj.Name, name) {
			return obj, nil
		}
	}
	return skyqa.SkyObject{}, skyqa.ErrObjectNotFound
}

// ListNames returns the names in declaration order.
func (m Memory) ListNames(context.Context) ([]string, error) {
	names := make([]string, len(m.objects))
	for i, obj := range m.objects {
		names[i] = obj.Name
	}
	return names, nil
}
