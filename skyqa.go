// Package skyqa answers questions about a small catalog of sky objects. It finds the object a
// question refers to, renders the object's facts into a short context paragraph and lets an
// extractive reader pull the answer span out of that paragraph.
package skyqa

import (
	"context"
	"fmt"
	"strings"
)

// Catalog defines the read-only access to the known sky objects.
// It is implemented by the in-memory table and by every store in the storage package.
type Catalog interface {
	NameLister
	// Lookup returns the object whose name equals name, ignoring case.
	// It returns ErrObjectNotFound when no such object exists.
	Lookup(ctx context.Context, name string) (SkyObject, error)
}

// NameLister provides the ordered list of known object names.
// Stores return the names in ascending lexicographic order, the in-memory catalog in declaration order.
type NameLister interface {
	ListNames(ctx context.Context) ([]string, error)
}

// Reader defines the extractive question answering capability. Given a question and a context,
// it returns a span copied from the context together with a confidence score.
type Reader interface {
	Read(ctx context.Context, question, context string) (Answer, error)
}

// Answer is the result of a Reader.
type Answer struct {
	Text  string
	Score float64
}

// Coordinates holds right ascension and declination as display strings.
type Coordinates struct {
	RA  string `json:"ra" yaml:"ra"`
	Dec string `json:"dec" yaml:"dec"`
}

// SkyObject represents an entry of the catalog.
// Graph stores only project name, type and distance, so every other attribute is optional.
type SkyObject struct {
	Name        string       `json:"name" yaml:"name"`
	Type        string       `json:"type" yaml:"type"`
	DistanceLy  *float64     `json:"distance_from_earth_ly,omitempty" yaml:"distance_from_earth_ly"`
	SizeKm      *float64     `json:"size_km,omitempty" yaml:"size_km"`
	MassKg      *float64     `json:"mass_kg,omitempty" yaml:"mass_kg"`
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates"`
}

// Float returns a pointer to f. It is meant for building SkyObject literals.
func Float(f float64) *float64 {
	return &f
}

// Complete reports whether the object carries any attribute beyond the graph projection.
func (o SkyObject) Complete() bool {
	return o.SizeKm != nil || o.MassKg != nil || o.Coordinates != nil
}

// Validate checks the invariants of a catalog entry: a non-empty name and type,
// and non-negative numeric attributes.
func (o SkyObject) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return &MissingFieldError{Field: "name"}
	}
	if strings.TrimSpace(o.Type) == "" {
		return &MissingFieldError{Field: "type", Object: o.Name}
	}
	fields := []struct {
		name string
		v    *float64
	}{
		{"distance_from_earth_ly", o.DistanceLy},
		{"size_km", o.SizeKm},
		{"mass_kg", o.MassKg},
	}
	for _, f := range fields {
		if f.v != nil && *f.v < 0 {
			return fmt.Errorf("%s of %q is negative: %v", f.name, o.Name, *f.v)
		}
	}
	return nil
}

const (
	// MsgNoObjectRecognized is answered when the question names no known object.
	MsgNoObjectRecognized = "Ich konnte kein bekanntes Himmelsobjekt in der Frage finden."
	// MsgNoInformation is answered when a recognized object is missing from the catalog.
	MsgNoInformation = "Ich habe keine Informationen zu diesem Himmelsobjekt."
)
