package skyqa

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"
)

type factsTemplateData struct {
	Name     string
	Type     string
	Distance string
	Size     string
	Mass     string
	RA       string
	Dec      string
}

const fullFactsTemplate = `{{.Name}} ist ein {{.Type}}. ` +
	`Es ist {{.Distance}} Lichtjahre von der Erde entfernt. ` +
	`Seine Größe beträgt {{.Size}} km und seine Masse beträgt {{.Mass}} kg. ` +
	`Seine Koordinaten sind RA: {{.RA}}, DEC: {{.Dec}}.`

const briefFactsTemplate = "Bitte beantworte die folgende Frage kurz und präzise basierend auf den nachfolgenden Fakten:\n\n" +
	`{{.Name}} ist ein {{.Type}}. ` +
	`Es ist {{.Distance}} Lichtjahre von der Erde entfernt.`

var (
	fullFacts  = template.Must(template.New("full-facts").Option("missingkey=error").Parse(fullFactsTemplate))
	briefFacts = template.Must(template.New("brief-facts").Option("missingkey=error").Parse(briefFactsTemplate))
)

// BuildContext renders the facts of obj into the paragraph handed to the reader.
//
// Objects carrying size, mass or coordinates use the full template, which needs every attribute.
// Objects limited to the graph projection use the brief template, prefixed with an instruction to
// answer concisely. A referenced attribute that is missing yields a *MissingFieldError.
func BuildContext(obj SkyObject) (string, error) {
	data, err := briefFactsData(obj)
	if err != nil {
		return "", err
	}

	tmpl := briefFacts
	if obj.Complete() {
		tmpl = fullFacts
		if obj.SizeKm == nil {
			return "", &MissingFieldError{Field: "size_km", Object: obj.Name}
		}
		if obj.MassKg == nil {
			return "", &MissingFieldError{Field: "mass_kg", Object: obj.Name}
		}
		if obj.Coordinates == nil {
			return "", &MissingFieldError{Field: "coordinates", Object: obj.Name}
		}
		if obj.Coordinates.RA == "" {
			return "", &MissingFieldError{Field: "coordinates.ra", Object: obj.Name}
		}
		if obj.Coordinates.Dec == "" {
			return "", &MissingFieldError{Field: "coordinates.dec", Object: obj.Name}
		}
		data.Size = FormatNumber(*obj.SizeKm)
		data.Mass = FormatNumber(*obj.MassKg)
		data.RA = obj.Coordinates.RA
		data.Dec = obj.Coordinates.Dec
	}

	buf := strings.Builder{}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func briefFactsData(obj SkyObject) (factsTemplateData, error) {
	if obj.Name == "" {
		return factsTemplateData{}, &MissingFieldError{Field: "name"}
	}
	if obj.Type == "" {
		return factsTemplateData{}, &MissingFieldError{Field: "type", Object: obj.Name}
	}
	if obj.DistanceLy == nil {
		return factsTemplateData{}, &MissingFieldError{Field: "distance_from_earth_ly", Object: obj.Name}
	}
	return factsTemplateData{
		Name:     obj.Name,
		Type:     obj.Type,
		Distance: FormatNumber(*obj.DistanceLy),
	}, nil
}

// FormatNumber renders f the way the facts paragraphs print numbers: shortest round-trip digits,
// plain decimal for ordinary magnitudes and exponent form below 1e-4 or from 1e16 on.
func FormatNumber(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
