package storage

import (
	"testing"

	"github.com/MegaGrindStone/skyqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectFromProjection(t *testing.T) {
	t.Run("Float distance", func(t *testing.T) {
		obj, err := objectFromProjection(map[string]any{"name": "Sirius", "type": "star", "distance": 8.6})
		require.NoError(t, err)
		assert.Equal(t, "Sirius", obj.Name)
		assert.Equal(t, "star", obj.Type)
		require.NotNil(t, obj.DistanceLy)
		assert.InDelta(t, 8.6, *obj.DistanceLy, 1e-9)
	})

	t.Run("Integer distance", func(t *testing.T) {
		obj, err := objectFromProjection(map[string]any{"name": "Orion-Nebel", "type": "nebula", "distance": int64(1344)})
		require.NoError(t, err)
		require.NotNil(t, obj.DistanceLy)
		assert.Equal(t, 1344.0, *obj.DistanceLy)
	})

	t.Run("Null distance stays absent", func(t *testing.T) {
		obj, err := objectFromProjection(map[string]any{"name": "Jupiter", "type": "planet", "distance": nil})
		require.NoError(t, err)
		assert.Nil(t, obj.DistanceLy)

		_, err = skyqa.BuildContext(obj)
		var missing *skyqa.MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "distance_from_earth_ly", missing.Field)
	})

	t.Run("Invalid name", func(t *testing.T) {
		_, err := objectFromProjection(map[string]any{"name": 42})
		assert.Error(t, err)
	})

	t.Run("Invalid distance", func(t *testing.T) {
		_, err := objectFromProjection(map[string]any{"name": "Sonne", "distance": "far"})
		assert.Error(t, err)
	})
}

func TestObjectProperties(t *testing.T) {
	props := objectProperties(DefaultObjects()[1])
	assert.Equal(t, map[string]any{
		"name":                   "Sirius",
		"type":                   "star",
		"distance_from_earth_ly": 8.6,
		"size_km":                1.711e6,
		"mass_kg":                4.018e30,
		"right_ascension":        "06h 45m 08.9s",
		"declination":            `-16° 42' 58"`,
	}, props)

	brief := objectProperties(skyqa.SkyObject{Name: "Sirius", Type: "star"})
	assert.Equal(t, map[string]any{"name": "Sirius", "type": "star"}, brief)
}
