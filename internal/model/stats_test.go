package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewHistogram_LengthMismatch(t *testing.T) {
	_, err := NewHistogram("Year", []interface{}{2016, 2017}, "Count", []interface{}{1})
	require.Error(t, err)

	h, err := NewHistogram("Year", []interface{}{2016}, "Count", []interface{}{1})
	require.NoError(t, err)
	assert.Equal(t, "Year", h.BinLabel)
}

func TestHistogram_MarshalYAML_UsesLabelsAsKeys(t *testing.T) {
	h := Histogram{
		BinLabel: "Genres", Bins: []interface{}{"Drama", "Crime"},
		ValueLabel: "Count", Values: []interface{}{3, 1},
	}
	data, err := yaml.Marshal(h)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, []interface{}{"Drama", "Crime"}, doc["Genres"])
	assert.Equal(t, []interface{}{3, 1}, doc["Count"])
}

func TestHistogram_MarshalJSON(t *testing.T) {
	h := Histogram{
		BinLabel: "Rating", Bins: []interface{}{0.5, 1.0},
		ValueLabel: "Count", Values: []interface{}{0, 2},
	}
	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Rating":[0.5,1.0],"Count":[0,2]}`, string(data))

	// 零值直方图输出null
	data, err = json.Marshal(Histogram{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestMovie_DecadeLabel(t *testing.T) {
	m := &Movie{Year: 2016}
	assert.Equal(t, "2010s", m.DecadeLabel())
	m.Year = 1999
	assert.Equal(t, "1990s", m.DecadeLabel())
}

func TestMovie_WatchedYear(t *testing.T) {
	m := &Movie{WatchedDate: "2021-05-01"}
	y, ok := m.WatchedYear()
	require.True(t, ok)
	assert.Equal(t, 2021, y)

	_, ok = (&Movie{}).WatchedYear()
	assert.False(t, ok)
}

func TestMultiValueRoundtrip(t *testing.T) {
	vals := []string{"Drama", "Science Fiction"}
	assert.Equal(t, "Drama.Science Fiction", JoinMultiValue(vals))
	assert.Equal(t, vals, SplitMultiValue("Drama.Science Fiction"))
	assert.Nil(t, SplitMultiValue(""))
}
