package field

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestUpdateStates(t *testing.T) {
	var zero Update[string]
	assert.True(t, zero.IsUnchanged())
	assert.False(t, zero.IsSet())
	assert.False(t, zero.IsClear())

	s := Set("rent")
	v, ok := s.Value()
	assert.True(t, ok)
	assert.Equal(t, "rent", v)
	assert.True(t, s.IsSet())

	c := Clear[string]()
	_, ok = c.Value()
	assert.False(t, ok)
	assert.True(t, c.IsClear())

	assert.True(t, Unchanged[int64]().IsUnchanged())
}

func TestUpdateString(t *testing.T) {
	assert.Equal(t, "Unchanged", Update[int]{}.String())
	assert.Equal(t, "Set(3)", Set(3).String())
	assert.Equal(t, "Clear", Clear[int]().String())
}

type jsonPatch struct {
	Name  Update[string] `json:"name"`
	Memo  Update[string] `json:"memo"`
	Color Update[string] `json:"color"`
}

func TestUnmarshalJSON(t *testing.T) {
	var p jsonPatch
	require.NoError(t, json.Unmarshal([]byte(`{"name": "B", "memo": null}`), &p))

	assert.Equal(t, Set("B"), p.Name)
	assert.True(t, p.Memo.IsClear())
	assert.True(t, p.Color.IsUnchanged())
}

func TestUnmarshalJSONTypeMismatch(t *testing.T) {
	var p jsonPatch
	err := json.Unmarshal([]byte(`{"name": 12}`), &p)
	assert.Error(t, err)
}

type yamlPatch struct {
	Name  Update[string] `yaml:"name"`
	Memo  Update[string] `yaml:"memo"`
	Color Update[string] `yaml:"color"`
	Count Update[int]    `yaml:"count"`
}

func TestUnmarshalYAML(t *testing.T) {
	doc := `
name: B
memo: !clear
count: 4
`
	var p yamlPatch
	require.NoError(t, yaml.Unmarshal([]byte(doc), &p))

	assert.Equal(t, Set("B"), p.Name)
	assert.True(t, p.Memo.IsClear())
	assert.True(t, p.Color.IsUnchanged())
	assert.Equal(t, Set(4), p.Count)
}

func TestUnmarshalYAMLNullIsUnchanged(t *testing.T) {
	var p yamlPatch
	require.NoError(t, yaml.Unmarshal([]byte("memo: null\ncolor: ~\n"), &p))

	assert.True(t, p.Memo.IsUnchanged())
	assert.True(t, p.Color.IsUnchanged())
}
