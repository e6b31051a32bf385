package reflection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[
    {
        "shader_name": "blur",
        "entry_points": [{"name": "computeMain", "stage": 6}],
        "parameters": [
            {"name": "params", "type": "ConstantBuffer"},
            {"name": "output", "type": "RWTexture2D", "resource": {"shape": "2", "access": "2", "result_type": "vector", "binding": 1, "space": 0}},
            {"name": "input", "type": "Texture2D", "resource": {"shape": "2", "access": "1", "result_type": "vector", "binding": 0, "space": 0}},
            {"name": "lut", "type": "Texture2D", "resource": {"shape": "2", "access": "1", "binding": 0, "space": 1}}
        ]
    },
    {
        "shader_name": "sum",
        "entry_points": [{"name": "main", "stage": 6}],
        "parameters": [
            {"name": "a", "type": "StructuredBuffer", "resource": {"shape": "5", "access": "1", "binding": 2, "space": 0}},
            {"name": "c", "type": "RWStructuredBuffer", "resource": {"shape": "5", "access": "2", "binding": 2, "space": 0}},
            {"name": "b", "type": "StructuredBuffer", "resource": {"shape": "5", "access": "1", "binding": 2, "space": 0}}
        ]
    }
]`

func TestParse(t *testing.T) {
	shaders, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, shaders, 2)

	blur := shaders[0]
	assert.Equal(t, "blur", blur.ShaderName)
	require.Len(t, blur.EntryPoints, 1)
	assert.Equal(t, "compute", StageName(blur.EntryPoints[0].Stage))
	assert.Nil(t, blur.Parameters[0].Resource)
	assert.Equal(t, "vector", blur.Parameters[1].Resource.ResultType)
}

func TestBindingsAreOrdered(t *testing.T) {
	shaders, err := Parse([]byte(sample))
	require.NoError(t, err)

	var names []string
	for _, b := range shaders[0].Bindings() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"input", "output", "lut"}, names)
	assert.Empty(t, shaders[0].Conflicts())
}

func TestConflicts(t *testing.T) {
	shaders, err := Parse([]byte(sample))
	require.NoError(t, err)

	conflicts := shaders[1].Conflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, Conflict{Space: 0, Binding: 2, Names: []string{"a", "b", "c"}}, conflicts[0])
	assert.Equal(t, "space 0 binding 2 shared by [a b c]", conflicts[0].String())
}

func TestStageName(t *testing.T) {
	assert.Equal(t, "vertex", StageName(1))
	assert.Equal(t, "fragment", StageName(5))
	assert.Equal(t, "amplification", StageName(14))
	assert.Equal(t, "stage(99)", StageName(99))
	assert.Equal(t, "stage(-1)", StageName(-1))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	shaders, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, shaders, 2)

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.True(t, os.IsNotExist(err))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"shader_name": "not an array"}`), 0644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, bad)
}
