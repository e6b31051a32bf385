// Package reflection reads the reflection.json the shader compiler writes
// next to its GLSL output.
package reflection

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// FileName is the reflection file inside the compiled shader directory.
const FileName = "reflection.json"

type Resource struct {
	Shape      string `json:"shape"`
	Access     string `json:"access"`
	ResultType string `json:"result_type,omitempty"`
	Binding    int    `json:"binding"`
	Space      int    `json:"space"`
}

type Parameter struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Resource *Resource `json:"resource,omitempty"`
}

type EntryPoint struct {
	Name  string `json:"name"`
	Stage int    `json:"stage"`
}

// Shader is the reflection of one compiled entry point.
type Shader struct {
	ShaderName  string       `json:"shader_name"`
	Parameters  []Parameter  `json:"parameters"`
	EntryPoints []EntryPoint `json:"entry_points"`
}

var stageNames = []string{
	"none", "vertex", "hull", "domain", "geometry", "fragment", "compute",
	"raygeneration", "intersection", "anyhit", "closesthit", "miss",
	"callable", "mesh", "amplification",
}

// StageName names a Slang pipeline stage number.
func StageName(stage int) string {
	if stage >= 0 && stage < len(stageNames) {
		return stageNames[stage]
	}
	return fmt.Sprintf("stage(%d)", stage)
}

func Parse(data []byte) ([]Shader, error) {
	var shaders []Shader
	if err := json.Unmarshal(data, &shaders); err != nil {
		return nil, fmt.Errorf("failed to parse reflection data: %w", err)
	}
	return shaders, nil
}

func Load(path string) ([]Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	shaders, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return shaders, nil
}

// Binding is a resource parameter placed at a descriptor slot.
type Binding struct {
	Space    int
	Binding  int
	Name     string
	Type     string
	Resource Resource
}

// Bindings returns the shader's resource parameters ordered by space, then
// binding, then name.
func (s Shader) Bindings() []Binding {
	var out []Binding
	for _, p := range s.Parameters {
		if p.Resource == nil {
			continue
		}
		out = append(out, Binding{Space: p.Resource.Space, Binding: p.Resource.Binding, Name: p.Name, Type: p.Type, Resource: *p.Resource})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Space != out[j].Space {
			return out[i].Space < out[j].Space
		}
		if out[i].Binding != out[j].Binding {
			return out[i].Binding < out[j].Binding
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Conflict is a descriptor slot claimed by more than one parameter.
type Conflict struct {
	Space   int
	Binding int
	Names   []string
}

func (c Conflict) String() string {
	return fmt.Sprintf("space %d binding %d shared by %v", c.Space, c.Binding, c.Names)
}

// Conflicts reports every (space, binding) pair used by two or more
// resource parameters of the shader.
func (s Shader) Conflicts() []Conflict {
	var out []Conflict
	bindings := s.Bindings()
	for i := 0; i < len(bindings); {
		j := i + 1
		for j < len(bindings) && bindings[j].Space == bindings[i].Space && bindings[j].Binding == bindings[i].Binding {
			j++
		}
		if j-i > 1 {
			c := Conflict{Space: bindings[i].Space, Binding: bindings[i].Binding}
			for _, b := range bindings[i:j] {
				c.Names = append(c.Names, b.Name)
			}
			out = append(out, c)
		}
		i = j
	}
	return out
}
