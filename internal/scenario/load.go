package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/catalog"
	"github.com/mackim-3768/Aegis-AI-DAS/internal/payload"
)

// presetFile is the on-disk shape shared by YAML and CUE files:
//
//	scenarios:
//	  - id: night-rain
//	    label: Night Rain
//	    overrides:
//	      - tool: get_driving_environment
//	        payload: {weather: rain}
type presetFile struct {
	Scenarios []presetSpec `yaml:"scenarios"`
}

type presetSpec struct {
	ID        string         `yaml:"id"`
	Label     string         `yaml:"label"`
	Overrides []overrideSpec `yaml:"overrides"`
}

type overrideSpec struct {
	Tool    string         `yaml:"tool"`
	Payload map[string]any `yaml:"payload"`
}

// LoadFile reads presets from a .yaml, .yml or .cue file.
//
// Tool names must resolve to CONTEXT tools; anything else is a load error.
// Payload keys are not checked here, unknown keys are dropped when the
// preset is applied.
func LoadFile(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var f presetFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		f, err = decodeYAML(data)
	case ".cue":
		f, err = decodeCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported preset file extension %q (want .yaml, .yml or .cue)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	presets, err := f.presets()
	if err != nil {
		return nil, fmt.Errorf("%s: invalid presets: %w", path, err)
	}
	return presets, nil
}

func decodeYAML(data []byte) (presetFile, error) {
	var f presetFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return presetFile{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return f, nil
}

func decodeCUE(data []byte, path string) (presetFile, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return presetFile{}, fmt.Errorf("failed to compile CUE: %w", err)
	}

	list := value.LookupPath(cue.ParsePath("scenarios"))
	if !list.Exists() {
		return presetFile{}, nil
	}
	iter, err := list.List()
	if err != nil {
		return presetFile{}, fmt.Errorf("scenarios: %w", err)
	}

	var f presetFile
	for i := 0; iter.Next(); i++ {
		spec, err := cuePreset(iter.Value())
		if err != nil {
			return presetFile{}, fmt.Errorf("scenarios[%d]: %w", i, err)
		}
		f.Scenarios = append(f.Scenarios, spec)
	}
	return f, nil
}

func cuePreset(v cue.Value) (presetSpec, error) {
	var spec presetSpec
	var err error

	if spec.ID, err = cueString(v, "id"); err != nil {
		return presetSpec{}, err
	}
	if spec.Label, err = cueString(v, "label"); err != nil {
		return presetSpec{}, err
	}

	overrides := v.LookupPath(cue.ParsePath("overrides"))
	if !overrides.Exists() {
		return spec, nil
	}
	iter, err := overrides.List()
	if err != nil {
		return presetSpec{}, fmt.Errorf("overrides: %w", err)
	}
	for i := 0; iter.Next(); i++ {
		item := iter.Value()
		tool, err := cueString(item, "tool")
		if err != nil {
			return presetSpec{}, fmt.Errorf("overrides[%d]: %w", i, err)
		}
		var fields map[string]any
		if p := item.LookupPath(cue.ParsePath("payload")); p.Exists() {
			converted, err := cueToAny(p)
			if err != nil {
				return presetSpec{}, fmt.Errorf("overrides[%d].payload: %w", i, err)
			}
			m, ok := converted.(map[string]any)
			if !ok {
				return presetSpec{}, fmt.Errorf("overrides[%d].payload: must be a struct", i)
			}
			fields = m
		}
		spec.Overrides = append(spec.Overrides, overrideSpec{Tool: tool, Payload: fields})
	}
	return spec, nil
}

// cueString reads an optional string field.
func cueString(v cue.Value, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return s, nil
}

// cueToAny converts a concrete CUE value into plain Go values.
func cueToAny(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		var out []any
		for iter.Next() {
			item, err := cueToAny(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		out := map[string]any{}
		for iter.Next() {
			item, err := cueToAny(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", iter.Label(), err)
			}
			out[iter.Label()] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value is not concrete (kind %v)", v.IncompleteKind())
	}
}

// presets validates the decoded file and converts it.
func (f presetFile) presets() ([]Preset, error) {
	seen := make(map[ID]bool, len(f.Scenarios))
	out := make([]Preset, 0, len(f.Scenarios))

	for i, spec := range f.Scenarios {
		if spec.ID == "" {
			return nil, fmt.Errorf("scenarios[%d]: id is required", i)
		}
		id := Normalize(spec.ID)
		if seen[id] {
			return nil, fmt.Errorf("scenarios[%d]: duplicate id %q", i, id)
		}
		seen[id] = true

		if len(spec.Overrides) == 0 {
			return nil, fmt.Errorf("scenarios[%d] (%s): overrides list is required and must be non-empty", i, id)
		}

		p := Preset{ID: id, Label: spec.Label}
		if p.Label == "" {
			p.Label = string(id)
		}
		for j, ov := range spec.Overrides {
			tool, ok := catalog.Resolve(ov.Tool)
			if !ok {
				return nil, fmt.Errorf("scenarios[%d].overrides[%d]: unknown tool %q", i, j, ov.Tool)
			}
			if tool.Kind() != catalog.Context {
				return nil, fmt.Errorf("scenarios[%d].overrides[%d]: %s is not a CONTEXT tool", i, j, ov.Tool)
			}
			fields, err := payload.MapFromAny(ov.Payload)
			if err != nil {
				return nil, fmt.Errorf("scenarios[%d].overrides[%d].payload: %w", i, j, err)
			}
			p.Overrides = append(p.Overrides, Override{Tool: tool, Payload: fields})
		}
		out = append(out, p)
	}
	return out, nil
}
