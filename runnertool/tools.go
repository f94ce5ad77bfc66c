// Package runnertool builds the runner tool descriptors from a
// declarative variant table. The table (variants.yaml) carries identity,
// argument schemas, environment selectors, and secrets; payloads.go
// contributes the payload pipeline for each entry. A single generic
// factory turns table records into validated spec.Tool values.
package runnertool

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sandboxkit/runnertools-go/internal/shellgen"
	"github.com/sandboxkit/runnertools-go/spec"
)

// DefaultNamespace is the registry namespace the tool family is
// published under.
const DefaultNamespace = "python_script_runner"

//go:embed variants.yaml
var variantsYAML []byte

type toolDef struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Image       string     `yaml:"image"`
	Icon        string     `yaml:"icon"`
	Secrets     []string   `yaml:"secrets"`
	Args        []spec.Arg `yaml:"args"`
}

type variantsFile struct {
	Tools []toolDef `yaml:"tools"`
}

var loadTools = sync.OnceValues(func() ([]spec.Tool, error) {
	var vf variantsFile
	if err := yaml.Unmarshal(variantsYAML, &vf); err != nil {
		return nil, fmt.Errorf("parse variants table: %w", err)
	}
	if len(vf.Tools) == 0 {
		return nil, fmt.Errorf("%w: empty variants table", spec.ErrInvalidToolDef)
	}

	out := make([]spec.Tool, 0, len(vf.Tools))
	for _, def := range vf.Tools {
		t, err := buildTool(def)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
})

// buildTool is the one factory for every variant: table record in,
// validated descriptor out.
func buildTool(def toolDef) (spec.Tool, error) {
	builder, ok := payloadBuilders[def.Name]
	if !ok {
		return spec.Tool{}, fmt.Errorf("%w: no payload builder for %q", spec.ErrInvalidToolDef, def.Name)
	}
	return spec.NewTool(spec.Tool{
		Name:        def.Name,
		Description: def.Description,
		Content:     shellgen.Script(builder()...),
		Args:        def.Args,
		Image:       def.Image,
		IconURL:     def.Icon,
		Type:        "docker",
		WithFiles:   commonFiles(),
		Env:         commonEnv(),
		Secrets:     def.Secrets,
	})
}

// Tools returns the full descriptor list in table order. The table is
// parsed and validated once per process.
func Tools() ([]spec.Tool, error) {
	tools, err := loadTools()
	if err != nil {
		return nil, err
	}
	return append([]spec.Tool(nil), tools...), nil
}

// Tool returns one descriptor by name.
func Tool(name string) (spec.Tool, error) {
	tools, err := loadTools()
	if err != nil {
		return spec.Tool{}, err
	}
	for _, t := range tools {
		if t.Name == name {
			return t, nil
		}
	}
	return spec.Tool{}, fmt.Errorf("%w: %s", spec.ErrToolNotFound, name)
}

// commonEnv is merged into every descriptor of the family.
func commonEnv() map[string]string {
	return map[string]string{
		"PYTHONUNBUFFERED":              "1",
		"PIP_DISABLE_PIP_VERSION_CHECK": "1",
	}
}

// commonFiles are fixed auxiliary files shared by the family.
func commonFiles() []spec.FileSpec {
	return []spec.FileSpec{
		{
			Destination: "/opt/runnertools/common.sh",
			Content: `# Shared helpers available to runner payloads.
log() {
    printf '%s\n' "$*"
}
`,
		},
	}
}
