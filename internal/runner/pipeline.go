package runner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step is a single shell command in the build pipeline.
// The literal {branch} in Run is replaced with the branch under build.
type Step struct {
	Name string `yaml:"name"`
	Run  string `yaml:"run"`
}

// Pipeline is the ordered list of build steps loaded from YAML.
// Steps run sequentially; the first failure stops the build.
type Pipeline struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// ParsePipeline parses YAML content into a Pipeline.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse pipeline: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPipeline reads the pipeline definition file at path.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline: %w", err)
	}
	return ParsePipeline(data)
}

func (p *Pipeline) validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("pipeline must have at least one step")
	}
	for i, s := range p.Steps {
		if s.Run == "" {
			return fmt.Errorf("step %d (%q) has no run command", i+1, s.Name)
		}
	}
	return nil
}
