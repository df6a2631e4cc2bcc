// Package exercise loads the exercise manifest: the exercise's identity,
// whether testwise coverage is enabled for it, and its test cases.
package exercise

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TestType distinguishes behavioral tests (inputs/outputs) from structural
// ones (class/method shape checks).
type TestType string

const (
	Behavioral TestType = "behavioral"
	Structural TestType = "structural"
)

// TestCase is one test of the exercise's test suite.
type TestCase struct {
	ID     int64    `yaml:"id" validate:"required,gt=0"`
	Name   string   `yaml:"name" validate:"required"`
	Active bool     `yaml:"active"`
	Type   TestType `yaml:"type" validate:"omitempty,oneof=behavioral structural"`
}

// Exercise is the manifest of one programming exercise.
type Exercise struct {
	ID               int64      `yaml:"id" validate:"required,gt=0"`
	Title            string     `yaml:"title"`
	TestwiseCoverage bool       `yaml:"testwise_coverage"`
	TestCases        []TestCase `yaml:"test_cases" validate:"dive"`
}

var validate = validator.New()

// Load reads and validates a manifest file.
func Load(path string) (*Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ex, nil
}

// Parse decodes a YAML manifest. Test cases without a type are behavioral.
func Parse(data []byte) (*Exercise, error) {
	var ex Exercise
	if err := yaml.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	for i := range ex.TestCases {
		ex.TestCases[i].Type = TestType(strings.ToLower(string(ex.TestCases[i].Type)))
		if ex.TestCases[i].Type == "" {
			ex.TestCases[i].Type = Behavioral
		}
	}
	if err := validate.Struct(&ex); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	seen := make(map[string]bool, len(ex.TestCases))
	for _, tc := range ex.TestCases {
		if seen[tc.Name] {
			return nil, fmt.Errorf("invalid manifest: duplicate test case %q", tc.Name)
		}
		seen[tc.Name] = true
	}
	return &ex, nil
}

// ActiveTestCases returns the active behavioral test cases in manifest
// order. Only these take part in solution entry generation.
func (e *Exercise) ActiveTestCases() []TestCase {
	var active []TestCase
	for _, tc := range e.TestCases {
		if tc.Active && tc.Type == Behavioral {
			active = append(active, tc)
		}
	}
	return active
}

// TestCaseByName looks up a test case by its name.
func (e *Exercise) TestCaseByName(name string) (TestCase, bool) {
	for _, tc := range e.TestCases {
		if tc.Name == name {
			return tc, true
		}
	}
	return TestCase{}, false
}
