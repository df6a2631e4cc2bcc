package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/jensroland/git-solentry/internal/lineset"
)

// Coverage file formats understood by LoadCoverageReport.
const (
	FormatEntries  = "entries"
	FormatTestwise = "testwise"
)

// LoadDiffReport reads a JSON diff report from disk.
func LoadDiffReport(file string) (*DiffReport, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read diff report: %w", err)
	}
	var r DiffReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse diff report %s: %w", file, err)
	}
	for i := range r.Entries {
		r.Entries[i].FilePath = NormalizePath(r.Entries[i].FilePath)
		r.Entries[i].PreviousFilePath = NormalizePath(r.Entries[i].PreviousFilePath)
	}
	if err := Validate(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadCoverageReport reads a coverage report in the given format.
// sourceRoot is prefixed to file paths of testwise reports, whose paths
// are relative to the source folder rather than the repository root.
func LoadCoverageReport(file, format, sourceRoot string) (*CoverageReport, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read coverage report: %w", err)
	}

	var r *CoverageReport
	switch format {
	case "", FormatEntries:
		r = &CoverageReport{}
		if err := json.Unmarshal(data, r); err != nil {
			return nil, fmt.Errorf("parse coverage report %s: %w", file, err)
		}
		for i := range r.Entries {
			r.Entries[i].FilePath = NormalizePath(r.Entries[i].FilePath)
		}
	case FormatTestwise:
		r, err = ParseTestwiseCoverage(data, sourceRoot)
		if err != nil {
			return nil, fmt.Errorf("parse coverage report %s: %w", file, err)
		}
	default:
		return nil, fmt.Errorf("unknown coverage format %q", format)
	}

	if err := Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

type testwiseReport struct {
	Tests []struct {
		UniformPath string `json:"uniformPath"`
		Paths       []struct {
			Path  string `json:"path"`
			Files []struct {
				FileName     string `json:"fileName"`
				CoveredLines string `json:"coveredLines"`
			} `json:"files"`
		} `json:"paths"`
	} `json:"tests"`
}

// ParseTestwiseCoverage converts a Teamscale testwise coverage report
// (tiaTests.json) into coverage entries. The test case name is the last
// segment of the uniform path without a trailing "()".
func ParseTestwiseCoverage(data []byte, sourceRoot string) (*CoverageReport, error) {
	var tw testwiseReport
	if err := json.Unmarshal(data, &tw); err != nil {
		return nil, err
	}

	r := &CoverageReport{}
	for _, test := range tw.Tests {
		name := TestCaseNameFromUniformPath(test.UniformPath)
		if name == "" {
			continue
		}
		for _, p := range test.Paths {
			for _, f := range p.Files {
				lines, err := lineset.FromString(f.CoveredLines)
				if err != nil {
					return nil, fmt.Errorf("test %s, file %s: %w", name, f.FileName, err)
				}
				if lines.IsEmpty() {
					continue
				}
				r.Entries = append(r.Entries, CoverageEntry{
					TestCaseName: name,
					FilePath:     NormalizePath(path.Join(sourceRoot, p.Path, f.FileName)),
					CoveredLines: lines,
				})
			}
		}
	}
	return r, nil
}

// TestCaseNameFromUniformPath extracts "testFoo" from "de/tum/FooTest/testFoo()".
func TestCaseNameFromUniformPath(uniformPath string) string {
	name := strings.TrimSpace(uniformPath)
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	return name
}
