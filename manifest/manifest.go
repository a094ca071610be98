// Package manifest loads build manifests: files describing a set of nasm
// invocations that share defaults.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChainSafe/go-nasm/nasm"
	"gopkg.in/yaml.v3"
)

// Manifest is the top level of a build manifest.
type Manifest struct {
	Assembler string `json:"assembler,omitempty" yaml:"assembler,omitempty"`

	// Format is the default format for jobs that do not set one.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// OutputDir receives derived outputs instead of the source directory.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`

	// Args are passed to every job, before the job's own args.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`

	Jobs []Job `json:"jobs" yaml:"jobs"`

	// directory relative paths are resolved against
	dir string
}

// Job describes a single assembler invocation.
type Job struct {
	File   string   `json:"file" yaml:"file"`
	Format string   `json:"format,omitempty" yaml:"format,omitempty"`
	Output string   `json:"output,omitempty" yaml:"output,omitempty"`
	Args   []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// LoadManifest loads a manifest from a YAML or JSON file, chosen by extension.
func LoadManifest(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		err = json.Unmarshal(data, &m)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("unsupported manifest type: %s", filepath.Ext(filename))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to determine absolute path: %w", err)
	}
	m.dir = filepath.Dir(absPath)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Dir returns the directory relative paths are resolved against.
func (m *Manifest) Dir() string {
	return m.dir
}

// Validate reports every job that can not be turned into a request, and
// jobs whose outputs collide.
func (m *Manifest) Validate() error {
	if len(m.Jobs) == 0 {
		return errors.New("manifest has no jobs")
	}
	var errs []error
	for i, job := range m.Jobs {
		if job.File == "" {
			errs = append(errs, fmt.Errorf("job %d: missing file", i))
			continue
		}
		format := m.format(job)
		if _, ok := format.Extension(); !ok && job.Output == "" {
			errs = append(errs, fmt.Errorf("job %d (%s): format %q needs an explicit output", i, job.File, format.Flag()))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	_, err := m.Requests()
	return err
}

func (m *Manifest) format(job Job) nasm.OutputFormat {
	if job.Format != "" {
		return nasm.ParseFormat(job.Format)
	}
	return nasm.ParseFormat(m.Format)
}

func (m *Manifest) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || m.dir == "" {
		return path
	}
	return filepath.Join(m.dir, path)
}

// Requests builds one nasm instance per job. Jobs writing the same output
// file are rejected.
func (m *Manifest) Requests() ([]*nasm.Instance, error) {
	reqs := make([]*nasm.Instance, 0, len(m.Jobs))
	seen := make(map[string]int, len(m.Jobs))
	for i, job := range m.Jobs {
		file := m.resolve(job.File)
		inst := nasm.New(file)
		format := m.format(job)
		inst.SetFormat(format)

		switch {
		case job.Output != "":
			inst.SetOutput(m.resolve(job.Output))
		case m.OutputDir != "":
			derived, err := nasm.DeriveOutputPath(format, filepath.Base(file))
			if err != nil {
				return nil, fmt.Errorf("job %d (%s): %w", i, job.File, err)
			}
			inst.SetOutput(filepath.Join(m.resolve(m.OutputDir), derived))
		}

		if m.Assembler != "" {
			// bare names are looked up in PATH, not the manifest directory
			assembler := m.Assembler
			if strings.ContainsRune(assembler, filepath.Separator) || strings.ContainsRune(assembler, '/') {
				assembler = m.resolve(assembler)
			}
			inst.SetAssembler(assembler)
		}
		inst.Args(m.Args...)
		inst.Args(job.Args...)

		output, err := inst.OutputPath()
		if err != nil {
			return nil, fmt.Errorf("job %d (%s): %w", i, job.File, err)
		}
		// jobs run concurrently, two writers of one file would clobber each other
		key := filepath.Clean(output)
		if prev, ok := seen[key]; ok {
			return nil, fmt.Errorf("job %d (%s): output %s is also written by job %d (%s)",
				i, job.File, output, prev, m.Jobs[prev].File)
		}
		seen[key] = i
		reqs = append(reqs, inst)
	}
	return reqs, nil
}
