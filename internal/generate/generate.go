// Package generate drives the whole pipeline: select a colony from a model,
// expand wildcards, canonicalize the alphabet, assemble, render and write the
// two C units.
package generate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrei91ro/lulu-c/internal/assemble"
	"github.com/andrei91ro/lulu-c/internal/colony"
	"github.com/andrei91ro/lulu-c/internal/config"
	"github.com/andrei91ro/lulu-c/internal/emit"
	"github.com/andrei91ro/lulu-c/internal/logging"
	"github.com/andrei91ro/lulu-c/internal/model"
	"github.com/andrei91ro/lulu-c/internal/symbols"
	"github.com/andrei91ro/lulu-c/internal/wildcard"
)

// Argument errors. They are reported before any model processing.
var (
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnknownColony    = errors.New("unknown colony")
)

// Params are the invocation parameters of one generation run.
type Params struct {
	ModelPath string
	// ColonyName selects the colony of a swarm model.
	ColonyName   string
	RobotCount   int
	MinID        int
	OutputPrefix string

	HeaderInclude string
	SimNames      bool
	// PolicyPath replaces the built-in feature policy when set.
	PolicyPath string
}

// ParamsFromConfig fills the parameters the configuration provides.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		RobotCount:    cfg.Generator.RobotCount,
		MinID:         cfg.Generator.MinID,
		OutputPrefix:  cfg.Generator.OutputPrefix,
		HeaderInclude: cfg.Generator.HeaderInclude,
		SimNames:      cfg.Generator.EmitSimNames,
		PolicyPath:    cfg.Features.PolicyPath,
	}
}

// Validate checks the parameters that do not depend on the model.
func (p Params) Validate() error {
	if p.ModelPath == "" {
		return fmt.Errorf("%w: model path", ErrMissingParameter)
	}
	if p.OutputPrefix == "" {
		return fmt.Errorf("%w: output prefix", ErrMissingParameter)
	}
	if p.RobotCount == 0 {
		return fmt.Errorf("%w: robot count", ErrMissingParameter)
	}
	if p.MinID == config.UnsetMinID {
		return fmt.Errorf("%w: minimum robot id", ErrMissingParameter)
	}
	if p.RobotCount < 1 || p.RobotCount > config.MaxRobotID {
		return fmt.Errorf("%w: robot count must be in [1, %d], got %d", ErrInvalidParameter, config.MaxRobotID, p.RobotCount)
	}
	if p.MinID < 0 || p.MinID+p.RobotCount-1 > config.MaxRobotID {
		return fmt.Errorf("%w: robot identities %d..%d must fit in [0, %d]",
			ErrInvalidParameter, p.MinID, p.MinID+p.RobotCount-1, config.MaxRobotID)
	}
	return nil
}

// HeaderPath is the path of the declaration unit.
func (p Params) HeaderPath() string { return p.OutputPrefix + ".h" }

// SourcePath is the path of the definition unit.
func (p Params) SourcePath() string { return p.OutputPrefix + ".c" }

// Result is the outcome of a generation run.
type Result struct {
	Colony    *assemble.Colony
	Expansion wildcard.Result
	Artifacts *emit.Artifacts
}

// Select picks the colony to generate. A swarm needs a colony name; a
// standalone colony accepts its own name or none.
func Select(m *model.Model, name string) (*colony.Colony, error) {
	if !m.IsSwarm() {
		if name != "" && name != m.Colony.Name {
			return nil, fmt.Errorf("%w: %s (the model defines only %s)", ErrUnknownColony, name, m.Colony.Name)
		}
		return m.Colony, nil
	}
	names := strings.Join(m.Swarm.ColonyNames(), ", ")
	if name == "" {
		return nil, fmt.Errorf("%w: the model is a swarm, choose a colony from: %s", ErrMissingParameter, names)
	}
	c, ok := m.Swarm.Colony(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s (valid colonies: %s)", ErrUnknownColony, name, names)
	}
	return c, nil
}

// Build runs the in-memory pipeline on a loaded model. The selected colony is
// expanded in place.
func Build(m *model.Model, p Params, policy *assemble.Policy) (*Result, error) {
	c, err := Select(m, p.ColonyName)
	if err != nil {
		return nil, err
	}

	expansion, err := wildcard.Expand(c, p.RobotCount)
	if err != nil {
		return nil, colony.InColony(c.Name, err)
	}
	table, err := symbols.Canonicalize(c.Alphabet)
	if err != nil {
		return nil, colony.InColony(c.Name, fmt.Errorf("alphabet: %w", err))
	}
	assembled, err := assemble.New(policy).Assemble(c, table)
	if err != nil {
		return nil, err
	}

	artifacts, err := emit.Render(assembled, emit.Options{
		BaseName:      filepath.Base(p.OutputPrefix),
		HeaderInclude: p.HeaderInclude,
		SimNames:      p.SimNames,
		MinID:         p.MinID,
		RobotCount:    p.RobotCount,
		ModelName:     m.Name,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Colony: assembled, Expansion: expansion, Artifacts: artifacts}, nil
}

// Run validates the parameters, loads the model, builds both units and writes
// them. Nothing is written unless every stage succeeds.
func Run(p Params) (*Result, error) {
	log := logging.Get(logging.CategoryBoot)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	policy, err := loadPolicy(p.PolicyPath)
	if err != nil {
		return nil, err
	}
	m, err := model.Load(p.ModelPath)
	if err != nil {
		return nil, err
	}
	res, err := Build(m, p, policy)
	if err != nil {
		return nil, err
	}
	if err := write(p, res.Artifacts); err != nil {
		return nil, err
	}
	log.Infof("generated %s and %s for colony %s (%d robots from id %d)",
		p.HeaderPath(), p.SourcePath(), res.Colony.Name, p.RobotCount, p.MinID)
	return res, nil
}

func loadPolicy(path string) (*assemble.Policy, error) {
	if path == "" {
		return assemble.DefaultPolicy(), nil
	}
	return assemble.LoadPolicy(path)
}

// write stages both units next to their targets and renames them into place.
// When the definition unit cannot be placed, the previous declaration unit is
// restored so the pair on disk always comes from the same run.
func write(p Params, a *emit.Artifacts) error {
	log := logging.Get(logging.CategoryEmit)
	dir := filepath.Dir(p.OutputPrefix)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	header, err := stage(dir, p.HeaderPath(), a.Header)
	if err != nil {
		return fmt.Errorf("failed to write declaration unit: %w", err)
	}
	defer os.Remove(header)
	source, err := stage(dir, p.SourcePath(), a.Source)
	if err != nil {
		return fmt.Errorf("failed to write definition unit: %w", err)
	}
	defer os.Remove(source)

	previous, readErr := os.ReadFile(p.HeaderPath())
	if err := os.Rename(header, p.HeaderPath()); err != nil {
		return fmt.Errorf("failed to write declaration unit: %w", err)
	}
	if err := os.Rename(source, p.SourcePath()); err != nil {
		if readErr == nil {
			_ = os.WriteFile(p.HeaderPath(), previous, 0644)
		} else {
			_ = os.Remove(p.HeaderPath())
		}
		return fmt.Errorf("failed to write definition unit: %w", err)
	}
	log.Debugf("wrote %s (%d bytes), %s (%d bytes)", p.HeaderPath(), len(a.Header), p.SourcePath(), len(a.Source))
	return nil
}

// stage writes data to a temporary file in dir and returns its path.
func stage(dir, target string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
