package scoring

import (
	"fmt"
	"sort"
)

type Registry struct {
	formulas map[string]Formula
}

func NewRegistry(formulas ...Formula) *Registry {
	r := &Registry{formulas: make(map[string]Formula, len(formulas))}
	for _, f := range formulas {
		r.formulas[f.Version()] = f
	}
	return r
}

func DefaultRegistry() *Registry {
	return NewRegistry(NewImpactFormula(DefaultWeights()))
}

func (r *Registry) Register(f Formula) {
	r.formulas[f.Version()] = f
}

func (r *Registry) Get(version string) (Formula, error) {
	f, ok := r.formulas[version]
	if !ok {
		return nil, fmt.Errorf("unknown scoring formula %q", version)
	}
	return f, nil
}

func (r *Registry) Versions() []string {
	versions := make([]string, 0, len(r.formulas))
	for v := range r.formulas {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// Active resolves the formula used for new matches. A weights file adds its formula to the
// registry and becomes the default when no version is requested.
func Active(r *Registry, version, weightsFile string) (Formula, error) {
	if weightsFile != "" {
		w, err := LoadWeights(weightsFile)
		if err != nil {
			return nil, err
		}
		if _, err := r.Get(w.Version); err == nil {
			return nil, fmt.Errorf("scoring weights file %s redefines formula %q", weightsFile, w.Version)
		}
		r.Register(NewImpactFormula(w))
		if version == "" {
			version = w.Version
		}
	}
	if version == "" {
		version = VersionImpactV1
	}
	return r.Get(version)
}
