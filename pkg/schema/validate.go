package schema

import (
	"errors"
	"fmt"
)

// Validate checks the structural rules a form relies on: known types,
// unique names per level, declared dependencies, resolvable section
// controls and nested structures on Reference controls.
func Validate(s *Structure) error {
	if s == nil {
		return errors.New("schema: structure is nil")
	}
	return validateLevel(s, "")
}

func validateLevel(s *Structure, prefix string) error {
	seen := make(map[string]struct{}, len(s.Controls))
	var errs []error
	for _, control := range s.Controls {
		path := prefix + control.Name
		if control.Name == "" {
			errs = append(errs, fmt.Errorf("schema: control at %q has no name", prefix))
			continue
		}
		if _, dup := seen[control.Name]; dup {
			errs = append(errs, fmt.Errorf("schema: duplicate control %q", path))
		}
		seen[control.Name] = struct{}{}
		if !control.Type.Valid() {
			errs = append(errs, fmt.Errorf("schema: control %q has unknown type %q", path, control.Type))
		}
		if control.Type == TypeReference {
			if control.Reference == nil {
				errs = append(errs, fmt.Errorf("schema: reference control %q has no nested structure", path))
			} else if err := validateLevel(control.Reference, path+"."); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, control := range s.Controls {
		for _, dep := range control.Dependencies {
			if _, ok := seen[dep]; !ok {
				errs = append(errs, fmt.Errorf("schema: control %q depends on unknown control %q", prefix+control.Name, dep))
			}
		}
	}

	var walk func(sections []Section)
	walk = func(sections []Section) {
		for _, section := range sections {
			for _, name := range section.Controls {
				if _, ok := seen[name]; !ok {
					errs = append(errs, fmt.Errorf("schema: section %q lists unknown control %q", section.ID, prefix+name))
				}
			}
			walk(section.Subsections)
		}
	}
	walk(s.Sections)

	return errors.Join(errs...)
}
