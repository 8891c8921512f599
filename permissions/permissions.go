// Package permissions holds the ERP security registry: every permission
// the application knows, its stable numeric ID and whether it is a
// top-level section or an area nested under one.
package permissions

import (
	"fmt"
	"sort"
)

// Kind classifies a permission as a section or an area.
type Kind int

const (
	KindSection Kind = iota + 1
	KindArea
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindArea:
		return "area"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	if k != KindSection && k != KindArea {
		return nil, fmt.Errorf("invalid permission kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "section":
		*k = KindSection
	case "area":
		*k = KindArea
	default:
		return fmt.Errorf("invalid permission kind %q", b)
	}
	return nil
}

// Permission is one registry entry.
type Permission struct {
	Code   string `json:"code"`             // e.g. "SA_SALESORDER"
	Name   string `json:"name"`             // e.g. "Sales orders edition"
	ID     int    `json:"id"`               // stable numeric ID stored in roles
	Kind   Kind   `json:"kind"`
	Parent string `json:"parent,omitempty"` // section code, empty for sections
}

// IsSection reports whether p is a top-level category.
func (p Permission) IsSection() bool { return p.Kind == KindSection }

// Section declares a top-level category and the areas nested under it.
// The section ID is Block<<8 and each area ID is the section ID | Offset.
type Section struct {
	Code  string
	Name  string
	Block int
	Areas []Area
}

// Area declares a nested permission.
type Area struct {
	Code   string
	Name   string
	Offset int
}

// Registry is an immutable name <-> ID index built once from a list of
// section declarations. It is safe for concurrent use.
type Registry struct {
	all      []Permission
	sections []Permission
	children map[string][]Permission // section code -> areas, ID order
	byCode   map[string]int
	byName   map[string]int
	byID     map[int]int
}

// New builds a registry and rejects duplicate codes, names or IDs and
// area offsets outside 1..255.
func New(sections ...Section) (*Registry, error) {
	r := &Registry{
		children: make(map[string][]Permission, len(sections)),
		byCode:   make(map[string]int),
		byName:   make(map[string]int),
		byID:     make(map[int]int),
	}

	add := func(p Permission) error {
		if p.Code == "" || p.Name == "" {
			return fmt.Errorf("permission %d: code and name are required", p.ID)
		}
		if _, dup := r.byCode[p.Code]; dup {
			return fmt.Errorf("duplicate permission code %q", p.Code)
		}
		if _, dup := r.byName[p.Name]; dup {
			return fmt.Errorf("duplicate permission name %q", p.Name)
		}
		if prev, dup := r.byID[p.ID]; dup {
			return fmt.Errorf("permission id %d used by both %q and %q", p.ID, r.all[prev].Code, p.Code)
		}
		idx := len(r.all)
		r.all = append(r.all, p)
		r.byCode[p.Code] = idx
		r.byName[p.Name] = idx
		r.byID[p.ID] = idx
		return nil
	}

	for _, s := range sections {
		if s.Block <= 0 {
			return nil, fmt.Errorf("section %q: block must be positive", s.Code)
		}
		sec := Permission{Code: s.Code, Name: s.Name, ID: s.Block << 8, Kind: KindSection}
		if err := add(sec); err != nil {
			return nil, err
		}
		r.sections = append(r.sections, sec)

		areas := make([]Permission, 0, len(s.Areas))
		for _, a := range s.Areas {
			if a.Offset < 1 || a.Offset > 0xff {
				return nil, fmt.Errorf("area %q: offset %d outside 1..255", a.Code, a.Offset)
			}
			area := Permission{Code: a.Code, Name: a.Name, ID: sec.ID | a.Offset, Kind: KindArea, Parent: sec.Code}
			if err := add(area); err != nil {
				return nil, err
			}
			areas = append(areas, area)
		}
		sort.Slice(areas, func(i, j int) bool { return areas[i].ID < areas[j].ID })
		r.children[sec.Code] = areas
	}

	sort.Slice(r.sections, func(i, j int) bool { return r.sections[i].ID < r.sections[j].ID })
	return r, nil
}

// MustNew is like New but panics on an invalid declaration.
func MustNew(sections ...Section) *Registry {
	r, err := New(sections...)
	if err != nil {
		panic(fmt.Sprintf("permissions: %v", err))
	}
	return r
}

var std = MustNew(securityAreas...)

// Default returns the registry of the ERP security areas.
func Default() *Registry { return std }

// Lookup maps a permission name to its ID.
func (r *Registry) Lookup(name string) (int, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return 0, false
	}
	return r.all[idx].ID, true
}

// Name maps an ID back to its permission name.
func (r *Registry) Name(id int) (string, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return r.all[idx].Name, true
}

func (r *Registry) ByName(name string) (Permission, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Permission{}, false
	}
	return r.all[idx], true
}

func (r *Registry) ByCode(code string) (Permission, bool) {
	idx, ok := r.byCode[code]
	if !ok {
		return Permission{}, false
	}
	return r.all[idx], true
}

func (r *Registry) ByID(id int) (Permission, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Permission{}, false
	}
	return r.all[idx], true
}

// IsSection reports whether name is one of the top-level permissions.
// Unknown names are neither sections nor areas.
func (r *Registry) IsSection(name string) bool {
	p, ok := r.ByName(name)
	return ok && p.IsSection()
}

// Sections returns the top-level permissions in ID order.
func (r *Registry) Sections() []Permission {
	out := make([]Permission, len(r.sections))
	copy(out, r.sections)
	return out
}

// Children returns the areas nested under the named section, or nil when
// name is not a section.
func (r *Registry) Children(name string) []Permission {
	p, ok := r.ByName(name)
	if !ok || !p.IsSection() {
		return nil
	}
	areas := r.children[p.Code]
	out := make([]Permission, len(areas))
	copy(out, areas)
	return out
}

// All returns every permission in ID order.
func (r *Registry) All() []Permission {
	out := make([]Permission, len(r.all))
	copy(out, r.all)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len is the number of registered permissions.
func (r *Registry) Len() int { return len(r.all) }
