package permissions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Separator joins the IDs of a stored sections or areas list.
const Separator = ";"

// Selection is the stored form of a set of checked permissions: two
// semicolon-joined lists of decimal IDs. An empty list is "".
type Selection struct {
	Sections string `json:"sections"`
	Areas    string `json:"areas"`
}

// UnknownPermissionError reports names or IDs that are not registered.
type UnknownPermissionError struct {
	Names []string
	IDs   []int
}

func (e *UnknownPermissionError) Error() string {
	parts := make([]string, 0, len(e.Names)+len(e.IDs))
	for _, n := range e.Names {
		parts = append(parts, strconv.Quote(n))
	}
	for _, id := range e.IDs {
		parts = append(parts, strconv.Itoa(id))
	}
	return "unknown permission: " + strings.Join(parts, ", ")
}

// Encode partitions the checked names into section and area IDs. Output
// lists are deduplicated and in ascending ID order. Any unregistered name
// fails the whole call.
func (r *Registry) Encode(names []string) (Selection, error) {
	sel, dropped := r.EncodeLenient(names)
	if len(dropped) > 0 {
		return Selection{}, &UnknownPermissionError{Names: dropped}
	}
	return sel, nil
}

// EncodeLenient is Encode without the failure: unregistered names are
// left out of the selection and returned so the caller can report them.
func (r *Registry) EncodeLenient(names []string) (Selection, []string) {
	var sections, areas []int
	var dropped []string
	seen := make(map[int]bool, len(names))
	for _, name := range names {
		p, ok := r.ByName(name)
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if p.IsSection() {
			sections = append(sections, p.ID)
		} else {
			areas = append(areas, p.ID)
		}
	}
	return Selection{Sections: joinIDs(sections), Areas: joinIDs(areas)}, dropped
}

// Decode reverse-maps stored section and area lists to permission names,
// sections first, each group in ID order. Empty tokens are skipped.
func (r *Registry) Decode(sections, areas string) ([]string, error) {
	perms, err := r.decode(sections, areas)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.Name
	}
	return names, nil
}

// CodesFor decodes a stored selection straight into a permission set.
func (r *Registry) CodesFor(sections, areas string) (Set, error) {
	perms, err := r.decode(sections, areas)
	if err != nil {
		return nil, err
	}
	set := make(Set, len(perms))
	for _, p := range perms {
		set[p.Code] = true
	}
	return set, nil
}

func (r *Registry) decode(sections, areas string) ([]Permission, error) {
	secIDs, err := SplitIDs(sections)
	if err != nil {
		return nil, fmt.Errorf("sections: %w", err)
	}
	areaIDs, err := SplitIDs(areas)
	if err != nil {
		return nil, fmt.Errorf("areas: %w", err)
	}

	var out []Permission
	var unknown []int
	collect := func(ids []int, want Kind, field string) error {
		start := len(out)
		for _, id := range ids {
			p, ok := r.ByID(id)
			if !ok {
				unknown = append(unknown, id)
				continue
			}
			if p.Kind != want {
				return fmt.Errorf("%s: %d (%s) is not a %s", field, id, p.Code, want)
			}
			out = append(out, p)
		}
		group := out[start:]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		return nil
	}
	if err := collect(secIDs, KindSection, "sections"); err != nil {
		return nil, err
	}
	if err := collect(areaIDs, KindArea, "areas"); err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		return nil, &UnknownPermissionError{IDs: unknown}
	}
	return dedupe(out), nil
}

// SplitIDs parses a semicolon-joined list of decimal IDs.
func SplitIDs(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int
	for _, tok := range strings.Split(s, Separator) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid permission id %q", tok)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func joinIDs(ids []int) string {
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, Separator)
}

func dedupe(perms []Permission) []Permission {
	seen := make(map[int]bool, len(perms))
	out := perms[:0]
	for _, p := range perms {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}
