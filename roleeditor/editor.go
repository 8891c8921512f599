// Package roleeditor is the form model behind the security role screen:
// pick a role or start a new one, tick sections and areas, then save.
package roleeditor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"erp-access/permissions"

	"go.uber.org/zap"
)

// State is the mode of the form.
type State int

const (
	// StateNew edits an unsaved role ("Add New Role").
	StateNew State = iota
	// StateEditing edits the selected existing role.
	StateEditing
)

func (s State) String() string {
	if s == StateEditing {
		return "editing"
	}
	return "new"
}

var ErrNotEditing = errors.New("no role selected")

// Role is a stored security role as the backend returns it.
type Role struct {
	ID          uint    `json:"id"`
	Name        string  `json:"role"`
	Description string  `json:"description"`
	Sections    *string `json:"sections"`
	Areas       *string `json:"areas"`
	Inactive    bool    `json:"inactive"`
}

// Payload is the body sent on create and update. Sections and Areas are
// semicolon-joined IDs, null when nothing is selected.
type Payload struct {
	Role        string  `json:"role"`
	Description string  `json:"description"`
	Sections    *string `json:"sections"`
	Areas       *string `json:"areas"`
	Inactive    bool    `json:"inactive"`
}

// Backend persists roles.
type Backend interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id uint) (*Role, error)
	CreateRole(ctx context.Context, p Payload) (*Role, error)
	UpdateRole(ctx context.Context, id uint, p Payload) (*Role, error)
	DeleteRole(ctx context.Context, id uint) error
}

// ValidationError lists the local problems that block a submit.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Messages, "; ") }

// Outcome reports a successful submit.
type Outcome struct {
	Created bool
	Role    *Role
}

// Editor holds the form state. It is not safe for concurrent use.
type Editor struct {
	backend  Backend
	registry *permissions.Registry
	logger   *zap.Logger

	state       State
	id          uint
	name        string
	description string
	inactive    bool
	checked     map[string]bool
	roles       []Role
}

func New(backend Backend, registry *permissions.Registry, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		backend:  backend,
		registry: registry,
		logger:   logger,
		checked:  make(map[string]bool),
	}
}

// Refresh reloads the role list.
func (e *Editor) Refresh(ctx context.Context) error {
	roles, err := e.backend.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("loading roles: %w", err)
	}
	e.roles = roles
	return nil
}

// Roles is the list loaded by the last Refresh.
func (e *Editor) Roles() []Role {
	out := make([]Role, len(e.roles))
	copy(out, e.roles)
	return out
}

func (e *Editor) State() State        { return e.state }
func (e *Editor) RoleID() uint        { return e.id }
func (e *Editor) Name() string        { return e.name }
func (e *Editor) Description() string { return e.description }
func (e *Editor) Inactive() bool      { return e.inactive }

// Select loads a stored role into the form. Every permission whose ID is
// in the role's sections or areas is checked and nothing else. On error
// the form is left unchanged.
func (e *Editor) Select(ctx context.Context, id uint) error {
	role, err := e.backend.GetRole(ctx, id)
	if err != nil {
		return fmt.Errorf("loading role %d: %w", id, err)
	}
	names, err := e.registry.Decode(deref(role.Sections), deref(role.Areas))
	if err != nil {
		return fmt.Errorf("role %q: %w", role.Name, err)
	}

	checked := make(map[string]bool, len(names))
	for _, n := range names {
		checked[n] = true
	}
	e.state = StateEditing
	e.id = role.ID
	e.name = role.Name
	e.description = role.Description
	e.inactive = role.Inactive
	e.checked = checked
	return nil
}

// Reset clears the form for a new role.
func (e *Editor) Reset() {
	e.state = StateNew
	e.id = 0
	e.name = ""
	e.description = ""
	e.inactive = false
	e.checked = make(map[string]bool)
}

func (e *Editor) SetName(name string)        { e.name = name }
func (e *Editor) SetDescription(desc string) { e.description = desc }
func (e *Editor) SetInactive(inactive bool)  { e.inactive = inactive }

// IsChecked reports whether the named permission is ticked.
func (e *Editor) IsChecked(name string) bool { return e.checked[name] }

// Check ticks a permission. Areas can only be ticked while their section
// is, since the form hides them otherwise.
func (e *Editor) Check(name string) error {
	p, ok := e.registry.ByName(name)
	if !ok {
		return &permissions.UnknownPermissionError{Names: []string{name}}
	}
	if !p.IsSection() {
		parent, _ := e.registry.ByCode(p.Parent)
		if !e.checked[parent.Name] {
			return fmt.Errorf("%q is hidden until section %q is checked", name, parent.Name)
		}
	}
	e.checked[name] = true
	return nil
}

// Uncheck clears a permission. Clearing a section clears its areas too.
func (e *Editor) Uncheck(name string) {
	delete(e.checked, name)
	for _, area := range e.registry.Children(name) {
		delete(e.checked, area.Name)
	}
}

// Toggle flips a permission.
func (e *Editor) Toggle(name string) error {
	if e.checked[name] {
		e.Uncheck(name)
		return nil
	}
	return e.Check(name)
}

// Checked returns the ticked names in ID order.
func (e *Editor) Checked() []string {
	var out []string
	for _, p := range e.registry.All() {
		if e.checked[p.Name] {
			out = append(out, p.Name)
		}
	}
	return out
}

// Tree is the checkbox layout for the current selection.
func (e *Editor) Tree() []permissions.Node {
	return e.registry.Tree(e.checked)
}

// Validate runs the local checks that gate Submit.
func (e *Editor) Validate() error {
	var msgs []string
	if strings.TrimSpace(e.name) == "" {
		msgs = append(msgs, "Role Name is required")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// Payload encodes the form.
func (e *Editor) Payload() (Payload, error) {
	sel, err := e.registry.Encode(e.Checked())
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		Role:        strings.TrimSpace(e.name),
		Description: strings.TrimSpace(e.description),
		Sections:    nullable(sel.Sections),
		Areas:       nullable(sel.Areas),
		Inactive:    e.inactive,
	}, nil
}

// Submit validates locally, then creates or updates the role. On success
// the form resets and the role list is reloaded. On failure the form keeps
// its edits.
func (e *Editor) Submit(ctx context.Context) (*Outcome, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	p, err := e.Payload()
	if err != nil {
		return nil, err
	}

	out := &Outcome{Created: e.state == StateNew}
	if out.Created {
		out.Role, err = e.backend.CreateRole(ctx, p)
	} else {
		out.Role, err = e.backend.UpdateRole(ctx, e.id, p)
	}
	if err != nil {
		return nil, err
	}

	e.Reset()
	if err := e.Refresh(ctx); err != nil {
		e.logger.Warn("Role saved but the list could not be reloaded", zap.Error(err))
	}
	return out, nil
}

// Delete removes the selected role, then resets and reloads the list.
func (e *Editor) Delete(ctx context.Context) error {
	if e.state != StateEditing {
		return ErrNotEditing
	}
	if err := e.backend.DeleteRole(ctx, e.id); err != nil {
		return err
	}
	e.Reset()
	if err := e.Refresh(ctx); err != nil {
		e.logger.Warn("Role deleted but the list could not be reloaded", zap.Error(err))
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
