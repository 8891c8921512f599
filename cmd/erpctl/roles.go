package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"erp-access/permissions"
	"erp-access/roleeditor"

	"github.com/spf13/cobra"
)

func newRolesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List, inspect and edit security roles",
	}
	cmd.AddCommand(
		newRolesListCmd(a),
		newRolesShowCmd(a),
		newRolesCreateCmd(a),
		newRolesUpdateCmd(a),
		newRolesDeleteCmd(a),
	)
	return cmd
}

// editor returns a role editor with the role list loaded.
func (a *app) editor(cmd *cobra.Command) (*roleeditor.Editor, error) {
	c, err := a.authedClient()
	if err != nil {
		return nil, err
	}
	ed := roleeditor.New(c, permissions.Default(), a.logger)
	if err := ed.Refresh(cmd.Context()); err != nil {
		return nil, err
	}
	return ed, nil
}

func newRolesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every role, inactive ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.editor(cmd)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tROLE\tSTATUS\tDESCRIPTION")
			for _, r := range ed.Roles() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Name, status(r.Inactive), r.Description)
			}
			return w.Flush()
		},
	}
}

func newRolesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <role-id>",
		Short: "Show a role and its checked permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ed, err := a.editor(cmd)
			if err != nil {
				return err
			}
			if err := ed.Select(cmd.Context(), id); err != nil {
				return err
			}
			printForm(cmd.OutOrStdout(), ed)
			return nil
		},
	}
}

// roleFlags are the form fields shared by create and update.
type roleFlags struct {
	name        string
	description string
	inactive    bool
	perms       []string
	grant       []string
	revoke      []string
}

func (f *roleFlags) register(cmd *cobra.Command, update bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "Role name")
	fl.StringVar(&f.description, "description", "", "Role description")
	fl.BoolVar(&f.inactive, "inactive", false, "Mark the role inactive")
	fl.StringArrayVarP(&f.perms, "permission", "p", nil, "Permission name to check (repeatable); replaces the selection on update")
	if update {
		fl.StringArrayVar(&f.grant, "grant", nil, "Permission name to add (repeatable)")
		fl.StringArrayVar(&f.revoke, "revoke", nil, "Permission name to remove (repeatable)")
	}
}

func newRolesCreateCmd(a *app) *cobra.Command {
	f := &roleFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a role",
		Long: `Creates a role from a name and a list of permission names.
Areas are only accepted together with their section.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := a.editor(cmd)
			if err != nil {
				return err
			}
			ed.SetName(f.name)
			ed.SetDescription(f.description)
			ed.SetInactive(f.inactive)
			if err := checkAll(ed, f.perms); err != nil {
				return err
			}
			return submit(cmd, ed)
		},
	}
	f.register(cmd, false)
	return cmd
}

func newRolesUpdateCmd(a *app) *cobra.Command {
	f := &roleFlags{}
	cmd := &cobra.Command{
		Use:   "update <role-id>",
		Short: "Update a role",
		Long: `Loads the role, applies the given changes and saves it.
--permission replaces the whole selection, --grant and --revoke adjust it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ed, err := a.editor(cmd)
			if err != nil {
				return err
			}
			if err := ed.Select(cmd.Context(), id); err != nil {
				return err
			}

			fl := cmd.Flags()
			if fl.Changed("name") {
				ed.SetName(f.name)
			}
			if fl.Changed("description") {
				ed.SetDescription(f.description)
			}
			if fl.Changed("inactive") {
				ed.SetInactive(f.inactive)
			}
			if fl.Changed("permission") {
				for _, name := range ed.Checked() {
					ed.Uncheck(name)
				}
				if err := checkAll(ed, f.perms); err != nil {
					return err
				}
			}
			if err := checkAll(ed, f.grant); err != nil {
				return err
			}
			for _, name := range f.revoke {
				ed.Uncheck(name)
			}
			return submit(cmd, ed)
		},
	}
	f.register(cmd, true)
	return cmd
}

func newRolesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <role-id>",
		Short: "Delete a role that no user holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ed, err := a.editor(cmd)
			if err != nil {
				return err
			}
			if err := ed.Select(cmd.Context(), id); err != nil {
				return err
			}
			name := ed.Name()
			if err := ed.Delete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted role %q\n", name)
			return nil
		},
	}
}

// checkAll ticks sections before areas so the order of names on the
// command line does not matter.
func checkAll(ed *roleeditor.Editor, names []string) error {
	reg := permissions.Default()
	var areas []string
	for _, name := range names {
		if !reg.IsSection(name) {
			areas = append(areas, name)
			continue
		}
		if err := ed.Check(name); err != nil {
			return err
		}
	}
	for _, name := range areas {
		if err := ed.Check(name); err != nil {
			return err
		}
	}
	return nil
}

func submit(cmd *cobra.Command, ed *roleeditor.Editor) error {
	out, err := ed.Submit(cmd.Context())
	if err != nil {
		return err
	}
	verb := "Updated"
	if out.Created {
		verb = "Created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s role %q (id %d)\n", verb, out.Role.Name, out.Role.ID)
	return nil
}

func printForm(w io.Writer, ed *roleeditor.Editor) {
	fmt.Fprintf(w, "Role: %s\n", ed.Name())
	if ed.Description() != "" {
		fmt.Fprintf(w, "Description: %s\n", ed.Description())
	}
	fmt.Fprintf(w, "Status: %s\n", status(ed.Inactive()))
	for _, sec := range ed.Tree() {
		fmt.Fprintf(w, "%s %s\n", box(sec.Checked), sec.Name)
		for _, area := range sec.Children {
			fmt.Fprintf(w, "    %s %s\n", box(area.Checked), area.Name)
		}
	}
}

func box(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func status(inactive bool) string {
	if inactive {
		return "inactive"
	}
	return "active"
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid role id %q", s)
	}
	return uint(id), nil
}
