package main

import (
	"fmt"
	"text/tabwriter"

	grpcserver "erp-access/grpc_server"
	"erp-access/registry"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newPermissionsCmd(a *app) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "List the permission registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if tree {
				nodes, err := c.PermissionTree(cmd.Context())
				if err != nil {
					return err
				}
				for _, sec := range nodes {
					fmt.Fprintf(out, "%s (%s, %d)\n", sec.Name, sec.Code, sec.ID)
					for _, area := range sec.Children {
						fmt.Fprintf(out, "    %s (%s, %d)\n", area.Name, area.Code, area.ID)
					}
				}
				return nil
			}

			perms, err := c.ListPermissions(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tKIND\tNAME")
			for _, p := range perms {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Code, p.Kind, p.Name)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "Group areas under their sections")
	return cmd
}

func newAccessCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "access",
		Short: "Check what the logged-in user may open",
	}
	cmd.AddCommand(newResolveCmd(a), newCheckCmd(a), newMenuCmd(a))
	return cmd
}

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Show whether a screen opens or is denied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			d, err := c.ResolveRoute(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			perm := d.Route.Permission
			if perm == "" {
				perm = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", d.View, d.Route.Page, perm, d.Route.Title)
			return nil
		},
	}
}

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List navigation entries and whether each is allowed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			items, err := c.Navigation(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tTITLE\tALLOWED")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%s\t%t\n", it.Path, it.Title, it.Allowed)
			}
			return w.Flush()
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "check <permission-code>",
		Short: "Ask the gRPC access service whether a permission is held",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.token == "" {
				return fmt.Errorf("not logged in; pass --token or set ERPACCESS_TOKEN")
			}
			addr := target
			if addr == "" && a.consul != "" {
				var err error
				if addr, err = a.discover(registry.TagGRPC); err != nil {
					return err
				}
			}
			if addr == "" {
				return fmt.Errorf("no gRPC address; pass --grpc or --consul")
			}

			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", addr, err)
			}
			defer conn.Close()

			ctx := grpcserver.WithToken(cmd.Context(), a.token)
			granted, err := grpcserver.NewAccessClient(conn).CheckPermission(ctx, args[0])
			if err != nil {
				return err
			}
			if granted {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: granted\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: denied\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "grpc", "", "gRPC address (host:port)")
	return cmd
}
