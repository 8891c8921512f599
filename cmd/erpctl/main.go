// Command erpctl manages security roles and checks access against an
// erp-access server.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"erp-access/client"
	"erp-access/config"
	"erp-access/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the global flags shared by every command.
type app struct {
	server  string
	token   string
	consul  string
	service string
	verbose bool

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "erpctl",
		Short: "Manage ERP security roles and check access",
		Example: `  erpctl login admin
  export ERPACCESS_TOKEN=<token>
  erpctl roles create --name Buyer -p "Purchase Transactions" -p "Purchase order entry"
  erpctl access resolve /purchasing/orders`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = zap.NewNop()
			if a.verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				a.logger = l
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.server, "server", "s", envOr("ERPACCESS_SERVER", "http://localhost:8080"), "Server base URL")
	pf.StringVar(&a.token, "token", os.Getenv("ERPACCESS_TOKEN"), "Bearer token (default $ERPACCESS_TOKEN)")
	pf.StringVar(&a.consul, "consul", "", "Consul agent address; discovers the server instead of --server")
	pf.StringVar(&a.service, "service", "erp-access", "Service name registered in Consul")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log client activity")

	root.AddGroup(
		&cobra.Group{ID: "session", Title: "Session Commands:"},
		&cobra.Group{ID: "admin", Title: "Role Commands:"},
		&cobra.Group{ID: "access", Title: "Access Commands:"},
	)
	for _, c := range []*cobra.Command{newLoginCmd(a), newWhoamiCmd(a)} {
		c.GroupID = "session"
		root.AddCommand(c)
	}
	for _, c := range []*cobra.Command{newRolesCmd(a), newPermissionsCmd(a)} {
		c.GroupID = "admin"
		root.AddCommand(c)
	}
	access := newAccessCmd(a)
	access.GroupID = "access"
	root.AddCommand(access)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// client returns an API client for the configured server.
func (a *app) client() (*client.Client, error) {
	base := a.server
	if a.consul != "" {
		addr, err := a.discover(registry.TagHTTP)
		if err != nil {
			return nil, err
		}
		base = "http://" + addr
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("server URL must start with http:// or https://")
	}
	return client.New(base, a.token), nil
}

// authedClient is client() for commands that need a token.
func (a *app) authedClient() (*client.Client, error) {
	if a.token == "" {
		return nil, errors.New("not logged in; run 'erpctl login' and set ERPACCESS_TOKEN or pass --token")
	}
	return a.client()
}

// discover returns the first healthy instance carrying tag.
func (a *app) discover(tag string) (string, error) {
	reg, err := registry.NewConsulRegistry(config.ConsulConfig{Enabled: true, Address: a.consul}, a.logger.Sugar())
	if err != nil {
		return "", err
	}
	addrs, err := reg.Discover(a.service, tag)
	if err != nil {
		return "", err
	}
	return addrs[0], nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
