package registry

import (
	"fmt"

	"github.com/google/uuid"
	consulapi "github.com/hashicorp/consul/api"
)

// ServiceRegistry registers this service's HTTP and gRPC endpoints and
// lets erpctl find them again.
type ServiceRegistry interface {
	// Register announces one instance. id must be unique per instance,
	// see NewInstanceID.
	Register(id, name, address string, port int, tags []string, check *consulapi.AgentServiceCheck) error

	// Deregister removes an instance by ID.
	Deregister(id string) error

	// Discover returns "host:port" for every healthy instance of name,
	// optionally filtered by tag.
	Discover(name string, tag string) ([]string, error)

	// List maps registered service names to their tags.
	List() (map[string][]string, error)
}

// Tags distinguishing the two listeners of one process.
const (
	TagHTTP = "http"
	TagGRPC = "grpc"
)

// NewInstanceID returns a registration ID of the form name-protocol-uuid.
func NewInstanceID(name, protocol string) string {
	return fmt.Sprintf("%s-%s-%s", name, protocol, uuid.NewString())
}
