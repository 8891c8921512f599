package registry

import (
	"fmt"

	"erp-access/config"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type consulRegistry struct {
	client *consulapi.Client
	logger *zap.SugaredLogger
}

var _ ServiceRegistry = (*consulRegistry)(nil)

// NewConsulRegistry connects to the Consul agent at cfg.Address and checks
// that it answers.
func NewConsulRegistry(cfg config.ConsulConfig, logger *zap.SugaredLogger) (ServiceRegistry, error) {
	consulConfig := consulapi.DefaultConfig()
	consulConfig.Address = cfg.Address

	client, err := consulapi.NewClient(consulConfig)
	if err != nil {
		logger.Errorw("Failed to create Consul client", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	if _, err := client.Agent().NodeName(); err != nil {
		logger.Errorw("Failed to connect to Consul agent", "address", consulConfig.Address, "error", err)
		return nil, fmt.Errorf("cannot connect to consul agent at %s: %w", consulConfig.Address, err)
	}
	logger.Infow("Connected to Consul agent", "address", consulConfig.Address)

	return &consulRegistry{
		client: client,
		logger: logger.Named("consul"),
	}, nil
}

func (r *consulRegistry) Register(id, name, address string, port int, tags []string, check *consulapi.AgentServiceCheck) error {
	reg := &consulapi.AgentServiceRegistration{
		ID:      id,
		Name:    name,
		Tags:    tags,
		Port:    port,
		Address: address,
		Check:   check,
		Meta:    map[string]string{"protocol": checkProtocol(check)},
	}

	if err := r.client.Agent().ServiceRegister(reg); err != nil {
		r.logger.Errorw("Failed to register service with Consul", "service_id", id, "service_name", name, "address", address, "port", port, "error", err)
		return fmt.Errorf("failed to register service '%s': %w", name, err)
	}
	r.logger.Infow("Registered service with Consul", "service_id", id, "service_name", name, "address", address, "port", port)
	return nil
}

func (r *consulRegistry) Deregister(id string) error {
	if err := r.client.Agent().ServiceDeregister(id); err != nil {
		r.logger.Errorw("Failed to deregister service from Consul", "service_id", id, "error", err)
		return fmt.Errorf("failed to deregister service '%s': %w", id, err)
	}
	r.logger.Infow("Deregistered service from Consul", "service_id", id)
	return nil
}

func (r *consulRegistry) Discover(name string, tag string) ([]string, error) {
	instances, _, err := r.client.Health().Service(name, tag, true, nil)
	if err != nil {
		r.logger.Warnw("Failed to discover service from Consul", "service_name", name, "tag", tag, "error", err)
		return nil, fmt.Errorf("failed to discover service '%s': %w", name, err)
	}
	addrs := instanceAddrs(instances)
	if len(addrs) == 0 {
		r.logger.Warnw("No healthy instances found for service", "service_name", name, "tag", tag)
		return nil, fmt.Errorf("no healthy instances found for service '%s'", name)
	}
	r.logger.Debugw("Discovered healthy service instances", "service_name", name, "tag", tag, "addresses", addrs)
	return addrs, nil
}

func (r *consulRegistry) List() (map[string][]string, error) {
	services, _, err := r.client.Catalog().Services(nil)
	if err != nil {
		r.logger.Errorw("Failed to list services from Consul catalog", "error", err)
		return nil, fmt.Errorf("failed to list services from consul: %w", err)
	}
	return services, nil
}

// instanceAddrs prefers the service address and falls back to the node's.
func instanceAddrs(instances []*consulapi.ServiceEntry) []string {
	addrs := make([]string, 0, len(instances))
	for _, inst := range instances {
		if inst.Service == nil {
			continue
		}
		addr := inst.Service.Address
		if addr == "" && inst.Node != nil {
			addr = inst.Node.Address
		}
		addrs = append(addrs, fmt.Sprintf("%s:%d", addr, inst.Service.Port))
	}
	return addrs
}

func checkProtocol(check *consulapi.AgentServiceCheck) string {
	switch {
	case check == nil:
		return ""
	case check.GRPC != "":
		return TagGRPC
	default:
		return TagHTTP
	}
}

// CreateHTTPCheck builds a check that GETs http://host:port/path.
// interval and timeout use Consul duration strings such as "10s".
func CreateHTTPCheck(serviceID, serviceHost string, servicePort int, checkPath string, interval, timeout string) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_http", serviceID),
		Name:                           fmt.Sprintf("HTTP Check for %s", serviceID),
		HTTP:                           fmt.Sprintf("http://%s:%d%s", serviceHost, servicePort, checkPath),
		Method:                         "GET",
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m",
	}
}

// CreateGRPCCheck builds a check against the gRPC health service at
// grpcTarget (host:port).
func CreateGRPCCheck(serviceID, grpcTarget string, interval, timeout string, useTLS bool) *consulapi.AgentServiceCheck {
	return &consulapi.AgentServiceCheck{
		CheckID:                        fmt.Sprintf("check_%s_grpc", serviceID),
		Name:                           fmt.Sprintf("gRPC Check for %s", serviceID),
		GRPC:                           grpcTarget,
		GRPCUseTLS:                     useTLS,
		Interval:                       interval,
		Timeout:                        timeout,
		DeregisterCriticalServiceAfter: "1m",
	}
}
