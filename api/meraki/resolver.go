package meraki

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/opteama/wifi-aps/observability"
)

// Resolver maps network names to Meraki network ids for one organization.
//
// The name→id map is loaded lazily and reloaded in full whenever a lookup
// misses; a name still absent after that reload is reported as
// ErrNetworkNotFound. Stale entries left by out-of-band changes are served
// until the next miss.
type Resolver struct {
	api          NetworkLister
	organization string
	logger       observability.Logger
	metrics      observability.MetricsRecorder

	// mu serializes lookups with refreshes.
	mu             sync.Mutex
	organizationID ID
	networks       map[string]ID
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(logger observability.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithResolverMetrics sets the resolver metrics recorder.
func WithResolverMetrics(metrics observability.MetricsRecorder) ResolverOption {
	return func(r *Resolver) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// NewResolver creates a resolver for the organization with the given name.
func NewResolver(api NetworkLister, organization string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		api:          api,
		organization: organization,
		logger:       observability.NoopLogger(),
		metrics:      observability.NoopMetricsRecorder(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OrganizationID returns the id of the configured organization, looking it
// up by name on first use.
func (r *Resolver) OrganizationID(ctx context.Context) (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.organizationIDLocked(ctx)
}

// NetworkID returns the id of the network called name: cache hit, else one
// full refresh and a second look, else ErrNetworkNotFound.
func (r *Resolver) NetworkID(ctx context.Context, name string) (ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.networks[name]; ok {
		return id, nil
	}

	if err := r.refreshLocked(ctx); err != nil {
		return "", err
	}

	if id, ok := r.networks[name]; ok {
		return id, nil
	}

	return "", notFound(ErrNetworkNotFound, "network %q in organization %q", name, r.organization)
}

// Refresh reloads the whole name→id map.
func (r *Resolver) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.refreshLocked(ctx)
}

func (r *Resolver) organizationIDLocked(ctx context.Context) (ID, error) {
	if r.organizationID != "" {
		return r.organizationID, nil
	}

	orgs, err := r.api.ListOrganizations(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve organization")
	}

	for _, org := range orgs {
		if org.Name == r.organization {
			r.organizationID = org.ID
			r.logger.Info("organization resolved",
				observability.Field{Key: "organization", Value: org.Name},
				observability.Field{Key: "id", Value: string(org.ID)},
			)
			return org.ID, nil
		}
	}

	return "", notFound(ErrOrganizationNotFound, "organization %q", r.organization)
}

func (r *Resolver) refreshLocked(ctx context.Context) error {
	orgID, err := r.organizationIDLocked(ctx)
	if err != nil {
		return err
	}

	networks, err := r.api.ListNetworks(ctx, orgID)
	if err != nil {
		return errors.Wrap(err, "failed to refresh networks")
	}

	fresh := make(map[string]ID, len(networks))
	for _, network := range networks {
		fresh[network.Name] = network.ID
	}
	r.networks = fresh

	r.metrics.RecordCacheRefresh("networks", len(fresh))
	r.logger.Debug("network cache refreshed",
		observability.Field{Key: "organization", Value: r.organization},
		observability.Field{Key: "networks", Value: len(fresh)},
	)

	return nil
}
