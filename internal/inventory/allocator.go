package inventory

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/opteama/wifi-aps/api/meraki"
	"github.com/opteama/wifi-aps/internal/naming"
	"github.com/opteama/wifi-aps/observability"
)

// NetworkResolver maps site names to Meraki network ids.
// *meraki.Resolver implements it.
type NetworkResolver interface {
	NetworkID(ctx context.Context, name string) (meraki.ID, error)
	OrganizationID(ctx context.Context) (meraki.ID, error)
}

// Compile-time check to ensure Resolver implements NetworkResolver interface.
var _ NetworkResolver = (*meraki.Resolver)(nil)

// Allocator decides the canonical name of an access point.
type Allocator struct {
	api      meraki.DashboardAPIClient
	networks NetworkResolver
	logger   observability.Logger
}

// NewAllocator creates an allocator reading sibling devices through api.
func NewAllocator(api meraki.DashboardAPIClient, networks NetworkResolver, logger observability.Logger) *Allocator {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	return &Allocator{api: api, networks: networks, logger: logger}
}

// Allocate returns the name the device must carry in the site/building/floor
// group. A device already holding a canonical name keeps its index; any other
// device gets one more than the highest index used in the group.
func (a *Allocator) Allocate(ctx context.Context, site, building, floor string, existing *meraki.Device) (naming.Name, error) {
	if err := naming.ValidateGroup(site, building, floor); err != nil {
		return naming.Name{}, errors.Mark(err, ErrInvalidAP)
	}

	name := naming.Name{Site: site, Building: building, Floor: floor}

	if existing != nil {
		if current, ok := naming.Parse(existing.Name); ok {
			name.Index = current.Index
			return name, nil
		}
	}

	networkID, err := a.networks.NetworkID(ctx, site)
	if err != nil {
		return naming.Name{}, classify(err)
	}

	devices, err := a.api.ListNetworkDevices(ctx, networkID)
	if err != nil {
		return naming.Name{}, classify(errors.Wrapf(err, "failed to list devices of site %s", site))
	}

	names := make([]string, 0, len(devices))
	for _, device := range devices {
		names = append(names, device.Name)
	}
	name.Index = naming.NextIndex(naming.Prefix(site, building, floor), names)

	a.logger.Debug("index allocated",
		observability.Site(site),
		observability.Name(name.String()),
		observability.Field{Key: "siblings", Value: len(devices)},
	)

	return name, nil
}
