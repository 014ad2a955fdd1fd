// Package inventory manages Wi-Fi access points as Meraki devices named after
// the SITE-AP-BUILDING-FLOOR-INDEX convention.
package inventory

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/opteama/wifi-aps/api/meraki"
	"github.com/opteama/wifi-aps/internal/naming"
	"github.com/opteama/wifi-aps/observability"
)

// AP is an access point as exposed to inventory clients.
type AP struct {
	Name     string   `json:"name"`
	Serial   string   `json:"serial"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Site     string   `json:"site"`
	Building *string  `json:"building"`
	Floor    *string  `json:"floor"`
}

// APInput describes an access point to create or update. Site is only read
// by CreateMany; the other operations take the site separately.
type APInput struct {
	Serial   string   `json:"serial"`
	Site     string   `json:"site,omitempty"`
	Building string   `json:"building"`
	Floor    string   `json:"floor"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

// Service implements the access point operations on top of Meraki.
type Service struct {
	api       meraki.DashboardAPIClient
	networks  NetworkResolver
	allocator *Allocator
	sites     []string
	logger    observability.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a service managing the given sites. Sites outside the
// list are reported as ErrSiteNotFound without calling Meraki.
func NewService(api meraki.DashboardAPIClient, networks NetworkResolver, sites []string, opts ...Option) *Service {
	s := &Service{
		api:      api,
		networks: networks,
		sites:    slices.Clone(sites),
		logger:   observability.NoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.allocator = NewAllocator(api, networks, s.logger)
	return s
}

// Sites returns the configured sites.
func (s *Service) Sites() []string {
	return slices.Clone(s.sites)
}

// ListAll returns the access points of every configured site. Any failure
// fails the whole listing.
func (s *Service) ListAll(ctx context.Context) ([]AP, error) {
	if _, err := s.networks.OrganizationID(ctx); err != nil {
		return nil, classify(err)
	}

	aps := []AP{}
	for _, site := range s.sites {
		siteAPs, err := s.ListSite(ctx, site)
		if err != nil {
			return nil, err
		}
		aps = append(aps, siteAPs...)
	}
	return aps, nil
}

// ListSite returns the access points of one site.
func (s *Service) ListSite(ctx context.Context, site string) ([]AP, error) {
	networkID, err := s.network(ctx, site)
	if err != nil {
		return nil, err
	}

	devices, err := s.api.ListNetworkDevices(ctx, networkID)
	if err != nil {
		return nil, classify(errors.Wrapf(err, "failed to list APs of site %s", site))
	}

	aps := make([]AP, 0, len(devices))
	for _, device := range devices {
		aps = append(aps, toAP(site, device))
	}
	return aps, nil
}

// Get returns one access point of a site.
func (s *Service) Get(ctx context.Context, site, serial string) (*AP, error) {
	networkID, err := s.network(ctx, site)
	if err != nil {
		return nil, err
	}

	device, err := s.api.GetNetworkDevice(ctx, networkID, serial)
	if err != nil {
		return nil, classify(errors.Wrapf(err, "failed to get AP %s of site %s", serial, site))
	}

	ap := toAP(site, *device)
	return &ap, nil
}

// Create claims the serial into the site network, then names and places it.
func (s *Service) Create(ctx context.Context, site string, in APInput) error {
	networkID, existing, err := s.prepare(ctx, site, in.Serial)
	if err != nil {
		return err
	}

	name, err := s.allocator.Allocate(ctx, site, in.Building, in.Floor, existing)
	if err != nil {
		return err
	}

	if err := s.api.ClaimNetworkDevice(ctx, networkID, in.Serial); err != nil {
		return classify(errors.Wrapf(err, "failed to claim AP %s into site %s", in.Serial, site))
	}

	if err := s.write(ctx, networkID, in, name); err != nil {
		return err
	}

	s.logger.Info("AP created",
		observability.Site(site),
		observability.Serial(in.Serial),
		observability.Name(name.String()),
	)
	return nil
}

// CreateMany creates each AP in its own site, in order, and stops at the
// first failure. APs created before the failure are kept.
func (s *Service) CreateMany(ctx context.Context, aps []APInput) error {
	for i, in := range aps {
		if err := s.Create(ctx, in.Site, in); err != nil {
			return errors.Wrapf(err, "AP %d of %d (%s)", i+1, len(aps), in.Serial)
		}
	}
	return nil
}

// Update renames and moves an AP. Empty building or floor keep the value of
// the current name when it follows the convention.
func (s *Service) Update(ctx context.Context, site string, in APInput) error {
	networkID, existing, err := s.prepare(ctx, site, in.Serial)
	if err != nil {
		return err
	}

	if existing != nil {
		if current, ok := naming.Parse(existing.Name); ok {
			if in.Building == "" {
				in.Building = current.Building
			}
			if in.Floor == "" {
				in.Floor = current.Floor
			}
		}
	}

	name, err := s.allocator.Allocate(ctx, site, in.Building, in.Floor, existing)
	if err != nil {
		return err
	}

	if err := s.write(ctx, networkID, in, name); err != nil {
		return err
	}

	s.logger.Info("AP updated",
		observability.Site(site),
		observability.Serial(in.Serial),
		observability.Name(name.String()),
	)
	return nil
}

// Remove takes the AP out of the site network.
func (s *Service) Remove(ctx context.Context, site, serial string) error {
	networkID, err := s.network(ctx, site)
	if err != nil {
		return err
	}

	if err := s.api.RemoveNetworkDevice(ctx, networkID, serial); err != nil {
		return classify(errors.Wrapf(err, "failed to remove AP %s from site %s", serial, site))
	}

	s.logger.Info("AP removed",
		observability.Site(site),
		observability.Serial(serial),
	)
	return nil
}

func (s *Service) network(ctx context.Context, site string) (meraki.ID, error) {
	if !slices.Contains(s.sites, site) {
		return "", errors.Wrapf(ErrSiteNotFound, "site %q is not managed", site)
	}

	networkID, err := s.networks.NetworkID(ctx, site)
	if err != nil {
		return "", classify(err)
	}
	return networkID, nil
}

// prepare resolves the site and fetches the device when the site already
// holds it. A missing device is not an error.
func (s *Service) prepare(ctx context.Context, site, serial string) (meraki.ID, *meraki.Device, error) {
	if serial == "" {
		return "", nil, errors.Wrap(ErrInvalidAP, "serial is required")
	}

	networkID, err := s.network(ctx, site)
	if err != nil {
		return "", nil, err
	}

	device, err := s.api.GetNetworkDevice(ctx, networkID, serial)
	switch {
	case errors.Is(err, meraki.ErrDeviceNotFound):
		return networkID, nil, nil
	case err != nil:
		return "", nil, classify(errors.Wrapf(err, "failed to look up AP %s", serial))
	}
	return networkID, device, nil
}

func (s *Service) write(ctx context.Context, networkID meraki.ID, in APInput, name naming.Name) error {
	update := meraki.DeviceUpdate{Name: name.String(), Lat: in.Lat, Lng: in.Lng}
	if err := s.api.UpdateNetworkDevice(ctx, networkID, in.Serial, update); err != nil {
		return classify(errors.Wrapf(err, "failed to name AP %s %s", in.Serial, update.Name))
	}
	return nil
}

func toAP(site string, device meraki.Device) AP {
	building, floor := naming.Location(device.Name)
	return AP{
		Name:     device.Name,
		Serial:   device.Serial,
		Lat:      device.Lat,
		Lng:      device.Lng,
		Site:     site,
		Building: building,
		Floor:    floor,
	}
}
