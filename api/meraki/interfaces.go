package meraki

import "context"

// DashboardAPIClient defines the Meraki Dashboard API operations the AP
// inventory needs. It enables consumers to create mock implementations for
// testing.
//
// Example usage with testify/mock:
//
//	type MockClient struct {
//	    mock.Mock
//	}
//
//	func (m *MockClient) ListNetworkDevices(ctx context.Context, networkID meraki.ID) ([]meraki.Device, error) {
//	    args := m.Called(ctx, networkID)
//	    return args.Get(0).([]meraki.Device), args.Error(1)
//	}
type DashboardAPIClient interface {
	NetworkLister

	// ListNetworkDevices retrieves the devices claimed into a network.
	ListNetworkDevices(ctx context.Context, networkID ID) ([]Device, error)

	// GetNetworkDevice retrieves one device of a network by serial.
	GetNetworkDevice(ctx context.Context, networkID ID, serial string) (*Device, error)

	// ClaimNetworkDevice claims a serial into a network.
	ClaimNetworkDevice(ctx context.Context, networkID ID, serial string) error

	// UpdateNetworkDevice sets the name and position of a device.
	UpdateNetworkDevice(ctx context.Context, networkID ID, serial string, update DeviceUpdate) error

	// RemoveNetworkDevice removes a device from a network.
	RemoveNetworkDevice(ctx context.Context, networkID ID, serial string) error
}

// NetworkLister is the part of the API the Resolver reads from.
type NetworkLister interface {
	// ListOrganizations retrieves the organizations the API key can access.
	ListOrganizations(ctx context.Context) ([]Organization, error)

	// ListNetworks retrieves every network of an organization.
	ListNetworks(ctx context.Context, organizationID ID) ([]Network, error)
}
