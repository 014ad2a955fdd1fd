package meraki

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/opteama/wifi-aps/internal/response"
)

// ListOrganizations retrieves the organizations the API key can access.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	res, err := c.Call(ctx, http.MethodGet, "organizations", nil)
	orgs, err := response.Handle[[]Organization](res, err, "failed to list organizations")
	if err != nil {
		return nil, rejected(err)
	}
	if err := validateAll(*orgs); err != nil {
		return nil, errors.Mark(err, ErrRejected)
	}
	return *orgs, nil
}

// ListNetworks retrieves every network of an organization.
func (c *Client) ListNetworks(ctx context.Context, organizationID ID) ([]Network, error) {
	path := "organizations/" + url.PathEscape(string(organizationID)) + "/networks"

	res, err := c.Call(ctx, http.MethodGet, path, nil)
	networks, err := response.Handle[[]Network](res, err, "failed to list networks of organization "+string(organizationID))
	if err != nil {
		return nil, rejected(err)
	}
	if err := validateAll(*networks); err != nil {
		return nil, errors.Mark(err, ErrRejected)
	}
	return *networks, nil
}

// ListNetworkDevices retrieves the devices claimed into a network.
func (c *Client) ListNetworkDevices(ctx context.Context, networkID ID) ([]Device, error) {
	res, err := c.Call(ctx, http.MethodGet, devicesPath(networkID), nil)
	devices, err := response.Handle[[]Device](res, err, "failed to list devices of network "+string(networkID))
	if err != nil {
		return nil, rejected(err)
	}
	if err := validateAll(*devices); err != nil {
		return nil, errors.Mark(err, ErrRejected)
	}
	return *devices, nil
}

// GetNetworkDevice retrieves one device of a network by serial.
// A 404 reply yields ErrDeviceNotFound.
func (c *Client) GetNetworkDevice(ctx context.Context, networkID ID, serial string) (*Device, error) {
	res, err := c.Call(ctx, http.MethodGet, devicePath(networkID, serial), nil)
	if err == nil && res.StatusCode() == http.StatusNotFound {
		return nil, notFound(ErrDeviceNotFound, "device %s in network %s", serial, networkID)
	}

	device, err := response.Handle[Device](res, err, "failed to get device "+serial)
	if err != nil {
		return nil, rejected(err)
	}
	if err := device.validate(); err != nil {
		return nil, errors.Mark(err, ErrRejected)
	}
	return device, nil
}

// ClaimNetworkDevice claims a serial into a network. Success is 201 Created.
func (c *Client) ClaimNetworkDevice(ctx context.Context, networkID ID, serial string) error {
	path := "networks/" + url.PathEscape(string(networkID)) + "/devices/claim"

	res, err := c.Call(ctx, http.MethodPost, path, claimRequest{Serial: serial})
	err = response.HandleNoContentWithStatus(res, err, "failed to claim device "+serial, http.StatusCreated)
	return rejected(err)
}

// UpdateNetworkDevice sets the name and, when given, the position of a device.
// Success is 200 OK; the reply body is not required.
func (c *Client) UpdateNetworkDevice(ctx context.Context, networkID ID, serial string, update DeviceUpdate) error {
	res, err := c.Call(ctx, http.MethodPut, devicePath(networkID, serial), update)
	err = response.HandleNoContentWithStatus(res, err, "failed to update device "+serial, http.StatusOK)
	return rejected(err)
}

// RemoveNetworkDevice removes a device from a network. Success is 204 No Content.
func (c *Client) RemoveNetworkDevice(ctx context.Context, networkID ID, serial string) error {
	path := devicePath(networkID, serial) + "/remove"

	res, err := c.Call(ctx, http.MethodPost, path, nil)
	err = response.HandleNoContentWithStatus(res, err, "failed to remove device "+serial, http.StatusNoContent)
	return rejected(err)
}

func devicesPath(networkID ID) string {
	return "networks/" + url.PathEscape(string(networkID)) + "/devices"
}

func devicePath(networkID ID, serial string) string {
	return devicesPath(networkID) + "/" + url.PathEscape(serial)
}

// rejected marks reply-level failures with ErrRejected; transport errors pass
// through unmarked.
func rejected(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, response.ErrUnexpectedStatus) ||
		errors.Is(err, response.ErrEmptyBody) ||
		errors.Is(err, response.ErrMalformedBody) {
		return errors.Mark(err, ErrRejected)
	}
	return err
}
