package meraki

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ID is a Meraki identifier. Older API versions return some identifiers as
// JSON numbers, so both forms are accepted.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "invalid id")
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrap(err, "invalid id")
	}
	*id = ID(n.String())
	return nil
}

// Organization is a Meraki organization.
type Organization struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

func (o Organization) validate() error {
	if o.ID == "" || o.Name == "" {
		return errors.Newf("organization record without id or name: %+v", o)
	}
	return nil
}

// Network is a Meraki network. Its name is the site code of the AP naming convention.
type Network struct {
	ID             ID     `json:"id"`
	OrganizationID ID     `json:"organizationId"`
	Name           string `json:"name"`
	TimeZone       string `json:"timeZone,omitempty"`
}

func (n Network) validate() error {
	if n.ID == "" || n.Name == "" {
		return errors.Newf("network record without id or name: %+v", n)
	}
	return nil
}

// Device is a Meraki device claimed into a network.
type Device struct {
	Serial    string   `json:"serial"`
	Name      string   `json:"name"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	NetworkID ID       `json:"networkId,omitempty"`
	Model     string   `json:"model,omitempty"`
	MAC       string   `json:"mac,omitempty"`
	Address   string   `json:"address,omitempty"`
}

func (d Device) validate() error {
	if d.Serial == "" {
		return errors.Newf("device record without serial: %+v", d)
	}
	return nil
}

// DeviceUpdate is the body of a device update. Nil coordinates are omitted
// and keep their current value on the Meraki side.
type DeviceUpdate struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

type claimRequest struct {
	Serial string `json:"serial"`
}

// validateAll checks every record of a decoded list so malformed upstream
// data is rejected at the boundary.
func validateAll[T interface{ validate() error }](records []T) error {
	for _, record := range records {
		if err := record.validate(); err != nil {
			return err
		}
	}
	return nil
}
