package inventory

import (
	"github.com/cockroachdb/errors"

	"github.com/opteama/wifi-aps/api/meraki"
)

var (
	// ErrSiteNotFound is returned for sites outside the configured list or
	// without a matching Meraki network.
	ErrSiteNotFound = errors.New("site not found")

	// ErrAPNotFound is returned when a serial is not part of the site.
	ErrAPNotFound = errors.New("AP not found")

	// ErrOrganizationNotFound is returned when the configured organization is
	// not visible to the API key.
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrRejected is returned when Meraki refused a claim, update or removal,
	// or answered a read with an unexpected reply.
	ErrRejected = errors.New("rejected by Meraki")

	// ErrInvalidAP is returned when the supplied AP cannot be named.
	ErrInvalidAP = errors.New("invalid AP")
)

// classify marks err with the inventory error matching its Meraki cause. The
// original chain is kept for logging.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, meraki.ErrOrganizationNotFound):
		return errors.Mark(err, ErrOrganizationNotFound)
	case errors.Is(err, meraki.ErrNetworkNotFound):
		return errors.Mark(err, ErrSiteNotFound)
	case errors.Is(err, meraki.ErrDeviceNotFound):
		return errors.Mark(err, ErrAPNotFound)
	case errors.Is(err, meraki.ErrRejected):
		return errors.Mark(err, ErrRejected)
	default:
		return err
	}
}
