package meraki

import "github.com/cockroachdb/errors"

var (
	// ErrNotFound marks every lookup that found nothing: organization,
	// network or device.
	ErrNotFound = errors.New("not found")

	// ErrRejected marks replies Meraki answered with a status other than the
	// one the operation expects, or without the body a read requires.
	ErrRejected = errors.New("rejected by Meraki")

	// ErrOrganizationNotFound is returned when the configured organization name
	// is absent from the account. Also marked with ErrNotFound.
	ErrOrganizationNotFound = errors.New("organization not found in Meraki account")

	// ErrNetworkNotFound is returned when a network name is still unknown after
	// a refresh of the organization's network list. Also marked with ErrNotFound.
	ErrNetworkNotFound = errors.New("network not found in Meraki organization")

	// ErrDeviceNotFound is returned when a serial is not part of a network.
	// Also marked with ErrNotFound.
	ErrDeviceNotFound = errors.New("device not found in Meraki network")
)

// notFound wraps one of the specific sentinels and marks the result with
// ErrNotFound. The sentinels stay distinct from each other.
func notFound(sentinel error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(sentinel, format, args...), ErrNotFound)
}
