// Package meraki provides the Meraki Dashboard API client used by the AP
// inventory: a request gateway, typed device and network operations, and a
// network-name resolver.
//
// # Authentication
//
// Every request carries the API key in the X-Cisco-Meraki-API-Key header.
//
// # Status codes
//
// Replies are checked against the exact status code of each operation, not a
// 2xx range: reads and updates expect 200 OK, claims 201 Created and removals
// 204 No Content. Any other status is reported as ErrRejected. A 404 on a
// device read is reported as ErrDeviceNotFound. The client never retries.
//
// # Basic Usage
//
//	client, err := meraki.New("your-api-key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resolver := meraki.NewResolver(client, "MY-ORGANIZATION")
//	networkID, err := resolver.NetworkID(ctx, "TLS")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	devices, err := client.ListNetworkDevices(ctx, networkID)
package meraki
