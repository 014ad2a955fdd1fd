package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
)

// Meraki v0 routes served by FakeMeraki, usable with Hits and FailNext.
const (
	RouteOrganizations = "GET /api/v0/organizations"
	RouteNetworks      = "GET /api/v0/organizations/{org}/networks"
	RouteDevices       = "GET /api/v0/networks/{network}/devices"
	RouteDevice        = "GET /api/v0/networks/{network}/devices/{serial}"
	RouteClaim         = "POST /api/v0/networks/{network}/devices/claim"
	RouteUpdate        = "PUT /api/v0/networks/{network}/devices/{serial}"
	RouteRemove        = "POST /api/v0/networks/{network}/devices/{serial}/remove"
)

// FakeDevice is a device held by FakeMeraki.
type FakeDevice struct {
	Serial    string   `json:"serial"`
	Name      *string  `json:"name"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	NetworkID string   `json:"networkId"`
	Model     string   `json:"model"`
}

type fakeOrganization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type fakeNetwork struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
}

// FakeMeraki is an in-memory Meraki Dashboard API v0 covering organizations,
// networks and the device claim/update/remove lifecycle.
type FakeMeraki struct {
	*httptest.Server

	apiKey string

	mu            sync.Mutex
	organizations []fakeOrganization
	networks      []fakeNetwork
	devices       map[string]*FakeDevice
	hits          map[string]int
	failures      map[string][]int
}

// NewFakeMeraki starts a fake Meraki API accepting apiKey. The server is
// closed when the test ends.
func NewFakeMeraki(t *testing.T, apiKey string) *FakeMeraki {
	t.Helper()

	f := &FakeMeraki{
		apiKey:   apiKey,
		devices:  make(map[string]*FakeDevice),
		hits:     make(map[string]int),
		failures: make(map[string][]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(RouteOrganizations, f.listOrganizations)
	mux.HandleFunc(RouteNetworks, f.listNetworks)
	mux.HandleFunc(RouteDevices, f.listDevices)
	mux.HandleFunc(RouteDevice, f.getDevice)
	mux.HandleFunc(RouteClaim, f.claimDevice)
	mux.HandleFunc(RouteUpdate, f.updateDevice)
	mux.HandleFunc(RouteRemove, f.removeDevice)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(APIKeyHeader) != f.apiKey {
			writeJSON(w, http.StatusUnauthorized, map[string][]string{"errors": {"Invalid API key"}})
			return
		}

		_, pattern := mux.Handler(r)
		if pattern != "" {
			f.mu.Lock()
			f.hits[pattern]++
			queue := f.failures[pattern]
			if len(queue) > 0 {
				f.failures[pattern] = queue[1:]
			}
			f.mu.Unlock()

			if len(queue) > 0 {
				writeJSON(w, queue[0], map[string][]string{"errors": {"injected failure"}})
				return
			}
		}

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)

	return f
}

// BaseURL returns the v0 base URL of the fake.
func (f *FakeMeraki) BaseURL() string {
	return f.URL + "/api/v0/"
}

// AddOrganization registers an organization.
func (f *FakeMeraki) AddOrganization(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.organizations = append(f.organizations, fakeOrganization{ID: id, Name: name})
}

// AddNetwork registers a network of an organization.
func (f *FakeMeraki) AddNetwork(organizationID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.networks = append(f.networks, fakeNetwork{ID: id, OrganizationID: organizationID, Name: name})
}

// AddDevice places a device in a network. An empty name is stored as null.
func (f *FakeMeraki) AddDevice(networkID, serial, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	device := &FakeDevice{Serial: serial, NetworkID: networkID, Model: "MR33"}
	if name != "" {
		device.Name = &name
	}
	f.devices[serial] = device
}

// Device returns a copy of a claimed device.
func (f *FakeMeraki) Device(serial string) (FakeDevice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	device, ok := f.devices[serial]
	if !ok {
		return FakeDevice{}, false
	}
	return *device, true
}

// DeviceName returns the name of a claimed device, or "" when unnamed or absent.
func (f *FakeMeraki) DeviceName(serial string) string {
	device, ok := f.Device(serial)
	if !ok || device.Name == nil {
		return ""
	}
	return *device.Name
}

// Hits returns how many requests matched route.
func (f *FakeMeraki) Hits(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[route]
}

// FailNext makes the next request matching route fail with status.
// Calls queue up.
func (f *FakeMeraki) FailNext(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = append(f.failures[route], status)
}

func (f *FakeMeraki) listOrganizations(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.organizations)
}

func (f *FakeMeraki) listNetworks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	orgID := r.PathValue("org")
	if !slices.ContainsFunc(f.organizations, func(o fakeOrganization) bool { return o.ID == orgID }) {
		writeJSON(w, http.StatusNotFound, map[string][]string{"errors": {"Organization not found"}})
		return
	}

	networks := []fakeNetwork{}
	for _, n := range f.networks {
		if n.OrganizationID == orgID {
			networks = append(networks, n)
		}
	}
	writeJSON(w, http.StatusOK, networks)
}

func (f *FakeMeraki) listDevices(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	networkID := r.PathValue("network")
	if !f.hasNetworkLocked(networkID) {
		writeJSON(w, http.StatusNotFound, map[string][]string{"errors": {"Network not found"}})
		return
	}

	devices := []FakeDevice{}
	for _, serial := range f.serialsLocked() {
		if device := f.devices[serial]; device.NetworkID == networkID {
			devices = append(devices, *device)
		}
	}
	writeJSON(w, http.StatusOK, devices)
}

func (f *FakeMeraki) getDevice(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	device, ok := f.deviceLocked(r.PathValue("network"), r.PathValue("serial"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string][]string{"errors": {"Device not found"}})
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (f *FakeMeraki) claimDevice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Serial string `json:"serial"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Serial == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": {"serial is required"}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	networkID := r.PathValue("network")
	if !f.hasNetworkLocked(networkID) {
		writeJSON(w, http.StatusNotFound, map[string][]string{"errors": {"Network not found"}})
		return
	}
	if _, claimed := f.devices[body.Serial]; claimed {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": {"Device already claimed"}})
		return
	}

	f.devices[body.Serial] = &FakeDevice{Serial: body.Serial, NetworkID: networkID, Model: "MR33"}
	w.WriteHeader(http.StatusCreated)
}

func (f *FakeMeraki) updateDevice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name *string  `json:"name"`
		Lat  *float64 `json:"lat"`
		Lng  *float64 `json:"lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": {err.Error()}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	device, ok := f.deviceLocked(r.PathValue("network"), r.PathValue("serial"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string][]string{"errors": {"Device not found"}})
		return
	}

	if body.Name != nil {
		device.Name = body.Name
	}
	if body.Lat != nil {
		device.Lat = body.Lat
	}
	if body.Lng != nil {
		device.Lng = body.Lng
	}
	writeJSON(w, http.StatusOK, device)
}

func (f *FakeMeraki) removeDevice(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	device, ok := f.deviceLocked(r.PathValue("network"), r.PathValue("serial"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string][]string{"errors": {"Device not found"}})
		return
	}

	delete(f.devices, device.Serial)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeMeraki) hasNetworkLocked(id string) bool {
	return slices.ContainsFunc(f.networks, func(n fakeNetwork) bool { return n.ID == id })
}

func (f *FakeMeraki) deviceLocked(networkID, serial string) (*FakeDevice, bool) {
	device, ok := f.devices[serial]
	if !ok || device.NetworkID != networkID {
		return nil, false
	}
	return device, true
}

func (f *FakeMeraki) serialsLocked() []string {
	serials := make([]string, 0, len(f.devices))
	for serial := range f.devices {
		serials = append(serials, serial)
	}
	slices.Sort(serials)
	return serials
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
