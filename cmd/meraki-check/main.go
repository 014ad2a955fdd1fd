// Command meraki-check runs the read-only Dashboard calls of the inventory
// against a real organization and reports device names that break the
// naming convention.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/opteama/wifi-aps/api/meraki"
	"github.com/opteama/wifi-aps/internal/config"
	"github.com/opteama/wifi-aps/internal/naming"
	"github.com/opteama/wifi-aps/internal/server"
)

var (
	envFile = flag.String("env-file", config.DefaultEnvFile, "dotenv file read for unset variables")
	verbose = flag.Bool("verbose", false, "Verbose output with full JSON responses")
)

type CheckResult struct {
	Endpoint   string
	Success    bool
	Error      string
	Issues     []string
	JSONSample string
	Duration   time.Duration
	Count      int
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	proxy, err := cfg.Proxy()
	if err != nil {
		log.Fatalf("Invalid proxy: %v", err)
	}

	fmt.Println("🧪 Probing the Meraki Dashboard API...")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	client, err := meraki.NewWithConfig(&meraki.ClientConfig{
		APIKey:             cfg.APIKey,
		BaseURL:            cfg.APIURL,
		Proxy:              proxy,
		RateLimitPerSecond: cfg.RateLimit,
		Timeout:            cfg.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	doc, err := server.LoadDocument(ctx, cfg.OpenAPISpec)
	if err != nil {
		log.Fatalf("Failed to load OpenAPI document: %v", err)
	}
	sites, err := server.Sites(doc)
	if err != nil {
		log.Fatalf("Failed to read managed sites: %v", err)
	}

	fmt.Printf("📡 Organization: %s\n", cfg.Organization)
	fmt.Printf("   API: %s\n", cfg.APIURL)
	fmt.Printf("   Managed sites: %s\n", strings.Join(sites, ", "))
	if proxy != nil {
		fmt.Printf("   Proxy: %s\n", proxy.Redacted())
	}
	fmt.Println()

	results := []CheckResult{}

	orgResult, orgID := checkOrganizations(ctx, client, cfg.Organization)
	results = append(results, orgResult)

	if orgID != "" {
		netResult, networks := checkNetworks(ctx, client, orgID, sites)
		results = append(results, netResult)

		for _, network := range networks {
			if slices.Contains(sites, network.Name) {
				results = append(results, checkDevices(ctx, client, network))
			}
		}
	}

	// Print summary
	fmt.Println()
	fmt.Println("📊 Check Summary")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Println()

	failed, totalIssues := 0, 0
	for _, result := range results {
		status := "✅"
		if !result.Success {
			status = "❌"
			failed++
		} else if len(result.Issues) > 0 {
			status = "⚠️"
		}

		fmt.Printf("%s %s (%d records, %v)\n", status, result.Endpoint, result.Count, result.Duration)

		if result.Error != "" {
			fmt.Printf("   Error: %s\n", result.Error)
		}

		if len(result.Issues) > 0 {
			fmt.Printf("   ⚠️  Issues: %d\n", len(result.Issues))
			for _, issue := range result.Issues {
				fmt.Printf("      - %s\n", issue)
			}
			totalIssues += len(result.Issues)
		}

		if *verbose && result.JSONSample != "" {
			fmt.Printf("   JSON Sample:\n%s\n", indentJSON(result.JSONSample, "      "))
		}

		fmt.Println()
	}

	fmt.Println("=" + strings.Repeat("=", 60))
	switch {
	case failed > 0:
		fmt.Printf("❌ %d of %d calls failed\n", failed, len(results))
	case totalIssues == 0:
		fmt.Println("✅ All calls succeeded! Every access point follows the naming convention.")
	default:
		fmt.Printf("⚠️  Found %d naming issues\n", totalIssues)
		fmt.Println()
		fmt.Println("Recommendations:")
		fmt.Println("  1. Rename devices to SITE-AP-BUILDING-FLOOR-INDEX in the dashboard")
		fmt.Println("  2. Re-index duplicates so each group counts up from 1")
	}
}

func checkOrganizations(ctx context.Context, client *meraki.Client, name string) (CheckResult, meraki.ID) {
	start := time.Now()
	result := CheckResult{Endpoint: "ListOrganizations"}

	orgs, err := client.ListOrganizations(ctx)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		return result, ""
	}

	result.Success = true
	result.Count = len(orgs)

	var id meraki.ID
	for _, org := range orgs {
		if org.Name == name {
			id = org.ID
			if *verbose {
				result.JSONSample = sample(org)
			}
			break
		}
	}
	if id == "" {
		result.Issues = append(result.Issues, fmt.Sprintf("organization %q is not visible to this API key", name))
	}

	return result, id
}

func checkNetworks(ctx context.Context, client *meraki.Client, orgID meraki.ID, sites []string) (CheckResult, []meraki.Network) {
	start := time.Now()
	result := CheckResult{Endpoint: "ListNetworks"}

	networks, err := client.ListNetworks(ctx, orgID)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	result.Success = true
	result.Count = len(networks)

	for _, site := range sites {
		if !slices.ContainsFunc(networks, func(n meraki.Network) bool { return n.Name == site }) {
			result.Issues = append(result.Issues, fmt.Sprintf("managed site %s has no network", site))
		}
	}

	if *verbose && len(networks) > 0 {
		result.JSONSample = sample(networks[0])
	}

	return result, networks
}

func checkDevices(ctx context.Context, client *meraki.Client, network meraki.Network) CheckResult {
	start := time.Now()
	result := CheckResult{Endpoint: fmt.Sprintf("ListNetworkDevices (%s)", network.Name)}

	devices, err := client.ListNetworkDevices(ctx, network.ID)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Count = len(devices)
	result.Issues = namingIssues(network.Name, devices)

	if *verbose && len(devices) > 0 {
		result.JSONSample = sample(devices[0])
	}

	return result
}

// namingIssues lists devices of site whose name is not canonical, belongs to
// another site, or repeats a name already in use.
func namingIssues(site string, devices []meraki.Device) []string {
	var issues []string
	seen := make(map[string]string, len(devices))

	for _, device := range devices {
		name, ok := naming.Parse(device.Name)
		switch {
		case !ok:
			issues = append(issues, fmt.Sprintf("%s: name %q is not canonical", device.Serial, device.Name))
		case name.Site != site:
			issues = append(issues, fmt.Sprintf("%s: name %q belongs to site %s", device.Serial, device.Name, name.Site))
		}

		if other, dup := seen[device.Name]; dup && device.Name != "" {
			issues = append(issues, fmt.Sprintf("%s: name %q already used by %s", device.Serial, device.Name, other))
		}
		seen[device.Name] = device.Serial
	}

	return issues
}

func sample(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

func indentJSON(jsonStr, indent string) string {
	lines := strings.Split(jsonStr, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
