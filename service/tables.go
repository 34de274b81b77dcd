// Package service implements the Service Orchestrator of spec §4.6: mapping
// modified configuration files to the services that depend on them,
// topologically ordering restarts, and rolling back on failure.
package service

// ConfigServiceMap maps a config name to the service it affects when
// modified (spec §4.6.1). Configs absent from the map cause no restart and
// no warning. Callers may extend a copy of this table; it is never mutated
// at runtime.
var ConfigServiceMap = map[string]string{
	"network":  "network",
	"wireless": "network",
	"dhcp":     "dnsmasq",
	"firewall": "firewall",
	"uhttpd":   "uhttpd",
	"uspot":    "uspot",
	"system":   "system",
	"dropbear": "dropbear",
	"openvpn":  "openvpn",
}

// DependencyGraph lists, for each service, the services it depends on (spec
// §4.6.2): a dependency must restart before its dependent.
var DependencyGraph = map[string][]string{
	"network":  nil,
	"system":   nil,
	"firewall": {"network"},
	"dnsmasq":  {"network"},
	"uhttpd":   {"network"},
	"dropbear": {"network"},
	"openvpn":  {"network", "firewall"},
	"uspot":    {"network", "firewall", "dnsmasq"},
}

// ServicesFor maps a set of modified config names to the distinct set of
// services they imply restarting, in first-seen order.
func ServicesFor(modifiedConfigs []string, configMap map[string]string) []string {
	if configMap == nil {
		configMap = ConfigServiceMap
	}
	seen := make(map[string]bool)
	var out []string
	for _, cfg := range modifiedConfigs {
		svc, ok := configMap[cfg]
		if !ok {
			continue
		}
		if seen[svc] {
			continue
		}
		seen[svc] = true
		out = append(out, svc)
	}
	return out
}
