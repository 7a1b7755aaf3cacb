// =============================================================================
// internal/allocation/allocation.go - Address pools and free address selection
// =============================================================================
package allocation

import (
	"strings"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/ip4"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/BurntSushi/toml"
)

// DefaultFile is the allocation file looked up when none is given
const DefaultFile = "mktool.toml"

// Allocation is a named address pool served by one DHCP server
type Allocation struct {
	Name       string `toml:"Name"`
	IpRange    string `toml:"IpRange"`
	DhcpServer string `toml:"DhcpServer"`
}

type file struct {
	Allocation []Allocation `toml:"Allocation"`
}

// Load reads [[Allocation]] tables from a TOML file
func Load(path string) ([]Allocation, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, failure.Wrapf(failure.ConfigurationLoad, err, "configuration load error %s", path)
	}
	return f.Allocation, nil
}

// Parse reads [[Allocation]] tables from TOML text
func Parse(data string) ([]Allocation, error) {
	var f file
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, failure.Wrapf(failure.ConfigurationLoad, err, "configuration load error")
	}
	return f.Allocation, nil
}

// Find returns the allocation with the given name, ignoring case
func Find(allocations []Allocation, name string) (*Allocation, error) {
	for i := range allocations {
		if strings.EqualFold(allocations[i].Name, name) {
			return &allocations[i], nil
		}
	}
	return nil, failure.New(failure.Configuration, "cannot find allocation with name %s in the configuration file", name)
}

// Check verifies the fields provisioning depends on
func (a *Allocation) Check() error {
	if strings.TrimSpace(a.IpRange) == "" {
		return failure.New(failure.Configuration, "allocation %s does not have IpRange", a.Name)
	}
	if strings.TrimSpace(a.DhcpServer) == "" {
		return failure.New(failure.Configuration, "allocation %s does not have DhcpServer", a.Name)
	}
	return nil
}

// Range parses the allocation's address range
func (a *Allocation) Range() (*ip4.Range, error) {
	return ip4.Parse(a.IpRange)
}

// InUse collects the addresses of every lease that is not disabled,
// dynamic or static
func InUse(leases []mikrotik.Entry) map[string]bool {
	used := make(map[string]bool, len(leases))
	for _, lease := range leases {
		if lease.Bool("disabled") {
			continue
		}
		if addr, ok := lease.Get("address"); ok {
			used[addr] = true
		}
	}
	return used
}

// SelectFreeAddress advances r until it yields an address no active lease
// holds. The range is consumed in the process.
func SelectFreeAddress(r *ip4.Range, leases []mikrotik.Entry) (string, error) {
	desc := r.String()
	used := InUse(leases)
	for {
		addr, ok := r.Next()
		if !ok {
			return "", failure.New(failure.PoolExhausted, "there are no free allocations left in the range %s", desc)
		}
		if !used[addr] {
			return addr, nil
		}
	}
}
