package config

import "net"

// DeviceByIP resolves an IP to a managed device, matching either the
// management address or any interface address. Returns ("", zero, false)
// when no device owns the IP.
func (n NetworkConfig) DeviceByIP(ip string) (string, DeviceConfig, bool) {
	for name, dev := range n.Devices {
		if dev.ManagementIP == ip {
			return name, dev, true
		}
		for _, ifIP := range dev.Interfaces {
			if ifIP == ip {
				return name, dev, true
			}
		}
	}
	return "", DeviceConfig{}, false
}

// VLANByIP resolves an IP to its VLAN by subnet membership.
func (n NetworkConfig) VLANByIP(ip string) (string, VLANConfig, bool) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", VLANConfig{}, false
	}
	for name, vlan := range n.VLANs {
		_, subnet, err := net.ParseCIDR(vlan.Subnet)
		if err != nil {
			continue
		}
		if subnet.Contains(parsed) {
			return name, vlan, true
		}
	}
	return "", VLANConfig{}, false
}
