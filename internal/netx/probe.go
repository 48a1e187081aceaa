// Package netx answers "is the device online right now" without a network
// round-trip.
package netx

import "net"

// Probe reports whether the host currently has a usable network link.
// Implementations must be cheap and side-effect free.
type Probe interface {
	IsOnline() bool
}

// interfaces is a test seam for net.Interfaces.
var interfaces = net.Interfaces

// addrsOf is a test seam for (*net.Interface).Addrs.
var addrsOf = func(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() }

// InterfaceProbe inspects the host's network interfaces. An interface that is
// up, not loopback and carries a non link-local unicast address counts as a
// live link. Enumeration errors mean offline.
type InterfaceProbe struct{}

func NewInterfaceProbe() InterfaceProbe { return InterfaceProbe{} }

func (InterfaceProbe) IsOnline() bool {
	ifaces, err := interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := addrsOf(iface)
		if err != nil {
			continue
		}

		for _, a := range addrs {
			if routable(a) {
				return true
			}
		}
	}
	return false
}

func routable(a net.Addr) bool {
	var ip net.IP
	switch v := a.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	default:
		return false
	}
	return ip.IsGlobalUnicast() && !ip.IsLinkLocalUnicast()
}

// StaticProbe always returns its own value.
type StaticProbe bool

func (p StaticProbe) IsOnline() bool { return bool(p) }
