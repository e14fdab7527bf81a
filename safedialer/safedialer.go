// Package safedialer provides a net.Dialer Control function that
// rejects attempts to dial internal/private networks, so a malicious
// short link cannot point the expander at anything inside our own
// perimeter.
//
// This code was lightly adapted from Andrew Ayer's excellent
// "Preventing Server Side Request Forgery in Golang" blog post:
// https://www.agwa.name/blog/post/preventing_server_side_request_forgery_in_golang
package safedialer

/*
 * Written in 2019 by Andrew Ayer
 *
 * To the extent possible under law, the author(s) have dedicated all
 * copyright and related and neighboring rights to this software to the
 * public domain worldwide. This software is distributed without any
 * warranty.
 *
 * You should have received a copy of the CC0 Public
 * Domain Dedication along with this software. If not, see
 * <https://creativecommons.org/publicdomain/zero/1.0/>.
 */

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Errors indicating why a dial was refused.
var (
	ErrUnsafeIP      = errors.New("unsafe IP address")
	ErrUnsafeNetwork = errors.New("unsafe network type")
	ErrUnsafePort    = errors.New("unsafe port")
)

// Control is a net.Dialer Control function that permits only tcp4/tcp6
// connections to ports 80 and 443 on public IP addresses.
func Control(network string, address string, conn syscall.RawConn) error {
	if network != "tcp4" && network != "tcp6" {
		return fmt.Errorf("%w: %s", ErrUnsafeNetwork, network)
	}

	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%s is not a valid host/port pair: %s", address, err)
	}

	if port != "80" && port != "443" {
		return fmt.Errorf("%w: %s", ErrUnsafePort, port)
	}

	ipaddress := net.ParseIP(host)
	if ipaddress == nil {
		return fmt.Errorf("%s is not a valid IP address", host)
	}

	if !isPublicIPAddress(ipaddress) {
		return fmt.Errorf("%w: %s", ErrUnsafeIP, ipaddress)
	}

	return nil
}

var reservedBlocks = mustParseCIDRs(
	"10.0.0.0/8",     // RFC 1918
	"172.16.0.0/12",  // RFC 1918
	"192.168.0.0/16", // RFC 1918
	"100.64.0.0/10",  // carrier-grade NAT
	"169.254.0.0/16", // link local
	"192.0.0.0/24",   // IETF protocol assignments
	"192.0.2.0/24",   // TEST-NET-1
	"198.18.0.0/15",  // benchmarking
	"fc00::/7",       // unique local
	"fe80::/10",      // link local
)

func isPublicIPAddress(ip net.IP) bool {
	if !ip.IsGlobalUnicast() {
		// Covers loopback, multicast, and the unspecified address.
		return false
	}
	for _, block := range reservedBlocks {
		if block.Contains(ip) {
			return false
		}
	}
	return true
}

func mustParseCIDRs(blocks ...string) []*net.IPNet {
	nets := make([]*net.IPNet, len(blocks))
	for i, b := range blocks {
		_, network, err := net.ParseCIDR(b)
		if err != nil {
			panic(err)
		}
		nets[i] = network
	}
	return nets
}
