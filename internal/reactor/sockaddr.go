package reactor

import (
	"fmt"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// resolveSockaddr turns a "host:port" string into a unix.Sockaddr for
// Bind. Only IPv4 is supported, matching spec.md's scope (no mention of
// IPv6 anywhere in the external interfaces section).
func resolveSockaddr(addr string) (unix.Sockaddr, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("split host:port: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("bad port %q: %w", portStr, err)
	}
	sa := &unix.SockaddrInet4{Port: port}
	if host == "" || host == "0.0.0.0" {
		sa.Addr = [4]byte{0, 0, 0, 0}
		return sa, nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return nil, fmt.Errorf("resolve host %q: %w", host, err)
		}
		ip = ips[0]
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("host %q is not an IPv4 address", host)
	}
	copy(sa.Addr[:], ip4)
	return sa, nil
}

// sockaddrString renders a unix.Sockaddr as "host:port" for logging.
func sockaddrString(sa unix.Sockaddr) string {
	v4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return "unknown"
	}
	ip := net.IPv4(v4.Addr[0], v4.Addr[1], v4.Addr[2], v4.Addr[3])
	return net.JoinHostPort(ip.String(), strconv.Itoa(v4.Port))
}
