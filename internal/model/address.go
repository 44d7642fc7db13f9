package model

import (
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
)

// ParseAddress splits raw on its first ':' into host and port.
// The host must be the wildcard or an IPv4 dotted quad. The port is taken
// as-is after dropping a single trailing newline.
func ParseAddress(raw string) (Address, error) {
	host, port, found := strings.Cut(raw, ":")
	if !found {
		return Address{}, fmt.Errorf("%w: missing ':' in %q", ErrInvalidFormat, raw)
	}
	if host != Wildcard && !govalidator.IsIPv4(host) {
		return Address{}, fmt.Errorf("%w: %q in %q", ErrInvalidHost, host, raw)
	}
	port = strings.TrimSuffix(port, "\n")
	if port == "" {
		return Address{}, fmt.Errorf("%w: empty port in %q", ErrInvalidFormat, raw)
	}
	return Address{Host: host, Port: port}, nil
}

func (a Address) String() string {
	return a.Host + ":" + a.Port
}

func (a Address) HostIsWildcard() bool { return a.Host == Wildcard }

func (a Address) PortIsWildcard() bool { return a.Port == Wildcard }

// Covers reports whether a, used as a rule input, matches every endpoint
// that b matches.
func (a Address) Covers(b Address) bool {
	return (a.HostIsWildcard() || a.Host == b.Host) &&
		(a.PortIsWildcard() || a.Port == b.Port)
}
