package attribute

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http/headers"
	"github.com/indigo-web/message/internal/strutil"
)

// Trust tells which proxies are allowed to report the client address.
type Trust struct {
	any      bool
	prefixes []netip.Prefix
}

// TrustNone ignores every forwarding header. The remote address is the client.
func TrustNone() Trust {
	return Trust{}
}

// TrustAny believes any forwarding header blindly.
func TrustAny() Trust {
	return Trust{any: true}
}

// TrustPrefixes trusts proxies within the networks. Single addresses are accepted too.
func TrustPrefixes(cidrs ...string) (Trust, error) {
	var trust Trust

	for _, cidr := range cidrs {
		if !strings.Contains(cidr, "/") {
			addr, err := netip.ParseAddr(cidr)
			if err != nil {
				return Trust{}, fmt.Errorf("trusted proxy %q: %w", cidr, err)
			}

			trust.prefixes = append(trust.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}

		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			return Trust{}, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}

		trust.prefixes = append(trust.prefixes, prefix.Masked())
	}

	return trust, nil
}

// ParseTrust interprets configuration values: no values trust nobody, a single "*" trusts
// everybody, otherwise values are networks.
func ParseTrust(values []string) (Trust, error) {
	switch {
	case len(values) == 0:
		return TrustNone(), nil
	case len(values) == 1 && values[0] == "*":
		return TrustAny(), nil
	default:
		return TrustPrefixes(values...)
	}
}

// Trusts reports whether the address belongs to a trusted proxy.
func (t Trust) Trusts(address string) bool {
	if t.any {
		return true
	}

	addr, ok := parseAddr(address)
	if !ok {
		return false
	}

	for _, prefix := range t.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

// ClientIP resolves the address of the client, looking through trusted proxies.
//
// The forwarded chain is taken from X-Forwarded-For, Forwarded or Client-Ip. If more than
// one of them is presented, they must agree. The remote address and then the chain from
// the nearest hop to the farthest are walked, and the first untrusted hop is the client.
// If every hop is trusted, the earliest chain entry is.
type ClientIP struct {
	Trusted Trust
}

func (c ClientIP) Resolve(r Request) (any, error) {
	remote := stripPort(r.ServerParams()["REMOTE_ADDR"])
	if !c.Trusted.any && len(c.Trusted.prefixes) == 0 {
		return remote, nil
	}

	chain, err := forwardedChain(r)
	if err != nil {
		return nil, err
	}

	if len(chain) == 0 {
		return remote, nil
	}

	if c.Trusted.any {
		return chain[0], nil
	}

	if !c.Trusted.Trusts(remote) {
		return remote, nil
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if !c.Trusted.Trusts(chain[i]) {
			return chain[i], nil
		}
	}

	return chain[0], nil
}

func forwardedChain(r Request) (chain []string, err error) {
	var (
		found  bool
		chains = [][]string{
			listChain(r.Header(headers.XForwardedFor)),
			forwardedHeaderChain(r.Header(headers.Forwarded)),
			listChain(r.Header(headers.ClientIP)),
		}
	)

	for _, candidate := range chains {
		if len(candidate) == 0 {
			continue
		}

		if found && !slices.Equal(chain, candidate) {
			return nil, fmt.Errorf(
				"%w: %s, %s and %s disagree",
				errors.ErrConflictingForwardHeaders, headers.XForwardedFor, headers.Forwarded, headers.ClientIP,
			)
		}

		chain, found = candidate, true
	}

	return chain, nil
}

func listChain(values []string) (chain []string) {
	for _, value := range values {
		for _, hop := range strings.Split(value, ",") {
			if hop = strings.TrimSpace(hop); len(hop) > 0 {
				chain = append(chain, stripPort(hop))
			}
		}
	}

	return chain
}

// forwardedHeaderChain extracts the `for=` parameters of RFC 7239 Forwarded header.
func forwardedHeaderChain(values []string) (chain []string) {
	for _, value := range values {
		for _, element := range strings.Split(value, ",") {
			for _, pair := range strings.Split(element, ";") {
				key, val, found := strings.Cut(strings.TrimSpace(pair), "=")
				if found && strings.EqualFold(key, "for") {
					chain = append(chain, stripPort(strutil.Unquote(val)))
				}
			}
		}
	}

	return chain
}

// stripPort drops the port and IPv6 brackets off the address, if any.
func stripPort(address string) string {
	if addrport, err := netip.ParseAddrPort(address); err == nil {
		return addrport.Addr().String()
	}

	return strings.TrimSuffix(strings.TrimPrefix(address, "["), "]")
}

func parseAddr(address string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return netip.Addr{}, false
	}

	return addr.Unmap(), true
}
