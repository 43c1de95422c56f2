package rrdata

import (
	"fmt"
	"net"
	"strings"

	"github.com/haukened/rr-dns/internal/dns/common/utils"
)

// EncodeDomainName encodes a domain name into wire format (length-prefixed labels ending in 0).
// used in multiple record types
func EncodeDomainName(name string) ([]byte, error) {
	// name = foo.example.com.
	name = utils.CanonicalDNSName(name)
	labels := strings.Split(name, ".")
	var encoded []byte
	for _, label := range labels {
		if len(label) == 0 {
			continue
		}
		if len(label) > 63 {
			return nil, fmt.Errorf("label too long: %s", label)
		}
		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, label...)
	}
	encoded = append(encoded, 0) // null terminator
	return encoded, nil
}

// DecodeDomainName decodes a length-prefixed label sequence starting at the
// beginning of data into its textual form, returning the name and the
// number of bytes consumed. Names embedded in rdata are not permitted to
// use message-level compression pointers (RFC 1035 §4.1.4), so none are
// followed here; the rrdata package never sees the rest of the message
// anyway.
func DecodeDomainName(data []byte) (string, int, error) {
	var labels []string
	i := 0
	for {
		if i >= len(data) {
			return "", 0, fmt.Errorf("truncated domain name")
		}
		length := int(data[i])
		if length == 0 {
			i++
			break
		}
		if length&0xC0 != 0 {
			return "", 0, fmt.Errorf("compressed name not allowed in rdata")
		}
		i++
		if i+length > len(data) {
			return "", 0, fmt.Errorf("truncated domain name label")
		}
		labels = append(labels, string(data[i:i+length]))
		i += length
	}
	return strings.Join(labels, "."), i, nil
}

// isIPv4 checks whether the provided net.IP address is an IPv4 address.
// It returns true if the IP is not nil and can be converted to IPv4 format.
func isIPv4(ip net.IP) bool {
	return ip != nil && ip.To4() != nil
}

// isIPv6 checks whether the provided net.IP is a valid IPv6 address.
// It returns true if the IP is not nil, has a valid 16-byte representation,
// and does not have a valid 4-byte IPv4 representation.
func isIPv6(ip net.IP) bool {
	return ip != nil && ip.To16() != nil && ip.To4() == nil
}
