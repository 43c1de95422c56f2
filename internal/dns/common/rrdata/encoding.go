package rrdata

import (
	"fmt"

	"github.com/haukened/rr-dns/internal/dns/domain"
)

// Encode encodes a record value based on its type, to its binary representation.
func Encode(rrType domain.RRType, data string) ([]byte, error) {
	switch rrType {
	case domain.RRTypeA: // 1
		return EncodeAData(data)
	case domain.RRTypeNS: // 2
		return EncodeNSData(data)
	case domain.RRTypeCNAME: // 5
		return EncodeCNAMEData(data)
	case domain.RRTypeSOA: // 6
		return EncodeSOAData(data)
	case domain.RRTypePTR: // 12
		return EncodePTRData(data)
	case domain.RRTypeMX: // 15
		return EncodeMXData(data)
	case domain.RRTypeTXT: // 16
		return EncodeTXTData(data)
	case domain.RRTypeAAAA: // 28
		return EncodeAAAAData(data)
	case domain.RRTypeSRV: // 33
		return EncodeSRVData(data)
	case domain.RRTypeOPT: // 41
		return notAllowedInZone(domain.RRTypeOPT)
	case domain.RRTypeCAA: // 257
		return EncodeCAAData(data)
	default:
		// Every other recognized or RFC 3597 generic type: the RDATA text must
		// use the RFC 3597 §5 generic syntax ("\# <length> <hex>"), decoded to
		// opaque rrdata.RawData rather than rejected.
		return EncodeRawData(data)
	}
}

// notAllowedInZone returns an error indicating that the specified DNS record type is not allowed in zone files.
func notAllowedInZone(t domain.RRType) ([]byte, error) {
	return nil, fmt.Errorf("%s record type not allowed in zone files", t)
}
