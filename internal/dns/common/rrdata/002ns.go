package rrdata

// EncodeNSData encodes an NS record string into its binary representation.
func EncodeNSData(data string) ([]byte, error) {
	// data = "ns.example.com"
	return EncodeDomainName(data)
}

// decodeNSData decodes the binary representation of an NS record into its target name.
func decodeNSData(data []byte) (string, error) {
	name, _, err := DecodeDomainName(data)
	return name, err
}
