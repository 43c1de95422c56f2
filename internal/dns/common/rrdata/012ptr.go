package rrdata

// EncodePTRData encodes a PTR record string into its binary representation.
func EncodePTRData(data string) ([]byte, error) {
	// data = "ptr.example.com"
	return EncodeDomainName(data)
}

// decodePTRData decodes the binary representation of a PTR record into its target name.
func decodePTRData(data []byte) (string, error) {
	name, _, err := DecodeDomainName(data)
	return name, err
}
