package rrdata

import "testing"

func TestDecodeNSData(t *testing.T) {
	wire, _ := EncodeDomainName("ns.example.com.")
	got, err := decodeNSData(wire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ns.example.com" {
		t.Errorf("decodeNSData() = %q, want %q", got, "ns.example.com")
	}
}

func TestDecodeCNAMEData(t *testing.T) {
	wire, _ := EncodeDomainName("alias.example.com.")
	got, err := decodeCNAMEData(wire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alias.example.com" {
		t.Errorf("decodeCNAMEData() = %q, want %q", got, "alias.example.com")
	}
}

func TestDecodePTRData(t *testing.T) {
	wire, _ := EncodeDomainName("ptr.example.com.")
	got, err := decodePTRData(wire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ptr.example.com" {
		t.Errorf("decodePTRData() = %q, want %q", got, "ptr.example.com")
	}
}

func TestDecodeTXTData_RoundTrip(t *testing.T) {
	wire, err := EncodeTXTData("hello;world")
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	got, err := decodeTXTData(wire)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got != "hello;world" {
		t.Errorf("decodeTXTData() = %q, want %q", got, "hello;world")
	}
}

func TestDecodeAData_InvalidLength(t *testing.T) {
	_, err := decodeAData([]byte{1, 2, 3})
	if err == nil {
		t.Error("expected error for invalid A record length")
	}
}

func TestDecodeAAAAData_RoundTrip(t *testing.T) {
	wire, err := EncodeAAAAData("2001:db8::1")
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	got, err := decodeAAAAData(wire)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got != "2001:db8::1" {
		t.Errorf("decodeAAAAData() = %q, want %q", got, "2001:db8::1")
	}
}
