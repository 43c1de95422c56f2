package wire

import "github.com/haukened/rr-dns/internal/dns/domain"

// DecodedQuery is a client query together with the header bits the composer
// and pre-checks need beyond the bare Question.
type DecodedQuery struct {
	Question domain.Question
	RD       bool // recursion desired, echoed back unmodified
	Opcode   uint8
}

// DecodeError classifies a failure to parse a client datagram into one of
// the three wire-level rcodes the server must still answer with, rather
// than silently dropping the packet.
type DecodeError struct {
	RCode domain.RCode
	Err   error
}

func (e *DecodeError) Error() string { return e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// DNSCodec serializes and deserializes DNS messages on the wire.
type DNSCodec interface {
	// DecodeQuery parses a client datagram. A malformed question or an
	// unsupported qdcount/opcode is reported as a *DecodeError carrying the
	// rcode the server must still reply with (FORMERR or NOTIMP); any other
	// error (a datagram shorter than the 12-byte header) means the datagram
	// isn't a DNS message at all and should be dropped.
	DecodeQuery(data []byte) (DecodedQuery, error)

	// EncodeResponse serializes resp as the reply to q, echoing q's name,
	// type, and class in the question section and q's RD bit in the header.
	// The result is truncated to fit 512 octets (dropping additional, then
	// authority, then answer records and setting TC=1) when necessary.
	EncodeResponse(q DecodedQuery, resp domain.DNSResponse) ([]byte, error)
}
