// Package wire provides encoding and decoding of DNS messages for UDP
// transport, as specified in RFC 1035 §4.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/haukened/rr-dns/internal/dns/common/log"
	"github.com/haukened/rr-dns/internal/dns/domain"
)

// maxUDPMessageSize is the wire size budget for a reply without EDNS0;
// larger responses are truncated per RFC 1035 §4.2.1.
const maxUDPMessageSize = 512

const (
	opcodeQuery uint8 = 0
	flagQR            = 1 << 15
	flagAA            = 1 << 10
	flagTC            = 1 << 9
	flagRD            = 1 << 8
	flagRA            = 1 << 7
)

// udpCodec implements DNSCodec for DNS over UDP messages.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec creates a new udpCodec using the provided logger.
func NewUDPCodec(logger log.Logger) *udpCodec {
	return &udpCodec{logger: logger}
}

// DecodeQuery parses a client datagram into a DecodedQuery. A structurally
// sound header with an unsupported qdcount or opcode yields a *DecodeError
// carrying the rcode to answer with, along with enough of the decoded
// header (ID, RD) to build that reply; a datagram shorter than the 12-byte
// header returns a plain error meaning the datagram should be dropped.
func (c *udpCodec) DecodeQuery(data []byte) (DecodedQuery, error) {
	if len(data) < 12 {
		return DecodedQuery{}, errors.New("message shorter than a DNS header")
	}

	id := binary.BigEndian.Uint16(data[0:2])
	flags := binary.BigEndian.Uint16(data[2:4])
	opcode := uint8((flags >> 11) & 0x0F)
	rd := flags&flagRD != 0
	qdCount := binary.BigEndian.Uint16(data[4:6])

	dq := DecodedQuery{Question: domain.Question{ID: id}, RD: rd, Opcode: opcode}

	if qdCount != 1 {
		return dq, &DecodeError{RCode: domain.RCode(1), Err: fmt.Errorf("qdcount = %d, want 1", qdCount)}
	}
	if opcode != opcodeQuery {
		return dq, &DecodeError{RCode: domain.RCode(4), Err: fmt.Errorf("unsupported opcode %d", opcode)}
	}

	name, qtype, qclass, _, err := decodeQuestion(data, 12)
	if err != nil {
		return dq, &DecodeError{RCode: domain.RCode(1), Err: fmt.Errorf("decoding question: %w", err)}
	}

	dq.Question = domain.Question{
		ID:    id,
		Name:  name,
		Type:  domain.RRType(qtype),
		Class: domain.RRClass(qclass),
	}
	return dq, nil
}

// decodeQuestion parses the question section starting at offset, returning
// the name, qtype, qclass, and the offset just past it.
func decodeQuestion(data []byte, offset int) (string, uint16, uint16, int, error) {
	name, newOffset, err := decodeName(data, offset)
	if err != nil {
		return "", 0, 0, 0, err
	}
	if newOffset+4 > len(data) {
		return "", 0, 0, 0, errors.New("truncated question fields")
	}
	qtype := binary.BigEndian.Uint16(data[newOffset : newOffset+2])
	qclass := binary.BigEndian.Uint16(data[newOffset+2 : newOffset+4])
	return name, qtype, qclass, newOffset + 4, nil
}

// decodeName decodes a domain name at offset, handling compression pointers.
func decodeName(data []byte, offset int) (string, int, error) {
	var labels []string
	for {
		if offset >= len(data) {
			return "", 0, errors.New("offset out of bounds")
		}
		length := int(data[offset])
		if length == 0 {
			offset++
			break
		}
		if length&0xC0 == 0xC0 {
			if offset+1 >= len(data) {
				return "", 0, errors.New("compression pointer out of bounds")
			}
			ptr := int(binary.BigEndian.Uint16(data[offset:offset+2]) & 0x3FFF)
			suffix, _, err := decodeName(data, ptr)
			if err != nil {
				return "", 0, err
			}
			if suffix != "." {
				labels = append(labels, strings.TrimSuffix(suffix, "."))
			}
			offset += 2
			break
		}
		offset++
		if offset+length > len(data) {
			return "", 0, errors.New("label length out of bounds")
		}
		labels = append(labels, string(data[offset:offset+length]))
		offset += length
	}
	return strings.Join(labels, ".") + ".", offset, nil
}

// encodeDomainName encodes name into DNS wire format without compression.
func encodeDomainName(name string) ([]byte, error) {
	var buf bytes.Buffer
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		buf.WriteByte(0)
		return buf.Bytes(), nil
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) > 63 {
			return nil, fmt.Errorf("label too long: %s", label)
		}
		buf.WriteByte(byte(len(label)))
		buf.WriteString(label)
	}
	buf.WriteByte(0)
	return buf.Bytes(), nil
}

// EncodeResponse serializes resp as the reply to q's question, truncating
// to maxUDPMessageSize by dropping whole trailing sections when necessary.
func (c *udpCodec) EncodeResponse(q DecodedQuery, resp domain.DNSResponse) ([]byte, error) {
	questionBytes, err := encodeQuestionSection(q.Question)
	if err != nil {
		return nil, err
	}

	attempts := []struct {
		answers, authority, additional []domain.ResourceRecord
		truncated                      bool
	}{
		{resp.Answers, resp.Authority, resp.Additional, false},
		{resp.Answers, resp.Authority, nil, true},
		{resp.Answers, nil, nil, true},
		{nil, nil, nil, true},
	}

	var packet []byte
	for _, a := range attempts {
		packet, err = buildPacket(q, resp.RCode, questionBytes, a.answers, a.authority, a.additional, a.truncated && packetWouldTruncate(a, resp))
		if err != nil {
			return nil, err
		}
		if len(packet) <= maxUDPMessageSize {
			break
		}
	}

	c.logger.Debug(map[string]any{
		"id":    resp.ID,
		"rcode": resp.RCode.String(),
		"size":  len(packet),
	}, "encoded DNS response")

	return packet, nil
}

// packetWouldTruncate reports whether dropping down to this attempt's
// sections actually differs from the full response, so TC is only set when
// something was genuinely left out.
func packetWouldTruncate(a struct {
	answers, authority, additional []domain.ResourceRecord
	truncated                      bool
}, resp domain.DNSResponse) bool {
	return len(a.answers) != len(resp.Answers) ||
		len(a.authority) != len(resp.Authority) ||
		len(a.additional) != len(resp.Additional)
}

func buildPacket(q DecodedQuery, rcode domain.RCode, questionBytes []byte, answers, authority, additional []domain.ResourceRecord, tc bool) ([]byte, error) {
	var buf bytes.Buffer

	flags := uint16(flagQR) | uint16(flagAA)
	if q.RD {
		flags |= flagRD
	}
	if tc {
		flags |= flagTC
	}
	flags |= uint16(rcode) & 0x0F

	_ = binary.Write(&buf, binary.BigEndian, q.Question.ID)
	_ = binary.Write(&buf, binary.BigEndian, flags)
	_ = binary.Write(&buf, binary.BigEndian, uint16(1))
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(answers)))
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(authority)))
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(additional)))

	buf.Write(questionBytes)

	for _, section := range [][]domain.ResourceRecord{answers, authority, additional} {
		for _, rr := range section {
			if err := encodeResourceRecord(&buf, rr); err != nil {
				return nil, err
			}
		}
	}

	return buf.Bytes(), nil
}

func encodeQuestionSection(q domain.Question) ([]byte, error) {
	var buf bytes.Buffer
	name, err := encodeDomainName(q.Name)
	if err != nil {
		return nil, err
	}
	buf.Write(name)
	_ = binary.Write(&buf, binary.BigEndian, uint16(q.Type))
	_ = binary.Write(&buf, binary.BigEndian, uint16(q.Class))
	return buf.Bytes(), nil
}

func encodeResourceRecord(buf *bytes.Buffer, rr domain.ResourceRecord) error {
	name, err := encodeDomainName(rr.Name)
	if err != nil {
		return err
	}
	buf.Write(name)
	_ = binary.Write(buf, binary.BigEndian, uint16(rr.Type))
	_ = binary.Write(buf, binary.BigEndian, uint16(rr.Class))
	_ = binary.Write(buf, binary.BigEndian, rr.TTL())

	dataLen := len(rr.Data)
	if dataLen > 65535 {
		return fmt.Errorf("resource record data too large: %d bytes", dataLen)
	}
	_ = binary.Write(buf, binary.BigEndian, uint16(dataLen))
	buf.Write(rr.Data)
	return nil
}

var _ DNSCodec = &udpCodec{}
