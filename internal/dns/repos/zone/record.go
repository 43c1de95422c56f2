package zone

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/haukened/rr-dns/internal/dns/common/rrdata"
	"github.com/haukened/rr-dns/internal/dns/domain"
)

// joinParenContinuation folds a parenthesised multi-line rdata block into a
// single logical line, advancing the scanner and lineNum as it consumes
// continuation lines. Unbalanced parens inside quoted strings are ignored.
func joinParenContinuation(scanner lineScanner, first string, lineNum *int) (string, error) {
	depth := parenDepth(first)
	line := first
	for depth > 0 {
		if !scanner.Scan() {
			return "", fmt.Errorf("unterminated parenthesised record")
		}
		*lineNum++
		next := scanner.Text()
		depth += parenDepth(next)
		line += " " + next
	}
	if depth < 0 {
		return "", fmt.Errorf("unbalanced closing parenthesis")
	}
	return line, nil
}

// lineScanner is the subset of *bufio.Scanner used above, to keep this file testable.
type lineScanner interface {
	Scan() bool
	Text() string
}

func parenDepth(line string) int {
	depth := 0
	inQuotes := false
	for _, r := range line {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case '(':
			if !inQuotes {
				depth++
			}
		case ')':
			if !inQuotes {
				depth--
			}
		}
	}
	return depth
}

// stripComment removes a trailing `;` comment, respecting quoted strings so
// a `;` inside a TXT value is not treated as a comment marker.
func stripComment(line string) string {
	inQuotes := false
	for i, r := range line {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ';':
			if !inQuotes {
				return line[:i]
			}
		}
	}
	return line
}

// stripParens blanks out the structural parentheses used for multi-line
// rdata grouping, once joinParenContinuation has already folded the
// continuation lines into one logical line.
func stripParens(line string) string {
	inQuotes := false
	out := []rune(line)
	for i, r := range out {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case '(', ')':
			if !inQuotes {
				out[i] = ' '
			}
		}
	}
	return string(out)
}

var knownClasses = map[string]bool{"IN": true, "CH": true, "HS": true}

// parseRecordLine parses one logical (post-continuation, post-comment)
// master-file line and adds the resulting record to state.
func parseRecordLine(line string, hadOwner bool, file string, lineNum int, state *parseState) error {
	fields := tokenize(line)
	if len(fields) == 0 {
		return nil
	}

	owner := state.lastOwner
	idx := 0
	if hadOwner {
		owner = fields[0]
		idx = 1
	}
	if owner == "@" {
		owner = state.origin
	}
	owner = qualify(owner, state.origin)
	state.lastOwner = owner

	if idx >= len(fields) {
		return fmt.Errorf("record missing type: %s", line)
	}

	ttl := state.ttl
	class := "IN"
	rrTypeTok := ""

	for idx < len(fields) {
		tok := fields[idx]
		upper := strings.ToUpper(tok)
		switch {
		case isUint(tok):
			v, _ := strconv.ParseUint(tok, 10, 32)
			ttl = uint32(v)
			idx++
		case knownClasses[upper]:
			class = upper
			idx++
		default:
			rrTypeTok = upper
			idx++
		}
		if rrTypeTok != "" {
			break
		}
	}
	if rrTypeTok == "" {
		return fmt.Errorf("record missing type: %s", line)
	}

	rrtype := domain.RRTypeFromString(rrTypeTok)
	if !rrtype.IsValid() {
		return fmt.Errorf("unsupported record type %q", rrTypeTok)
	}
	rrclass := domain.ParseRRClass(class)
	if !rrclass.IsValid() {
		return fmt.Errorf("unsupported record class %q", class)
	}

	rdataTokens := fields[idx:]
	text := qualifyRData(rrtype, strings.Join(rdataTokens, " "), state.origin)

	data, err := rrdata.Encode(rrtype, encodingText(rrtype, text))
	if err != nil {
		return fmt.Errorf("encoding %s rdata %q: %w", rrtype, text, err)
	}

	rr, err := domain.NewAuthoritativeResourceRecord(owner, rrtype, rrclass, ttl, data, text)
	if err != nil {
		return fmt.Errorf("invalid record: %v", err)
	}

	apex, isApex := closestApex(owner, state)
	if rrtype != domain.RRTypeSOA && !isApex {
		return fmt.Errorf("record %s outside any configured zone apex", owner)
	}

	if state.ownerTypes[owner] == nil {
		state.ownerTypes[owner] = make(map[domain.RRType]bool)
	}
	state.ownerTypes[owner][rrtype] = true

	switch rrtype {
	case domain.RRTypeSOA:
		if prev, ok := state.soaOwners[owner]; ok && prev != fmt.Sprintf("%s:%d", file, lineNum) {
			return fmt.Errorf("conflicting SOA for apex %s (already defined at %s)", owner, prev)
		}
		state.soaOwners[owner] = fmt.Sprintf("%s:%d", file, lineNum)
		state.builder.AddApex(owner)
		state.apexesAdded[owner] = true
		state.builder.SetSOA(owner, rr)
	case domain.RRTypeNS:
		state.nsRecords[apex] = append(state.nsRecords[apex], rr)
	}

	state.builder.Add(rr)
	return nil
}

func closestApex(owner string, state *parseState) (string, bool) {
	for apex := range state.apexesAdded {
		if owner == apex || strings.HasSuffix(owner, "."+apex) {
			return apex, true
		}
	}
	return "", false
}

func isUint(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// tokenize splits a line into whitespace-separated fields, keeping quoted
// strings intact as single fields (quotes retained for TXT/CAA rdata).
func tokenize(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && !inQuotes:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

// qualify appends origin to a relative (non-fully-qualified) owner name.
func qualify(name, origin string) string {
	if name == "" {
		return origin
	}
	if strings.HasSuffix(name, ".") {
		return strings.ToLower(name)
	}
	if origin == "" {
		return strings.ToLower(name) + "."
	}
	return strings.ToLower(name) + "." + origin
}

// encodingText adapts a master-file rdata string to the plain form
// rrdata.Encode expects for types whose zone-file syntax doesn't match
// their encoder's input directly: TXT's quoted character-strings become
// rrdata's semicolon-joined segments.
func encodingText(rrtype domain.RRType, text string) string {
	if rrtype != domain.RRTypeTXT {
		return text
	}
	var segments []string
	for _, tok := range tokenize(text) {
		segments = append(segments, strings.Trim(tok, `"`))
	}
	return strings.Join(segments, ";")
}

// qualifyRData appends origin to relative domain-name rdata (NS/CNAME/PTR/MX
// exchange/SOA mname+rname targets); other record types are left untouched.
func qualifyRData(rrtype domain.RRType, text, origin string) string {
	switch rrtype {
	case domain.RRTypeNS, domain.RRTypeCNAME, domain.RRTypePTR:
		if !strings.HasSuffix(text, ".") {
			return qualify(text, origin)
		}
		return text
	case domain.RRTypeMX:
		parts := strings.Fields(text)
		if len(parts) == 2 && !strings.HasSuffix(parts[1], ".") {
			return parts[0] + " " + qualify(parts[1], origin)
		}
		return text
	case domain.RRTypeSOA:
		parts := strings.Fields(text)
		if len(parts) == 7 {
			if !strings.HasSuffix(parts[0], ".") {
				parts[0] = qualify(parts[0], origin)
			}
			if !strings.HasSuffix(parts[1], ".") {
				parts[1] = qualify(parts[1], origin)
			}
			return strings.Join(parts, " ")
		}
		return text
	default:
		return text
	}
}
