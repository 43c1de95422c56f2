// Package zone parses RFC 1035 master files into an in-memory zonestore.ZoneStore.
package zone

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/haukened/rr-dns/internal/dns/common/log"
	"github.com/haukened/rr-dns/internal/dns/domain"
	"github.com/haukened/rr-dns/internal/dns/repos/zonestore"
)

// ValidationError reports a fatal problem found while loading a zone.
type ValidationError struct {
	File string
	Line int
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// parseState tracks directive context while walking a master file. $ORIGIN
// and the last owner name both persist across $INCLUDEd files sharing a load.
type parseState struct {
	origin      string
	ttl         uint32
	ttlSet      bool
	lastOwner   string
	builder     *zonestore.Builder
	soaOwners   map[string]string // apex -> file:line of first SOA seen, for conflict detection
	nsRecords   map[string][]domain.ResourceRecord
	apexesAdded map[string]bool
	ownerTypes  map[string]map[domain.RRType]bool // owner -> rtypes seen, for CNAME-exclusivity checking
}

// LoadZoneDirectory walks dir for master files (.zone, .db, .txt) and merges
// every zone they define into a single ZoneStore. A conflicting SOA for the
// same apex across files is a fatal ValidationError.
func LoadZoneDirectory(dir string, defaultTTL uint32) (*zonestore.ZoneStore, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".zone", ".db", ".txt":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking zone directory %s: %w", dir, err)
	}
	sort.Strings(files)

	state := &parseState{
		ttl:         defaultTTL,
		builder:     zonestore.NewBuilder(),
		soaOwners:   make(map[string]string),
		nsRecords:   make(map[string][]domain.ResourceRecord),
		apexesAdded: make(map[string]bool),
		ownerTypes:  make(map[string]map[domain.RRType]bool),
	}
	for _, f := range files {
		if err := loadFile(f, state); err != nil {
			return nil, err
		}
	}
	if err := validateZone(state); err != nil {
		return nil, err
	}
	for apex, rrs := range state.nsRecords {
		state.builder.SetNS(apex, domain.RRSet(rrs))
	}
	return state.builder.Build(), nil
}

// LoadFile parses a single master file into a fresh ZoneStore, for use by
// the CLI's `check` subcommand where only one file is being validated.
func LoadFile(path string, defaultTTL uint32) (*zonestore.ZoneStore, error) {
	state := &parseState{
		ttl:         defaultTTL,
		builder:     zonestore.NewBuilder(),
		soaOwners:   make(map[string]string),
		nsRecords:   make(map[string][]domain.ResourceRecord),
		apexesAdded: make(map[string]bool),
		ownerTypes:  make(map[string]map[domain.RRType]bool),
	}
	if err := loadFile(path, state); err != nil {
		return nil, err
	}
	if err := validateZone(state); err != nil {
		return nil, err
	}
	for apex, rrs := range state.nsRecords {
		state.builder.SetNS(apex, domain.RRSet(rrs))
	}
	return state.builder.Build(), nil
}

// validateZone enforces the data-model invariants that span the whole load:
// every apex must have exactly one SOA and at least one NS, and no owner may
// carry a CNAME alongside any other record type.
func validateZone(state *parseState) error {
	for apex := range state.apexesAdded {
		if len(state.nsRecords[apex]) == 0 {
			loc := state.soaOwners[apex]
			return &ValidationError{File: soaFile(loc), Line: soaLine(loc), Msg: fmt.Sprintf("apex %s has no NS records", apex)}
		}
	}
	for owner, types := range state.ownerTypes {
		if types[domain.RRTypeCNAME] && len(types) > 1 {
			return fmt.Errorf("owner %s has a CNAME alongside other record types", owner)
		}
	}
	return nil
}

// soaFile and soaLine split the "file:line" location recorded in
// parseState.soaOwners back apart, for attributing an apex-completeness
// error to the file that declared its SOA.
func soaFile(loc string) string {
	i := strings.LastIndex(loc, ":")
	if i < 0 {
		return loc
	}
	return loc[:i]
}

func soaLine(loc string) int {
	i := strings.LastIndex(loc, ":")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(loc[i+1:])
	if err != nil {
		return 0
	}
	return n
}

func loadFile(path string, state *parseState) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening zone file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()
		line, err := joinParenContinuation(scanner, raw, &lineNum)
		if err != nil {
			return &ValidationError{File: path, Line: lineNum, Msg: err.Error()}
		}
		line = stripComment(line)
		line = stripParens(line)
		hadOwner := len(line) > 0 && line[0] != ' ' && line[0] != '\t'
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "$") {
			if err := handleDirective(line, path, state); err != nil {
				return &ValidationError{File: path, Line: lineNum, Msg: err.Error()}
			}
			continue
		}
		if err := parseRecordLine(line, hadOwner, path, lineNum, state); err != nil {
			return &ValidationError{File: path, Line: lineNum, Msg: err.Error()}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading zone file %s: %w", path, err)
	}
	return nil
}

// warnIfPublicSuffixOrigin logs a non-fatal warning when a configured
// $ORIGIN has no registrable label beyond a known public suffix (e.g.
// "co.uk."), which usually means the zone file misconfigured its origin.
func warnIfPublicSuffixOrigin(file, origin string) {
	name := strings.TrimSuffix(origin, ".")
	if name == "" {
		return
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(name); err != nil {
		log.Warn(map[string]any{
			"file":   file,
			"origin": origin,
			"error":  err.Error(),
		}, "zone origin is itself a public suffix, not a registrable domain")
	}
}

func handleDirective(line, file string, state *parseState) error {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return fmt.Errorf("incomplete directive: %s", line)
	}
	switch strings.ToUpper(parts[0]) {
	case "$ORIGIN":
		origin := parts[1]
		if !strings.HasSuffix(origin, ".") {
			origin += "."
		}
		state.origin = strings.ToLower(origin)
		warnIfPublicSuffixOrigin(file, state.origin)
	case "$TTL":
		ttl, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid $TTL value: %v", err)
		}
		state.ttl = uint32(ttl)
		state.ttlSet = true
	case "$INCLUDE":
		includePath := parts[1]
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(filepath.Dir(file), includePath)
		}
		return loadFile(includePath, state)
	default:
		return fmt.Errorf("unsupported directive: %s", parts[0])
	}
	return nil
}
