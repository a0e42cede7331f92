package tunnelblick

import (
	"strconv"
	"strings"
)

// recordBoundary separates per-configuration records in the flattened
// property blob returned by `get properties of configurations`.
//
// Blob format: autoconnect:NO, state:EXITING, bytesOut:0, name:home-vpn2,
// class:configuration, bytesIn:0, ...
const recordBoundary = "class:configuration"

// Transfer holds the traffic counters reported for a configuration.
type Transfer struct {
	BytesIn  uint64
	BytesOut uint64
}

// ParseState extracts the connection state for the named configuration
// from the raw property blob.
//
// Returns StateUnknown if the blob is empty (the bridge produced no
// output) and StateNotFound if no record carries the requested name.
// The name match requires the name token to end at a comma or at the end
// of its record, so a configuration whose name is a prefix of another
// never matches the wrong record.
func ParseState(blob, name string) State {
	if strings.TrimSpace(blob) == "" {
		return StateUnknown
	}

	for _, record := range strings.Split(blob, recordBoundary) {
		if !recordHasName(record, name) {
			continue
		}
		if state, ok := fieldValue(record, "state"); ok {
			return State(state)
		}
	}

	return StateNotFound
}

// ParseTransfer extracts the traffic counters for the named configuration
// from the raw property blob. Returns false if the configuration is not
// present or its counters are malformed.
//
// The boundary token sits mid-record in the flattened blob, so a
// record's fields straddle one split: bytesOut and name land in the
// chunk before the boundary, bytesIn at the start of the chunk after it.
func ParseTransfer(blob, name string) (Transfer, bool) {
	chunks := strings.Split(blob, recordBoundary)
	for i, record := range chunks {
		if !recordHasName(record, name) {
			continue
		}

		out, okOut := fieldValue(record, "bytesOut")
		if !okOut || i+1 >= len(chunks) {
			return Transfer{}, false
		}
		in, okIn := fieldValue(chunks[i+1], "bytesIn")
		if !okIn {
			return Transfer{}, false
		}

		bytesIn, errIn := strconv.ParseUint(in, 10, 64)
		bytesOut, errOut := strconv.ParseUint(out, 10, 64)
		if errIn != nil || errOut != nil {
			return Transfer{}, false
		}

		return Transfer{BytesIn: bytesIn, BytesOut: bytesOut}, true
	}

	return Transfer{}, false
}

// ParseConfigurations parses the AppleScript list output of
// `get name of configurations` into configuration names.
func ParseConfigurations(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	// osascript may render the list with or without braces depending on
	// how the script returns it.
	raw = strings.NewReplacer("{", "", "}", "").Replace(raw)

	var names []string
	for _, part := range strings.Split(raw, ", ") {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}

// recordHasName reports whether the record contains a name field exactly
// matching the given configuration name. The token after the name must be
// a comma or the end of the record, so "home-vpn" does not match a record
// named "home-vpn2".
func recordHasName(record, name string) bool {
	marker := "name:" + name
	for from := 0; ; {
		idx := strings.Index(record[from:], marker)
		if idx == -1 {
			return false
		}
		rest := strings.TrimLeft(record[from+idx+len(marker):], " ")
		if rest == "" || strings.HasPrefix(rest, ",") {
			return true
		}
		from += idx + 1
	}
}

// fieldValue extracts the value of an inline key:value pair from a
// record, taking the substring up to the next comma or end of record.
func fieldValue(record, key string) (string, bool) {
	idx := strings.Index(record, key+":")
	if idx == -1 {
		return "", false
	}
	value := record[idx+len(key)+1:]
	if comma := strings.Index(value, ","); comma != -1 {
		value = value[:comma]
	}
	return strings.TrimSpace(value), true
}
