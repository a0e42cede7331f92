// Package stats formats the traffic counters Tunnelblick reports for
// each configuration.
package stats

import "fmt"

const (
	// Binary unit multipliers (1024-based).
	kib = 1024
	mib = kib * 1024
	gib = mib * 1024
	tib = gib * 1024
)

// FormatBytes formats a byte count using binary units (KiB, MiB, GiB, TiB).
func FormatBytes(bytes uint64) string {
	switch {
	case bytes >= tib:
		return fmt.Sprintf("%.1f TiB", float64(bytes)/float64(tib))
	case bytes >= gib:
		return fmt.Sprintf("%.1f GiB", float64(bytes)/float64(gib))
	case bytes >= mib:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/float64(mib))
	case bytes >= kib:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/float64(kib))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
