// Package format renders byte counts and transfer rates for display.
// Precision narrows as magnitude grows so values stay at 3-4 significant
// characters: >=100 no decimals, >=10 one decimal, otherwise two.
package format

import "fmt"

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// Bytes formats a byte count as a human-readable string ("1.50 MB").
// Zero and negative values render as "0 B".
func Bytes(n float64) string {
	if n <= 0 {
		return "0 B"
	}
	i := 0
	for n >= 1024 && i < len(byteUnits)-1 {
		n /= 1024
		i++
	}
	return trimmed(n, byteUnits[i])
}

// Rate formats a bytes-per-second value ("2.41 MB/s"). Values below 1 KB/s
// render as whole B/s; zero and negative values render as "0 B/s".
func Rate(bps float64) string {
	if bps <= 0 {
		return "0 B/s"
	}
	if bps >= 1024*1024 {
		return trimmed(bps/(1024*1024), "MB/s")
	}
	if bps >= 1024 {
		return trimmed(bps/1024, "KB/s")
	}
	return fmt.Sprintf("%.0f B/s", bps)
}

func trimmed(v float64, unit string) string {
	switch {
	case v >= 100:
		return fmt.Sprintf("%.0f %s", v, unit)
	case v >= 10:
		return fmt.Sprintf("%.1f %s", v, unit)
	default:
		return fmt.Sprintf("%.2f %s", v, unit)
	}
}
