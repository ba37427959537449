// Package quality classifies video streams into resolution buckets.
package quality

import "strconv"

// Unknown is returned when a stream has no usable width.
const Unknown = "Unknown"

// Resolution buckets, highest first. Width is the only dimension consulted:
// scope and letterboxed encodes keep their nominal width while the height
// shrinks.
var widthBuckets = []struct {
	minWidth int
	label    string
}{
	{3840, "2160p"},
	{1920, "1080p"},
	{1280, "720p"},
	{1024, "576p"},
	{720, "480p"},
}

// Classify maps a video width in pixels to a resolution label.
func Classify(width int) string {
	if width <= 0 {
		return Unknown
	}
	for _, b := range widthBuckets {
		if width >= b.minWidth {
			return b.label
		}
	}
	return strconv.Itoa(width) + "p"
}

// Tier returns a rank for a label produced by Classify so labels can be
// compared. Known buckets rank above the free-form "{width}p" labels, which
// rank above Unknown.
func Tier(label string) int {
	for i, b := range widthBuckets {
		if b.label == label {
			return len(widthBuckets) - i + 1
		}
	}
	if label == Unknown || label == "" {
		return 0
	}
	return 1
}
