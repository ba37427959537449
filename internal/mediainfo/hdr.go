package mediainfo

import "strings"

// HDRTag is the dynamic-range token used in release names.
type HDRTag string

const (
	HDRTagNone        HDRTag = ""
	HDRTagDolbyVision HDRTag = "DV"
	HDRTagDVHDR10     HDRTag = "HDR.DV"
	HDRTagHDR10Plus   HDRTag = "HDR10Plus"
	HDRTagHDR         HDRTag = "HDR"
	HDRTagHLG         HDRTag = "HLG"
)

// DetectHDR classifies the dynamic range of a video track from its HDR
// format string, falling back to transfer characteristics and primaries.
func DetectHDR(v VideoTrack) HDRTag {
	format := strings.ToLower(v.HDR)
	transfer := strings.ToLower(v.TransferCharacteristics)
	primaries := strings.ToLower(v.ColorPrimaries)

	if containsDolbyVision(format) {
		if strings.Contains(format, "hdr10") || strings.Contains(transfer, "hdr") || containsPQ(transfer) {
			return HDRTagDVHDR10
		}
		return HDRTagDolbyVision
	}

	switch {
	case containsHDR10Plus(format):
		return HDRTagHDR10Plus
	case strings.Contains(format, "hdr"):
		return HDRTagHDR
	case containsPQ(transfer):
		return HDRTagHDR
	case containsHLG(transfer):
		return HDRTagHLG
	case containsBT2020(primaries):
		return HDRTagHDR
	default:
		return HDRTagNone
	}
}

func containsDolbyVision(format string) bool {
	return strings.Contains(format, "dolby vision") ||
		strings.Contains(format, "dovi") ||
		strings.Contains(format, "dvhe") ||
		strings.Contains(format, "dvh1")
}

func containsHDR10Plus(format string) bool {
	return strings.Contains(format, "hdr10+") ||
		strings.Contains(format, "hdr10plus") ||
		strings.Contains(format, "smpte st 2094")
}

// containsPQ reports a SMPTE ST 2084 (PQ) transfer function.
func containsPQ(transfer string) bool {
	return strings.Contains(transfer, "pq") ||
		strings.Contains(transfer, "smpte st 2084") ||
		strings.Contains(transfer, "smpte 2084") ||
		strings.Contains(transfer, "smpte2084")
}

func containsHLG(transfer string) bool {
	return strings.Contains(transfer, "hlg") ||
		strings.Contains(transfer, "arib std-b67") ||
		strings.Contains(transfer, "arib-std-b67")
}

func containsBT2020(primaries string) bool {
	return strings.Contains(primaries, "bt.2020") ||
		strings.Contains(primaries, "bt2020") ||
		strings.Contains(primaries, "rec.2020")
}
