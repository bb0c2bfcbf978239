package metadata

// QualityLabel maps stream dimensions to a resolution-quality label.
// Each threshold tests width OR height, so footage with an unusual
// aspect ratio classifies by its larger axis.
func QualityLabel(width, height int) string {
	switch {
	case width >= 3840 || height >= 2160:
		return "4K/UHD"
	case width >= 1920 || height >= 1080:
		return "1080p/FHD"
	case width >= 1280 || height >= 720:
		return "720p/HD"
	case width >= 640 || height >= 480:
		return "480p/SD"
	default:
		return "Low Resolution"
	}
}
