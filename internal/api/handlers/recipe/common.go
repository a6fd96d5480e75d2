package recipe

import (
	"strings"
)

// describeImage classifies an image payload for logging without the payload
// itself.
func describeImage(image string) string {
	switch {
	case image == "":
		return "empty"
	case strings.HasPrefix(image, "data:image/"):
		parts := strings.SplitN(image, ";base64,", 2)
		if len(parts) == 2 {
			return "base64_data_uri_" + strings.TrimPrefix(parts[0], "data:image/")
		}
		return "invalid_data_uri"
	case strings.HasPrefix(image, "/9j/"):
		return "base64_jpeg"
	case strings.HasPrefix(image, "iVBORw0KGgo"):
		return "base64_png"
	default:
		return "base64"
	}
}
