package storage

import (
	"github.com/h2non/bimg"
)

// rasterTypes are the libvips type names accepted for upload. Vector and
// document formats (svg, pdf) are excluded since they are served back from
// the same origin.
var rasterTypes = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"tiff": true,
	"heif": true,
	"avif": true,
}

// extensions lists the file name extensions each raster type may carry.
var extensions = map[string][]string{
	"jpeg": {"jpg", "jpeg", "jpe"},
	"png":  {"png"},
	"gif":  {"gif"},
	"webp": {"webp"},
	"tiff": {"tif", "tiff"},
	"heif": {"heif", "heic"},
	"avif": {"avif"},
}

// ImageType sniffs data and returns the libvips type name ("jpeg", "png",
// ...). ok is false unless data is a raster image whose header libvips can
// decode.
func ImageType(data []byte) (name string, ok bool) {
	name = bimg.DetermineImageTypeName(data)
	if !rasterTypes[name] {
		return "", false
	}
	size, err := bimg.NewImage(data).Size()
	if err != nil || size.Width <= 0 || size.Height <= 0 {
		return "", false
	}
	return name, true
}

// MatchesType reports whether the lower-case extension ext belongs to
// imageType.
func MatchesType(ext, imageType string) bool {
	for _, e := range extensions[imageType] {
		if e == ext {
			return true
		}
	}
	return false
}

func ContentType(imageType string) string {
	switch imageType {
	case "jpeg":
		return "image/jpeg"
	case "svg":
		return "image/svg+xml"
	default:
		return "image/" + imageType
	}
}
