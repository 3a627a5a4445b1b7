package scanner

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/darkhound/internal/model"
)

// MaxMediaFindings bounds how many media findings one scan appends.
const MaxMediaFindings = 5

// dataImagePattern matches base64 data URLs for image formats that can
// carry EXIF segments.
var dataImagePattern = regexp.MustCompile(`data:image/(?:jpe?g|tiff?|heic);base64,([A-Za-z0-9+/=_-]+)`)

// exifLeakTags maps EXIF tag names worth reporting to the entity kind
// they are rendered under. Tags outside this set (exposure, lens data,
// thumbnails) say nothing about who produced the image.
var exifLeakTags = map[string]string{
	"GPSLatitude":        "exif_gps",
	"GPSLongitude":       "exif_gps",
	"GPSLatitudeRef":     "exif_gps",
	"GPSLongitudeRef":    "exif_gps",
	"Make":               "exif_camera",
	"Model":              "exif_camera",
	"SerialNumber":       "exif_serial",
	"BodySerialNumber":   "exif_serial",
	"LensSerialNumber":   "exif_serial",
	"Software":           "exif_software",
	"ProcessingSoftware": "exif_software",
	"Artist":             "exif_author",
	"Author":             "exif_author",
	"Copyright":          "exif_author",
	"HostComputer":       "exif_computer",
}

// mediaIndicator is the synthetic indicator media findings carry, since
// they are not tied to any configured token.
const mediaIndicator = "embedded-image-metadata"

// scanMedia extracts EXIF metadata from base64 images embedded in the
// content. Each image with leak-relevant tags becomes one finding whose
// entities are the tag values. Undecodable or EXIF-free images are
// skipped silently: embedded media is attacker-controlled and mostly
// garbage.
func (s *Scanner) scanMedia(ctx context.Context, content string) []model.Finding {
	matches := dataImagePattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	findings := make([]model.Finding, 0, MaxMediaFindings)
	for _, m := range matches {
		if len(findings) >= MaxMediaFindings {
			s.logger.Warn("embedded image cap reached, ignoring extras",
				"images", len(matches),
				"cap", MaxMediaFindings)
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}

		imageData, err := base64.StdEncoding.DecodeString(m[1])
		if err != nil {
			imageData, err = base64.RawURLEncoding.DecodeString(m[1])
			if err != nil {
				continue
			}
		}

		entities := extractEXIFEntities(imageData)
		if len(entities) == 0 {
			continue
		}

		finding, err := model.NewFinding(
			mediaIndicator,
			"embedded image with identifying metadata",
			entities,
			ScoreEntities(model.RenderEntities(entities)),
		)
		if err != nil {
			continue
		}
		findings = append(findings, finding)
	}

	if len(findings) == 0 {
		return nil
	}
	return findings
}

// extractEXIFEntities parses the EXIF segment of an image and keeps
// the leak-relevant tags. Returns nil when the image has no EXIF data
// or only uninteresting tags.
func extractEXIFEntities(imageData []byte) map[string]string {
	rawExif, err := exif.SearchAndExtractExif(imageData)
	if err != nil || rawExif == nil {
		return nil
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	entities := make(map[string]string)
	for _, entry := range entries {
		kind, ok := exifLeakTags[entry.TagName]
		if !ok {
			continue
		}

		value := entry.TagName + "=" + entry.Formatted
		if existing, ok := entities[kind]; ok {
			value = existing + ", " + value
		}
		entities[kind] = strings.TrimSpace(value)
	}

	if len(entities) == 0 {
		return nil
	}
	return entities
}
