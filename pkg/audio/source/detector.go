package source

import (
	"mime"
	"net/url"
	"path/filepath"
	"strings"
)

// Detector picks a source type for a location
type Detector struct {
	transcode bool
}

// NewDetector creates a detector. With transcode set, local WAV files are
// sent through ffmpeg as well.
func NewDetector(transcode bool) *Detector {
	return &Detector{transcode: transcode}
}

// DetectType detects the source type from a path or URL
func (d *Detector) DetectType(location string) SourceType {
	if location == "" {
		return SourceTypeUnsupported
	}
	if isRemote(location) {
		return SourceTypeHTTP
	}
	return d.detectFromExtension(location)
}

func (d *Detector) detectFromExtension(location string) SourceType {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".wav", ".wave":
		if d.transcode {
			return SourceTypeFFmpeg
		}
		return SourceTypeWAV
	case ".pcm", ".raw", ".s16":
		return SourceTypePCM
	default:
		return SourceTypeFFmpeg
	}
}

// DetectFromContentType maps a response content type, falling back to the
// URL path extension
func (d *Detector) DetectFromContentType(contentType, location string) SourceType {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "audio/wav", "audio/wave", "audio/x-wav", "audio/vnd.wave":
			if d.transcode {
				return SourceTypeFFmpeg
			}
			return SourceTypeWAV
		case "audio/l16", "audio/pcm":
			return SourceTypePCM
		}
	}

	if u, err := url.Parse(location); err == nil && u.Path != "" {
		return d.detectFromExtension(u.Path)
	}
	return SourceTypeFFmpeg
}

func isRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
