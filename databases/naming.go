package databases

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var mimeExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"audio/mpeg":      ".mp3",
	"application/pdf": ".pdf",
}

// turkish letters without a decomposition
var foldReplacer = strings.NewReplacer("ı", "i", "İ", "i", "ş", "s", "Ş", "s", "ğ", "g", "Ğ", "g")

// ExtensionForType returns the file extension for a MIME type, ".bin" when unknown
func ExtensionForType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	if ext, ok := mimeExtensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// ContentTypeForName infers the content type from a file extension
func ContentTypeForName(name string) string {
	ext := strings.ToLower(path.Ext(name))
	for t, e := range mimeExtensions {
		if e == ext {
			return t
		}
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// SanitizeName folds a suggested file name to lowercase ASCII letters, digits, dots, dashes and underscores
func SanitizeName(name string) string {
	name = foldReplacer.Replace(strings.TrimSpace(name))
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err == nil {
		name = folded
	}
	name = strings.ToLower(name)

	var b strings.Builder
	dash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-.")
}

// MediaFileName builds the stored file name: the sanitized suggested name with the
// extension derived from the content type, or a timestamp when no usable name is given.
func MediaFileName(suggested, contentType string, now time.Time) string {
	ext := ExtensionForType(contentType)
	base := SanitizeName(suggested)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" {
		base = fmt.Sprintf("media-%d", now.UnixMilli())
	}
	return base + ext
}
