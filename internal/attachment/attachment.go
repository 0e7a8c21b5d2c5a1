// Package attachment names, encodes and stores complaint photos.
package attachment

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// File is an uploaded attachment held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Empty reports whether there is nothing to store.
func (f *File) Empty() bool {
	return f == nil || len(f.Data) == 0
}

// Store persists attachments in an object bucket.
type Store interface {
	// Put uploads data under name in bucket.
	Put(ctx context.Context, bucket, name, contentType string, data []byte) error
	// PublicURL returns the public link of an object. Only meaningful after a
	// successful Put.
	PublicURL(bucket, name string) string
	// Delete removes an object.
	Delete(ctx context.Context, bucket, name string) error
}

// ObjectName derives a collision-resistant object name from the upload time
// and the original file name: "<unix millis>-<base name>".
func ObjectName(now time.Time, original string) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "attachment"
	}
	base = strings.Map(func(r rune) rune {
		if r == ' ' || r == '?' || r == '#' || r == '%' {
			return '_'
		}
		return r
	}, base)
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

// ObjectNameFromRef returns the object name behind a stored image reference:
// a public URL as returned by Store.PublicURL, or a bare object name. Inline
// data URLs have no object.
func ObjectNameFromRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty image reference")
	}
	if strings.HasPrefix(ref, "data:") {
		return "", fmt.Errorf("inline image has no stored object")
	}
	if !strings.Contains(ref, "://") {
		return ref, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid image url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", fmt.Errorf("image url %q has no object name", ref)
	}
	return name, nil
}

// DataURL encodes f as an inline "data:" URL. This is the same string a
// browser preview of the file produces and is stored as the image reference
// when the upload fails.
func DataURL(f *File) string {
	return "data:" + ContentType(f) + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

// ContentType returns the declared content type of f, sniffing the bytes when
// none was declared.
func ContentType(f *File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return http.DetectContentType(f.Data)
}
