// Package storage keeps uploaded images in an object store.
package storage

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Object describes a stored blob.
type Object struct {
	Key         string `json:"publicId"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// BlobStore is the object store used for avatars and profile images.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Accepted upload types. SVG is not among them.
var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SniffLen is how many leading bytes SniffImage inspects.
const SniffLen = 512

// IsImage reports whether contentType is an accepted image type.
func IsImage(contentType string) bool {
	_, ok := imageExt[normalizeType(contentType)]
	return ok
}

// SniffImage detects the content type from the first bytes of a file and
// reports whether it is an accepted image type.
func SniffImage(head []byte) (string, bool) {
	ct := normalizeType(http.DetectContentType(head))
	_, ok := imageExt[ct]
	return ct, ok
}

// AvatarKey builds a unique object key avatars/<owner>/<uuid><ext>.
func AvatarKey(owner, filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if want, ok := imageExt[normalizeType(contentType)]; ok && ext != want && !(want == ".jpg" && ext == ".jpeg") {
		ext = want
	}
	return "avatars/" + owner + "/" + uuid.NewString() + ext
}

// OwnedBy reports whether key lives under owner's avatar prefix.
func OwnedBy(key, owner string) bool {
	return strings.HasPrefix(key, "avatars/"+owner+"/")
}

func normalizeType(ct string) string {
	ct, _, _ = strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}
