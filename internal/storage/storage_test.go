package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/png"))
	assert.True(t, IsImage("IMAGE/JPEG; charset=binary"))
	assert.False(t, IsImage("application/pdf"))
	assert.False(t, IsImage("image/svg+xml"))
	assert.False(t, IsImage(""))
}

func TestAvatarKey(t *testing.T) {
	k := AvatarKey("u1", "Me.JPEG", "image/jpeg")
	assert.True(t, strings.HasPrefix(k, "avatars/u1/"))
	assert.True(t, strings.HasSuffix(k, ".jpeg"))
	assert.True(t, OwnedBy(k, "u1"))
	assert.False(t, OwnedBy(k, "u2"))

	k2 := AvatarKey("u1", "Me.JPEG", "image/jpeg")
	assert.NotEqual(t, k, k2)

	assert.True(t, strings.HasSuffix(AvatarKey("u1", "photo.exe", "image/png"), ".png"))
	assert.True(t, strings.HasSuffix(AvatarKey("u1", "noext", "image/webp"), ".webp"))
}

func TestSniffImage(t *testing.T) {
	ct, ok := SniffImage([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)

	ct, ok = SniffImage([]byte("GIF89a\x01\x00\x01\x00"))
	assert.True(t, ok)
	assert.Equal(t, "image/gif", ct)

	_, ok = SniffImage([]byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`))
	assert.False(t, ok)
	_, ok = SniffImage([]byte("<html><body>hi</body></html>"))
	assert.False(t, ok)
}
