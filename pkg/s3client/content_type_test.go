package s3client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectContentType("photo.jpg"))
	assert.Equal(t, "image/jpeg", DetectContentType("out/PHOTO.JPEG"))
	assert.Equal(t, "image/png", DetectContentType("a.png"))
	assert.Equal(t, "application/octet-stream", DetectContentType("readme"))
	assert.Equal(t, "application/octet-stream", DetectContentType("archive.zip"))
}

func TestGetObjectKey(t *testing.T) {
	c := &Client{config: Config{Prefix: "processed/"}}
	assert.Equal(t, "processed/a.jpg", c.getObjectKey("a.jpg"))
	assert.Equal(t, "processed/a.jpg", c.getObjectKey("/a.jpg"))

	c = &Client{config: Config{}}
	assert.Equal(t, "a.jpg", c.getObjectKey("a.jpg"))
}
