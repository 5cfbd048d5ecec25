package validation

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestDetectAttachment(t *testing.T) {
	mime, err := DetectAttachment(upload(t, "photo.PNG", pngHeader), JournalAttachments...)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	mime, err = DetectAttachment(upload(t, "notes.md", []byte("# Today\n\nShipped it.")), JournalAttachments...)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", mime)

	// PNG bytes behind a PDF name match no kind.
	_, err = DetectAttachment(upload(t, "report.pdf", pngHeader), JournalAttachments...)
	assert.True(t, IsInvalid(err))

	big := append(bytes.Repeat([]byte("a"), 1<<20), '!')
	_, err = DetectAttachment(upload(t, "big.txt", big), TextAttachment)
	assert.True(t, IsInvalid(err))
	assert.Contains(t, err.Error(), "text too large")

	_, err = DetectAttachment(upload(t, "a.txt", []byte("x")))
	assert.Error(t, err)
}
