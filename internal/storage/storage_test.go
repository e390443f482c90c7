package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/domain"
)

type memStore struct {
	puts map[string][]byte
}

func (m *memStore) Put(_ context.Context, name, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.puts == nil {
		m.puts = map[string][]byte{}
	}
	m.puts[name] = b
	return "mem://" + name, nil
}

func fileHeader(t *testing.T, filename, ctype string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write(body)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	return form.File["image"][0]
}

func TestUploaderRejects(t *testing.T) {
	u := NewUploader(&memStore{}, 16)
	cases := []struct {
		name string
		fh   *multipart.FileHeader
	}{
		{"missing", nil},
		{"not an image", fileHeader(t, "notes.txt", "text/plain", []byte("hi"))},
		{"oversize", fileHeader(t, "big.png", "image/png", bytes.Repeat([]byte("x"), 17))},
		{"extension", fileHeader(t, "anim.gif", "image/gif", []byte("gif"))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := u.Save(context.Background(), tc.fh)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestUploaderStoresExactlyOnce(t *testing.T) {
	st := &memStore{}
	u := NewUploader(st, 0)
	assert.Equal(t, int64(DefaultMaxBytes), u.MaxBytes)

	loc, err := u.Save(context.Background(), fileHeader(t, "Photo.PNG", "image/png", []byte("png-bytes")))
	require.NoError(t, err)
	require.Len(t, st.puts, 1)
	assert.True(t, strings.HasPrefix(loc, "mem://"))
	assert.True(t, strings.HasSuffix(loc, ".png"))
	for _, b := range st.puts {
		assert.Equal(t, []byte("png-bytes"), b)
	}
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(filepath.Join(dir, "uploads"), "")
	require.NoError(t, err)

	loc, err := s.Put(context.Background(), "../escape.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/escape.png", loc)

	b, err := os.ReadFile(filepath.Join(dir, "uploads", "escape.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))

	_, err = s.Put(context.Background(), "escape.png", "image/png", strings.NewReader("again"))
	assert.Error(t, err, "existing objects are never overwritten")
}

func TestGCSObjectURL(t *testing.T) {
	s := &GCSStore{bucket: "shop", prefix: "inventory", baseURL: publicBase(GCSConfig{Bucket: "shop"})}
	assert.Equal(t, "https://storage.googleapis.com/shop/inventory/a%20b.png", s.ObjectURL(s.objectName("a b.png")))

	s.baseURL = publicBase(GCSConfig{Bucket: "shop", PublicBaseURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com/inventory/x.png", s.ObjectURL(s.objectName("x.png")))
}
