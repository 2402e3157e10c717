package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/files/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir, 1<<20)

	url, err := svc.Save(fileHeader(t, "meter.png", "image/png", []byte("png bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	svc := NewService(t.TempDir(), 1<<20)

	first, err := svc.Save(fileHeader(t, "a.jpg", "image/jpeg", []byte("x")))
	require.NoError(t, err)
	second, err := svc.Save(fileHeader(t, "a.jpg", "image/jpeg", []byte("x")))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestSaveRejectsExtension(t *testing.T) {
	svc := NewService(t.TempDir(), 1<<20)

	_, err := svc.Save(fileHeader(t, "script.sh", "", []byte("#!/bin/sh")))
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestSaveRejectsContentType(t *testing.T) {
	svc := NewService(t.TempDir(), 1<<20)

	_, err := svc.Save(fileHeader(t, "fake.png", "application/octet-stream", []byte("not an image")))
	assert.ErrorIs(t, err, ErrInvalidFileType)
}

func TestSaveRejectsOversize(t *testing.T) {
	svc := NewService(t.TempDir(), 4)

	_, err := svc.Save(fileHeader(t, "big.png", "image/png", []byte("more than four bytes")))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir, 1<<20)

	url, err := svc.Save(fileHeader(t, "meter.png", "image/png", []byte("png bytes")))
	require.NoError(t, err)

	deleted, err := svc.Delete(url)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = os.Stat(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingFile(t *testing.T) {
	svc := NewService(t.TempDir(), 1<<20)

	deleted, err := svc.Delete("/uploads/nothing-here.png")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(dir, 1<<20)
	outside := filepath.Join(dir, "..", "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	// Only the base name is honored, so traversal never leaves the
	// upload directory.
	deleted, err := svc.Delete("/uploads/../secret.txt")
	require.NoError(t, err)
	assert.False(t, deleted)
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
