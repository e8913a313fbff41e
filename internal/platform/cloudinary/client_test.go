package cloudinary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/creatorai-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, uploadPrefix string) Client {
	t.Helper()
	c, err := NewClient(logger.NewNop(), nil, Config{
		CloudName:    "demo",
		APIKey:       "123",
		APISecret:    "shh",
		UploadPrefix: uploadPrefix,
	})
	require.NoError(t, err)
	return c
}

func TestUploadDataURI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/demo/image/upload"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1/abc.png","public_id":"abc","format":"png","bytes":3}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Upload(context.Background(), Upload{DataURI: DataURI("image/png", []byte{1, 2, 3})})
	require.NoError(t, err)
	assert.Equal(t, "abc", res.PublicID)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/abc.png", res.SecureURL)
	assert.EqualValues(t, 3, res.Bytes)
}

func TestUploadFileWithTransformation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, EffectBackgroundRemoval, r.FormValue("transformation"))
		assert.Equal(t, "123", r.FormValue("api_key"))
		assert.NotEmpty(t, r.FormValue("signature"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://x/cat.png","public_id":"cat"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Upload(context.Background(), Upload{
		File:           strings.NewReader("jpegbytes"),
		Filename:       "cat.jpg",
		Transformation: EffectBackgroundRemoval,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/cat.png", res.SecureURL)
}

func TestUploadRejectsAmbiguousInput(t *testing.T) {
	c := newTestClient(t, "http://unused")
	_, err := c.Upload(context.Background(), Upload{})
	require.Error(t, err)
	_, err = c.Upload(context.Background(), Upload{DataURI: "data:image/png;base64,AA==", File: strings.NewReader("x")})
	require.Error(t, err)
}

func TestUploadSurfacesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid image file"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Upload(context.Background(), Upload{DataURI: "data:image/png;base64,AA=="})
	require.Error(t, err)
	assert.Empty(t, res.SecureURL)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(logger.NewNop(), nil, Config{CloudName: "demo"})
	require.Error(t, err)
}

func TestURLIsDeterministic(t *testing.T) {
	c := newTestClient(t, "")
	a := c.URL("abc", GenRemove("red car"))
	b := c.URL("abc", GenRemove("red car"))
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "https://res.cloudinary.com/demo/image/upload/"), a)
	assert.Contains(t, a, "e_gen_remove:red")
	assert.True(t, strings.HasSuffix(a, "/abc"), a)

	plain := c.URL("abc")
	assert.NotContains(t, plain, "e_gen_remove")
	assert.True(t, strings.HasSuffix(plain, "/abc"), plain)
}
