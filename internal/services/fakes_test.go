package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/yungbote/creatorai-backend/internal/platform/clerk"
	"github.com/yungbote/creatorai-backend/internal/platform/clipdrop"
	"github.com/yungbote/creatorai-backend/internal/platform/cloudinary"
)

type fakeLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	tokens  []int
}

func (f *fakeLLM) Complete(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.tokens = append(f.tokens, maxTokens)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeClipDrop struct {
	img     clipdrop.Image
	err     error
	prompts []string
}

func (f *fakeClipDrop) TextToImage(_ context.Context, prompt string) (clipdrop.Image, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return clipdrop.Image{}, f.err
	}
	return f.img, nil
}

type fakeCloudinary struct {
	result  cloudinary.UploadResult
	err     error
	uploads []cloudinary.Upload
	bodies  [][]byte
}

func (f *fakeCloudinary) Upload(_ context.Context, in cloudinary.Upload) (cloudinary.UploadResult, error) {
	if in.File != nil {
		b, _ := io.ReadAll(in.File)
		f.bodies = append(f.bodies, b)
	}
	f.uploads = append(f.uploads, in)
	if f.err != nil {
		return cloudinary.UploadResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeCloudinary) URL(publicID string, transformations ...string) string {
	u := "https://res.cloudinary.test/demo/image/upload"
	for _, t := range transformations {
		u += "/" + t
	}
	return u + "/" + publicID
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractText(_ context.Context, _ []byte, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeExtractor) Close() error { return nil }

// fakeClerk stores private metadata per user and merges updates the way the
// Backend API does.
type fakeClerk struct {
	mu        sync.Mutex
	metadata  map[string]map[string]any
	getErr    error
	updateErr error
	updates   int
}

func newFakeClerk() *fakeClerk {
	return &fakeClerk{metadata: map[string]map[string]any{}}
}

func (f *fakeClerk) GetUser(_ context.Context, userID string) (*clerk.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	md := map[string]any{}
	for k, v := range f.metadata[userID] {
		md[k] = v
	}
	return &clerk.User{ID: userID, PrivateMetadata: md}, nil
}

func (f *fakeClerk) UpdatePrivateMetadata(_ context.Context, userID string, md map[string]any) (*clerk.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	cur := f.metadata[userID]
	if cur == nil {
		cur = map[string]any{}
		f.metadata[userID] = cur
	}
	for k, v := range md {
		cur[k] = v
	}
	return &clerk.User{ID: userID, PrivateMetadata: cur}, nil
}

func (f *fakeClerk) JWKS(context.Context) (json.RawMessage, error) {
	return nil, errors.New("not implemented")
}

func memUpload(name, contentType string, data []byte) *Upload {
	return &Upload{
		Filename:    name,
		Size:        int64(len(data)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
