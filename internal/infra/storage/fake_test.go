package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
)

// memoryObjects is an in-memory objectAPI that lists keys in ascending order like S3.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	bucket  bool
	listErr error
	// listDone is closed when the listing goroutine exits
	listDone chan struct{}
	sent     int
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, bucket: true}
}

func (m *memoryObjects) PutObject(_ context.Context, _, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return minio.UploadInfo{Key: key, Size: int64(len(data))}, nil
}

func (m *memoryObjects) ListObjects(ctx context.Context, _ string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	m.mu.Lock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, opts.Prefix) {
			keys = append(keys, k)
		}
	}
	listErr := m.listErr
	m.listDone = make(chan struct{})
	done := m.listDone
	m.mu.Unlock()
	sort.Strings(keys)

	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(done)
		defer close(ch)
		if listErr != nil {
			select {
			case ch <- minio.ObjectInfo{Err: listErr}:
			case <-ctx.Done():
			}
			return
		}
		for _, k := range keys {
			select {
			case ch <- minio.ObjectInfo{Key: k}:
				m.mu.Lock()
				m.sent++
				m.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func (m *memoryObjects) BucketExists(context.Context, string) (bool, error) {
	return m.bucket, nil
}

func (m *memoryObjects) Open(_ context.Context, _, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
