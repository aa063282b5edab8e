package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/text-analyzer/internal/domain/analysis"
)

// objectAPI is the part of the minio client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	BucketExists(ctx context.Context, bucket string) (bool, error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// minioAPI adds Open over GetObject so reads go through a plain io.ReadCloser.
type minioAPI struct{ *minio.Client }

func (c minioAPI) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := c.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Store keeps each analysis record as one JSON object under <prefix>/<partition>/.
type Store struct {
	client     objectAPI
	bucketName string
	prefix     string
}

// New buat koneksi MinIO dan pastikan bucket ada
func New(ctx context.Context, endpoint, bucket, accessKey, secretKey, prefix string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return newStore(minioAPI{cli}, bucket, prefix), nil
}

func newStore(api objectAPI, bucket, prefix string) *Store {
	return &Store{client: api, bucketName: bucket, prefix: strings.Trim(prefix, "/")}
}

// Upsert writes the whole record. The key carries analyzedAt, so only a
// rewrite with the same id and analyzedAt replaces the earlier object.
func (s *Store) Upsert(ctx context.Context, rec *domain.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal analysis document: %w", err)
	}
	key := objectKey(s.prefix, rec.PartitionKey, rec.Metadata.AnalyzedAt, string(rec.ID))
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Recent relies on listing order: keys sort ascending, and the inverted
// timestamp in each key puts the newest record first.
func (s *Store) Recent(ctx context.Context, partition string, limit int) ([]*domain.Record, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for obj := range s.client.ListObjects(listCtx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    partitionPrefix(s.prefix, partition),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", partition, obj.Err)
		}
		keys = append(keys, obj.Key)
		if len(keys) >= limit {
			break
		}
	}
	cancel()

	out := make([]*domain.Record, 0, len(keys))
	for _, key := range keys {
		rec, err := s.get(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, rec.Projection())
	}
	return out, nil
}

func (s *Store) get(ctx context.Context, key string) (*domain.Record, error) {
	obj, err := s.client.Open(ctx, s.bucketName, key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()
	return decodeDocument(key, obj)
}

// Ping checks the bucket is reachable and still there.
func (s *Store) Ping(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s not found", s.bucketName)
	}
	return nil
}

func decodeDocument(key string, r io.Reader) (*domain.Record, error) {
	var rec domain.Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &rec, nil
}

func partitionPrefix(prefix, partition string) string {
	return path.Join(prefix, partition) + "/"
}

// objectKey: <prefix>/<partition>/<MaxInt64-unixnano, 19 digits>-<id>.json
func objectKey(prefix, partition string, at time.Time, id string) string {
	inverted := math.MaxInt64 - at.UnixNano()
	return fmt.Sprintf("%s%019d-%s.json", partitionPrefix(prefix, partition), inverted, id)
}
