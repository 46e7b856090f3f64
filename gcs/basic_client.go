package gcs

import (
	"context"
	"io/ioutil"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// NewBasicClient creates a GCS client for the given bucket using application
// default credentials.
func NewBasicClient(ctx context.Context, bucket string) (BasicClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &basicClient{
		ctx:    ctx,
		bucket: client.Bucket(bucket),
	}, nil
}

type basicClient struct {
	ctx    context.Context
	bucket *storage.BucketHandle
}

func (c *basicClient) List(key string) (keys []string, err error) {
	keys = make([]string, 0, 1000)
	it := c.bucket.Objects(c.ctx, &storage.Query{Prefix: key})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (c *basicClient) Get(key string) ([]byte, error) {
	r, err := c.bucket.Object(key).NewReader(c.ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}
