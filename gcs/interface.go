package gcs

import (
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

type BasicClient interface {
	Lister
	Getter
}

type Lister interface {
	List(key string) (keys []string, err error)
}

type Getter interface {
	// Get returns ErrKeyNotFound if the given key doesn't exist.
	Get(key string) (data []byte, err error)
}
