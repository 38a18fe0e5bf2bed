package scraper

import (
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var pagesBucket = []byte("pages")

// PageCache keeps raw page bodies keyed by URL so a re-run can skip the network.
type PageCache struct {
	db *bolt.DB
}

func OpenPageCache(path string) (*PageCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for page cache: %w", err)
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open page cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pagesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &PageCache{db: db}, nil
}

func (c *PageCache) Get(url string) ([]byte, bool, error) {
	var body []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(pagesBucket).Get([]byte(url))
		if v != nil {
			// v is only valid inside the transaction
			body = append([]byte(nil), v...)
		}
		return nil
	})
	return body, body != nil, err
}

func (c *PageCache) Put(url string, body []byte) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pagesBucket).Put([]byte(url), body)
	})
}

func (c *PageCache) Len() (int, error) {
	var n int
	err := c.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(pagesBucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (c *PageCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
