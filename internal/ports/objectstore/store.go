package objectstore

import "context"

// Store guarda bytes de imagen y devuelve una URL pública durable.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Lister recorre objetos bajo un prefijo (ingesta automatizada).
type Lister interface {
	List(ctx context.Context, prefix string, limit int) ([]Object, error)
	Get(ctx context.Context, key string) ([]byte, string, error)
	URL(key string) string
}

// Bucket es un store que además se puede recorrer (S3, memoria).
type Bucket interface {
	Store
	Lister
}
