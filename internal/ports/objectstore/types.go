package objectstore

// Object describe un objeto listado del store.
type Object struct {
	Key  string
	Size int64
}
