package schema

// KeyValue is a key and value pair encoded back to back without a presence
// marker of its own.
type KeyValue[K, V any] struct {
	Key   K
	Value V
}

func (KeyValue[K, V]) isKeyValue() {}

type keyValueMarker interface {
	isKeyValue()
}
