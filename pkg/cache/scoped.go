package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving users of a shared
// cache directory separate namespaces. The preview server keeps its entries
// under "preview:" so clearing them never touches CLI results.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (the default keyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) *ScopedKeyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) FieldKey(imageHash string, opts FieldKeyOpts) string {
	return k.prefix + k.inner.FieldKey(imageHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}

var _ Keyer = (*ScopedKeyer)(nil)
