package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys. Implementations must return equal keys exactly
// when the cached values are interchangeable.
type Keyer interface {
	// FieldKey addresses a cost field decoded from an image.
	FieldKey(imageHash string, opts FieldKeyOpts) string

	// ArtifactKey addresses a rendered output of a routed scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// FieldKeyOpts are the decode parameters that change a cost field.
type FieldKeyOpts struct {
	CellSize   float64 `json:"cell_size"`
	MaxPenalty uint32  `json:"max_penalty"`
}

// ArtifactKeyOpts are the parameters that change a rendered output.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Bundle  bool   `json:"bundle"`
	Options string `json:"options,omitempty"` // hash of the remaining route options
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FieldKey returns "field:<hash>".
func (DefaultKeyer) FieldKey(imageHash string, opts FieldKeyOpts) string {
	return hashKey("field", imageHash, opts)
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, sceneHash, opts)
}

// Hash returns the hex SHA-256 of data. Scene documents, cost images and
// option sets are identified by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey joins prefix and the hash of the JSON-encoded parts. Parts are
// plain strings and option structs, so encoding cannot fail.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
