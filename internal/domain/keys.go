package domain

import "strings"

// DefaultKeyPrefix is used when no storage.key_prefix is configured.
const DefaultKeyPrefix = "hybridex:"

// Keys derives every storage key from one prefix. The zero value uses
// DefaultKeyPrefix; a Keys is immutable and safe to share.
type Keys struct {
	prefix string
}

// NewKeys returns a key layout under prefix. An empty prefix selects DefaultKeyPrefix.
func NewKeys(prefix string) Keys {
	return Keys{prefix: prefix}
}

// Prefix returns the prefix in effect.
func (k Keys) Prefix() string {
	if k.prefix == "" {
		return DefaultKeyPrefix
	}
	return k.prefix
}

// DocumentPrefix returns the key prefix shared by all documents of a namespace.
// The per-namespace search index is declared over exactly this prefix.
func (k Keys) DocumentPrefix(namespace string) string {
	return k.Prefix() + "doc:" + namespace + ":"
}

func (k Keys) DocumentKey(namespace, id string) string {
	return k.DocumentPrefix(namespace) + id
}

// DocumentPattern returns a SCAN pattern matching a document id in any namespace.
func (k Keys) DocumentPattern(id string) string {
	return k.Prefix() + "doc:*:" + id
}

func (k Keys) IndexName(namespace string) string {
	return k.Prefix() + "idx:" + namespace
}

// NamespaceFromIndexName recovers the namespace from an index name, reporting
// false for indexes outside the prefix.
func (k Keys) NamespaceFromIndexName(index string) (string, bool) {
	ns, ok := strings.CutPrefix(index, k.Prefix()+"idx:")
	return ns, ok && ns != ""
}

// NamespaceKey returns the registry hash key of a namespace.
func (k Keys) NamespaceKey(namespace string) string {
	return k.Prefix() + "ns:" + namespace
}

func (k Keys) NamespacePattern() string {
	return k.Prefix() + "ns:*"
}

func (k Keys) EmbeddingCachePrefix() string {
	return k.Prefix() + "emb_cache:"
}
