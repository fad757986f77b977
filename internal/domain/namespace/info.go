package namespace

// Info is a registered namespace as stored in the namespace registry.
type Info struct {
	name      string
	createdAt int64
}

// NewInfo creates a registry entry.
func NewInfo(name string, createdAt int64) Info {
	return Info{name: name, createdAt: createdAt}
}

// Name returns the namespace name.
func (i Info) Name() string { return i.name }

// CreatedAt returns the creation time as unix milliseconds.
func (i Info) CreatedAt() int64 { return i.createdAt }
