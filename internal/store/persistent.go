package store

// SearchKey is the key the search term is kept under.
const SearchKey = "search"

// KV is the subset of Store that SemiPersistent needs.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// SemiPersistent is a single string value that is restored from a KV on
// creation and written back on every change.
type SemiPersistent struct {
	kv    KV
	key   string
	value string
}

// NewSemiPersistent restores key from kv. A missing or empty stored value
// falls back to initial, which is then written back so the key always
// holds the value in use. A read error also falls back to initial and is
// returned so the caller can report it.
func NewSemiPersistent(kv KV, key, initial string) (*SemiPersistent, error) {
	p := &SemiPersistent{kv: kv, key: key, value: initial}
	v, ok, err := kv.Get(key)
	if err != nil {
		return p, err
	}
	if ok && v != "" {
		p.value = v
	}
	if !ok || v != p.value {
		if err := kv.Set(key, p.value); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (p *SemiPersistent) Value() string {
	return p.value
}

// Set updates the in-memory value and writes it through. The in-memory
// value changes even when the write fails.
func (p *SemiPersistent) Set(v string) error {
	p.value = v
	return p.kv.Set(p.key, v)
}
