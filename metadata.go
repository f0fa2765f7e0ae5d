package pixst

import (
	"golang.org/x/exp/slices"
)

type MetaKey string

const (
	MetaKeyCreatedAt MetaKey = "createdAt"
	MetaKeyClass     MetaKey = "class"
	MetaKeyName      MetaKey = "name"
	MetaKeyID        MetaKey = "id"
	MetaKeyOwner     MetaKey = "owner"
	MetaKeyGroup     MetaKey = "group"
)

func (m MetaKey) String() string {
	return string(m)
}

// Metadata is a set of key value pairs used to filter objects.
type Metadata struct {
	// the actual metadata
	data map[MetaKey]string
	// systemKeys contains all the keys
	// which will be managed by pixst.
	systemKeys []MetaKey
}

func NewMetadata() *Metadata {
	return &Metadata{
		data:       make(map[MetaKey]string),
		systemKeys: []MetaKey{MetaKeyID, MetaKeyClass, MetaKeyCreatedAt, MetaKeyName, MetaKeyOwner, MetaKeyGroup},
	}
}

// Set will insert the given key value pair iff it isn't a systemKey
// like MetaKeyID or MetaKeyCreatedAt.
func (m Metadata) Set(k MetaKey, v string) {
	if m.isSystemMetaKey(k) {
		return
	}
	if v == "" {
		return
	}
	m.data[k] = v
}

// Is checks if the value of the given MetaKey is equal to `v`.
func (m Metadata) Is(k MetaKey, v string) bool {
	return m.Get(k) == v
}

func (m Metadata) Has(k MetaKey) bool {
	_, ok := m.data[k]
	return ok
}

func (m Metadata) Get(k MetaKey) string {
	return m.data[k]
}

func (m Metadata) Del(k MetaKey) {
	if m.isSystemMetaKey(k) {
		return
	}
	delete(m.data, k)
}

func (m Metadata) Merge(mp map[MetaKey]string) {
	for k, v := range mp {
		m.Set(k, v)
	}
}

func (m Metadata) isSystemMetaKey(k MetaKey) bool {
	return slices.Contains(m.systemKeys, k)
}

// matches reports whether the object satisfies the metadata under
// the given logical action. System keys match against the object's
// own attributes instead of its metadata.
func (m Metadata) matches(obj *Object, act action) bool {
	if act == Or {
		return m.or(obj)
	}
	return m.and(obj)
}

func (m Metadata) or(obj *Object) bool {
	for k, v := range m.data {
		if m.valueOf(obj, k) == v {
			return true
		}
	}
	return false
}

func (m Metadata) and(obj *Object) bool {
	for k, v := range m.data {
		if m.valueOf(obj, k) != v {
			return false
		}
	}
	return true
}

func (m Metadata) valueOf(obj *Object, k MetaKey) string {
	switch k {
	case MetaKeyID:
		return obj.Ref().String()
	case MetaKeyClass:
		return obj.Class().String()
	case MetaKeyName:
		return obj.Name()
	case MetaKeyOwner:
		return obj.Owner()
	case MetaKeyGroup:
		return obj.Group()
	default:
		v, _ := obj.GetMeta(k.String())
		return v
	}
}
