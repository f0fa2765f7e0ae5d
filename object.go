package pixst

import (
	"bytes"
	"encoding/gob"
	"net/url"
	"strconv"
	"time"

	"github.com/naivary/pixst/models"
)

const (
	MetaKeyContentType  = "contentType"
	MetaKeyThumbnail    = "thumbnail"
	MetaKeyWidth        = "width"
	MetaKeyHeight       = "height"
	createdAtMetaKey    = "createdAt"
	lastModifiedMetaKey = "lastModified"
)

// Object is a stored domain object: a project, dataset, image,
// annotation, roi or one of the link classes. Binary payloads are not
// part of the object, it only carries the digest of its blob.
type Object struct {
	class Class
	// id is assigned by the store on creation. Zero means the
	// object has not been stored yet.
	id    uint64
	name  string
	owner string
	group string
	perms Perms
	// metadata of the object. The keys follow the golang
	// conventions (e.g. camelCase).
	meta url.Values
	// blobRef is the digest of the binary payload, if any.
	blobRef string
	// parent is set for direct child classes such as Roi.
	parent Ref
	// from/to are set for link classes.
	from Ref
	to   Ref
	// An object is only mutable as long as it hasn't been
	// inserted into or retrieved from the store.
	isMutable bool
}

// NewObject creates a mutable object of a concrete non-link class.
func NewObject(class Class, name string, p Principal) (*Object, error) {
	if _, ok := LookupClass(class.String()); !ok {
		return nil, ErrUnknownClass
	}
	if class.IsAbstract() {
		return nil, ErrAbstractClass
	}
	if class.IsLink() {
		return nil, ErrNotALink
	}
	if name == "" {
		return nil, ErrMustIncludeName
	}
	if p.Name == "" || p.Group == "" {
		return nil, ErrMustIncludeOwner
	}
	o := &Object{
		class:     class,
		name:      name,
		owner:     p.Name,
		group:     p.Group,
		perms:     PermsReadOnly,
		meta:      url.Values{},
		isMutable: true,
	}
	o.setDefaultMetadata()
	return o, nil
}

// NewLink creates a mutable link object connecting from and to. The
// ends have to satisfy the link schema of the class.
func NewLink(class Class, from, to Ref, p Principal) (*Object, error) {
	ends, ok := linkSchema[class]
	if !ok {
		return nil, ErrNotALink
	}
	if !from.Class.IsA(ends.from) || !to.Class.IsA(ends.to) {
		return nil, ErrLinkEnds
	}
	if p.Name == "" || p.Group == "" {
		return nil, ErrMustIncludeOwner
	}
	o := &Object{
		class:     class,
		name:      class.String(),
		owner:     p.Name,
		group:     p.Group,
		perms:     PermsReadOnly,
		meta:      url.Values{},
		from:      from,
		to:        to,
		isMutable: true,
	}
	o.setDefaultMetadata()
	return o, nil
}

func (o *Object) Class() Class { return o.class }

func (o *Object) ID() uint64 { return o.id }

func (o *Object) Ref() Ref { return Ref{Class: o.class, ID: o.id} }

func (o *Object) Name() string { return o.name }

func (o *Object) Owner() string { return o.owner }

func (o *Object) Group() string { return o.group }

func (o *Object) Perms() Perms { return o.perms }

func (o *Object) From() Ref { return o.from }

func (o *Object) To() Ref { return o.to }

func (o *Object) Parent() Ref { return o.parent }

func (o *Object) BlobRef() string { return o.blobRef }

// SetPerms changes the group permissions. Only possible before the
// object is stored.
func (o *Object) SetPerms(p Perms) error {
	if !o.isMutable {
		return ErrObjectIsImmutable
	}
	o.perms = p
	return nil
}

// SetParent attaches the object directly below a parent, e.g. a Roi
// below its Image. Only classes of the child schema may be parented.
func (o *Object) SetParent(parent Ref) error {
	if !o.isMutable {
		return ErrObjectIsImmutable
	}
	pc, ok := o.class.ParentClass()
	if !ok || parent.Class != pc {
		return ErrInvalidParent
	}
	o.parent = parent
	return nil
}

// SetBlobRef attaches the digest of a stored blob to the object.
func (o *Object) SetBlobRef(digest string) error {
	if !o.isMutable {
		return ErrObjectIsImmutable
	}
	o.blobRef = digest
	return nil
}

// SetMeta will set the given key and value as a metadata pair,
// overwriting any pair which has been set before.
func (o *Object) SetMeta(k, v string) {
	// dont allow the user to overwrite default metadata
	if o.isDefaultMetadata(k) {
		return
	}
	o.meta.Set(k, v)
}

func (o *Object) isDefaultMetadata(k string) bool {
	switch k {
	case lastModifiedMetaKey, createdAtMetaKey:
		return true
	default:
		return false
	}
}

// GetMeta returns the corresponding value of the provided key. The
// bool is indicating if the value was retrieved successfully.
func (o *Object) GetMeta(k string) (string, bool) {
	return o.meta.Get(k), o.meta.Has(k)
}

func (o *Object) HasMetaKey(k string) bool {
	return o.meta.Has(k)
}

// BlobRefs returns the digests of every blob the object keeps alive:
// its payload and, for images, the rendered thumbnail.
func (o *Object) BlobRefs() []string {
	refs := make([]string, 0, 2)
	if o.blobRef != "" {
		refs = append(refs, o.blobRef)
	}
	if t := o.meta.Get(MetaKeyThumbnail); t != "" {
		refs = append(refs, t)
	}
	return refs
}

// CanRead reports whether the principal may read the object. The
// owner always can, group members can unless the object is private.
func (o *Object) CanRead(p Principal) bool {
	if o.owner == p.Name {
		return true
	}
	return o.group == p.Group && o.perms != PermsPrivate
}

// CloneFor returns a mutable copy of the object owned by the given
// principal but kept in the original's group. The id is cleared so
// the store assigns a fresh one; blob refs are shared, not copied.
// Link ends and parent refs are NOT carried over, they have to be
// rewired by the caller.
func (o *Object) CloneFor(p Principal) *Object {
	dup := &Object{
		class:     o.class,
		name:      o.name,
		owner:     p.Name,
		group:     o.group,
		perms:     o.perms,
		meta:      url.Values{},
		blobRef:   o.blobRef,
		isMutable: true,
	}
	for k, vs := range o.meta {
		if o.isDefaultMetadata(k) {
			continue
		}
		for _, v := range vs {
			dup.meta.Add(k, v)
		}
	}
	dup.setDefaultMetadata()
	return dup
}

// ToModel returns an object which only contains primitive value
// types for serialization.
func (o *Object) ToModel() *models.Object {
	m := &models.Object{
		Class:   o.class.String(),
		ID:      o.id,
		Name:    o.name,
		Owner:   o.owner,
		Group:   o.group,
		Perms:   o.perms.String(),
		Meta:    o.meta,
		BlobRef: o.blobRef,
	}
	if !o.parent.IsZero() {
		m.Parent = o.parent.String()
	}
	if !o.from.IsZero() {
		m.From = o.from.String()
		m.To = o.to.String()
	}
	return m
}

func (o *Object) fromModel(m *models.Object) error {
	class, ok := LookupClass(m.Class)
	if !ok {
		return ErrUnknownClass
	}
	perms, err := ParsePerms(m.Perms)
	if err != nil {
		return err
	}
	o.class = class
	o.id = m.ID
	o.name = m.Name
	o.owner = m.Owner
	o.group = m.Group
	o.perms = perms
	o.meta = m.Meta
	if o.meta == nil {
		o.meta = url.Values{}
	}
	o.blobRef = m.BlobRef
	if m.Parent != "" {
		if o.parent, err = ParseRef(m.Parent); err != nil {
			return err
		}
	}
	if m.From != "" {
		if o.from, err = ParseRef(m.From); err != nil {
			return err
		}
		if o.to, err = ParseRef(m.To); err != nil {
			return err
		}
	}
	o.isMutable = false
	return nil
}

// FromModel builds a mutable object from a wire model, validating
// class, link ends and parent against the schema. The id of the
// model is ignored because the store assigns ids.
func FromModel(m *models.Object) (*Object, error) {
	p := Principal{Name: m.Owner, Group: m.Group}
	class, ok := LookupClass(m.Class)
	if !ok {
		return nil, ErrUnknownClass
	}
	var o *Object
	var err error
	if class.IsLink() {
		from, ferr := ParseRef(m.From)
		if ferr != nil {
			return nil, ferr
		}
		to, terr := ParseRef(m.To)
		if terr != nil {
			return nil, terr
		}
		o, err = NewLink(class, from, to, p)
	} else {
		o, err = NewObject(class, m.Name, p)
	}
	if err != nil {
		return nil, err
	}
	if m.Perms != "" {
		perms, err := ParsePerms(m.Perms)
		if err != nil {
			return nil, err
		}
		o.perms = perms
	}
	if m.Parent != "" {
		parent, err := ParseRef(m.Parent)
		if err != nil {
			return nil, err
		}
		if err := o.SetParent(parent); err != nil {
			return nil, err
		}
	}
	for k, vs := range m.Meta {
		for _, v := range vs {
			o.SetMeta(k, v)
		}
	}
	if m.BlobRef != "" {
		o.blobRef = m.BlobRef
	}
	return o, nil
}

func (o *Object) Marshal() ([]byte, error) {
	if err := o.isValid(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(o.ToModel()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (o *Object) Unmarshal(data []byte) error {
	r := bytes.NewReader(data)
	m := models.Object{}
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return err
	}
	return o.fromModel(&m)
}

func (o *Object) isValid() error {
	if !isValidObjectName(o.name) {
		return ErrInvalidNamePattern
	}
	if o.owner == "" || o.group == "" {
		return ErrMustIncludeOwner
	}
	if o.class.IsLink() && (o.from.IsZero() || o.to.IsZero()) {
		return ErrLinkEnds
	}
	if _, ok := o.class.ParentClass(); ok && o.parent.IsZero() {
		return ErrInvalidParent
	}
	return nil
}

func (o *Object) setDefaultMetadata() {
	t := strconv.FormatInt(time.Now().Unix(), 10)
	// o.SetMeta can't be used here because system defaults cannot
	// be overwritten using o.SetMeta.
	o.meta.Set(createdAtMetaKey, t)
	o.meta.Set(lastModifiedMetaKey, t)
}

func (o *Object) markAsImmutable() {
	o.isMutable = false
}
