package pixst

type action int

const (
	// logical `Or` relationship
	Or action = iota + 1

	// logical `And` relationship
	And
)

// Query filters the stored objects of an owner by class and
// metadata. The zero meta matches everything the owner has.
type Query struct {
	owner string
	class Class
	meta  *Metadata
	// logical action of the metadata
	act action
}

func NewQuery(owner string) *Query {
	return &Query{
		owner: owner,
		act:   And,
	}
}

func (q *Query) WithClass(c Class) *Query {
	q.class = c
	return q
}

func (q *Query) WithMeta(meta *Metadata) *Query {
	q.meta = meta
	return q
}

func (q *Query) WithAction(act action) *Query {
	q.act = act
	return q
}

func (q *Query) WithMetaPair(k MetaKey, v string) *Query {
	if q.meta == nil {
		q.meta = NewMetadata()
	}
	q.meta.Set(k, v)
	return q
}

func (q *Query) isValid() bool {
	return q.owner != ""
}
