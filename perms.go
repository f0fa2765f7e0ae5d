package pixst

import "fmt"

// Perms controls what members of the owning group may do with an
// object. The owner can always read their own objects.
type Perms uint8

const (
	// PermsPrivate objects are visible to their owner only.
	PermsPrivate Perms = iota
	// PermsReadOnly objects are readable by the owning group.
	PermsReadOnly
	// PermsReadWrite objects are readable and linkable by the group.
	PermsReadWrite
)

var permsNames = map[Perms]string{
	PermsPrivate:   "private",
	PermsReadOnly:  "read-only",
	PermsReadWrite: "read-write",
}

func (p Perms) String() string {
	return permsNames[p]
}

func ParsePerms(s string) (Perms, error) {
	for p, name := range permsNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown permissions %q", s)
}

// Principal identifies the caller of an operation.
type Principal struct {
	Name  string
	Group string
}

func (p Principal) IsZero() bool {
	return p.Name == ""
}
