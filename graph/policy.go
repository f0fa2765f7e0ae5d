package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/naivary/pixst"
)

// Action is what the duplication engine does with a visited object.
type Action int

const (
	// ActionDuplicate copies the object for the caller. Binary
	// payloads are shared, never copied.
	ActionDuplicate Action = iota
	// ActionReference links duplicated parents to the original
	// instead of copying it.
	ActionReference
	// ActionIgnore neither copies nor links the object and stops
	// the traversal there.
	ActionIgnore
)

var actionNames = map[Action]string{
	ActionDuplicate: "duplicate",
	ActionReference: "reference",
	ActionIgnore:    "ignore",
}

func (a Action) String() string {
	return actionNames[a]
}

var (
	ErrClassConflict = errors.New("class assigned to more than one policy list")
	ErrReferenceLink = errors.New("link classes cannot be referenced, ignore the link instead")
	ErrNotReadable   = errors.New("object is not readable by the caller")
)

// Policy decides per class whether an object is duplicated,
// referenced or ignored. The most specific class match wins, so
// referencing Annotation while duplicating CommentAnnotation copies
// comments and links everything else. Unassigned classes are
// duplicated.
type Policy struct {
	actions map[pixst.Class]Action
}

func NewPolicy() *Policy {
	return &Policy{actions: make(map[pixst.Class]Action)}
}

// Duplicate assigns ActionDuplicate to the classes, overwriting any
// previous assignment.
func (p *Policy) Duplicate(classes ...pixst.Class) *Policy {
	for _, c := range classes {
		p.actions[c] = ActionDuplicate
	}
	return p
}

func (p *Policy) Reference(classes ...pixst.Class) *Policy {
	for _, c := range classes {
		p.actions[c] = ActionReference
	}
	return p
}

func (p *Policy) Ignore(classes ...pixst.Class) *Policy {
	for _, c := range classes {
		p.actions[c] = ActionIgnore
	}
	return p
}

// ActionFor resolves the action of a class by walking its ancestor
// chain, most specific first.
func (p *Policy) ActionFor(c pixst.Class) Action {
	for _, a := range c.Ancestors() {
		if act, ok := p.actions[a]; ok {
			return act
		}
	}
	return ActionDuplicate
}

// ParsePolicy builds a policy from three comma-separated class
// lists, as given on the command line. Unknown class names and
// classes appearing in more than one list are errors. Link classes
// may not be referenced: a link has no identity of its own worth
// sharing, the class to reference is its target.
func ParsePolicy(duplicateList, referenceList, ignoreList string) (*Policy, error) {
	p := NewPolicy()
	lists := []struct {
		raw string
		act Action
	}{
		{duplicateList, ActionDuplicate},
		{referenceList, ActionReference},
		{ignoreList, ActionIgnore},
	}
	for _, l := range lists {
		if l.raw == "" {
			continue
		}
		for _, name := range strings.Split(l.raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			c, ok := pixst.LookupClass(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", pixst.ErrUnknownClass, name)
			}
			if _, ok := p.actions[c]; ok {
				return nil, fmt.Errorf("%w: %q", ErrClassConflict, name)
			}
			if l.act == ActionReference && c.IsA(pixst.ClassLink) {
				return nil, fmt.Errorf("%w: %q", ErrReferenceLink, name)
			}
			p.actions[c] = l.act
		}
	}
	return p, nil
}
