package pixst

import (
	"fmt"
	"strconv"
	"strings"
)

// Class identifies the kind of a stored object. Concrete classes can be
// instantiated; abstract classes exist only for policy matching.
type Class string

const (
	ClassProject Class = "Project"
	ClassDataset Class = "Dataset"
	ClassImage   Class = "Image"
	ClassRoi     Class = "Roi"

	ClassCommentAnnotation Class = "CommentAnnotation"
	ClassTagAnnotation     Class = "TagAnnotation"
	ClassLongAnnotation    Class = "LongAnnotation"
	ClassFileAnnotation    Class = "FileAnnotation"

	ClassProjectDatasetLink    Class = "ProjectDatasetLink"
	ClassDatasetImageLink      Class = "DatasetImageLink"
	ClassProjectAnnotationLink Class = "ProjectAnnotationLink"
	ClassDatasetAnnotationLink Class = "DatasetAnnotationLink"
	ClassImageAnnotationLink   Class = "ImageAnnotationLink"

	// abstract classes
	ClassAnnotation     Class = "Annotation"
	ClassTextAnnotation Class = "TextAnnotation"
	ClassLink           Class = "Link"
)

// superclasses maps every class to its direct superclass, if any.
// The chains are intentionally shallow: CommentAnnotation ->
// TextAnnotation -> Annotation and every *Link -> Link.
var superclasses = map[Class]Class{
	ClassCommentAnnotation:     ClassTextAnnotation,
	ClassTagAnnotation:         ClassTextAnnotation,
	ClassTextAnnotation:        ClassAnnotation,
	ClassLongAnnotation:        ClassAnnotation,
	ClassFileAnnotation:        ClassAnnotation,
	ClassProjectDatasetLink:    ClassLink,
	ClassDatasetImageLink:      ClassLink,
	ClassProjectAnnotationLink: ClassLink,
	ClassDatasetAnnotationLink: ClassLink,
	ClassImageAnnotationLink:   ClassLink,
}

type linkEnds struct {
	from Class
	to   Class
}

// linkSchema describes which classes a link class may connect. The to
// side of the annotation links is the abstract Annotation class so any
// concrete annotation can be attached.
var linkSchema = map[Class]linkEnds{
	ClassProjectDatasetLink:    {from: ClassProject, to: ClassDataset},
	ClassDatasetImageLink:      {from: ClassDataset, to: ClassImage},
	ClassProjectAnnotationLink: {from: ClassProject, to: ClassAnnotation},
	ClassDatasetAnnotationLink: {from: ClassDataset, to: ClassAnnotation},
	ClassImageAnnotationLink:   {from: ClassImage, to: ClassAnnotation},
}

// childSchema describes containment without a link class. A Roi hangs
// directly off its Image, which is why it can be ignored directly
// while annotations have to be cut at their link class.
var childSchema = map[Class]Class{
	ClassRoi: ClassImage,
}

var abstractClasses = map[Class]bool{
	ClassAnnotation:     true,
	ClassTextAnnotation: true,
	ClassLink:           true,
}

var concreteClasses = []Class{
	ClassProject, ClassDataset, ClassImage, ClassRoi,
	ClassCommentAnnotation, ClassTagAnnotation,
	ClassLongAnnotation, ClassFileAnnotation,
	ClassProjectDatasetLink, ClassDatasetImageLink,
	ClassProjectAnnotationLink, ClassDatasetAnnotationLink,
	ClassImageAnnotationLink,
}

// LookupClass resolves a class name case-sensitively. Abstract classes
// resolve too since they are legal in duplication policies.
func LookupClass(name string) (Class, bool) {
	c := Class(name)
	if abstractClasses[c] {
		return c, true
	}
	for _, k := range concreteClasses {
		if k == c {
			return c, true
		}
	}
	return "", false
}

func (c Class) IsAbstract() bool {
	return abstractClasses[c]
}

func (c Class) IsLink() bool {
	_, ok := linkSchema[c]
	return ok
}

// ParentClass returns the class a direct child hangs off, if the class
// is a direct child class at all.
func (c Class) ParentClass() (Class, bool) {
	p, ok := childSchema[c]
	return p, ok
}

// Ancestors returns the class itself followed by its superclasses,
// most specific first.
func (c Class) Ancestors() []Class {
	chain := []Class{c}
	for {
		super, ok := superclasses[c]
		if !ok {
			return chain
		}
		chain = append(chain, super)
		c = super
	}
}

// IsA reports whether the class is the given class or derives from it.
func (c Class) IsA(of Class) bool {
	for _, a := range c.Ancestors() {
		if a == of {
			return true
		}
	}
	return false
}

func (c Class) String() string {
	return string(c)
}

// Ref addresses a stored object as Class:ID, e.g. "Dataset:50".
type Ref struct {
	Class Class
	ID    uint64
}

func NewRef(c Class, id uint64) Ref {
	return Ref{Class: c, ID: id}
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Class, r.ID)
}

func (r Ref) IsZero() bool {
	return r.Class == "" && r.ID == 0
}

// ParseRef parses a Class:ID reference. The class has to be a known
// concrete class since abstract classes are never stored.
func ParseRef(s string) (Ref, error) {
	name, id, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	c, ok := LookupClass(name)
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}
	if c.IsAbstract() {
		return Ref{}, fmt.Errorf("%w: %q", ErrAbstractClass, name)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	return Ref{Class: c, ID: n}, nil
}

// ParseRefs parses a list of Class:ID references, as given on the
// command line.
func ParseRefs(args []string) ([]Ref, error) {
	refs := make([]Ref, 0, len(args))
	for _, arg := range args {
		for _, s := range strings.Split(arg, ",") {
			r, err := ParseRef(strings.TrimSpace(s))
			if err != nil {
				return nil, err
			}
			refs = append(refs, r)
		}
	}
	return refs, nil
}
