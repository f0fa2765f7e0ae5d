package pixst

import "errors"

var (
	ErrUnknownClass       = errors.New("unknown class")
	ErrAbstractClass      = errors.New("abstract classes cannot be instantiated or addressed")
	ErrInvalidRef         = errors.New("invalid object reference, expected Class:ID")
	ErrMustIncludeName    = errors.New("object must include a name")
	ErrMustIncludeOwner   = errors.New("object must include an owner and a group")
	ErrInvalidNamePattern = errors.New("object name contains invalid characters")
	ErrObjectIsImmutable  = errors.New("object is immutable once stored")
	ErrNotFound           = errors.New("object not found")
	ErrBlobNotFound       = errors.New("blob not found")
	ErrLinkEnds           = errors.New("link connects classes its schema does not allow")
	ErrNotALink           = errors.New("object is not a link")
	ErrInvalidParent      = errors.New("object cannot be a child of the given parent class")
	ErrInvalidQuery       = errors.New("query is missing an owner")
	ErrEmptyPayload       = errors.New("payload is empty")
	ErrNotAnImage         = errors.New("payload is not a decodable image")
	ErrUnknownContentType = errors.New("content type could not be determined")
)
