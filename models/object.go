package models

import (
	"net/url"
	"time"
)

// Object is the serialization model of a stored object. It only
// contains primitive value types so it can be used for both the gob
// persistence format and the JSON wire format.
type Object struct {
	Class   string     `json:"class"`
	ID      uint64     `json:"id"`
	Name    string     `json:"name"`
	Owner   string     `json:"owner"`
	Group   string     `json:"group"`
	Perms   string     `json:"perms"`
	Meta    url.Values `json:"meta,omitempty"`
	BlobRef string     `json:"blobRef,omitempty"`
	Parent  string     `json:"parent,omitempty"`
	From    string     `json:"from,omitempty"`
	To      string     `json:"to,omitempty"`
}

// QueryRequest is the wire form of an object query. The owner is
// taken from the caller headers, not from the body.
type QueryRequest struct {
	Class string            `json:"class,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
	// Or matches objects satisfying any of the metadata pairs
	// instead of all of them.
	Or bool `json:"or,omitempty"`
}

// DuplicateRequest is the wire form of a duplication request. The
// class lists are comma-separated class names, mirroring the
// command-line options.
type DuplicateRequest struct {
	Targets          []string `json:"targets"`
	DuplicateClasses string   `json:"duplicateClasses,omitempty"`
	ReferenceClasses string   `json:"referenceClasses,omitempty"`
	IgnoreClasses    string   `json:"ignoreClasses,omitempty"`
	DryRun           bool     `json:"dryRun,omitempty"`
}

// DuplicateResponse reports the outcome of a duplication. Duplicates
// maps a class name to the IDs of the new objects, or to the original
// IDs for a dry run.
type DuplicateResponse struct {
	Duplicates map[string][]uint64 `json:"duplicates"`
	References []string            `json:"references,omitempty"`
	Mapping    map[string]string   `json:"mapping,omitempty"`
	DryRun     bool                `json:"dryRun,omitempty"`
}

const (
	OpQueued  = "queued"
	OpRunning = "running"
	OpDone    = "done"
	OpFailed  = "failed"
)

// Op is the status of a server-side operation.
type Op struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	Error     string             `json:"error,omitempty"`
	Response  *DuplicateResponse `json:"response,omitempty"`
	Submitted time.Time          `json:"submitted"`
	Finished  time.Time          `json:"finished"`
}
