package models

import (
	"fmt"
	"strconv"
	"strings"
)

// TargetKind distinguishes what a comment or like is attached to.
type TargetKind string

const (
	// TargetPost points at a FeedPost by its id.
	TargetPost TargetKind = "post"
	// TargetHint points at a participant's hints card.
	TargetHint TargetKind = "hint"
	// TargetIdea points at a participant's gift preferences card.
	TargetIdea TargetKind = "idea"
)

// TargetRef identifies an engagement target: a real feed post, or one of the
// synthetic cards derived from a participant's profile (hints / gift ideas).
type TargetRef struct {
	Kind TargetKind `json:"kind"`
	ID   uint       `json:"id"`
}

// String encodes the reference in its stored form, e.g. "post:12" or "hint:7".
func (t TargetRef) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// IsSynthetic reports whether the reference points at a participant-derived
// card rather than a real post row.
func (t TargetRef) IsSynthetic() bool {
	return t.Kind == TargetHint || t.Kind == TargetIdea
}

// ParseTargetRef decodes a stored target reference.
func ParseTargetRef(s string) (TargetRef, error) {
	kind, idStr, ok := strings.Cut(s, ":")
	if !ok {
		return TargetRef{}, fmt.Errorf("malformed target ref %q", s)
	}
	switch TargetKind(kind) {
	case TargetPost, TargetHint, TargetIdea:
	default:
		return TargetRef{}, fmt.Errorf("unknown target kind %q", kind)
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return TargetRef{}, fmt.Errorf("invalid target id %q", idStr)
	}
	return TargetRef{Kind: TargetKind(kind), ID: uint(id)}, nil
}
