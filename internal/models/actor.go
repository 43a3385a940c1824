// Package models contains data structures for the application's domain models.
package models

import "fmt"

// ActorKind discriminates the two kinds of actors that can author content
// or cast votes. Pets are first-class actors: a guardian may act on behalf
// of an animal they have been granted guardianship over.
type ActorKind string

const (
	// ActorKindHuman is a regular user account.
	ActorKindHuman ActorKind = "human"
	// ActorKindAnimal is a pet profile acted for by a guardian.
	ActorKindAnimal ActorKind = "animal"
)

// Valid reports whether k is one of the two known actor kinds.
func (k ActorKind) Valid() bool {
	return k == ActorKindHuman || k == ActorKindAnimal
}

// ActorRef is a tagged reference to an actor: the kind discriminator plus
// the actor's opaque id. Store lookups must branch on Kind explicitly.
type ActorRef struct {
	Kind ActorKind `gorm:"type:varchar(10)" json:"voterType"`
	ID   uint      `json:"voterId"`
}

// Validate checks that the reference names a known kind and a positive id.
func (r ActorRef) Validate() error {
	if !r.Kind.Valid() {
		return NewValidationError(fmt.Sprintf("Unknown actor kind %q", r.Kind))
	}
	if r.ID == 0 {
		return NewValidationError("Actor id is required")
	}
	return nil
}

// OrDefault fills in a missing voter id with the authenticated human actor.
// The original clients omit voterId when the vote is cast as the logged-in
// user rather than as one of their pets.
func (r ActorRef) OrDefault(currentUserID uint) ActorRef {
	if r.Kind == "" {
		r.Kind = ActorKindHuman
	}
	if r.ID == 0 && r.Kind == ActorKindHuman {
		r.ID = currentUserID
	}
	return r
}
