package models

import "github.com/google/uuid"

// assignID gives a row its UUID primary key before insert unless the caller
// already chose one.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
