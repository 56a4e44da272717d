package model

import "github.com/google/uuid"

// assignID fills a zero primary key before insert so rows get their id
// regardless of the database's uuid support.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
