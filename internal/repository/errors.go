package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicate         = errors.New("document already exists")
	ErrVersionConflict   = errors.New("document was modified concurrently")
	ErrPracticeClosed    = errors.New("practice already submitted")
	ErrInvalidInvitation = errors.New("invitation code is invalid or already used")
)

// objectID converts a hex id. Malformed ids cannot match any document, so
// they are reported as ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func hexID(inserted interface{}) string {
	if oid, ok := inserted.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}
