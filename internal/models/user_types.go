package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// User is the document stored in the 'users' collection.
// The password field only ever holds a bcrypt hash, never plaintext,
// and is excluded from every JSON response via the `json:"-"` tag.
type User struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Username     string              `json:"username" bson:"username"`
	Email        string              `json:"email" bson:"email"`
	PasswordHash string              `json:"-" bson:"password"`
	ShopcartID   *primitive.ObjectID `json:"shopcartId,omitempty" bson:"shopcart,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"createdAt"`

	// Join (not in the document, populated manually at read time)
	Shopcart *Shopcart `json:"shopcart,omitempty" bson:"-"`
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
