// Package models defines server-side data models shared by the store,
// the services and the transports.
package models

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Well-known profile keys. Any other non-reserved key is accepted as-is.
const (
	FieldDisplayName        = "display_name"
	FieldEmail              = "email"
	FieldPhoneNumber        = "phone_number"
	FieldAddress            = "address"
	FieldFavoriteSport      = "favorite_sport"
	FieldFavoriteAnimal     = "favorite_animal"
	FieldRelationshipStatus = "relationship_status"
	FieldOccupation         = "occupation"
	FieldBio                = "bio"
	FieldProfilePictureURL  = "profile_picture_url"

	// fieldNameAlias is accepted on input and stored as display_name.
	fieldNameAlias = "name"
)

// reservedFields cannot be set through a profile; they belong to the
// account record itself.
var reservedFields = map[string]struct{}{
	"login_handle":    {},
	"password":        {},
	"password_digest": {},
	"id":              {},
	"created_at":      {},
	"updated_at":      {},
}

// User is one registered identity.
type User struct {
	ID             string    `json:"id"`
	LoginHandle    string    `json:"login_handle"`
	PasswordDigest []byte    `json:"-"`
	Profile        Profile   `json:"profile"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NormalizeHandle trims and lower-cases a login handle so that
// "Alice@Example.com " and "alice@example.com" collide.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// Profile holds the mutable attributes of a user. display_name is required.
type Profile map[string]string

// Normalize returns a copy with trimmed lower-case keys and the "name" alias
// folded into display_name. Two keys that normalize to the same name are
// rejected.
func (p Profile) Normalize() (Profile, error) {
	out, err := normalizeFields(p)
	return Profile(out), err
}

// Validate checks a full profile as supplied at signup.
func (p Profile) Validate() error {
	for k := range p {
		if err := checkKey(k); err != nil {
			return err
		}
	}
	if strings.TrimSpace(p[FieldDisplayName]) == "" {
		return fmt.Errorf("%w: %s is required", common.ErrInvalidInput, FieldDisplayName)
	}
	return nil
}

// Apply merges patch into a copy of p: empty values remove the key,
// everything else overwrites.
func (p Profile) Apply(patch ProfilePatch) Profile {
	out := maps.Clone(p)
	if out == nil {
		out = Profile{}
	}
	for k, v := range patch {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// ProfilePatch is the set of fields present in an update request. A present
// key with an empty value clears that field.
type ProfilePatch map[string]string

func (p ProfilePatch) Normalize() (ProfilePatch, error) {
	out, err := normalizeFields(p)
	return ProfilePatch(out), err
}

// Validate rejects reserved keys, clearing display_name and empty patches.
func (p ProfilePatch) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no fields to update", common.ErrInvalidInput)
	}
	for k, v := range p {
		if err := checkKey(k); err != nil {
			return err
		}
		if k == FieldDisplayName && strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s cannot be cleared", common.ErrInvalidInput, FieldDisplayName)
		}
	}
	return nil
}

func checkKey(k string) error {
	if k == "" {
		return fmt.Errorf("%w: empty field name", common.ErrInvalidInput)
	}
	if _, ok := reservedFields[k]; ok {
		return fmt.Errorf("%w: field %q cannot be changed here", common.ErrInvalidInput, k)
	}
	return nil
}

func normalizeFields(in map[string]string) (map[string]string, error) {
	if in == nil {
		return nil, nil
	}

	keys := make(map[string]string, len(in))
	for raw := range in {
		k := strings.ToLower(strings.TrimSpace(raw))
		if prev, ok := keys[k]; ok {
			return nil, fmt.Errorf("%w: fields %q and %q collide", common.ErrInvalidInput, prev, raw)
		}
		keys[k] = raw
	}

	// an explicit display_name wins over the alias
	_, hasDisplayName := keys[FieldDisplayName]

	out := make(map[string]string, len(keys))
	for k, raw := range keys {
		if k == fieldNameAlias {
			if hasDisplayName {
				continue
			}
			k = FieldDisplayName
		}
		out[k] = in[raw]
	}
	return out, nil
}
