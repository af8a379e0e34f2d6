package model

import (
	"encoding/json"
	"strings"
)

// AccountType is the canonical account classification of an Identity.
// The backend and older clients also use "guide" for providers; that value
// is folded into AccountProvider by ParseAccountType so the rest of the
// code base never has to check for both spellings.
type AccountType string

const (
	AccountTourist  AccountType = "tourist"
	AccountProvider AccountType = "provider"
)

// ParseAccountType normalises a wire value into an AccountType. Unknown and
// empty values map to AccountTourist, which is the least privileged type.
func ParseAccountType(s string) AccountType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "provider", "guide":
		return AccountProvider
	default:
		return AccountTourist
	}
}

// Role names a principal class used by route requirements.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
	RoleTourist  Role = "tourist"
)

// ParseRole normalises a role name. "guide" is accepted as a synonym of
// RoleProvider. The boolean is false for unknown names.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "provider", "guide":
		return RoleProvider, true
	case "tourist":
		return RoleTourist, true
	}
	return "", false
}

// Identity is the authenticated principal as reported by the backend.
// IsAdmin and AccountType are independent: an administrator can hold any
// account type.
type Identity struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	IsAdmin     bool        `json:"isAdmin"`
	AccountType AccountType `json:"accountType"`
}

// UnmarshalJSON normalises accountType while decoding. The backend may send
// the id as "_id" on some endpoints.
func (i *Identity) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          string `json:"id"`
		MongoID     string `json:"_id"`
		Email       string `json:"email"`
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		IsAdmin     bool   `json:"isAdmin"`
		AccountType string `json:"accountType"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	id := raw.ID
	if id == "" {
		id = raw.MongoID
	}
	*i = Identity{
		ID:          id,
		Email:       raw.Email,
		FirstName:   raw.FirstName,
		LastName:    raw.LastName,
		IsAdmin:     raw.IsAdmin,
		AccountType: ParseAccountType(raw.AccountType),
	}
	return nil
}

// IsProvider reports whether the identity holds a provider (guide) account.
func (i Identity) IsProvider() bool { return i.AccountType == AccountProvider }

// HasRole reports whether the identity satisfies membership of r. Admin
// membership comes from IsAdmin alone; provider and tourist come from the
// account type.
func (i Identity) HasRole(r Role) bool {
	switch r {
	case RoleAdmin:
		return i.IsAdmin
	case RoleProvider:
		return i.AccountType == AccountProvider
	case RoleTourist:
		return i.AccountType == AccountTourist
	}
	return false
}

// DisplayName joins first and last name, falling back to the email.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(i.FirstName + " " + i.LastName)
	if name == "" {
		return i.Email
	}
	return name
}

// Credential is the bearer token issued by the backend together with a
// cached copy of the Identity it was issued for. The cached identity is
// only a hint until the token has been re-validated.
type Credential struct {
	Token    string   `json:"access_token"`
	Identity Identity `json:"user"`
}
