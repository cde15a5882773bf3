package models

// SessionUser is the authenticated identity from me/.
type SessionUser struct {
	Username string `json:"username"`
}

// ProfileDetails is the extended profile from profile/.
type ProfileDetails struct {
	Username   string    `json:"username"`
	FullName   string    `json:"full_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	DateJoined Timestamp `json:"date_joined"`
}
