package models

// User is the currently authenticated actor.
// Owned by the auth layer; the job view only reads ID.
type User struct {
	ID       string `json:"_id"`
	Fullname string `json:"fullname,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}
