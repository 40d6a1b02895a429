package models

// Document is the whole persisted state of the site. Every mutation rewrites
// the entire document; there is no per-field update path.
type Document struct {
	Addresses     []Address `json:"addresses"`
	Rules         string    `json:"rules"`
	AdminPassword string    `json:"adminPassword"`
}

// NewDocument returns an empty document with the given password hash.
func NewDocument(passwordHash string) *Document {
	return &Document{
		Addresses:     []Address{},
		Rules:         "",
		AdminPassword: passwordHash,
	}
}
