package domain

// Identity is the authenticated caller, resolved outside the ledger core.
type Identity struct {
	ProfileID int64
	Type      ProfileType
}
