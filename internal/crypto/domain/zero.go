package domain

// Zero overwrites key material in place. Safe on nil slices.
func Zero(b []byte) {
	clear(b)
}
