package offline

// SetMaxBodyBytes lowers the buffer limit for a test and returns a restore func.
func SetMaxBodyBytes(n int64) func() {
	prev := maxBodyBytes
	maxBodyBytes = n
	return func() { maxBodyBytes = prev }
}
