package hexconv

// Halfbyte maps a hex digit character into its value. Non-hex characters are mapped
// into 0xFF.
var Halfbyte = func() (table [256]byte) {
	for i := range table {
		table[i] = 0xFF
	}

	for c := '0'; c <= '9'; c++ {
		table[c] = byte(c - '0')
	}

	for c := 'a'; c <= 'f'; c++ {
		table[c] = byte(c-'a') + 10
		table[c-0x20] = byte(c-'a') + 10
	}

	return table
}()

// IsHex tells whether the character is a valid hex digit.
func IsHex(c byte) bool {
	return Halfbyte[c] != 0xFF
}
