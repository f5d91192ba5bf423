package serialization

import "crypto/sha256"

// Checksum returns the SHA-256 of the header JSON followed by the tensor
// data. Padding and the fixed header are not covered.
func Checksum(headerJSON, data []byte) [ChecksumSize]byte {
	h := sha256.New()
	h.Write(headerJSON)
	h.Write(data)

	var sum [ChecksumSize]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// VerifyChecksum returns ErrChecksumMismatch unless stored is the checksum
// of headerJSON and data.
func VerifyChecksum(headerJSON, data []byte, stored [ChecksumSize]byte) error {
	if Checksum(headerJSON, data) != stored {
		return ErrChecksumMismatch
	}
	return nil
}
