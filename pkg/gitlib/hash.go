package gitlib

import (
	"encoding/hex"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// HashSize is the byte length of a SHA-1 object id.
const HashSize = 20

// Hash is a git object id.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash.
var ZeroHash Hash

// NewHash parses a full hexadecimal object id.
func NewHash(s string) (Hash, error) {
	var h Hash

	if len(s) != HashSize*2 {
		return h, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}

	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("%w: %q", ErrInvalidHash, s)
	}

	return h, nil
}

// HashFromOid converts a libgit2 Oid.
func HashFromOid(oid *git2go.Oid) Hash {
	if oid == nil {
		return ZeroHash
	}

	return Hash(*oid)
}

// String returns the hexadecimal form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// ToOid converts to a libgit2 Oid.
func (h Hash) ToOid() *git2go.Oid {
	oid := git2go.Oid(h)

	return &oid
}
