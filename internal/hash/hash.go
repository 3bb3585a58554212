package hash

import (
	"crypto/sha256"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Asset derives a content identifier for an artifact or source file: a
// CIDv1 over the SHA-256 of the bytes. The same bytes always produce the
// same identifier, which is what makes cache keys and manifest integrity
// values stable across machines.
func Asset(data []byte) (string, error) {
	sum := sha256.Sum256(data)

	mh, err := multihash.Encode(sum[:], multihash.SHA2_256)
	if err != nil {
		return "", err
	}

	// CIDv1 with raw codec (0x55)
	c := cid.NewCidV1(cid.Raw, mh)
	return c.String(), nil
}

// Valid reports whether a string parses as a content identifier.
func Valid(s string) bool {
	_, err := cid.Decode(s)
	return err == nil
}
