package utils

import (
	"encoding/binary"
	"log"
	"math/rand/v2"

	"github.com/google/uuid"
)

// GenerateID returns a new v4 UUID string. If the platform's secure random
// source is unavailable it degrades to a pseudo-random v4 so required
// identifier fields can still be filled.
func GenerateID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	log.Printf("⚠️ Secure UUID source unavailable, using pseudo-random fallback: %v", err)

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], rand.Uint64())
	binary.BigEndian.PutUint64(b[8:16], rand.Uint64())
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	fallback, _ := uuid.FromBytes(b[:])
	return fallback.String()
}

// IsValidUUID checks if the string is a valid UUID
func IsValidUUID(u string) bool {
	_, err := uuid.Parse(u)
	return err == nil
}
