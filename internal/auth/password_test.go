package auth_test

import (
	"crypto/rand"
	"testing"

	"github.com/schoolatlas-dev/schoolatlas/internal/auth"
)

func TestPasswordHasher(t *testing.T) {
	// Low cost keeps the test fast; the algorithm is the same.
	hasher := auth.NewBcryptPasswordHasher(4)

	hash, err := hasher.Hash("password")
	if err != nil {
		t.Errorf("Hash failed: %v", err)
	}
	if err := hasher.Verify(hash, "password"); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
	if err := hasher.Verify(hash, "not-the-password"); err == nil {
		t.Errorf("Verify should have failed for a wrong password")
	}

	t.Run("TestTooLongPassword", func(t *testing.T) {
		tooLongPass := make([]byte, 73)
		rand.Read(tooLongPass)

		_, err := hasher.Hash(string(tooLongPass))
		if err == nil {
			t.Errorf("Hash should have failed")
		}
	})
}

func TestDefaultCost(t *testing.T) {
	hasher := auth.NewBcryptPasswordHasher(0)
	if hasher.Cost != auth.HashCost {
		t.Errorf("expected default cost %d, got %d", auth.HashCost, hasher.Cost)
	}
}
