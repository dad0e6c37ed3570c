package seeder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"

	"github.com/pssabdus/hidrazy-fluent-journey-sub003/internal/auth"
)

const (
	TestToken  = "test-token-12345"
	TestUserID = "00000000-0000-0000-0000-000000000001"
)

func SeedTestToken(ctx context.Context, store auth.Store) {
	h := sha256.Sum256([]byte(TestToken))

	token := &auth.Token{
		UserID:    TestUserID,
		TokenHash: hex.EncodeToString(h[:]),
		Active:    true,
	}

	err := store.Create(ctx, token)
	if err != nil {
		log.Printf("[Seeder] Token may already exist, skipping: %v", err)
		return
	}
	log.Printf("[Seeder] Test token created successfully")
	log.Printf("[Seeder] Token: %s", TestToken)
	log.Printf("[Seeder] UserID: %s", TestUserID)
}
