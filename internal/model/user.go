package model

import "time"

// User is a passenger or administrator account.  Accounts are seeded
// before a contest run; the application only reads them and bumps
// LastActivityAt.
//
// Fields:
//  ID                 – ULID primary key.
//  Name               – login name, unique.
//  HashedPassword     – bcrypt hash of the password.
//  IsAdmin            – grants access to /api/admin endpoints.
//  GlobalPaymentToken – token charged through the payment app.
//  LastActivityAt     – last request timestamp, drives the session
//                       idle timeout and the waiting room gate.
type User struct {
	ID                 string     // users.id
	Name               string     // users.name
	HashedPassword     string     // users.hashed_password
	IsAdmin            bool       // users.is_admin
	GlobalPaymentToken string     // users.global_payment_token
	LastActivityAt     *time.Time // users.last_activity_at (nullable)
	CreatedAt          time.Time  // users.created_at
}
