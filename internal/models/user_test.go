package models

import "testing"

func TestUserPassword(t *testing.T) {
	u := &User{ID: 12, Username: "admin"}
	if err := u.SetPassword("secret"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret" {
		t.Fatalf("password not hashed: %q", u.PasswordHash)
	}
	if !u.CheckPassword("secret") {
		t.Error("correct password rejected")
	}
	if u.CheckPassword("Secret") {
		t.Error("wrong password accepted")
	}
	if u.SessionID() != "12" {
		t.Errorf("SessionID = %q", u.SessionID())
	}
}
