package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cppla/quickpost/apperr"
	"github.com/cppla/quickpost/store"
	"github.com/cppla/quickpost/store/storetest"
	"github.com/cppla/quickpost/utils"
)

const testSecret = "test-secret"

func newAuth(t *testing.T) (*AuthService, *store.Store, *utils.TokenService) {
	t.Helper()
	st := storetest.Open(t)
	tokens := utils.NewTokenService(testSecret, utils.DefaultTokenTTL)
	return NewAuthService(st, tokens, nil), st, tokens
}

func TestSignupLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuth(t)

	user, err := auth.Signup(ctx, "  Dana@Example.com ", "hunter22")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.ID == 0 || user.Email != "dana@example.com" {
		t.Fatalf("Signup user = %+v", user)
	}
	if user.PasswordHash == "hunter22" || user.PasswordHash == "" {
		t.Fatal("password stored in the clear")
	}

	token, err := auth.Login(ctx, "dana@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	got, err := auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("Authenticate user id = %d, want %d", got.ID, user.ID)
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuth(t)

	if _, err := auth.Signup(ctx, "eve@example.com", "first-pass"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	for _, email := range []string{"eve@example.com", "EVE@example.com"} {
		_, err := auth.Signup(ctx, email, "another-pass")
		if !apperr.Is(err, apperr.Conflict) {
			t.Fatalf("Signup(%q) again err = %v, want conflict", email, err)
		}
	}
}

func TestSignupRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuth(t)

	cases := []struct {
		name, email, password string
	}{
		{"no at sign", "not-an-email", "secret1"},
		{"empty email", "", "secret1"},
		{"short password", "fay@example.com", "12345"},
		{"three runes in six bytes", "fay@example.com", "ééé"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Signup(ctx, tc.email, tc.password)
			if !apperr.Is(err, apperr.InvalidInput) {
				t.Fatalf("err = %v, want invalid input", err)
			}
		})
	}

	if _, err := auth.Signup(ctx, "fay@example.com", "éééééé"); err != nil {
		t.Fatalf("Signup with six-rune password: %v", err)
	}
}

func TestSignupAcceptsLongPasswords(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuth(t)

	long := strings.Repeat("correct horse battery staple ", 4)
	if _, err := auth.Signup(ctx, "gil@example.com", long); err != nil {
		t.Fatalf("Signup(%d chars): %v", len(long), err)
	}
	if _, err := auth.Login(ctx, "gil@example.com", long); err != nil {
		t.Fatalf("Login with long password: %v", err)
	}
	// Only the last character differs, far past 72 bytes.
	if _, err := auth.Login(ctx, "gil@example.com", long[:len(long)-1]+"!"); !apperr.Is(err, apperr.Unauthorized) {
		t.Fatalf("Login with altered tail err = %v, want unauthorized", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuth(t)

	if _, err := auth.Signup(ctx, "gus@example.com", "right-pass"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	_, errWrongPass := auth.Login(ctx, "gus@example.com", "wrong-pass")
	_, errNoUser := auth.Login(ctx, "nobody@example.com", "right-pass")
	for _, err := range []error{errWrongPass, errNoUser} {
		if !apperr.Is(err, apperr.Unauthorized) {
			t.Fatalf("Login err = %v, want unauthorized", err)
		}
	}
	if apperr.MessageOf(errWrongPass) != apperr.MessageOf(errNoUser) {
		t.Fatalf("messages differ: %q vs %q", apperr.MessageOf(errWrongPass), apperr.MessageOf(errNoUser))
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	auth, _, tokens := newAuth(t)

	user, err := auth.Signup(ctx, "hal@example.com", "secret1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	past := tokens.WithClock(func() time.Time { return time.Now().Add(-25 * time.Hour) })
	token, err := past.Issue(user.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := auth.Authenticate(ctx, token); !apperr.Is(err, apperr.Unauthorized) {
		t.Fatalf("Authenticate(expired) err = %v, want unauthorized", err)
	}
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	ctx := context.Background()
	auth, st, _ := newAuth(t)

	user, err := auth.Signup(ctx, "ivy@example.com", "secret1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	token, err := auth.Login(ctx, "ivy@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := st.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := auth.Authenticate(ctx, token); !apperr.Is(err, apperr.Unauthorized) {
		t.Fatalf("Authenticate(deleted user) err = %v, want unauthorized", err)
	}
}

func TestAuthenticateRejectsForeignAndMalformedTokens(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuth(t)

	user, err := auth.Signup(ctx, "jon@example.com", "secret1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	foreign, err := utils.NewTokenService("other-secret", time.Hour).Issue(user.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for _, token := range []string{"", "garbage", foreign} {
		if _, err := auth.Authenticate(ctx, token); !apperr.Is(err, apperr.Unauthorized) {
			t.Errorf("Authenticate(%q) err = %v, want unauthorized", token, err)
		}
	}
}
