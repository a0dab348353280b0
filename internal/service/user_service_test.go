package service

import (
	"context"
	"errors"
	"testing"

	"github.com/junwei-lu/scoreroom/internal/auth"
)

func TestLogin(t *testing.T) {
	store := newTestStore(t)
	users := NewUserService(store)
	ctx := context.Background()

	t.Run("first contact creates profile", func(t *testing.T) {
		user, err := users.Login(ctx, "u1", testSecret, "", "")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if user.OpenID != "u1" {
			t.Errorf("OpenID = %q, want u1", user.OpenID)
		}
		if user.Nickname == "" {
			t.Error("Expected a generated nickname")
		}
	})

	t.Run("returning user keeps profile", func(t *testing.T) {
		first, err := users.Login(ctx, "u1", testSecret, "", "")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		again, err := users.Login(ctx, "u1", testSecret, "IgnoredName", "")
		if err != nil {
			t.Fatalf("Second login failed: %v", err)
		}
		if again.Nickname != first.Nickname {
			t.Errorf("Nickname changed across logins: %q vs %q", again.Nickname, first.Nickname)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		_, err := users.Login(ctx, "u1", "some-other-device-secret", "", "")
		if !errors.Is(err, auth.ErrInvalidSecret) {
			t.Errorf("Login with wrong secret = %v, want ErrInvalidSecret", err)
		}
	})

	t.Run("weak secret rejected on first contact", func(t *testing.T) {
		_, err := users.Login(ctx, "u-new", "short", "", "")
		if !errors.Is(err, auth.ErrWeakSecret) {
			t.Errorf("Login with weak secret = %v, want ErrWeakSecret", err)
		}
	})

	t.Run("provided nickname used on creation", func(t *testing.T) {
		user, err := users.Login(ctx, "u2", testSecret, "Shuffler", "")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if user.Nickname != "Shuffler" {
			t.Errorf("Nickname = %q, want Shuffler", user.Nickname)
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	store := newTestStore(t)
	users := NewUserService(store)
	ctx := context.Background()

	if _, err := users.Login(ctx, "u1", testSecret, "", ""); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := users.UpdateProfile(ctx, "u1", "NewName", "https://cdn/avatar.png"); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	user, err := users.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if user.Nickname != "NewName" || user.AvatarURL != "https://cdn/avatar.png" {
		t.Errorf("Profile = %q/%q, want NewName/avatar", user.Nickname, user.AvatarURL)
	}

	if err := users.UpdateProfile(ctx, "u1", "", ""); err == nil {
		t.Error("Expected empty nickname to be rejected")
	}
}
