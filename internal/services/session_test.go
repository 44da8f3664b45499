package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/plusone-alumni/plusone/internal/models"
)

func TestSessionService_CreateGetDelete(t *testing.T) {
	rdb := newFakeRedis()
	svc := NewSessionService(rdb, time.Hour)
	ctx := context.Background()
	user := models.CurrentUser{UserID: "u1", Email: "a@vanderbilt.edu", FirstName: "Ann", LastName: "Lee"}

	token, err := svc.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if token == "" {
		t.Fatal("expected token")
	}
	for key := range rdb.data {
		if strings.Contains(key, token) {
			t.Fatal("raw token must not be used as a key")
		}
	}

	got, err := svc.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != user {
		t.Fatalf("got %+v, want %+v", *got, user)
	}
	if len(rdb.expired) != 1 {
		t.Fatal("expected Get to refresh expiry")
	}

	if err := svc.Delete(ctx, token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_UnknownAndEmptyToken(t *testing.T) {
	svc := NewSessionService(newFakeRedis(), time.Hour)
	if _, err := svc.Get(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), ""); err != nil {
		t.Fatalf("expected empty delete to succeed, got %v", err)
	}
}

func TestSessionService_RedisFailure(t *testing.T) {
	rdb := newFakeRedis()
	rdb.err = errors.New("down")
	svc := NewSessionService(rdb, time.Hour)
	if _, err := svc.Create(context.Background(), models.CurrentUser{UserID: "u1"}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := svc.Get(context.Background(), "tok"); err == nil || errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
