package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	conn := "postgres://steady@localhost:5432/steady?sslmode=disable"
	if err := Set(AccountRemote, conn); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := Get(AccountRemote)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != conn {
		t.Errorf("Get() = %q, want %q", got, conn)
	}

	if _, err := Get(AccountHealthToken); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() for unset account error = %v, want ErrNotFound", err)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(AccountHealthToken, ""); err == nil {
		t.Error("Set() with empty secret should return an error")
	}
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	if err := Delete(AccountRemote); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() on empty keyring error = %v, want ErrNotFound", err)
	}

	if err := Set(AccountHealthToken, "tok"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := Delete(AccountHealthToken); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := Get(AccountHealthToken); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestLookup(t *testing.T) {
	gokeyring.MockInit()

	if got := Lookup(AccountHealthToken, "fallback"); got != "fallback" {
		t.Errorf("Lookup() = %q, want fallback", got)
	}
	if err := Set(AccountHealthToken, "stored"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if got := Lookup(AccountHealthToken, "fallback"); got != "stored" {
		t.Errorf("Lookup() = %q, want stored", got)
	}
}

func TestIsAvailableWithMock(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with mock keyring")
	}
}
