package singleinstance

import (
	"context"
	"net"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"spellpaste/src/spell"
)

func TestGetPortRangeDefaults(t *testing.T) {
	t.Setenv("SINGLEINSTANCE_PORT_START", "")
	t.Setenv("SINGLEINSTANCE_PORT_END", "")
	start, end := getPortRange()
	if start != 49600 || end != 49650 {
		t.Errorf("got %d-%d, want 49600-49650", start, end)
	}
}

func TestGetPortRangeClampsAndSwaps(t *testing.T) {
	t.Setenv("SINGLEINSTANCE_PORT_START", "80")
	t.Setenv("SINGLEINSTANCE_PORT_END", "99999")
	start, end := getPortRange()
	if start != 1024 || end != 65535 {
		t.Errorf("got %d-%d, want 1024-65535", start, end)
	}

	t.Setenv("SINGLEINSTANCE_PORT_START", "50000")
	t.Setenv("SINGLEINSTANCE_PORT_END", "40000")
	start, end = getPortRange()
	if start != 40000 || end != 50000 {
		t.Errorf("got %d-%d, want 40000-50000", start, end)
	}
}

func TestInventoryRoundtrip(t *testing.T) {
	spells := []spell.Info{
		{Trigger: "hello", Description: "Generate \"Hello, World!\""},
		{Trigger: "plain"},
	}
	text := FormatInventory(spells)
	if got := parseInventory(text); !reflect.DeepEqual(got, spells) {
		t.Errorf("roundtrip mismatch: got %v, want %v", got, spells)
	}
	if parseInventory("") != nil {
		t.Error("empty inventory should parse to nil")
	}
}

// freePort grabs an ephemeral port and releases it for the test to rebind.
func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	port := lis.Addr().(*net.TCPAddr).Port
	lis.Close()
	return port
}

// pinRange restricts the scan range to one test-owned port.
func pinRange(t *testing.T) int {
	t.Helper()
	port := freePort(t)
	t.Setenv("SINGLEINSTANCE_PORT_START", strconv.Itoa(port))
	t.Setenv("SINGLEINSTANCE_PORT_END", strconv.Itoa(port))
	return port
}

func TestClientNoResident(t *testing.T) {
	pinRange(t)

	client := NewClient()
	delegated, _, err := client.TryCast(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("TryCast: %v", err)
	}
	if delegated {
		t.Error("TryCast should report no resident on an empty range")
	}
}

func TestServerClientRoundtrip(t *testing.T) {
	pinRange(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if srv.Port() == 0 {
		t.Fatal("server should report its bound port")
	}

	inventory := []spell.Info{{Trigger: "hello", Description: "greets"}}
	go func() {
		for {
			conn, err := srv.Next(ctx)
			if err != nil {
				return
			}
			req := conn.Request()
			switch req.Kind {
			case KindList:
				conn.RespondSuccess(FormatInventory(inventory))
			case KindCast:
				if req.Trigger == "shout" {
					conn.RespondSuccess(strings.ToUpper(req.Input))
				} else {
					conn.RespondError("spell " + strconv.Quote(req.Trigger) + " not found")
				}
			}
			conn.Close()
		}
	}()

	client := NewClient()

	delegated, spells, err := client.TryList(ctx)
	if err != nil {
		t.Fatalf("TryList: %v", err)
	}
	if !delegated {
		t.Fatal("TryList should find the resident")
	}
	if !reflect.DeepEqual(spells, inventory) {
		t.Errorf("TryList = %v, want %v", spells, inventory)
	}

	delegated, output, err := client.TryCast(ctx, "shout", "make me loud")
	if err != nil {
		t.Fatalf("TryCast: %v", err)
	}
	if !delegated {
		t.Fatal("TryCast should find the resident")
	}
	if output != "MAKE ME LOUD" {
		t.Errorf("TryCast output = %q, want %q", output, "MAKE ME LOUD")
	}

	delegated, _, err = client.TryCast(ctx, "missing", "")
	if !delegated {
		t.Fatal("TryCast should still delegate unknown triggers")
	}
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("TryCast error = %v, want not-found message", err)
	}
}

func TestDetectResidentPort(t *testing.T) {
	port := pinRange(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, found := DetectResidentPort(ctx); found {
		t.Fatal("no resident should be detected before Start")
	}

	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got, found := DetectResidentPort(ctx)
	if !found || got != port {
		t.Errorf("DetectResidentPort = (%d, %v), want (%d, true)", got, found, port)
	}
}
