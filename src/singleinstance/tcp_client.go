package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"spellpaste/src/spell"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryCast(ctx context.Context, trigger, input string) (bool, string, error) {
	return c.request(ctx, "CAST "+trigger+"\n", input)
}

func (c *tcpClient) TryList(ctx context.Context) (bool, []spell.Info, error) {
	delegated, text, err := c.request(ctx, "LIST\n", "")
	if !delegated || err != nil {
		return delegated, nil, err
	}
	return true, parseInventory(text), nil
}

// request scans the configured range for a resident (PING handshake), then
// sends one request line plus body and reads the framed response.
func (c *tcpClient) request(ctx context.Context, line, body string) (bool, string, error) {
	deadline := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			deadline = d
		}
	}
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, deadline) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, deadline)
		if err != nil {
			continue
		}
		w := bufio.NewWriter(conn)
		if _, err := w.WriteString(line); err != nil {
			conn.Close()
			return true, "", err
		}
		if body != "" {
			if _, err := w.WriteString(body); err != nil {
				conn.Close()
				return true, "", err
			}
		}
		if err := w.Flush(); err != nil {
			conn.Close()
			return true, "", err
		}
		// Half-close so the resident sees end-of-input.
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
		br := bufio.NewReader(conn)
		status, err := br.ReadString('\n')
		if err != nil {
			conn.Close()
			return true, "", err
		}
		if status == "SUCCESS\n" {
			b, _ := io.ReadAll(br)
			conn.Close()
			return true, string(b), nil
		}
		if status == "ERROR\n" {
			msg, _ := io.ReadAll(br)
			conn.Close()
			return true, "", errors.New(string(msg))
		}
		conn.Close()
	}
	return false, "", nil
}

// FormatInventory renders a LIST response body: one "trigger\tdescription"
// line per spell.
func FormatInventory(spells []spell.Info) string {
	var b strings.Builder
	for _, s := range spells {
		b.WriteString(s.Trigger)
		b.WriteByte('\t')
		b.WriteString(s.Description)
		b.WriteByte('\n')
	}
	return b.String()
}

func parseInventory(text string) []spell.Info {
	var spells []spell.Info
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		trigger, desc, _ := strings.Cut(line, "\t")
		spells = append(spells, spell.Info{Trigger: trigger, Description: desc})
	}
	return spells
}
