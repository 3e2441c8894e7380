package ipc

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	env, err := NewEnvelope(TypeHello, HelloMessage{Client: "sim", Version: "1"})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if err := WriteEnvelope(&buf, env); err != nil {
		t.Fatalf("WriteEnvelope: %v", err)
	}
	if got := binary.LittleEndian.Uint32(buf.Bytes()[:4]); int(got) != buf.Len()-4 {
		t.Errorf("prefix = %d, payload = %d", got, buf.Len()-4)
	}

	got, err := ReadEnvelope(&buf)
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	var hello HelloMessage
	if err := json.Unmarshal(got.Data, &hello); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != TypeHello || hello.Client != "sim" {
		t.Errorf("got %s %+v", got.Type, hello)
	}
}

func TestReadEnvelopeRejectsBadFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{"zero length", []byte{0, 0, 0, 0}},
		{"oversized", binary.LittleEndian.AppendUint32(nil, maxFrame+1)},
		{"truncated", append(binary.LittleEndian.AppendUint32(nil, 10), '{')},
		{"not json", append(binary.LittleEndian.AppendUint32(nil, 3), 'a', 'b', 'c')},
		{"no type", append(binary.LittleEndian.AppendUint32(nil, 2), '{', '}')},
	}
	for _, tc := range tests {
		if _, err := ReadEnvelope(bytes.NewReader(tc.frame)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

// pipe returns the server side wrapped in a Connection running ReadLoop and
// the raw client side.
func pipe(t *testing.T, handlers map[string]Handler) Conn {
	t.Helper()
	server, client := net.Pipe()
	c := NewConnection(NewStreamConn(server), handlers)
	go c.ReadLoop()
	cc := NewStreamConn(client)
	t.Cleanup(func() { cc.Close() })
	return cc
}

func send(t *testing.T, c Conn, msgType string, data any) Envelope {
	t.Helper()
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Write(env); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err := c.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestReadLoopDispatches(t *testing.T) {
	c := pipe(t, map[string]Handler{
		TypeHello: func(env Envelope) (*Envelope, error) {
			ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
			return &ack, err
		},
	})
	resp := send(t, c, TypeHello, HelloMessage{Client: "sim"})
	if resp.Type != TypeAck {
		t.Errorf("reply type = %s, want ack", resp.Type)
	}
}

func TestReadLoopRepliesWithErrors(t *testing.T) {
	c := pipe(t, map[string]Handler{
		TypeTick: func(Envelope) (*Envelope, error) { return nil, errors.New("bad tick") },
	})

	tests := []struct {
		msgType string
		wantErr string
	}{
		{TypeTick, "bad tick"},
		{"launch_rockets", "unsupported"},
	}
	for _, tc := range tests {
		resp := send(t, c, tc.msgType, struct{}{})
		if resp.Type != TypeError {
			t.Fatalf("%s: reply type = %s, want error", tc.msgType, resp.Type)
		}
		var msg ErrorMessage
		if err := json.Unmarshal(resp.Data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Request != tc.msgType || !strings.Contains(msg.Error, tc.wantErr) {
			t.Errorf("%s: got %+v", tc.msgType, msg)
		}
	}

	// The loop survives errors.
	resp := send(t, c, TypeTick, struct{}{})
	if resp.Type != TypeError {
		t.Errorf("loop stopped after errors: %s", resp.Type)
	}
}

func TestWebSocketTransport(t *testing.T) {
	srv := httptest.NewServer(WebSocketHandler(func(conn Conn) {
		c := NewConnection(conn, map[string]Handler{
			TypeHello: func(env Envelope) (*Envelope, error) {
				var hello HelloMessage
				if err := json.Unmarshal(env.Data, &hello); err != nil {
					return nil, err
				}
				ack, err := NewEnvelope(TypeAck, AckMessage{Status: "ok", SessionID: hello.Client})
				return &ack, err
			},
		})
		c.ReadLoop()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := DialWebSocket(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	if err != nil {
		t.Fatalf("DialWebSocket: %v", err)
	}
	defer conn.Close()

	resp := send(t, conn, TypeHello, HelloMessage{Client: "browser"})
	var ack AckMessage
	if err := json.Unmarshal(resp.Data, &ack); err != nil {
		t.Fatal(err)
	}
	if resp.Type != TypeAck || ack.SessionID != "browser" {
		t.Errorf("got %s %+v", resp.Type, ack)
	}

	resp = send(t, conn, TypeUnlocksQuery, UnlocksQuery{NicheID: "dairy"})
	if resp.Type != TypeError {
		t.Errorf("unhandled type over websocket: reply %s, want error", resp.Type)
	}
}
