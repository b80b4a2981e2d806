package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"
)

// session drives one Run loop over in-memory pipes.
type session struct {
	in   *io.PipeWriter
	out  *bufio.Scanner
	done chan error
	stop context.CancelFunc
}

func startSession(t *testing.T, s *Server) *session {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	sess := &session{in: inW, out: bufio.NewScanner(outR), done: make(chan error, 1), stop: cancel}
	sess.out.Buffer(make([]byte, 0, 64*1024), 1<<20)
	go func() {
		sess.done <- s.Run(ctx, inR, outW)
		_ = outW.Close()
	}()
	t.Cleanup(func() {
		cancel()
		_ = inW.Close()
		_ = outR.Close()
	})
	return sess
}

// call writes one line and decodes the single response line into v.
func (s *session) call(t *testing.T, line string, v any) {
	t.Helper()
	if _, err := io.WriteString(s.in, line+"\n"); err != nil {
		t.Fatalf("write %s: %v", line, err)
	}
	if !s.out.Scan() {
		t.Fatalf("no response to %s: %v", line, s.out.Err())
	}
	if err := json.Unmarshal(s.out.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", s.out.Text(), err)
	}
}

// wait returns Run's result, failing if it has not returned within a second.
func (s *session) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-s.done:
		return err
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

type rpcReply struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

func TestRun_InitializeReportsCourtside(t *testing.T) {
	old := Version
	Version = "1.4.0"
	defer func() { Version = old }()

	sess := startSession(t, newTestServer(t))
	var reply struct {
		Result struct {
			ProtocolVersion string `json:"protocolVersion"`
			Capabilities    struct {
				Tools map[string]any `json:"tools"`
			} `json:"capabilities"`
			ServerInfo struct {
				Name    string `json:"name"`
				Version string `json:"version"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	sess.call(t, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`, &reply)

	if reply.Result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocolVersion = %q", reply.Result.ProtocolVersion)
	}
	if reply.Result.Capabilities.Tools == nil {
		t.Error("expected a tools capability")
	}
	if got := reply.Result.ServerInfo; got.Name != "courtside" || got.Version != "1.4.0" {
		t.Errorf("serverInfo = %+v", got)
	}
}

func TestRun_ToolsListDescribesQueryTools(t *testing.T) {
	sess := startSession(t, newTestServer(t))
	var reply struct {
		Result struct {
			Tools []toolListEntry `json:"tools"`
		} `json:"result"`
	}
	sess.call(t, `{"jsonrpc":"2.0","id":"list","method":"tools/list"}`, &reply)

	byName := map[string]toolListEntry{}
	for _, tool := range reply.Result.Tools {
		byName[tool.Name] = tool
	}
	for _, name := range []string{"run_query", "ask", "list_metrics", "season_info"} {
		tool, ok := byName[name]
		if !ok {
			t.Errorf("tools/list is missing %s", name)
			continue
		}
		if tool.Description == "" {
			t.Errorf("%s has no description", name)
		}
		var schema struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(tool.InputSchema, &schema); err != nil || schema.Type != "object" {
			t.Errorf("%s schema = %s", name, tool.InputSchema)
		}
	}
	if len(reply.Result.Tools) != 4 {
		t.Errorf("listed %d tools, want 4", len(reply.Result.Tools))
	}
}

func TestRun_ProtocolErrors(t *testing.T) {
	cases := []struct {
		name string
		line string
		code int
	}{
		{"malformed line", `{"jsonrpc":"2.0","id":`, -32700},
		{"unknown method", `{"jsonrpc":"2.0","id":3,"method":"resources/list"}`, -32601},
		{"params not an object", `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":"run_query"}`, -32602},
	}
	sess := startSession(t, newTestServer(t))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var reply rpcReply
			sess.call(t, tc.line, &reply)
			if reply.Error == nil || reply.Error.Code != tc.code {
				t.Errorf("error = %+v, want code %d", reply.Error, tc.code)
			}
		})
	}
}

func TestRun_UnknownToolIsToolError(t *testing.T) {
	sess := startSession(t, newTestServer(t))
	var reply struct {
		Error  *jsonrpcError   `json:"error"`
		Result toolsCallResult `json:"result"`
	}
	sess.call(t, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"box_score"}}`, &reply)

	if reply.Error != nil {
		t.Fatalf("unknown tool should not be a protocol error: %+v", reply.Error)
	}
	if !reply.Result.IsError || len(reply.Result.Content) != 1 || reply.Result.Content[0].Text != "unknown tool: box_score" {
		t.Errorf("result = %+v", reply.Result)
	}
}

func TestRun_NotificationsAreSilent(t *testing.T) {
	sess := startSession(t, newTestServer(t))

	// The reply that comes back must belong to the request after the
	// notification.
	if _, err := io.WriteString(sess.in, `{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n"); err != nil {
		t.Fatal(err)
	}
	var reply rpcReply
	sess.call(t, `{"jsonrpc":"2.0","id":42,"method":"tools/call","params":{"name":"list_metrics"}}`, &reply)
	if string(reply.ID) != "42" {
		t.Errorf("id = %s, want 42", reply.ID)
	}
}

func TestRun_StopsOnEOF(t *testing.T) {
	sess := startSession(t, newTestServer(t))
	var reply rpcReply
	sess.call(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, &reply)

	_ = sess.in.Close()
	if err := sess.wait(t); err != nil {
		t.Errorf("Run = %v, want nil on EOF", err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	sess := startSession(t, newTestServer(t))
	sess.stop()
	if err := sess.wait(t); err != nil {
		t.Errorf("Run = %v, want nil on cancel", err)
	}
}
