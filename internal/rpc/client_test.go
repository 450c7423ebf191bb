package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/shortcuts/internal/shortcut"
)

func writeResult(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(ResultEnvelope{Result: raw}))
}

func TestCall_PostsToMethodPath(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody LaunchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeResult(t, w, Ack{ShortcutID: gotBody.ShortcutID, LaunchID: gotBody.LaunchID})
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	ack, err := c.LaunchInstance(context.Background(), LaunchRequest{
		ShortcutID: "s1",
		LaunchID:   "l1",
		RunnerPath: "/runner.sh",
		StartDir:   "/tmp",
	})
	require.NoError(t, err)
	require.Equal(t, "/rpc/launchInstance", gotPath)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/runner.sh", gotBody.RunnerPath)
	require.Equal(t, Ack{ShortcutID: "s1", LaunchID: "l1"}, ack)
}

func TestCall_RejectedCarriesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "instance already running", Code: "already_running"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).StopInstance(context.Background(), "s1")
	require.Error(t, err)
	require.True(t, IsRejected(err))
	require.False(t, IsTransport(err))

	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, http.StatusConflict, rpcErr.StatusCode)
	require.Equal(t, "already_running", rpcErr.Code)
	require.Equal(t, MethodStopInstance, rpcErr.Method)
	require.Contains(t, err.Error(), "instance already running")
}

func TestCall_RejectedPlainTextBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).KillInstance(context.Background(), "s1")
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, KindRejected, rpcErr.Kind)
	require.Equal(t, "boom", rpcErr.Message)
}

func TestCall_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).ListShortcuts(context.Background())
	require.Error(t, err)
	require.True(t, IsTransport(err))
}

func TestCall_TimeoutIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	err := NewClient(srv.URL, WithTimeout(20*time.Millisecond)).StopInstance(context.Background(), "s1")
	require.True(t, IsTransport(err))
}

func TestCall_DecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListShortcuts(context.Background())
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	require.Equal(t, KindDecode, rpcErr.Kind)
}

func TestShortcutMethods_ReturnCollections(t *testing.T) {
	stored := shortcut.Collection{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rpc/" + MethodAddShortcut, "/rpc/" + MethodModifyShortcut:
			var req ShortcutRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			stored[req.Shortcut.ID] = req.Shortcut
		case "/rpc/" + MethodRemoveShortcut:
			var req RemoveRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			delete(stored, req.ID)
		}
		writeResult(t, w, stored)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()
	s := shortcut.Shortcut{ID: "s1", Name: "hello", Cmd: "echo hi"}

	got, err := c.AddShortcut(ctx, s)
	require.NoError(t, err)
	require.Equal(t, s, got["s1"])

	s.Cmd = "echo bye"
	got, err = c.ModifyShortcut(ctx, s)
	require.NoError(t, err)
	require.Equal(t, "echo bye", got["s1"].Cmd)

	got, err = c.RemoveShortcut(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}
