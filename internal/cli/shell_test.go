package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filedash/filedash/internal/config"
	"github.com/filedash/filedash/internal/core"
	"github.com/filedash/filedash/internal/logging"
	"github.com/filedash/filedash/internal/session"
)

func newShellEngine(t *testing.T, confirm bool) *core.Engine {
	t.Helper()

	mux := nethttp.NewServeMux()
	reply := func(v interface{}) nethttp.HandlerFunc {
		return func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(v)
		}
	}
	mux.HandleFunc("/api/me/", reply(map[string]string{"username": "alice"}))
	mux.HandleFunc("/api/profile/", reply(map[string]string{"username": "alice", "email": "alice@example.com"}))
	mux.HandleFunc("/api/my-file-extensions/", reply([]string{"txt", "pdf"}))
	mux.HandleFunc("/api/my-files/", reply([]map[string]string{
		{"id": "1", "filename": "notes.txt", "content_type": "text/plain"},
		{"id": "2", "filename": "report.pdf", "content_type": "application/pdf"},
	}))
	mux.HandleFunc("/api/file/1/raw/", reply(map[string]string{
		"filename":     "notes.txt",
		"content_type": "text/plain",
		"base64":       base64.StdEncoding.EncodeToString([]byte("hello from notes")),
	}))
	mux.HandleFunc("/api/file/1/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := config.NewConfig()
	cfg.APIBaseURL = srv.URL + "/api/"
	cfg.SearchDebounce = 10 * time.Millisecond

	sess := session.New(&session.MemoryStore{}, nil)
	require.NoError(t, sess.SignIn("tok"))

	engine, err := core.NewEngine(cfg, sess, core.Dependencies{
		Confirmer: answerConfirmer(confirm),
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine
}

type answerConfirmer bool

func (a answerConfirmer) Confirm(string) bool { return bool(a) }

func runScript(t *testing.T, engine *core.Engine, script string) string {
	t.Helper()
	var out bytes.Buffer
	err := runShell(context.Background(), engine, bufio.NewReader(strings.NewReader(script)), &out)
	require.NoError(t, err)
	return out.String()
}

func TestShellMountsAndLists(t *testing.T) {
	engine := newShellEngine(t, true)
	out := runScript(t, engine, "ls\nquit\n")

	assert.Contains(t, out, "Signed in as alice")
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "report.pdf")
}

func TestShellExtensionToggle(t *testing.T) {
	engine := newShellEngine(t, true)
	runScript(t, engine, "ext pdf\nquit\n")

	v := engine.View()
	assert.Equal(t, "pdf", v.Criteria.Extension)
	require.Len(t, v.Files, 1)
	assert.Equal(t, "report.pdf", v.Files[0].Filename)
}

func TestShellPreviewAndDelete(t *testing.T) {
	engine := newShellEngine(t, true)
	out := runScript(t, engine, "open 1\ndelete\nquit\n")

	assert.Contains(t, out, "hello from notes")
	assert.Contains(t, out, "Deleted")
	assert.Nil(t, engine.View().Preview)
}

func TestShellUnknownCommand(t *testing.T) {
	engine := newShellEngine(t, true)
	out := runScript(t, engine, "frobnicate\n")

	assert.Contains(t, out, `unknown command "frobnicate"`)
}

func TestShellProfileAndLogout(t *testing.T) {
	engine := newShellEngine(t, true)
	out := runScript(t, engine, "profile\nlogout\nls\n")

	assert.Contains(t, out, "alice@example.com")
	assert.Nil(t, engine.View().User)
	assert.False(t, engine.View().ProfileOpen)
}
