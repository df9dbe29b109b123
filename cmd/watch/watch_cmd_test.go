package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/LegacyCodeHQ/apicheck/config"
	"github.com/LegacyCodeHQ/apicheck/internal/cli"
	"github.com/LegacyCodeHQ/apicheck/internal/logging"
	"github.com/LegacyCodeHQ/apicheck/typegraph/java"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oldA = `package p;

public class A {
    public void foo(int x) {
    }

    public void bar() {
    }
}
`

const newA = `package p;

public final class A {
    public void foo(long x) {
    }
}
`

func writeJava(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newSession(t *testing.T, newRoot string, b *broker) (*session, *bytes.Buffer) {
	t.Helper()
	oldDir := t.TempDir()
	writeJava(t, oldDir, "p/A.java", oldA)

	settings := &cli.Settings{Config: config.Default(), Logger: logging.NewDiscardLogger()}
	oldGraph, err := java.Load(context.Background(), oldDir, java.LoadOptions{})
	require.NoError(t, err)

	var out bytes.Buffer
	return &session{
		settings: settings,
		oldGraph: oldGraph,
		newRoot:  newRoot,
		out:      &out,
		broker:   b,
	}, &out
}

func TestBroker_PublishAndSubscribe(t *testing.T) {
	b := newBroker()
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	b.publish(`{"id":1}`)

	select {
	case got := <-ch:
		assert.Equal(t, `{"id":1}`, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestBroker_NewSubscriberReceivesLatest(t *testing.T) {
	b := newBroker()
	b.publish(`{"id":2}`)

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	select {
	case got := <-ch:
		assert.Equal(t, `{"id":2}`, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for latest report")
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	b := newBroker()
	ch1 := b.subscribe()
	ch2 := b.subscribe()
	defer b.unsubscribe(ch1)
	defer b.unsubscribe(ch2)

	b.publish(`{"id":3}`)

	select {
	case got := <-ch1:
		assert.Equal(t, `{"id":3}`, got)
	case <-time.After(time.Second):
		t.Fatal("ch1: timed out")
	}

	select {
	case got := <-ch2:
		assert.Equal(t, `{"id":3}`, got)
	case <-time.After(time.Second):
		t.Fatal("ch2: timed out")
	}
}

func TestHandleReport(t *testing.T) {
	b := newBroker()

	w := httptest.NewRecorder()
	handleReport(b)(w, httptest.NewRequest("GET", routeReport, nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	b.publish(`{"id":1,"findings":0}`)
	w = httptest.NewRecorder()
	handleReport(b)(w, httptest.NewRequest("GET", routeReport, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1,"findings":0}`, w.Body.String())
}

func TestHandleSSE_StreamsReportEvent(t *testing.T) {
	b := newBroker()

	// Pre-publish so the subscriber gets data immediately on subscribe.
	b.publish(`{"id":1}`)

	server := httptest.NewServer(handleSSE(b))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	buf := make([]byte, 4096)
	n, _ := resp.Body.Read(buf)
	body := string(buf[:n])

	assert.Contains(t, body, "event: report")
	assert.Contains(t, body, `data: {"id":1}`)
}

func TestIsRelevantChange_JavaSources(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "src")
	opts := java.LoadOptions{}

	assert.True(t, isRelevantChange(fsnotify.Event{Name: filepath.Join(root, "p", "A.java"), Op: fsnotify.Write}, root, opts))
	assert.True(t, isRelevantChange(fsnotify.Event{Name: filepath.Join(root, "A.java"), Op: fsnotify.Create}, root, opts))
	assert.True(t, isRelevantChange(fsnotify.Event{Name: filepath.Join(root, "p", "B.java"), Op: fsnotify.Remove}, root, opts))
}

func TestIsRelevantChange_UnselectedFiles(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "src")

	assert.False(t, isRelevantChange(fsnotify.Event{Name: filepath.Join(root, "README.md"), Op: fsnotify.Write}, root, java.LoadOptions{}))

	opts := java.LoadOptions{Exclude: []string{"test/**"}}
	assert.False(t, isRelevantChange(fsnotify.Event{Name: filepath.Join(root, "test", "ATest.java"), Op: fsnotify.Write}, root, opts))
}

func TestIsRelevantChange_ChmodIgnored(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "src")
	event := fsnotify.Event{Name: filepath.Join(root, "A.java"), Op: fsnotify.Chmod}
	assert.False(t, isRelevantChange(event, root, java.LoadOptions{}))
}

func TestNewCommand_ServerDisabledByDefault(t *testing.T) {
	cmd := NewCommand()
	port, err := cmd.Flags().GetInt("port")
	require.NoError(t, err)
	assert.Equal(t, 0, port)
}

func TestNewCommand_RequiresNewTree(t *testing.T) {
	cmd := NewCommand()
	cmd.SetArgs([]string{"--old", t.TempDir()})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "new")
}

func TestSession_RecheckWritesAndPublishesReport(t *testing.T) {
	newDir := t.TempDir()
	writeJava(t, newDir, "p/A.java", newA)

	b := newBroker()
	ch := b.subscribe()
	defer b.unsubscribe(ch)
	s, out := newSession(t, newDir, b)

	r, err := s.recheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p.A::bar() MISSING", "p.A FINAL_ADDED"}, r.Lines())
	assert.Contains(t, out.String(), "2 incompatible change(s)\npackage p\np.A::bar() MISSING\np.A FINAL_ADDED\n")

	select {
	case got := <-ch:
		var snap reportSnapshot
		require.NoError(t, json.Unmarshal([]byte(got), &snap))
		assert.Equal(t, int64(1), snap.ID)
		assert.Equal(t, 2, snap.Findings)
		assert.Equal(t, 1, snap.ByStatus["MISSING"])
		assert.Empty(t, snap.Error)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for report")
	}
}

func TestSession_RecheckSeesEdits(t *testing.T) {
	newDir := t.TempDir()
	writeJava(t, newDir, "p/A.java", newA)
	s, _ := newSession(t, newDir, nil)

	r, err := s.recheck(context.Background())
	require.NoError(t, err)
	assert.False(t, r.IsEmpty())

	writeJava(t, newDir, "p/A.java", oldA)
	r, err = s.recheck(context.Background())
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())
	assert.Equal(t, int64(2), s.runs)
}

func TestSession_RecheckPublishesLoadErrors(t *testing.T) {
	newDir := t.TempDir()
	writeJava(t, newDir, "p/A.java", "package p; public class A {")

	b := newBroker()
	s, out := newSession(t, newDir, b)

	_, err := s.recheck(context.Background())
	require.ErrorIs(t, err, java.ErrSyntax)
	assert.Empty(t, out.String())

	var snap reportSnapshot
	require.NoError(t, json.Unmarshal([]byte(b.current()), &snap))
	assert.Contains(t, snap.Error, "A.java")
}
