package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimmerbailey/ryulog/internal/llm"
)

func explainFlags(cmd *cobra.Command) {
	addChannelFlag(cmd)
	cmd.Flags().StringP("question", "q", "", "")
}

// fakeOllama answers every chat request with replies in turn and records
// the request bodies.
type fakeOllama struct {
	t       *testing.T
	mu      sync.Mutex
	replies []string
	bodies  []string
}

func newFakeOllama(t *testing.T, replies ...string) *fakeOllama {
	f := &fakeOllama{t: t, replies: replies}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	viper.Set("llm.ollama.host", server.URL)
	return f
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		w.WriteHeader(http.StatusOK)
		return
	case "/api/tags":
		json.NewEncoder(w).Encode(map[string]interface{}{
			"models": []map[string]string{{"name": "llama3.2:latest", "model": "llama3.2:latest"}},
		})
		return
	case "/api/chat":
	default:
		http.NotFound(w, r)
		return
	}

	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.bodies = append(f.bodies, string(body))
	n := len(f.bodies)
	f.mu.Unlock()
	if n > len(f.replies) {
		f.t.Errorf("unexpected chat request %d", n)
		http.Error(w, "no reply", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	enc.Encode(map[string]interface{}{
		"model":   "llama3.2",
		"message": map[string]string{"role": "assistant", "content": f.replies[n-1]},
		"done":    true,
	})
}

func (f *fakeOllama) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.bodies...)
}

func TestExplainStreamsDiagnosis(t *testing.T) {
	setupTestConfig(t)
	fake := newFakeOllama(t, "Grant Ryujinx access to its save directory.")
	file := writeTempFile(t, t.TempDir(), "Ryujinx_1.1.217_2024-01-01_12-00-00.log", bootedLog)

	var out, errOut bytes.Buffer
	cmd := newTestCmd(&out, &errOut, explainFlags)
	require.NoError(t, runExplain(cmd, []string{file}))

	assert.Equal(t, "Grant Ryujinx access to its save directory.\n", out.String())

	reqs := fake.requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0], "Analysis Report:")
	assert.Contains(t, reqs[0], "Log Digest:")
	assert.Contains(t, reqs[0], "ResultFsPermissionDenied")
	assert.NotContains(t, reqs[0], "alice", "user name sent to the model")
}

func TestExplainQuestion(t *testing.T) {
	setupTestConfig(t)
	fake := newFakeOllama(t, "Yes.")
	file := writeTempFile(t, t.TempDir(), "game.log", bootedLog)

	var out, errOut bytes.Buffer
	cmd := newTestCmd(&out, &errOut, explainFlags)
	require.NoError(t, cmd.Flags().Set("question", "is vulkan in use?"))
	require.NoError(t, runExplain(cmd, []string{file}))

	reqs := fake.requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0], "Question: is vulkan in use?")
}

func TestExplainStructuredJSON(t *testing.T) {
	setupTestConfig(t)
	viper.Set("format", "json")
	diagnosis := `{"summary":"save access denied","severity":"error","cause":null,"evidence":[],"fixes":["delete the save directory"]}`
	fake := newFakeOllama(t, "The save directory cannot be opened.", "```json\n"+diagnosis+"\n```")
	file := writeTempFile(t, t.TempDir(), "game.log", bootedLog)

	var out, errOut bytes.Buffer
	cmd := newTestCmd(&out, &errOut, explainFlags)
	require.NoError(t, runExplain(cmd, []string{file}))

	var got Explanation
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "report", got.Outcome)
	assert.JSONEq(t, diagnosis, string(got.Diagnosis))

	reqs := fake.requests()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[1], "The save directory cannot be opened.")
}

func TestExplainSkipsModelForInvalidLogs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		block   string
		want    string
	}{
		{name: "invalid", content: "not a log at all", want: "appears to be invalid"},
		{name: "blocked", content: blockedLog, block: "0100000000010000", want: "Blocked game detected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t)
			fake := newFakeOllama(t)
			file := writeTempFile(t, t.TempDir(), "game.log", tt.content)

			var out, errOut bytes.Buffer
			if tt.block != "" {
				require.NoError(t, runBlock(newTestCmd(&out, &errOut, nil), []string{tt.block}))
				out.Reset()
			}

			cmd := newTestCmd(&out, &errOut, explainFlags)
			require.NoError(t, runExplain(cmd, []string{file}))
			assert.Contains(t, out.String(), tt.want)
			assert.Empty(t, fake.requests())
		})
	}
}

func TestExplainProviderUnavailable(t *testing.T) {
	setupTestConfig(t)
	server := httptest.NewServer(http.NotFoundHandler())
	viper.Set("llm.ollama.host", server.URL)
	server.Close()
	file := writeTempFile(t, t.TempDir(), "game.log", bootedLog)

	var out, errOut bytes.Buffer
	err := runExplain(newTestCmd(&out, &errOut, explainFlags), []string{file})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "ollama serve"), "error = %v", err)
}

func TestExplainModelNotPulled(t *testing.T) {
	setupTestConfig(t)
	fake := newFakeOllama(t)
	viper.Set("llm.ollama.model", "qwen2.5:7b")
	file := writeTempFile(t, t.TempDir(), "game.log", bootedLog)

	var out, errOut bytes.Buffer
	err := runExplain(newTestCmd(&out, &errOut, explainFlags), []string{file})
	require.ErrorIs(t, err, llm.ErrModelNotFound)
	assert.Contains(t, err.Error(), "ollama pull qwen2.5:7b")
	assert.Empty(t, fake.requests())
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Here you go: {\"a\":{\"b\":2}} hope it helps", `{"a":{"b":2}}`},
		{"no json", "no json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(extractJSON(tt.in)))
	}
}
