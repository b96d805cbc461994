package cli

import (
	"bytes"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/nao1215/todo/internal/auth"
	"github.com/nao1215/todo/internal/config"
	"github.com/nao1215/todo/internal/store/sqlstore"
	"github.com/nao1215/todo/internal/task"
	"github.com/nao1215/todo/internal/todo"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// startTestAPI はインメモリSQLiteを使うAPIサーバーを起動し、URLを返す。
func startTestAPI(t *testing.T) string {
	t.Helper()

	s, err := sqlstore.Open(t.Context(), sqlstore.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("インメモリストアの作成に失敗: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(t.Context()) })

	cfg := &config.Config{Port: "0", ShutdownTimeout: time.Second}
	gate := auth.NewGate(s.Users(), "cli-test-secret", auth.WithBcryptCost(bcrypt.MinCost))
	srv := todo.NewServer(cfg, gate, task.NewGateway(s.Tasks()), s, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

// testApp はテスト用の入出力を持つApp。
type testApp struct {
	*App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestApp(env map[string]string, stdin string) *testApp {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &testApp{
		App: &App{
			stdin:  strings.NewReader(stdin),
			stdout: stdout,
			stderr: stderr,
			getenv: func(key string) string { return env[key] },
			readPassword: func() ([]byte, error) {
				return nil, io.ErrUnexpectedEOF
			},
		},
		stdout: stdout,
		stderr: stderr,
	}
}

// run はコマンドを実行し、終了コードと標準出力を返す。
func run(t *testing.T, env map[string]string, stdin string, args ...string) (int, string, string) {
	t.Helper()

	app := newTestApp(env, stdin)
	code := app.Run(t.Context(), args)
	return code, app.stdout.String(), app.stderr.String()
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	baseURL := startTestAPI(t)
	env := map[string]string{"TODO_URL": baseURL}

	code, _, stderr := run(t, env, "", "signup", "-name", "Ann", "-email", "a@x.com", "-password", "p")
	if code != 0 {
		t.Fatalf("signup 終了コード = %d, stderr = %s", code, stderr)
	}

	// パスワードは標準入力からも渡せる。
	code, stdout, stderr := run(t, env, "p\n", "login", "-email", "a@x.com")
	if code != 0 {
		t.Fatalf("login 終了コード = %d, stderr = %s", code, stderr)
	}
	token := strings.TrimSpace(stdout)
	if token == "" {
		t.Fatal("トークンが出力されていない")
	}
	env["TODO_TOKEN"] = token

	code, stdout, _ = run(t, env, "", "whoami")
	if code != 0 || !strings.Contains(stdout, "Ann <a@x.com>") {
		t.Errorf("whoami 終了コード = %d, stdout = %q", code, stdout)
	}

	code, stdout, stderr = run(t, env, "", "add", "-important", "buy", "milk")
	if code != 0 {
		t.Fatalf("add 終了コード = %d, stderr = %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "[ ] ! ") || !strings.Contains(stdout, "buy milk") {
		t.Errorf("add stdout = %q", stdout)
	}
	id := strings.Fields(stdout)[3]

	code, stdout, _ = run(t, env, "", "update", "-completed", id)
	if code != 0 || !strings.HasPrefix(stdout, "[x] ! ") {
		t.Errorf("update 終了コード = %d, stdout = %q", code, stdout)
	}

	code, stdout, _ = run(t, env, "", "list")
	if code != 0 || strings.Count(stdout, "\n") != 1 || !strings.Contains(stdout, id) {
		t.Errorf("list 終了コード = %d, stdout = %q", code, stdout)
	}

	code, stdout, _ = run(t, env, "", "rm", id)
	if code != 0 || !strings.Contains(stdout, id) {
		t.Errorf("rm 終了コード = %d, stdout = %q", code, stdout)
	}

	code, _, stderr = run(t, env, "", "rm", id)
	if code != 1 || !strings.Contains(stderr, "NOT_FOUND") {
		t.Errorf("2回目のrm 終了コード = %d, stderr = %q", code, stderr)
	}

	code, stdout, _ = run(t, env, "", "list")
	if code != 0 || !strings.Contains(stdout, "タスクはありません") {
		t.Errorf("list 終了コード = %d, stdout = %q", code, stdout)
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	baseURL := startTestAPI(t)

	tests := []struct {
		name     string
		env      map[string]string
		args     []string
		wantCode int
		wantErr  string
	}{
		{name: "サブコマンド無し", args: nil, wantCode: 2, wantErr: "使い方"},
		{name: "不明なサブコマンド", args: []string{"frobnicate"}, wantCode: 2, wantErr: "不明なサブコマンド"},
		{name: "トークン無しのlist", args: []string{"list"}, wantCode: 1, wantErr: "トークンがありません"},
		{name: "不正なトークン", env: map[string]string{"TODO_TOKEN": "garbage"}, args: []string{"list"}, wantCode: 1, wantErr: "INVALID_CREDENTIAL"},
		{name: "本文無しのadd", args: []string{"add"}, wantCode: 2, wantErr: "本文"},
		{name: "フィールド無しのupdate", args: []string{"update", "id"}, wantCode: 2, wantErr: "更新するフィールド"},
		{name: "誤ったパスワード", args: []string{"login", "-email", "nobody@x.com", "-password", "x"}, wantCode: 1, wantErr: "INVALID_CREDENTIALS"},
		{name: "-help", args: []string{"-help"}, wantCode: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := map[string]string{"TODO_URL": baseURL}
			for k, v := range tt.env {
				env[k] = v
			}
			code, _, stderr := run(t, env, "", tt.args...)
			if code != tt.wantCode {
				t.Errorf("終了コード = %d, want %d (stderr=%s)", code, tt.wantCode, stderr)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want %q を含む", stderr, tt.wantErr)
			}
		})
	}
}

func TestURLFlagOverridesEnv(t *testing.T) {
	t.Parallel()

	baseURL := startTestAPI(t)
	env := map[string]string{"TODO_URL": "http://127.0.0.1:1"}

	code, _, stderr := run(t, env, "", "-url", baseURL, "signup", "-name", "Bob", "-email", "b@x.com", "-password", "p")
	if code != 0 {
		t.Errorf("終了コード = %d, stderr = %s", code, stderr)
	}
}

func TestTaskViewString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		task taskView
		want string
	}{
		{task: taskView{ID: "1", Text: "a"}, want: "[ ]   1  a"},
		{task: taskView{ID: "2", Text: "b", Completed: true, Important: true}, want: "[x] ! 2  b"},
	}
	for _, tt := range tests {
		if got := tt.task.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
