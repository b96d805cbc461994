// Package cli はTo-Do APIのコマンドラインクライアントtodoctlの実装を提供する。
//
// サブコマンドごとにflag.FlagSetを持ち、pkg/httpclient経由でAPIを呼び出す。
// 接続先とトークンは -url / -token フラグ、または環境変数TODO_URL / TODO_TOKENで指定する。
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/nao1215/todo/pkg/httpclient"
)

const defaultURL = "http://localhost:8080"

// errUsage は引数の誤りを表す。使い方を表示済みであることを示す。
var errUsage = errors.New("usage error")

// App はtodoctlの実行環境。
type App struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	// readPassword はエコーなしでパスワードを読み取る。テストで差し替える。
	readPassword func() ([]byte, error)
}

// New は標準入出力と環境変数を使うAppを生成する。
func New() *App {
	return &App{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
		readPassword: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}
}

// command はサブコマンドの定義。
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *App, s *session, args []string) error
}

// commands はサブコマンドの一覧。表示順を兼ねる。
var commands = []command{
	{name: "signup", summary: "ユーザーを登録する", run: runSignup},
	{name: "login", summary: "ログインしてトークンを表示する", run: runLogin},
	{name: "whoami", summary: "トークンのユーザーを表示する", run: runWhoami},
	{name: "list", summary: "タスクの一覧を表示する", run: runList},
	{name: "add", summary: "タスクを作成する", run: runAdd},
	{name: "update", summary: "タスクを更新する", run: runUpdate},
	{name: "rm", summary: "タスクを削除する", run: runRemove},
}

// session はサブコマンドが共有する接続情報。
type session struct {
	client *httpclient.Client
	token  string
}

// authContext はトークンを設定したコンテキストを返す。
func (s *session) authContext(ctx context.Context) context.Context {
	return httpclient.WithToken(ctx, s.token)
}

// Run は引数を解釈してサブコマンドを実行し、終了コードを返す。
func (a *App) Run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("todoctl", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	baseURL := fs.String("url", envOr(a.getenv, "TODO_URL", defaultURL), "APIのベースURL（環境変数TODO_URL）")
	token := fs.String("token", a.getenv("TODO_TOKEN"), "認証トークン（環境変数TODO_TOKEN）")
	fs.Usage = func() { a.usage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		a.usage(fs)
		return 2
	}

	name := fs.Arg(0)
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		s := &session{client: httpclient.New(*baseURL), token: *token}
		err := cmd.run(ctx, a, s, fs.Args()[1:])
		switch {
		case err == nil:
			return 0
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			return 2
		default:
			fmt.Fprintf(a.stderr, "エラー: %s\n", describe(err))
			return 1
		}
	}

	fmt.Fprintf(a.stderr, "不明なサブコマンドです: %s\n", name)
	a.usage(fs)
	return 2
}

func (a *App) usage(fs *flag.FlagSet) {
	fmt.Fprintln(a.stderr, "使い方: todoctl [-url URL] [-token TOKEN] <サブコマンド> [引数]")
	fmt.Fprintln(a.stderr)
	fmt.Fprintln(a.stderr, "サブコマンド:")
	for _, cmd := range commands {
		fmt.Fprintf(a.stderr, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(a.stderr)
	fmt.Fprintln(a.stderr, "フラグ:")
	fs.PrintDefaults()
}

// describe はエラーを利用者向けの文字列にする。
func describe(err error) string {
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		if se.Code != "" {
			return fmt.Sprintf("%s (%s, HTTP %d)", se.Message, se.Code, se.StatusCode)
		}
		return fmt.Sprintf("%s (HTTP %d)", se.Message, se.StatusCode)
	}
	return err.Error()
}

// password は -password が空の場合に入力を求める。
// 端末からの入力であればエコーしない。
func (a *App) password(given string) (string, error) {
	if given != "" {
		return given, nil
	}

	fmt.Fprint(a.stderr, "パスワード: ")
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := a.readPassword()
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", fmt.Errorf("パスワードの読み取りに失敗: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("パスワードの読み取りに失敗: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// newFlagSet はサブコマンド用のFlagSetを生成する。
func (a *App) newFlagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "使い方: todoctl %s %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// parse はフラグを解釈する。解釈に失敗した場合はerrUsageを返す。
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// usageError は使い方を表示してerrUsageを返す。
func usageError(fs *flag.FlagSet, format string, args ...any) error {
	fmt.Fprintf(fs.Output(), format+"\n", args...)
	fs.Usage()
	return errUsage
}

func envOr(getenv func(string) string, key, defaultValue string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return defaultValue
}
