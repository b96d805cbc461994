package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/todo/internal/auth"
	"github.com/nao1215/todo/internal/model"
)

// taskView はAPIが返すタスク。
type taskView struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Important bool   `json:"important"`
}

// String は "[x] ! <id> <text>" 形式の1行表現を返す。
func (t taskView) String() string {
	done := " "
	if t.Completed {
		done = "x"
	}
	mark := " "
	if t.Important {
		mark = "!"
	}
	return fmt.Sprintf("[%s] %s %s  %s", done, mark, t.ID, t.Text)
}

// errNoToken はトークンが指定されていないことを表す。
var errNoToken = errors.New("トークンがありません。loginで取得したトークンを -token またはTODO_TOKENで指定してください")

func (s *session) requireToken() error {
	if s.token == "" {
		return errNoToken
	}
	return nil
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

func runSignup(ctx context.Context, a *App, s *session, args []string) error {
	fs := a.newFlagSet("signup", "-name NAME -email EMAIL [-password PASSWORD]")
	name := fs.String("name", "", "表示名")
	email := fs.String("email", "", "メールアドレス")
	password := fs.String("password", "", "パスワード（省略時は入力を求める）")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		return usageError(fs, "-nameと-emailは必須です")
	}

	pw, err := a.password(*password)
	if err != nil {
		return err
	}

	var resp struct {
		Message string `json:"message"`
	}
	body := map[string]string{"name": *name, "email": *email, "password": pw}
	if err := s.client.PostJSON(ctx, "/api/auth/signup", body, &resp); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, resp.Message)
	return nil
}

func runLogin(ctx context.Context, a *App, s *session, args []string) error {
	fs := a.newFlagSet("login", "-email EMAIL [-password PASSWORD]")
	email := fs.String("email", "", "メールアドレス")
	password := fs.String("password", "", "パスワード（省略時は入力を求める）")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		return usageError(fs, "-emailは必須です")
	}

	pw, err := a.password(*password)
	if err != nil {
		return err
	}

	var sess auth.Session
	if err := s.client.PostJSON(ctx, "/api/auth/login", map[string]string{"email": *email, "password": pw}, &sess); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, sess.Token)
	return nil
}

func runWhoami(ctx context.Context, a *App, s *session, args []string) error {
	fs := a.newFlagSet("whoami", "")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}

	var user model.UserSummary
	if err := s.client.GetJSON(s.authContext(ctx), "/api/auth/user", &user); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s <%s> (%s)\n", user.Name, user.Email, user.ID)
	return nil
}

func runList(ctx context.Context, a *App, s *session, args []string) error {
	fs := a.newFlagSet("list", "")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}

	var tasks []taskView
	if err := s.client.GetJSON(s.authContext(ctx), "/api/tasks", &tasks); err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(a.stdout, "タスクはありません")
		return nil
	}
	for _, t := range tasks {
		fmt.Fprintln(a.stdout, t)
	}
	return nil
}

func runAdd(ctx context.Context, a *App, s *session, args []string) error {
	fs := a.newFlagSet("add", "[-important] [-completed] TEXT...")
	important := fs.Bool("important", false, "重要フラグを立てる")
	completed := fs.Bool("completed", false, "完了済みとして作成する")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError(fs, "タスクの本文を指定してください")
	}
	if err := s.requireToken(); err != nil {
		return err
	}

	text := strings.Join(fs.Args(), " ")
	fields := model.TaskFields{Text: &text, Completed: completed, Important: important}
	var created taskView
	if err := s.client.PostJSON(s.authContext(ctx), "/api/tasks", fields, &created); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, created)
	return nil
}

func runUpdate(ctx context.Context, a *App, s *session, args []string) error {
	fs := a.newFlagSet("update", "[-text TEXT] [-completed=BOOL] [-important=BOOL] ID")
	text := fs.String("text", "", "新しい本文")
	completed := fs.Bool("completed", false, "完了状態")
	important := fs.Bool("important", false, "重要フラグ")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError(fs, "タスクIDを1つ指定してください")
	}

	// 明示的に指定されたフラグのみを更新対象にする。
	var fields model.TaskFields
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "text":
			fields.Text = text
		case "completed":
			fields.Completed = completed
		case "important":
			fields.Important = important
		}
	})
	if fields.IsEmpty() {
		return usageError(fs, "更新するフィールドを指定してください")
	}
	if err := s.requireToken(); err != nil {
		return err
	}

	var updated taskView
	if err := s.client.PutJSON(s.authContext(ctx), taskPath(fs.Arg(0)), fields, &updated); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, updated)
	return nil
}

func runRemove(ctx context.Context, a *App, s *session, args []string) error {
	fs := a.newFlagSet("rm", "ID...")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usageError(fs, "タスクIDを指定してください")
	}
	if err := s.requireToken(); err != nil {
		return err
	}

	for _, id := range fs.Args() {
		if err := s.client.DeleteJSON(s.authContext(ctx), taskPath(id), nil); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		fmt.Fprintf(a.stdout, "削除しました: %s\n", id)
	}
	return nil
}
