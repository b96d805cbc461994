package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nao1215/todo/internal/model"
	"github.com/nao1215/todo/internal/store"
)

func ptr[T any](v T) *T { return &v }

func TestParseID(t *testing.T) {
	t.Parallel()

	oid := primitive.NewObjectID()
	tests := []struct {
		name string
		id   string
		ok   bool
	}{
		{name: "正しい16進文字列", id: oid.Hex(), ok: true},
		{name: "空文字列", id: "", ok: false},
		{name: "UUID形式", id: "7b0c2d4e-1111-2222-3333-444455556666", ok: false},
		{name: "長さ不足", id: "abc123", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := parseID(tt.id)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != oid {
				t.Errorf("oid = %v, want %v", got, oid)
			}
		})
	}
}

func TestTaskUpdate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("指定したフィールドのみが$setに含まれること", func(t *testing.T) {
		t.Parallel()
		got := taskUpdate(model.TaskFields{Completed: ptr(true)}, now)
		set, ok := got["$set"].(bson.M)
		if !ok {
			t.Fatalf("$setが無い: %v", got)
		}
		if len(set) != 2 {
			t.Errorf("$set = %v, want completedとupdated_atのみ", set)
		}
		if set["completed"] != true {
			t.Errorf("completed = %v, want true", set["completed"])
		}
		if set["updated_at"] != now {
			t.Errorf("updated_at = %v, want %v", set["updated_at"], now)
		}
	})

	t.Run("すべてのフィールドを指定できること", func(t *testing.T) {
		t.Parallel()
		got := taskUpdate(model.TaskFields{Text: ptr("x"), Completed: ptr(false), Important: ptr(true)}, now)
		set := got["$set"].(bson.M)
		if set["text"] != "x" || set["completed"] != false || set["important"] != true {
			t.Errorf("$set = %v", set)
		}
		if _, ok := set["user_id"]; ok {
			t.Error("user_idが更新対象に含まれている")
		}
	})
}

func TestDocumentToModel(t *testing.T) {
	t.Parallel()

	oid := primitive.NewObjectID()
	task := taskDoc{ID: oid, UserID: "u1", Text: "x", Completed: true}.toModel()
	if task.ID != oid.Hex() || task.UserID != "u1" || !task.Completed || task.Important {
		t.Errorf("task = %+v", task)
	}

	user := userDoc{ID: oid, Name: "Ann", Email: "ann@example.com", PasswordHash: "h"}.toModel()
	if user.ID != oid.Hex() || user.Email != "ann@example.com" {
		t.Errorf("user = %+v", user)
	}
}

// setupTestStore はTODO_TEST_MONGO_URIが設定されている場合のみMongoDBに接続する。
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("TODO_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TODO_TEST_MONGO_URIが未設定のためスキップします")
	}

	dbName := fmt.Sprintf("todo_test_%s", primitive.NewObjectID().Hex())
	s, err := Open(t.Context(), uri, dbName)
	if err != nil {
		t.Fatalf("MongoDBへの接続に失敗: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.client.Database(dbName).Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestMongoStore(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := t.Context()

	ann, err := s.Users().CreateUser(ctx, &model.User{Name: "Ann", Email: "ann@example.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("CreateUser()でエラーが発生: %v", err)
	}
	if _, err := s.Users().CreateUser(ctx, &model.User{Name: "Ann2", Email: "ann@example.com", PasswordHash: "h"}); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("err = %v, want %v", err, store.ErrDuplicate)
	}
	if _, err := s.Users().GetUserByID(ctx, "not-hex"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want %v", err, store.ErrNotFound)
	}

	task, err := s.Tasks().CreateTask(ctx, &model.Task{UserID: ann.ID, Text: "牛乳を買う"})
	if err != nil {
		t.Fatalf("CreateTask()でエラーが発生: %v", err)
	}

	if _, err := s.Tasks().UpdateTask(ctx, "someone", task.ID, model.TaskFields{Text: ptr("乗っ取り")}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want %v", err, store.ErrNotFound)
	}

	updated, err := s.Tasks().UpdateTask(ctx, ann.ID, task.ID, model.TaskFields{Completed: ptr(true)})
	if err != nil {
		t.Fatalf("UpdateTask()でエラーが発生: %v", err)
	}
	if !updated.Completed || updated.Text != "牛乳を買う" {
		t.Errorf("updated = %+v", updated)
	}

	tasks, err := s.Tasks().ListTasks(ctx, ann.ID)
	if err != nil {
		t.Fatalf("ListTasks()でエラーが発生: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("件数 = %d, want 1", len(tasks))
	}

	if err := s.Tasks().DeleteTask(ctx, ann.ID, task.ID); err != nil {
		t.Fatalf("DeleteTask()でエラーが発生: %v", err)
	}
	if err := s.Tasks().DeleteTask(ctx, ann.ID, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want %v", err, store.ErrNotFound)
	}
}
