package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nao1215/todo/internal/model"
)

// userDoc はusersコレクションのドキュメント。
type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d userDoc) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
	}
}

// taskDoc はtasksコレクションのドキュメント。
type taskDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	Important bool               `bson:"important"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d taskDoc) toModel() model.Task {
	return model.Task{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Text:      d.Text,
		Completed: d.Completed,
		Important: d.Important,
	}
}

// parseID はIDをObjectIDに変換する。変換できない場合はfalseを返す。
func parseID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// taskFilter は所有者とタスクIDの両方で絞り込むフィルタを返す。
func taskFilter(oid primitive.ObjectID, ownerID string) bson.M {
	return bson.M{"_id": oid, "user_id": ownerID}
}

// taskUpdate は指定されたフィールドのみを$setする更新ドキュメントを返す。
// 更新できるのはtext・completed・importantに限られる。
func taskUpdate(fields model.TaskFields, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if fields.Text != nil {
		set["text"] = *fields.Text
	}
	if fields.Completed != nil {
		set["completed"] = *fields.Completed
	}
	if fields.Important != nil {
		set["important"] = *fields.Important
	}
	return bson.M{"$set": set}
}
