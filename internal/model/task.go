package model

// Task はユーザーが所有するタスクを表す。
type Task struct {
	// ID はストアが生成するタスクの一意識別子。
	ID string
	// UserID は所有者のユーザーID。すべての読み書きはこの値で絞り込まれる。
	UserID string
	// Text はタスクの本文。
	Text string
	// Completed は完了済みかどうか。
	Completed bool
	// Important は重要フラグ。
	Important bool
}

// TaskFields はタスクの作成・更新で指定可能なフィールド。
// nilのフィールドは「指定なし」を意味する。
type TaskFields struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
	Important *bool   `json:"important"`
}

// IsEmpty はどのフィールドも指定されていない場合にtrueを返す。
func (f TaskFields) IsEmpty() bool {
	return f.Text == nil && f.Completed == nil && f.Important == nil
}
