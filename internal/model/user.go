package model

// User はアカウントを表す。
type User struct {
	// ID はストアが生成するユーザーの一意識別子。
	ID string
	// Name は表示名。
	Name string
	// Email はログインに使用するメールアドレス。大文字小文字を区別して一意。
	Email string
	// PasswordHash はbcryptでハッシュ化したパスワード。平文は保持しない。
	PasswordHash string
}

// Summary はレスポンスに含めるユーザーの公開情報を返す。
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary はパスワードハッシュを含まないユーザー情報。
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
