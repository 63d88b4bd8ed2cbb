package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"ecobasket/internal/domain/model"
)

// サインインしていない
var ErrNotSignedIn = errors.New("not signed in")

// Session はプロセス全体の認証状態。
// 明示的にファイルから初期化して、サインアウトで明示的に破棄する。
// 各コンポーネントは参照で受け取る（グローバル参照はしない）。
type Session struct {
	path  string
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Load は保存先ファイルからセッションを読む。
// ファイルが無ければ未サインインの空セッションを返す。
func Load(path string) (*Session, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".ecobasket", "session.json")
	}

	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		//壊れたファイルは未サインイン扱い
		return &Session{path: path}, nil
	}
	return s, nil
}

// SignIn はトークンとユーザーを保存する。
func (s *Session) SignIn(token string, user model.User) error {
	s.Token = token
	s.User = user
	return s.save()
}

// SignOut はセッションを破棄する。
func (s *Session) SignOut() error {
	s.Token = ""
	s.User = model.User{}

	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// SignedIn はトークンを持っているかどうか。
func (s *Session) SignedIn() bool {
	return s.Token != ""
}

func (s *Session) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0o600)
}
