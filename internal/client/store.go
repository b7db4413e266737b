package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// tokenKey はトークンを保存するスロットの固定キー。
const tokenKey = "userToken"

// TokenStore はベアラートークンの単一スロット永続化を抽象化する。
// Loadはトークンが存在しない場合に空文字とnilエラーを返す。
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// MemoryTokenStore はテスト・デモ用のインメモリ実装。
type MemoryTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryTokenStore はMemoryTokenStoreを生成する。
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: make(map[string]string)}
}

func (s *MemoryTokenStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[tokenKey], nil
}

func (s *MemoryTokenStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[tokenKey] = token
	return nil
}

func (s *MemoryTokenStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, tokenKey)
	return nil
}

var _ TokenStore = (*MemoryTokenStore)(nil)

// FileTokenStore はキー・値形式のJSONファイルにトークンを保存する実装。
// デバイスのキー・バリューストレージ相当。プロセス再起動をまたいで保持される。
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore は指定パスのJSONファイルを使うFileTokenStoreを生成する。
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[tokenKey], nil
}

func (s *FileTokenStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[tokenKey] = token
	return s.write(values)
}

func (s *FileTokenStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	delete(values, tokenKey)
	return s.write(values)
}

// read はストレージファイルを読み込む。ファイルが無い場合は空のマップを返す。
func (s *FileTokenStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read token store: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse token store: %w", err)
	}
	return values, nil
}

func (s *FileTokenStore) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode token store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token store directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token store: %w", err)
	}
	return nil
}

var _ TokenStore = (*FileTokenStore)(nil)
