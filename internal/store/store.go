package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/storage"
)

var (
	ErrDuplicateUsername = errors.New("用户名已存在")
	ErrProtectedAccount  = errors.New("禁止删除初始管理员")
	ErrShiftNotFound     = errors.New("班次记录不存在")
)

// Store 负责 users 和 shifts 两个集合的持久化，
// 每次变更都会整体重写对应的文档。进程内通过互斥锁保证
// 读取-修改-写入不交错，跨进程仍然假设只有一个写入者。
type Store struct {
	cfg      *config.Config
	provider storage.Provider
	mu       sync.Mutex
}

func NewStore(cfg *config.Config, provider storage.Provider) *Store {
	return &Store{
		cfg:      cfg,
		provider: provider,
	}
}

// loadUsers 在 users 文档不存在时播种初始管理员并持久化，
// 这里选择静默播种而不是首次启动向导，见 DESIGN.md
func (s *Store) loadUsers() ([]domain.User, error) {
	data, err := s.provider.Get(storage.KeyUsers)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			return nil, err
		}

		seed := []domain.User{{
			ID:       domain.InitialAdminID,
			Username: s.cfg.InitialAdmin.Username,
			Name:     s.cfg.InitialAdmin.Name,
			Password: s.cfg.InitialAdmin.Password,
			Role:     domain.RoleAdmin,
		}}
		if err := s.persistUsers(seed); err != nil {
			return nil, err
		}
		return seed, nil
	}

	var users []domain.User
	if err := json.Unmarshal([]byte(data), &users); err != nil {
		return nil, fmt.Errorf("解析 users 文档失败: %w", err)
	}
	return users, nil
}

func (s *Store) loadShifts() ([]domain.ShiftRecord, error) {
	data, err := s.provider.Get(storage.KeyShifts)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return []domain.ShiftRecord{}, nil
		}
		return nil, err
	}

	var shifts []domain.ShiftRecord
	if err := json.Unmarshal([]byte(data), &shifts); err != nil {
		return nil, fmt.Errorf("解析 shifts 文档失败: %w", err)
	}
	return shifts, nil
}

func (s *Store) persistUsers(users []domain.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return s.provider.Set(storage.KeyUsers, string(data))
}

func (s *Store) persistShifts(shifts []domain.ShiftRecord) error {
	data, err := json.Marshal(shifts)
	if err != nil {
		return err
	}
	return s.provider.Set(storage.KeyShifts, string(data))
}

func (s *Store) LoadUsers() ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadUsers()
}

func (s *Store) LoadShifts() ([]domain.ShiftRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadShifts()
}

func (s *Store) FindUserByUsername(username string) (*domain.User, bool, error) {
	users, err := s.LoadUsers()
	if err != nil {
		return nil, false, err
	}

	for i := range users {
		if users[i].Username == username {
			return &users[i], true, nil
		}
	}
	return nil, false, nil
}

func (s *Store) FindUserByID(id string) (*domain.User, bool, error) {
	users, err := s.LoadUsers()
	if err != nil {
		return nil, false, err
	}

	for i := range users {
		if users[i].ID == id {
			return &users[i], true, nil
		}
	}
	return nil, false, nil
}

// AddUser 在用户名冲突时整个集合保持不变
func (s *Store) AddUser(user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}

	for _, u := range users {
		if u.Username == user.Username {
			return ErrDuplicateUsername
		}
	}

	return s.persistUsers(append(users, user))
}

func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return err
	}

	remaining := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			remaining = append(remaining, u)
			continue
		}
		if u.Username == s.cfg.InitialAdmin.Username {
			return ErrProtectedAccount
		}
	}

	return s.persistUsers(remaining)
}

// SaveShift 把记录插到集合头部，集合保持最新在前。
// 记录本身的数值不做任何校验，负数和零都允许。
func (s *Store) SaveShift(shift domain.ShiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shifts, err := s.loadShifts()
	if err != nil {
		return err
	}

	return s.persistShifts(append([]domain.ShiftRecord{shift}, shifts...))
}

func (s *Store) GetShift(id string) (*domain.ShiftRecord, error) {
	shifts, err := s.LoadShifts()
	if err != nil {
		return nil, err
	}

	for i := range shifts {
		if shifts[i].ID == id {
			return &shifts[i], nil
		}
	}
	return nil, ErrShiftNotFound
}

// AttachAnalysis 是班次记录唯一允许的事后修改
func (s *Store) AttachAnalysis(shiftID string, analysis string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shifts, err := s.loadShifts()
	if err != nil {
		return err
	}

	for i := range shifts {
		if shifts[i].ID == shiftID {
			shifts[i].AIAnalysis = analysis
			return s.persistShifts(shifts)
		}
	}
	return ErrShiftNotFound
}

// ReplaceAll 整体替换两个集合，用于恢复备份。
// 这是破坏性操作，是否需要确认由调用方负责。
func (s *Store) ReplaceAll(users []domain.User, shifts []domain.ShiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistUsers(users); err != nil {
		return err
	}
	return s.persistShifts(shifts)
}

func (s *Store) SaveSession(user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.provider.Set(storage.KeySession, string(data))
}

// LoadSession 在没有会话时返回 (nil, nil)
func (s *Store) LoadSession() (*domain.User, error) {
	data, err := s.provider.Get(storage.KeySession)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user := &domain.User{}
	if err := json.Unmarshal([]byte(data), user); err != nil {
		return nil, fmt.Errorf("解析 session 文档失败: %w", err)
	}
	return user, nil
}

func (s *Store) ClearSession() error {
	return s.provider.Remove(storage.KeySession)
}

// NewUserID 生成用户的稳定不透明标识
func NewUserID() string {
	return uuid.NewString()
}
