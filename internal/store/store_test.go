package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/storage"
)

func newTestStore() *Store {
	cfg := &config.Config{}
	cfg.InitialAdmin.Username = "admin"
	cfg.InitialAdmin.Password = "123"
	cfg.InitialAdmin.Name = "系统管理员"

	return NewStore(cfg, storage.NewMemoryProvider())
}

func newShift(id string, userID string) domain.ShiftRecord {
	now := time.Now()
	return domain.ShiftRecord{
		ID:           id,
		UserID:       userID,
		UserName:     "测试收银员",
		Date:         now,
		StartTime:    now.Add(-8 * time.Hour),
		EndTime:      now,
		CashSales:    decimal.RequireFromString("100"),
		ExpectedCash: decimal.RequireFromString("100"),
		ActualCash:   decimal.RequireFromString("100"),
	}
}

func TestLoadUsersSeedsInitialAdmin(t *testing.T) {
	st := newTestStore()

	users, err := st.LoadUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)

	admin := users[0]
	assert.Equal(t, domain.InitialAdminID, admin.ID)
	assert.Equal(t, "admin", admin.Username)
	assert.Equal(t, "123", admin.Password)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	// 播种结果必须在返回前已经持久化
	again, err := st.LoadUsers()
	require.NoError(t, err)
	assert.Equal(t, users, again)
}

func TestLoadShiftsEmpty(t *testing.T) {
	st := newTestStore()

	shifts, err := st.LoadShifts()
	require.NoError(t, err)
	assert.NotNil(t, shifts)
	assert.Empty(t, shifts)
}

func TestAddUser(t *testing.T) {
	st := newTestStore()

	user := domain.User{
		ID:       NewUserID(),
		Username: "wangwei1",
		Name:     "王伟",
		Password: "123456",
		Role:     domain.RoleCashier,
	}
	require.NoError(t, st.AddUser(user))

	users, err := st.LoadUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "wangwei1", users[1].Username)
}

func TestAddUserDuplicateUsername(t *testing.T) {
	st := newTestStore()

	user := domain.User{ID: "u1", Username: "wangwei1", Name: "王伟", Role: domain.RoleCashier}
	require.NoError(t, st.AddUser(user))

	before, err := st.LoadUsers()
	require.NoError(t, err)

	// 用户名区分大小写，完全相同才算冲突
	require.NoError(t, st.AddUser(domain.User{ID: "u2", Username: "WangWei1", Role: domain.RoleCashier}))

	duplicate := domain.User{ID: "u3", Username: "wangwei1", Name: "李杰", Role: domain.RoleCashier}
	err = st.AddUser(duplicate)
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// 失败时集合不发生部分写入
	after, err := st.LoadUsers()
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
	for _, u := range after {
		assert.NotEqual(t, "u3", u.ID)
	}
}

func TestDeleteUser(t *testing.T) {
	st := newTestStore()

	require.NoError(t, st.AddUser(domain.User{ID: "u1", Username: "wangwei1", Role: domain.RoleCashier}))
	require.NoError(t, st.DeleteUser("u1"))

	users, err := st.LoadUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
}

func TestDeleteProtectedAdmin(t *testing.T) {
	st := newTestStore()

	// 即使存在第二个管理员，初始管理员仍然不可删除
	require.NoError(t, st.AddUser(domain.User{ID: "u1", Username: "secondadmin", Role: domain.RoleAdmin}))

	err := st.DeleteUser(domain.InitialAdminID)
	assert.ErrorIs(t, err, ErrProtectedAccount)

	users, err := st.LoadUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestSaveShiftPrepends(t *testing.T) {
	st := newTestStore()

	require.NoError(t, st.SaveShift(newShift("1", "u1")))
	require.NoError(t, st.SaveShift(newShift("2", "u1")))
	require.NoError(t, st.SaveShift(newShift("3", "u2")))

	shifts, err := st.LoadShifts()
	require.NoError(t, err)
	require.Len(t, shifts, 3)

	// 集合保持最新在前
	assert.Equal(t, "3", shifts[0].ID)
	assert.Equal(t, "2", shifts[1].ID)
	assert.Equal(t, "1", shifts[2].ID)
}

func TestAttachAnalysis(t *testing.T) {
	st := newTestStore()

	require.NoError(t, st.SaveShift(newShift("1", "u1")))
	require.NoError(t, st.AttachAnalysis("1", "本班次经营平稳。"))

	shift, err := st.GetShift("1")
	require.NoError(t, err)
	assert.Equal(t, "本班次经营平稳。", shift.AIAnalysis)

	err = st.AttachAnalysis("missing", "x")
	assert.ErrorIs(t, err, ErrShiftNotFound)
}

func TestReplaceAll(t *testing.T) {
	st := newTestStore()

	require.NoError(t, st.SaveShift(newShift("old", "u1")))

	users := []domain.User{{ID: "n1", Username: "newadmin", Role: domain.RoleAdmin}}
	shifts := []domain.ShiftRecord{newShift("new", "n1")}
	require.NoError(t, st.ReplaceAll(users, shifts))

	gotUsers, err := st.LoadUsers()
	require.NoError(t, err)
	require.Len(t, gotUsers, 1)
	assert.Equal(t, "newadmin", gotUsers[0].Username)

	gotShifts, err := st.LoadShifts()
	require.NoError(t, err)
	require.Len(t, gotShifts, 1)
	assert.Equal(t, "new", gotShifts[0].ID)
}

func TestSessionPointer(t *testing.T) {
	st := newTestStore()

	session, err := st.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, session)

	user := &domain.User{ID: "u1", Username: "wangwei1", Name: "王伟", Role: domain.RoleCashier}
	require.NoError(t, st.SaveSession(user))

	session, err = st.LoadSession()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "wangwei1", session.Username)

	require.NoError(t, st.ClearSession())

	session, err = st.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, session)
}
