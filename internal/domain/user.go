package domain

type Role string

const (
	RoleAdmin   Role = "管理员"
	RoleCashier Role = "收银员"
)

// InitialAdminID 是自动播种的初始管理员的固定 ID
const InitialAdminID = "1"

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	// 按设计以明文存储，备份文档需要原样往返
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
