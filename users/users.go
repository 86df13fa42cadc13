package users

// RoleType is the role a user holds inside their condominium (tenant).
type RoleType string

const (
	RoleAdmin    RoleType = "admin"    // Condominium administrator (admin portal)
	RoleResident RoleType = "resident" // Resident (morador portal)
	RoleEmployee RoleType = "employee" // Staff member (funcionario portal)
	RoleStaff    RoleType = "staff"    // Older name for employee still returned by some endpoints
)

// User is the account record returned by the API.
type User struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name"`
	Role      RoleType `json:"role"`
	TenantID  string   `json:"tenant_id"`
	IsActive  bool     `json:"is_active"`
	CPF       string   `json:"cpf,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	UnitID    string   `json:"unit_id,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsResident() bool {
	return u != nil && u.Role == RoleResident
}

// IsEmployee treats the legacy "staff" role as an employee.
func (u *User) IsEmployee() bool {
	return u != nil && (u.Role == RoleEmployee || u.Role == RoleStaff)
}

// CreateUserInput is the body of POST /users.
type CreateUserInput struct {
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Password string   `json:"password"`
	Role     RoleType `json:"role"`
	CPF      string   `json:"cpf,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	UnitID   string   `json:"unit_id,omitempty"`
}

// UpdateUserInput is the body of PUT /users/{id}; nil fields are left untouched.
type UpdateUserInput struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	UnitID   *string `json:"unit_id,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ListParams filters and paginates GET /users.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Role      RoleType
	IsActive  *bool
	Search    string
}

type ResetPasswordResponse struct {
	TemporaryPassword string `json:"temporary_password"`
}
