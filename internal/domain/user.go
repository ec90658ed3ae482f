package domain

// User is an identity directory row. Accounts are provisioned by the identity
// provider; this service only resolves emails to user IDs and joins owner
// display data onto boards.
type User struct {
	BaseModel
	Email string `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email" json:"email"`
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
