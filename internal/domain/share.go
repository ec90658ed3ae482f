package domain

import "github.com/google/uuid"

// Share grants a non-owner user read/write access to a board. The
// (board_id, user_id) pair is unique; granting twice is a no-op.
type Share struct {
	BaseModel
	BoardID uuid.UUID `gorm:"type:uuid;not null;index:idx_shares_board_id;uniqueIndex:uq_shares_board_user" json:"board_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_shares_user_id;uniqueIndex:uq_shares_board_user" json:"user_id"`
	Board   Board     `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"board,omitempty"`
}

// TableName specifies the table name for Share
func (Share) TableName() string {
	return "shares"
}
