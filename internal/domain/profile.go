package domain

import "time"

// Profile 用户资料领域模型（对应 profiles 表）
// 报警通知通过 notification_email（为空时回退 email）投递
type Profile struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"user_id"`
	DisplayName       *string   `db:"display_name" json:"display_name"`
	Email             *string   `db:"email" json:"email"`
	NotificationEmail *string   `db:"notification_email" json:"notification_email"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// RecipientEmail 报警邮件收件地址（notification_email 优先）
func (p *Profile) RecipientEmail() string {
	if p.NotificationEmail != nil && *p.NotificationEmail != "" {
		return *p.NotificationEmail
	}
	if p.Email != nil {
		return *p.Email
	}
	return ""
}
