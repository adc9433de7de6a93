package auth

import "consultlink_backend/internal/models"

// Разрешения эталонного бэкенда. consultations:match покрывает accept, reject,
// incoming и complete; consultations:admin - просмотр и отмена любых консультаций.
const (
	PermConsultationCreate = "consultations:create"
	PermConsultationMatch  = "consultations:match"
	PermConsultationCancel = "consultations:cancel:self"
	PermConsultationAdmin  = "consultations:admin"
	PermPaymentCreate      = "payments:create"
	PermMessageWrite       = "messages:write"
	PermReviewCreate       = "reviews:create"
)

// Permissions список разрешений по ролям
var Permissions = map[models.UserRole][]string{
	models.UserRoleAdmin: {
		PermConsultationCancel,
		PermConsultationAdmin,
	},
	models.UserRoleConsultant: {
		PermConsultationMatch,
		PermConsultationCancel,
		PermMessageWrite,
	},
	models.UserRoleRequester: {
		PermConsultationCreate,
		PermConsultationCancel,
		PermPaymentCreate,
		PermMessageWrite,
		PermReviewCreate,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role models.UserRole, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
