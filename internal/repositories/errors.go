package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrConsultationNotFound = errors.New("consultation not found")
	ErrAlreadyMatched       = errors.New("consultation already matched")
	ErrStaleStatus          = errors.New("consultation status changed concurrently")
	ErrAlreadyRejected      = errors.New("consultation already rejected")

	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentExists     = errors.New("active payment already exists")
	ErrPaymentNotPending = errors.New("payment is not pending")

	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this consultation")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// notFound заменяет gorm.ErrRecordNotFound на sentinel репозитория.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
