package util

import "errors"

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrEmailRegistered = errors.New("该邮箱已被注册")
	ErrStudentNotFound = errors.New("student not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrQuestNotFound   = errors.New("quest not found")
	ErrItemNotFound    = errors.New("item not found")

	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("amount must be a positive integer")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidItem       = errors.New("item not owned or not a consumable")

	ErrQuestInactive         = errors.New("quest is not active")
	ErrQuestAlreadyCompleted = errors.New("quest already completed by student")
	ErrQuestExpired          = errors.New("quest expired")
	ErrQuestGiverNotFound    = errors.New("quest giver not found")

	ErrAlreadyCheckedIn = errors.New("already checked in today")
)
