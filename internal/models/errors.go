package models

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	ErrEmptyMessage = errors.New("message is empty")
	ErrBotMessage   = errors.New("message was sent by the bot")
)
