package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoRecipients = errors.New("no recipients resolved")
	ErrSMTPConfig   = errors.New("smtp configuration incomplete")
)
