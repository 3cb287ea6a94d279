package service

import "errors"

var (
	ErrDNANotFound           = errors.New("agent has no DNA")
	ErrDNAAlreadyInitialized = errors.New("agent DNA already initialized")
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrNotParticipant        = errors.New("agent is not a participant in this conversation")
	ErrSelfConversation      = errors.New("agent cannot converse with itself")
)
