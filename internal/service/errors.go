package service

import "errors"

var (
	// ErrProvisioning wraps room-provider failures during create/join/remove.
	ErrProvisioning = errors.New("room provisioning failed")

	// ErrRoomNotFound is returned when joining a room the provider reports
	// absent.
	ErrRoomNotFound = errors.New("room not found")

	// ErrTransferNotFound is returned for operations on an unknown
	// transfer id.
	ErrTransferNotFound = errors.New("transfer not found")

	// ErrRoomMismatch is returned when completion arguments do not match
	// the transfer record.
	ErrRoomMismatch = errors.New("transfer room mismatch")

	// ErrInvalidTransferState is returned for transitions out of a
	// terminal state.
	ErrInvalidTransferState = errors.New("invalid transfer state")
)
