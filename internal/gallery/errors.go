package gallery

import "errors"

var (
	// ErrCapture is returned when the camera was cancelled or failed.
	ErrCapture = errors.New("capture failed")
	// ErrEncode is returned when a captured resource could not be turned into base64.
	ErrEncode = errors.New("encode failed")
	// ErrStorageWrite covers rejected FileStore and KeyValueStore writes.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrStorageRead is returned when the index could not be read at all.
	ErrStorageRead = errors.New("storage read failed")
	// ErrOutOfRange is returned by Delete for an invalid position.
	ErrOutOfRange = errors.New("position out of range")
	// ErrBlobDelete marks a failed best-effort blob cleanup. The record is
	// already gone from the list and the index when this is returned.
	ErrBlobDelete = errors.New("blob delete failed")
)
