package cloud

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pocketlibrary/internal/common"
)

const (
	OpPut    = "put"
	OpGet    = "get"
	OpList   = "list"
	OpDelete = "delete"
	OpOpen   = "open"
)

var (
	errEmptyUser = errors.New("user id is required")
	errMissingID = errors.New("document has no id")
)

// CloudSyncError describes a failed cloud operation.
type CloudSyncError struct {
	Op       string
	UserID   string
	RecordID string
	Err      error
}

func newError(op, userID, recordID string, err error) *CloudSyncError {
	return &CloudSyncError{Op: op, UserID: userID, RecordID: recordID, Err: err}
}

func (e *CloudSyncError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("cloud %s %s: %v", e.Op, DocumentPath(e.UserID, e.RecordID), e.Err)
	}
	if e.UserID != "" {
		return fmt.Sprintf("cloud %s %s: %v", e.Op, collectionPrefix(e.UserID), e.Err)
	}
	return fmt.Sprintf("cloud %s: %v", e.Op, e.Err)
}

func (e *CloudSyncError) Unwrap() error { return e.Err }

// Is makes every CloudSyncError match common.ErrCloudSync.
func (e *CloudSyncError) Is(target error) bool { return target == common.ErrCloudSync }
