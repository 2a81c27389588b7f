package models

import (
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

func TestLockErrorClassification(t *testing.T) {
	lockWait := &mysqlDriver.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	deadlock := &mysqlDriver.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	duplicate := &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry"}

	// 1205 rolls back only the statement: safe to re-issue in place.
	if !isLockWaitTimeoutErr(lockWait) {
		t.Fatal("1205 must be classified as a lock wait timeout")
	}
	if isLockWaitTimeoutErr(deadlock) {
		t.Fatal("1213 must not be re-issued inside the caller's transaction")
	}

	// 1213 rolls back the whole transaction server-side: the enclosing
	// transaction must abort, never retry the statement.
	if !isDeadlockErr(deadlock) {
		t.Fatal("1213 must be classified as a deadlock")
	}
	if isDeadlockErr(lockWait) {
		t.Fatal("1205 must not abort the enclosing transaction")
	}

	if isDeadlockErr(duplicate) || isLockWaitTimeoutErr(duplicate) {
		t.Fatal("1062 is not a lock conflict")
	}
	if !isDuplicateKeyErr(duplicate) {
		t.Fatal("1062 must be classified as a duplicate key")
	}

	// Classification must survive error wrapping along the gorm call path.
	wrapped := fmt.Errorf("update warehouse_stocks: %w", deadlock)
	if !isDeadlockErr(wrapped) {
		t.Fatal("wrapped 1213 must still be classified as a deadlock")
	}
}
