package utils

import (
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// RunWithRecovery runs fn in a goroutine. A panic is logged with its stack
// under the given task name instead of crashing the process.
func RunWithRecovery(task string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(log.Fields{
					"task":  task,
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("recovered from panic")
			}
		}()
		fn()
	}()
}
