// Package interfaces holds compile-time checks that the concrete stores,
// services and clients satisfy the interfaces their consumers declare.
//
// Consumers define narrow interfaces next to the code that uses them: the
// HTTP controllers in internal/http, the task processors in internal/tasks,
// the backup scheduler in internal/backup. Implementations live elsewhere,
// so the checks are collected here instead of next to either side.
//
// When adding an implementation, add a line to checks.go:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// To verify all checks pass: go build ./internal/interfaces/...
package interfaces
