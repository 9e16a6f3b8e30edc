package fiber

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoHostParent means a fiber that needs attaching or detaching has no
	// host-owning ancestor. The tree is corrupt; the root cannot continue.
	ErrNoHostParent = errors.New("fiber: no host-owning ancestor")

	// ErrTooManyUpdates is returned by Flush when effects keep requesting new
	// generations without settling, and by WorkLoop when renders keep
	// restarting the generation in flight.
	ErrTooManyUpdates = errors.New("fiber: too many consecutive updates")

	// ErrUnknownKind is returned when a descriptor carries a zero Kind.
	ErrUnknownKind = errors.New("fiber: descriptor has no kind")
)

// HookOrderError reports a component whose hook sequence changed between
// renders. It is only detected when the root runs WithHookCheck.
type HookOrderError struct {
	Component string
	Previous  []string
	Current   []string
}

func (e *HookOrderError) Error() string {
	return fmt.Sprintf("fiber: hook order changed in %s: previous [%s], current [%s]",
		e.Component, strings.Join(e.Previous, " "), strings.Join(e.Current, " "))
}
