//go:build !linux
// +build !linux

package socket

import (
	"context"

	"github.com/pkg/errors"
)

// Open is only available on linux.
func Open(ctx context.Context, id int) (*Socket, error) {
	return nil, errors.New("hci user channel only available on linux")
}
