package socket

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	// _IOW('H', 202, int)
	hciDevDown = 1<<30 | 4<<16 | 'H'<<8 | 202

	pollTimeout = 100 // ms
	pollErrors  = unix.POLLHUP | unix.POLLNVAL | unix.POLLERR
)

type userChannel struct {
	fd int
}

// Open binds a user channel to device hci<id>. While the device is busy it
// retries once a second until ctx is done.
func Open(ctx context.Context, id int) (*Socket, error) {
	for {
		ch, err := bind(id)
		if err == nil {
			return newSocket(ch, id), nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(err, "hci%d", id)
		case <-time.After(time.Second):
		}
	}
}

func bind(id int) (*userChannel, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(err, "can't create socket")
	}

	// the kernel only grants a user channel on a device that is down
	if err := unix.IoctlSetInt(fd, hciDevDown, id); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't down device")
	}
	sa := unix.SockaddrHCI{Dev: uint16(id), Channel: unix.HCI_CHANNEL_USER}
	if err := unix.Bind(fd, &sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "can't bind user channel")
	}
	return &userChannel{fd: fd}, nil
}

func (c *userChannel) Read(p []byte) (int, error) {
	pfds := []unix.PollFd{{Fd: int32(c.fd), Events: unix.POLLIN}}
	if _, err := unix.Poll(pfds, pollTimeout); err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}

	switch ev := pfds[0].Revents; {
	case ev&pollErrors != 0:
		return 0, io.EOF
	case ev&unix.POLLIN != 0:
		return unix.Read(c.fd, p)
	}
	return 0, nil
}

func (c *userChannel) Write(p []byte) (int, error) { return unix.Write(c.fd, p) }
func (c *userChannel) Close() error                { return unix.Close(c.fd) }
