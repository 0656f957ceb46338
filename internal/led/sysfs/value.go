// Package sysfs implements indicator LED backends on top of the Linux LED
// class sysfs interface (/sys/class/leds/<name>/...).
//
// Each backend knows a handful of control file layouts. A probe opens every
// control file a layout needs and either keeps all of them or none.
package sysfs

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrorFunc is told about failed sysfs operations, e.g. for metrics.
type ErrorFunc func(path, op string)

// WriteFunc is told about every write that reached a control file.
type WriteFunc func(path string)

// value is an open sysfs control file together with the content it is
// believed to hold. The cache lets backends skip redundant writes, which
// on some drivers restart a running blink cycle.
//
// A value whose file is not open still tracks its cache so that optional
// controls behave like present ones without logging every transition.
type value struct {
	path    string
	fd      int
	curr    int
	logger  *slog.Logger
	onErr   ErrorFunc
	onWrite WriteFunc
}

func newValue(logger *slog.Logger, onErr ErrorFunc) *value {
	return &value{fd: -1, curr: -1, logger: logger, onErr: onErr}
}

// openWrite opens path for appending writes.
func (v *value) openWrite(path string) bool {
	return v.open(path, unix.O_WRONLY|unix.O_APPEND)
}

// openRW opens path for cached reads and writes.
func (v *value) openRW(path string) bool {
	return v.open(path, unix.O_RDWR|unix.O_APPEND)
}

// openRead opens path for reading only.
func (v *value) openRead(path string) bool {
	return v.open(path, unix.O_RDONLY)
}

func (v *value) open(path string, flags int) bool {
	v.close()
	if path == "" {
		return false
	}
	v.path = path

	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0)
	if err != nil {
		// Missing files are the normal outcome of probing the wrong layout.
		if errors.Is(err, unix.ENOENT) {
			v.logger.Debug("sysfs open failed", "path", path, "error", err)
		} else {
			v.logger.Error("sysfs open failed", "path", path, "error", err)
			v.fail("open")
		}
		v.path = ""
		return false
	}

	v.fd = fd
	v.logger.Debug("sysfs opened", "path", path)
	return true
}

func (v *value) close() {
	if v.fd != -1 {
		v.logger.Debug("sysfs closed", "path", v.path)
		_ = unix.Close(v.fd)
		v.fd = -1
	}
	v.path = ""
}

func (v *value) isOpen() bool {
	return v.fd != -1
}

// get returns the cached content, -1 when unknown.
func (v *value) get() int {
	return v.curr
}

// set writes n unless the cache says the file already holds it.
func (v *value) set(n int) bool {
	prev := v.curr
	v.curr = n
	if prev == n || !v.isOpen() {
		return true
	}

	v.logger.Debug("sysfs write", "path", v.path, "from", prev, "to", n)
	return v.write(strconv.Itoa(n))
}

// assume updates the cache without touching the file.
func (v *value) assume(n int) {
	prev := v.curr
	v.curr = n
	if prev != n && v.isOpen() {
		v.logger.Debug("sysfs assume", "path", v.path, "from", prev, "to", n)
	}
}

// invalidate forgets the cached content so the next set always writes.
func (v *value) invalidate() {
	prev := v.curr
	v.curr = -1
	if prev != -1 && v.isOpen() {
		v.logger.Debug("sysfs invalidated", "path", v.path)
	}
}

// refresh rereads the file. On failure the cache is invalidated.
func (v *value) refresh() bool {
	if !v.isOpen() {
		v.invalidate()
		return false
	}

	buf := make([]byte, 64)
	n, err := unix.Pread(v.fd, buf, 0)
	switch {
	case err != nil:
		v.logger.Error("sysfs read failed", "path", v.path, "error", err)
		v.fail("read")
	case n == 0:
		v.logger.Error("sysfs read failed", "path", v.path, "error", "EOF")
		v.fail("read")
	default:
		num := parseNumber(string(buf[:n]))
		v.logger.Debug("sysfs read", "path", v.path, "from", v.curr, "to", num)
		v.curr = num
		return true
	}

	v.invalidate()
	return false
}

// write sends text as is, bypassing the cache.
func (v *value) write(text string) bool {
	if !v.isOpen() {
		return false
	}

	n, err := unix.Write(v.fd, []byte(text))
	if err == nil && n == len(text) {
		if v.onWrite != nil {
			v.onWrite(v.path)
		}
		return true
	}
	if err == nil {
		err = errors.New("partial write")
	}
	v.logger.Error("sysfs write failed", "path", v.path, "error", err)
	v.fail("write")
	return false
}

func (v *value) fail(op string) {
	if v.onErr != nil {
		v.onErr(v.path, op)
	}
}

// readNumber returns the integer content of path, or -1.
func readNumber(path string) int {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1
	}
	defer unix.Close(fd)

	buf := make([]byte, 64)
	n, err := unix.Read(fd, buf)
	if err != nil || n <= 0 {
		return -1
	}
	return parseNumber(string(buf[:n]))
}

// parseNumber accepts decimal, 0x hex and 0 octal, ignoring trailing junk
// such as the newline sysfs appends. Unparseable input yields 0.
func parseNumber(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || (end == 0 && (c == '-' || c == '+')) ||
			((c == 'x' || c == 'X') && end > 0) || (end > 1 && isHexDigit(c)) {
			end++
			continue
		}
		break
	}
	for end > 0 {
		if n, err := strconv.ParseInt(s[:end], 0, 0); err == nil {
			return int(n)
		}
		end--
	}
	return 0
}

func isHexDigit(c byte) bool {
	return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
