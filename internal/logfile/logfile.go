// Package logfile loads Ryujinx log files within a fixed byte budget.
//
// Large logs are read as a head and a tail slice, the same shape as the
// ranged download the support bot performs. Cut points are moved to UTF-8
// rune boundaries so a truncated file still decodes.
package logfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when a log is not valid UTF-8 text.
var ErrInvalidEncoding = errors.New("log file is not valid UTF-8")

var (
	ryujinxLogName = regexp.MustCompile(`^Ryujinx_.*\.log$`)
	logName        = regexp.MustCompile(`^.*\.(log|txt)$`)
)

// IsLogName classifies a file name. isLog reports whether the name looks
// like an uploadable log; isRyujinx whether it follows the emulator's own
// naming scheme.
func IsLogName(name string) (isLog, isRyujinx bool) {
	base := filepath.Base(name)
	return logName.MatchString(base), ryujinxLogName.MatchString(base)
}

// Read loads path, keeping at most head bytes from the start and tail bytes
// from the end. Files that fit within head+tail are read whole. A zero
// budget on both sides disables truncation.
func Read(path string, head, tail int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat log: %w", err)
	}

	data, err := readBounded(f, info.Size(), head, tail)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return Decode(data)
}

// Decode validates data as UTF-8 text.
func Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return string(data), nil
}

func readBounded(r io.ReaderAt, size int64, head, tail int) ([]byte, error) {
	if (head == 0 && tail == 0) || size <= int64(head+tail) {
		buf := make([]byte, size)
		if _, err := r.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return buf, nil
	}

	headBuf := make([]byte, head)
	if _, err := r.ReadAt(headBuf, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	tailBuf := make([]byte, tail)
	if _, err := r.ReadAt(tailBuf, size-int64(tail)); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	headBuf = trimIncompleteEnd(headBuf)
	tailBuf = trimIncompleteStart(tailBuf)

	out := make([]byte, 0, len(headBuf)+len(tailBuf)+1)
	out = append(out, headBuf...)
	if len(headBuf) > 0 && len(tailBuf) > 0 && headBuf[len(headBuf)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, tailBuf...), nil
}

// trimIncompleteEnd drops a rune split by the head cut.
func trimIncompleteEnd(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			return b
		}
	}
	return b
}

// trimIncompleteStart drops continuation bytes left by the tail cut.
func trimIncompleteStart(b []byte) []byte {
	for i := 0; i < len(b) && i < utf8.UTFMax; i++ {
		if utf8.RuneStart(b[i]) {
			return b[i:]
		}
	}
	return b
}

// Newest returns the most recently modified Ryujinx log in dir. Other log
// files are considered only when no Ryujinx-named log exists.
func Newest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading log directory: %w", err)
	}

	var (
		best      string
		bestTime  time.Time
		bestIsRyu bool
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		isLog, isRyu := IsLogName(e.Name())
		if !isLog || (bestIsRyu && !isRyu) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if best == "" || (isRyu && !bestIsRyu) || info.ModTime().After(bestTime) {
			best, bestTime, bestIsRyu = filepath.Join(dir, e.Name()), info.ModTime(), isRyu
		}
	}
	if best == "" {
		return "", fmt.Errorf("no log files in %s", dir)
	}
	return best, nil
}
