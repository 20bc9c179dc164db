package daemon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tail "github.com/hpcloud/tail"
)

// RecentLines returns up to n trailing non-empty lines of logFile
func RecentLines(logFile string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	//nolint:gosec // G304: log path comes from configuration
	f, err := os.Open(logFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	}
	return ring, scanner.Err()
}

// FollowLogs writes the last lines of logFile to out and then follows it
// until ctx is done, surviving rotation.
func FollowLogs(ctx context.Context, logFile string, lines int, out io.Writer) error {
	if recent, err := RecentLines(logFile, lines); err == nil {
		for _, line := range recent {
			fmt.Fprintln(out, line)
		}
	}

	t, err := tail.TailFile(logFile, tail.Config{
		ReOpen:    true,
		Follow:    true,
		MustExist: false,
		Poll:      true,
		Logger:    tail.DiscardingLogger,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
	})
	if err != nil {
		return fmt.Errorf("failed to tail log file: %w", err)
	}
	defer t.Cleanup()
	defer func() { _ = t.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return fmt.Errorf("log tail channel closed")
			}
			if line == nil || strings.TrimSpace(line.Text) == "" {
				continue
			}
			fmt.Fprintln(out, line.Text)
		}
	}
}
