package daemon

import (
	"encoding/json"
	"fmt"

	"github.com/dimasma0305/filelist/internal/log"
)

// ShowStatus reports the daemon process state. With jsonOutput it prints a
// JSON object instead.
func ShowStatus(pidFile, logFile string, jsonOutput bool) error {
	st := GetStatus(pidFile)

	if jsonOutput {
		data, err := json.MarshalIndent(struct {
			Status
			LogFile string `json:"log_file"`
		}{st, logFile}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	switch st.State {
	case StateRunning:
		log.Info("🟢 Status: RUNNING (Daemon Mode)")
		log.InfoH2("Process ID: %d", st.PID)
		log.InfoH2("PID File: %s", pidFile)
		log.InfoH2("Log File: %s", logFile)
		if recent, err := RecentLines(logFile, 5); err == nil && len(recent) > 0 {
			log.Info("📋 Recent activity:")
			for _, line := range recent {
				log.InfoH3("%s", line)
			}
		}
	case StateDead:
		log.Info("🟡 Status: STOPPED (stale PID file found)")
		log.InfoH2("%s", st.Message)
		log.InfoH2("Run 'filelist start' to start a new daemon")
	case StateStopped:
		log.Info("⚫ Status: NOT RUNNING")
		log.InfoH2("Run 'filelist start' to start the daemon")
	default:
		log.Info("🔴 Status: ERROR")
		log.InfoH2("%s", st.Message)
		log.InfoH2("PID File: %s", pidFile)
	}
	return nil
}
