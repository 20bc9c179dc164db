package socket

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/dimasma0305/filelist/internal/filelist/database"
)

// PrintStatus renders a status response
func PrintStatus(w io.Writer, resp *Response) {
	d := resp.Data
	fmt.Fprintln(w, "📂 filelist status")
	fmt.Fprintln(w, "==================")
	fmt.Fprintf(w, "Directory:      %v\n", d["directory"])
	fmt.Fprintf(w, "Pattern:        %v\n", d["pattern"])
	fmt.Fprintf(w, "Case sensitive: %v\n", d["case_sensitive"])
	fmt.Fprintf(w, "Full path:      %v\n", d["full_path"])
	fmt.Fprintf(w, "State:          %v\n", d["state"])

	if armed, _ := d["watch_armed"].(bool); armed {
		fmt.Fprintf(w, "Watch:          %s %v\n", color.GreenString("armed"), d["watch_target"])
	} else {
		fmt.Fprintf(w, "Watch:          %s %v\n", color.RedString("not armed"), d["watch_target"])
	}
	if lastErr, _ := d["watch_error"].(string); lastErr != "" {
		fmt.Fprintf(w, "Watch error:    %s\n", lastErr)
	}
	fmt.Fprintf(w, "Snapshot:       %v/%v bytes, sequence %v (%v)\n",
		d["snapshot_length"], d["snapshot_capacity"], d["snapshot_sequence"], d["codec"])
	if pid, ok := d["pid"]; ok {
		fmt.Fprintf(w, "PID:            %v\n", pid)
	}
	if uptime, ok := d["uptime"]; ok {
		fmt.Fprintf(w, "Uptime:         %v\n", uptime)
	}
}

// PrintHistory renders refresh records, newest first
func PrintHistory(w io.Writer, records []database.RefreshRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No refreshes recorded")
		return
	}
	for _, r := range records {
		result := color.GreenString(r.Result)
		switch r.Result {
		case "ok":
		case "overflowed":
			result = color.YellowString(r.Result)
		default:
			result = color.RedString(r.Result)
		}

		fmt.Fprintf(w, "%s  %-7s %-17s %4d/%-4d %6dB seq=%-5d %s\n",
			r.Timestamp.Local().Format(time.DateTime), r.Source, result,
			r.Matches, r.Entries, r.CompressedBytes, r.Sequence, r.Directory)
		if r.Error != "" {
			fmt.Fprintf(w, "    %s\n", r.Error)
		}
	}
}
