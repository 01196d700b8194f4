package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// getRuntime is swapped out in tests to exercise each platform branch.
var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser launches the system browser at the given URL so the user can
// grant spreadsheet access. The command is started, not waited on.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	rt := getRuntime()
	switch rt {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
