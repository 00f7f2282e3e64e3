//go:build !unix

package ytdlp

import "os/exec"

// killProcessGroup keeps the exec.CommandContext default of killing only the
// direct child
func killProcessGroup(cmd *exec.Cmd) {}
