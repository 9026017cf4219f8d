//go:build !unix

package shell

import "os"

func exitCodeFromState(state *os.ProcessState) int {
	return state.ExitCode()
}
